// Package export renders recorded runs for use outside aerotwin.
package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/aerotwin/internal/sim"
)

type Data struct {
	Aircraft string             `json:"aircraft"`
	RunID    string             `json:"run_id,omitempty"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Channels []string           `json:"channels"`
	Times    []float64          `json:"times"`
	Samples  [][]float64        `json:"samples"`
	Metrics  map[string]float64 `json:"metrics"`
}

// Header identifies the run being exported.
type Header struct {
	Aircraft string
	RunID    string
	Dt       float64
	Duration float64
}

func NewData(h Header, result *sim.Result) Data {
	data := Data{
		Aircraft: h.Aircraft,
		RunID:    h.RunID,
		Dt:       h.Dt,
		Duration: h.Duration,
		Steps:    result.StepsTaken,
		Channels: result.Channels,
		Times:    make([]float64, len(result.Times)),
		Samples:  make([][]float64, len(result.Samples)),
		Metrics:  result.Metrics,
	}
	for i, t := range result.Times {
		data.Times[i] = t.Seconds()
	}
	for i, s := range result.Samples {
		data.Samples[i] = s
	}
	return data
}

// WriteJSON encodes the run as indented JSON.
func WriteJSON(w io.Writer, h Header, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewData(h, result))
}

// JSON writes to path, or to stdout when path is "-".
func JSON(path string, h Header, result *sim.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, h, result)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, h, result)
}
