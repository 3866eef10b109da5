package export

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/aerotwin/internal/sim"
)

var ErrNoData = errors.New("export: not enough samples to plot")

// Palette cycles across plotted channels.
var Palette = []string{"#00ff00", "#ffb000", "#00c8ff", "#ff4060", "#c080ff", "#ffffff"}

type Series struct {
	Name   string
	Times  []float64
	Values []float64
}

// SeriesFromResult extracts the named channels. Unknown channels are an
// error.
func SeriesFromResult(result *sim.Result, channels ...string) ([]Series, error) {
	times := make([]float64, len(result.Times))
	for i, t := range result.Times {
		times[i] = t.Seconds()
	}

	out := make([]Series, 0, len(channels))
	for _, ch := range channels {
		values, ok := result.Series(ch)
		if !ok {
			return nil, fmt.Errorf("export: unknown channel %q", ch)
		}
		out = append(out, Series{Name: ch, Times: times, Values: values})
	}
	return out, nil
}

// SeriesToSVG plots each series against time on shared axes. Non-finite
// values are skipped.
func SeriesToSVG(series []Series, width, height int) (string, error) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	points := 0
	for _, s := range series {
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minX, maxX = math.Min(minX, s.Times[i]), math.Max(maxX, s.Times[i])
			minY, maxY = math.Min(minY, v), math.Max(maxY, v)
			points++
		}
	}
	if points < 2 {
		return "", ErrNoData
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	lo, hi := minY, maxY
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for n, s := range series {
		color := Palette[n%len(Palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)

		move := true
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				move = true
				continue
			}
			x := (s.Times[i] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if move {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				move = false
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*n, color, html.EscapeString(s.Name))
	}

	fmt.Fprintf(&sb, `<text x="8" y="%d" fill="#808080" font-family="monospace" font-size="11">%.4g .. %.4g over %.3gs</text>
`, height-6, lo, hi, maxX-minX)

	sb.WriteString("</svg>")
	return sb.String(), nil
}
