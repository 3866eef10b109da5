package sim

import (
	"fmt"
	"math"
	"time"
)

// Sample is one row of channel values.
type Sample []float64

func (s Sample) Clone() Sample {
	c := make(Sample, len(s))
	copy(c, s)
	return c
}

func (s Sample) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is anything advanced by a tick driver. Channels names the
// values returned by Sample and must not change between ticks.
type System interface {
	Update(dt time.Duration)
	Channels() []string
	Sample() []float64
}

// Controller acts on the system before the step that starts at t.
type Controller interface {
	Apply(t time.Duration) error
}

// Frame is the system state after one step.
type Frame struct {
	Step     int
	Time     time.Duration
	Dt       time.Duration
	Channels []string
	Values   Sample
}

// Value looks up a channel by name.
func (f Frame) Value(channel string) (float64, bool) {
	for i, ch := range f.Channels {
		if ch == channel {
			return f.Values[i], true
		}
	}
	return 0, false
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

type Config struct {
	Dt       time.Duration
	Duration time.Duration
	// ValidateSamples stops a run at the first NaN or Inf value.
	ValidateSamples bool
}

func DefaultConfig() Config {
	return Config{
		Dt:              time.Second / 60,
		Duration:        10 * time.Second,
		ValidateSamples: true,
	}
}

type Result struct {
	Channels   []string
	Samples    []Sample
	Times      []time.Duration
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded frame.
func (r *Result) Final() (Frame, bool) {
	n := len(r.Samples)
	if n == 0 {
		return Frame{}, false
	}
	return Frame{
		Step:     n - 1,
		Time:     r.Times[n-1],
		Channels: r.Channels,
		Values:   r.Samples[n-1],
	}, true
}

// Series extracts one channel over time.
func (r *Result) Series(channel string) ([]float64, bool) {
	idx := -1
	for i, ch := range r.Channels {
		if ch == channel {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	series := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		series[i] = s[idx]
	}
	return series, true
}

type SimError struct {
	Time    time.Duration
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d (t=%s): %s: %v", e.Step, e.Time, e.Message, e.Err)
	}
	return fmt.Sprintf("step %d (t=%s): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
