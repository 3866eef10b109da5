// Package metrics summarises runs (sim.Metric) and exports live channel
// values to Prometheus (sim.Observer).
package metrics

import (
	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/sim"
)

// selector resolves the frame indexes of one kind.field channel family.
// Channel sets are fixed for a run, so resolution happens once per Reset.
type selector struct {
	kind, field string
	idx         []int
	resolved    bool
}

func (s *selector) indexes(f sim.Frame) []int {
	if s.resolved {
		return s.idx
	}
	for i, ch := range f.Channels {
		kind, _, field, ok := aircraft.SplitChannel(ch)
		if ok && kind == s.kind && field == s.field {
			s.idx = append(s.idx, i)
		}
	}
	s.resolved = true
	return s.idx
}

func (s *selector) reset() {
	s.idx, s.resolved = nil, false
}

// Defaults is the metric set recorded with every run.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewEnergyDelivered(),
		NewPeakCurrent(),
		NewBreakerTrips(),
		NewSupplyQuality(),
		NewAvailability(),
		NewActuatorTravel(),
	}
}
