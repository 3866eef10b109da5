package metrics

import (
	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/sim"
)

// SupplyQuality is the fraction of frames in which every load saw a
// supply inside its operating band.
type SupplyQuality struct {
	name       string
	condition  selector
	violations int
	samples    int
}

func NewSupplyQuality() *SupplyQuality {
	return &SupplyQuality{
		name:      "supply_quality",
		condition: selector{kind: aircraft.KindLoad, field: "condition"},
	}
}

func (s *SupplyQuality) Name() string {
	return s.name
}

func (s *SupplyQuality) Observe(f sim.Frame) {
	s.samples++
	for _, i := range s.condition.indexes(f) {
		if f.Values[i] != 0 {
			s.violations++
			break
		}
	}
}

func (s *SupplyQuality) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *SupplyQuality) Reset() {
	s.violations = 0
	s.samples = 0
	s.condition.reset()
}

// Availability is the fraction of switched-on load time during which the
// load actually drew power.
type Availability struct {
	name    string
	powered selector
	power   selector
	on      int
	served  int
}

func NewAvailability() *Availability {
	return &Availability{
		name:    "availability",
		powered: selector{kind: aircraft.KindLoad, field: "powered"},
		power:   selector{kind: aircraft.KindLoad, field: "power"},
	}
}

func (a *Availability) Name() string { return a.name }

// Observe pairs powered and power channels by position; Flatten emits
// both for every load in the same order.
func (a *Availability) Observe(f sim.Frame) {
	powered := a.powered.indexes(f)
	power := a.power.indexes(f)
	for j := range powered {
		if j >= len(power) || f.Values[powered[j]] == 0 {
			continue
		}
		a.on++
		if f.Values[power[j]] > 0 {
			a.served++
		}
	}
}

func (a *Availability) Value() float64 {
	if a.on == 0 {
		return 1.0
	}
	return float64(a.served) / float64(a.on)
}

func (a *Availability) Reset() {
	a.on, a.served = 0, 0
	a.powered.reset()
	a.power.reset()
}
