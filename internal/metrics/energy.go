package metrics

import (
	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/sim"
)

// EnergyDelivered integrates the power drawn by every load, in Wh.
type EnergyDelivered struct {
	name  string
	power selector
	wh    float64
}

func NewEnergyDelivered() *EnergyDelivered {
	return &EnergyDelivered{
		name:  "energy_delivered_wh",
		power: selector{kind: aircraft.KindLoad, field: "power"},
	}
}

func (e *EnergyDelivered) Name() string { return e.name }

func (e *EnergyDelivered) Observe(f sim.Frame) {
	hours := f.Dt.Hours()
	for _, i := range e.power.indexes(f) {
		e.wh += f.Values[i] * hours
	}
}

func (e *EnergyDelivered) Value() float64 { return e.wh }

func (e *EnergyDelivered) Reset() {
	e.wh = 0
	e.power.reset()
}

// PeakCurrent is the largest breaker current magnitude seen.
type PeakCurrent struct {
	name    string
	current selector
	peak    float64
}

func NewPeakCurrent() *PeakCurrent {
	return &PeakCurrent{
		name:    "peak_breaker_current_a",
		current: selector{kind: aircraft.KindBreaker, field: "current"},
	}
}

func (p *PeakCurrent) Name() string { return p.name }

func (p *PeakCurrent) Observe(f sim.Frame) {
	for _, i := range p.current.indexes(f) {
		v := f.Values[i]
		if v < 0 {
			v = -v
		}
		if v > p.peak {
			p.peak = v
		}
	}
}

func (p *PeakCurrent) Value() float64 { return p.peak }

func (p *PeakCurrent) Reset() {
	p.peak = 0
	p.current.reset()
}

// BreakerTrips counts trips that happened during the run.
type BreakerTrips struct {
	name    string
	trips   selector
	first   []float64
	last    []float64
	started bool
}

func NewBreakerTrips() *BreakerTrips {
	return &BreakerTrips{
		name:  "breaker_trips",
		trips: selector{kind: aircraft.KindBreaker, field: "trips"},
	}
}

func (b *BreakerTrips) Name() string { return b.name }

func (b *BreakerTrips) Observe(f sim.Frame) {
	idx := b.trips.indexes(f)
	if !b.started {
		b.first = make([]float64, len(idx))
		b.last = make([]float64, len(idx))
		for j, i := range idx {
			b.first[j] = f.Values[i]
		}
		b.started = true
	}
	for j, i := range idx {
		b.last[j] = f.Values[i]
	}
}

func (b *BreakerTrips) Value() float64 {
	total := 0.0
	for j := range b.last {
		total += b.last[j] - b.first[j]
	}
	return total
}

func (b *BreakerTrips) Reset() {
	b.first, b.last, b.started = nil, nil, false
	b.trips.reset()
}
