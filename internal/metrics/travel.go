package metrics

import (
	"math"

	"github.com/san-kum/aerotwin/internal/aircraft"
	"github.com/san-kum/aerotwin/internal/sim"
)

// ActuatorTravel sums the distance moved by every actuator rod, in m.
type ActuatorTravel struct {
	name     string
	position selector
	last     []float64
	sum      float64
}

func NewActuatorTravel() *ActuatorTravel {
	return &ActuatorTravel{
		name:     "actuator_travel_m",
		position: selector{kind: aircraft.KindActuator, field: "position"},
	}
}

func (c *ActuatorTravel) Name() string {
	return c.name
}

func (c *ActuatorTravel) Observe(f sim.Frame) {
	idx := c.position.indexes(f)
	if c.last == nil {
		c.last = make([]float64, len(idx))
		for j, i := range idx {
			c.last[j] = f.Values[i]
		}
		return
	}
	for j, i := range idx {
		c.sum += math.Abs(f.Values[i] - c.last[j])
		c.last[j] = f.Values[i]
	}
}

func (c *ActuatorTravel) Value() float64 {
	return c.sum
}

func (c *ActuatorTravel) Reset() {
	c.sum = 0
	c.last = nil
	c.position.reset()
}
