package electrical

import (
	"time"

	"github.com/san-kum/aerotwin/internal/units"
)

// Bus fans one feeder out to several branches without modelling
// impedance: whatever is written as input is reported as output.
type Bus struct {
	voltage units.Voltage
	power   units.Power
	drawn   units.Current
}

// NewBus returns a bus holding voltage until its feeder first writes it.
func NewBus(voltage units.Voltage) *Bus {
	return &Bus{voltage: voltage}
}

func (b *Bus) Kind() Kind { return KindBus }
func (b *Bus) sealed()    {}

func (b *Bus) Update(time.Duration) {}

func (b *Bus) OutputVoltage() units.Voltage { return b.voltage }
func (b *Bus) OutputPower() units.Power     { return b.power }

func (b *Bus) OutputCurrent() units.Current {
	return DeriveCurrent(b.power, b.voltage)
}

func (b *Bus) InputCurrent() units.Current { return b.drawn }

func (b *Bus) SetInputVoltage(v units.Voltage) { b.voltage = v }
func (b *Bus) SetInputPower(p units.Power)     { b.power = p }
func (b *Bus) SetInputCurrent(i units.Current) { b.drawn = i }
