package electrical

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/san-kum/aerotwin/internal/units"
)

// Kind tags the concrete variant behind a Component.
type Kind int

const (
	KindPowerSource Kind = iota
	KindBus
	KindProtectiveDevice
	KindLoad
)

func (k Kind) String() string {
	switch k {
	case KindPowerSource:
		return "power_source"
	case KindBus:
		return "bus"
	case KindProtectiveDevice:
		return "protective_device"
	case KindLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Component is implemented by every element of a Network. The set of
// implementations is closed: PowerSource, Bus, ProtectiveDevice and Load.
//
// Outputs reflect the last Update. Setters latch inputs for the next
// Update; components that have no use for an input ignore it.
type Component interface {
	Kind() Kind

	// Update advances internal state by dt. A non-positive dt leaves the
	// component unchanged.
	Update(dt time.Duration)

	OutputVoltage() units.Voltage
	OutputPower() units.Power
	OutputCurrent() units.Current

	// InputCurrent is the current the component draws from its feeder.
	InputCurrent() units.Current

	SetInputVoltage(v units.Voltage)
	SetInputPower(p units.Power)
	SetInputCurrent(i units.Current)

	sealed()
}

// DeriveCurrent is the output current of a component that does not track
// current itself: P/V, or zero when the voltage is not positive.
func DeriveCurrent(p units.Power, v units.Voltage) units.Current {
	return units.CurrentFromPower(p, v)
}

var validate = validator.New()

func validateParams(kind Kind, params any) error {
	if err := validate.Struct(params); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidParams, kind, err)
	}
	return nil
}
