package electrical

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/aerotwin/internal/units"
)

// Response is a load's voltage-response law.
type Response int

const (
	// ResponseBinary draws full power at or above the minimum voltage.
	ResponseBinary Response = iota
	// ResponseLinear scales power with V / V_nominal above the minimum.
	ResponseLinear
	// ResponseRegulated draws full power at any voltage above the minimum,
	// like a switching regulator.
	ResponseRegulated
	// ResponseProportional ramps from zero at the minimum voltage to full
	// power at nominal.
	ResponseProportional
)

func (r Response) String() string {
	switch r {
	case ResponseBinary:
		return "binary"
	case ResponseLinear:
		return "linear"
	case ResponseRegulated:
		return "regulated"
	case ResponseProportional:
		return "proportional"
	default:
		return "unknown"
	}
}

// ParseResponse is the inverse of Response.String.
func ParseResponse(name string) (Response, error) {
	for r := ResponseBinary; r <= ResponseProportional; r++ {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown load response %q", ErrInvalidParams, name)
}

// Condition is the result of a load's supply range check.
type Condition int

const (
	ConditionNormal Condition = iota
	ConditionUndervoltage
	ConditionOvervoltage
)

func (c Condition) String() string {
	switch c {
	case ConditionNormal:
		return "normal"
	case ConditionUndervoltage:
		return "undervoltage"
	case ConditionOvervoltage:
		return "overvoltage"
	default:
		return "unknown"
	}
}

// LoadParams configures a Load. PowerFactor is clamped to [0, 1].
type LoadParams struct {
	NominalVoltage units.Voltage `validate:"gt=0"`
	NominalPower   units.Power   `validate:"gte=0"`
	MinVoltage     units.Voltage `validate:"gte=0"`
	MaxVoltage     units.Voltage `validate:"gtefield=MinVoltage"`
	Response       Response
	PowerFactor    units.Ratio
}

// Load is a generic DC consumer. It reports no output; its draw is
// computed from the latched input voltage on demand.
type Load struct {
	params     LoadParams
	resistance units.Resistance

	powered    bool
	loadFactor units.Ratio
	condition  Condition

	voltage units.Voltage
	power   units.Power
}

func NewLoad(params LoadParams) (*Load, error) {
	if err := validateParams(KindLoad, params); err != nil {
		return nil, err
	}
	if params.Response < ResponseBinary || params.Response > ResponseProportional {
		return nil, fmt.Errorf("%w: %s: unknown response %d", ErrInvalidParams, KindLoad, params.Response)
	}
	params.PowerFactor = units.Clamp01(params.PowerFactor)

	resistance := units.Resistance(math.Inf(1))
	if params.NominalPower > 0 {
		v := float64(params.NominalVoltage)
		resistance = units.Resistance(v * v / float64(params.NominalPower))
	}

	return &Load{
		params:     params,
		resistance: resistance,
		loadFactor: 1,
	}, nil
}

func (l *Load) Kind() Kind { return KindLoad }
func (l *Load) sealed()    {}

// SetPowered switches the load on or off.
func (l *Load) SetPowered(on bool) { l.powered = on }
func (l *Load) Powered() bool      { return l.powered }

// SetLoadFactor scales demand, e.g. for dimming; clamped to [0, 1].
func (l *Load) SetLoadFactor(f units.Ratio) { l.loadFactor = units.Clamp01(f) }
func (l *Load) LoadFactor() units.Ratio     { return l.loadFactor }

// Resistance is the equivalent resistance at nominal operation.
func (l *Load) Resistance() units.Resistance { return l.resistance }

// Condition is the outcome of the last range check.
func (l *Load) Condition() Condition { return l.condition }

func (l *Load) Response() Response { return l.params.Response }

// InputVoltage is the latched supply voltage.
func (l *Load) InputVoltage() units.Voltage { return l.voltage }

// AvailablePower is the upstream power latched on the last propagation.
func (l *Load) AvailablePower() units.Power { return l.power }

// ActualPower applies the voltage-response law to the latched input.
func (l *Load) ActualPower() units.Power {
	v := l.voltage
	if !l.powered || v < l.params.MinVoltage {
		return 0
	}

	full := float64(l.params.NominalPower) * float64(l.loadFactor) * float64(l.params.PowerFactor)
	switch l.params.Response {
	case ResponseLinear:
		return units.Power(full * float64(v) / float64(l.params.NominalVoltage))
	case ResponseProportional:
		span := float64(l.params.NominalVoltage - l.params.MinVoltage)
		factor := 1.0
		if span > 0 {
			factor = math.Min(1, float64(v-l.params.MinVoltage)/span)
		}
		return units.Power(full * factor)
	default:
		return units.Power(full)
	}
}

// Update only checks the supply against the operating band.
func (l *Load) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	switch {
	case !l.powered:
		l.condition = ConditionNormal
	case l.voltage > l.params.MaxVoltage:
		l.condition = ConditionOvervoltage
	case l.voltage < l.params.MinVoltage:
		l.condition = ConditionUndervoltage
	default:
		l.condition = ConditionNormal
	}
}

func (l *Load) OutputVoltage() units.Voltage { return 0 }
func (l *Load) OutputPower() units.Power     { return 0 }
func (l *Load) OutputCurrent() units.Current { return 0 }

// InputCurrent is the draw back-computed from ActualPower.
func (l *Load) InputCurrent() units.Current {
	return units.CurrentFromPower(l.ActualPower(), l.voltage)
}

func (l *Load) SetInputVoltage(v units.Voltage) { l.voltage = v }
func (l *Load) SetInputPower(p units.Power)     { l.power = p }
func (l *Load) SetInputCurrent(units.Current)   {}
