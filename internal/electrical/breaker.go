package electrical

import (
	"fmt"
	"time"

	"github.com/san-kum/aerotwin/internal/units"
)

// CurveKind selects how a breaker turns overcurrent dwell into a trip.
type CurveKind int

const (
	CurveInstantaneous CurveKind = iota
	CurveShortDelay
	CurveLongDelay
	CurveInverseTime
)

func (k CurveKind) String() string {
	switch k {
	case CurveInstantaneous:
		return "instantaneous"
	case CurveShortDelay:
		return "short_delay"
	case CurveLongDelay:
		return "long_delay"
	case CurveInverseTime:
		return "inverse_time"
	default:
		return "unknown"
	}
}

// inverseTimeConstant scales the inverse-time curve: trip after
// 0.1s / (I/I_rated)².
const inverseTimeConstant = 100 * time.Millisecond

// TripCurve maps overcurrent dwell to a trip decision.
type TripCurve struct {
	Kind  CurveKind
	Delay time.Duration
}

func Instantaneous() TripCurve             { return TripCurve{Kind: CurveInstantaneous} }
func ShortDelay(d time.Duration) TripCurve { return TripCurve{Kind: CurveShortDelay, Delay: d} }
func LongDelay(d time.Duration) TripCurve  { return TripCurve{Kind: CurveLongDelay, Delay: d} }
func InverseTime() TripCurve               { return TripCurve{Kind: CurveInverseTime} }

// ParseCurve builds a curve from its String kind name. Delay is used by
// the short and long delay curves only.
func ParseCurve(name string, delay time.Duration) (TripCurve, error) {
	switch name {
	case "instantaneous":
		return Instantaneous(), nil
	case "short_delay":
		return ShortDelay(delay), nil
	case "long_delay":
		return LongDelay(delay), nil
	case "inverse_time":
		return InverseTime(), nil
	}
	return TripCurve{}, fmt.Errorf("%w: unknown trip curve %q", ErrInvalidParams, name)
}

func (c TripCurve) String() string {
	switch c.Kind {
	case CurveShortDelay, CurveLongDelay:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Delay)
	}
	return c.Kind.String()
}

// tripTime is the dwell after which the curve trips at the given overload
// ratio (current / rating, > 1).
func (c TripCurve) tripTime(overload float64) time.Duration {
	switch c.Kind {
	case CurveShortDelay, CurveLongDelay:
		return c.Delay
	case CurveInverseTime:
		return time.Duration(float64(inverseTimeConstant) / (overload * overload))
	default:
		return 0
	}
}

// BreakerParams configures a ProtectiveDevice.
type BreakerParams struct {
	Rating     units.Current `validate:"gt=0"`
	Curve      TripCurve
	AutoReset  bool
	ResetDelay time.Duration `validate:"gte=0"`
}

// ProtectiveDevice is a circuit breaker. While tripped its outputs are
// zero; inputs are latched regardless, so a reset reflects present
// upstream conditions.
type ProtectiveDevice struct {
	params BreakerParams

	tripped     bool
	overcurrent time.Duration
	tripTime    time.Duration
	trips       int

	voltage units.Voltage
	power   units.Power
	current units.Current
}

func NewBreaker(params BreakerParams) (*ProtectiveDevice, error) {
	if err := validateParams(KindProtectiveDevice, params); err != nil {
		return nil, err
	}
	switch params.Curve.Kind {
	case CurveInstantaneous, CurveInverseTime:
	case CurveShortDelay, CurveLongDelay:
		if params.Curve.Delay < 0 {
			return nil, fmt.Errorf("%w: %s: negative trip delay %s", ErrInvalidParams, KindProtectiveDevice, params.Curve.Delay)
		}
	default:
		return nil, fmt.Errorf("%w: %s: unknown trip curve %d", ErrInvalidParams, KindProtectiveDevice, params.Curve.Kind)
	}
	return &ProtectiveDevice{params: params}, nil
}

func (b *ProtectiveDevice) Kind() Kind { return KindProtectiveDevice }
func (b *ProtectiveDevice) sealed()    {}

func (b *ProtectiveDevice) Rating() units.Current { return b.params.Rating }
func (b *ProtectiveDevice) Curve() TripCurve      { return b.params.Curve }
func (b *ProtectiveDevice) Tripped() bool         { return b.tripped }

// Trips counts transitions from closed to tripped.
func (b *ProtectiveDevice) Trips() int { return b.trips }

// Dwell is the time spent continuously above rating while closed.
func (b *ProtectiveDevice) Dwell() time.Duration { return b.overcurrent }

// Reset closes the breaker and clears its timers.
func (b *ProtectiveDevice) Reset() {
	b.tripped = false
	b.tripTime = 0
	b.overcurrent = 0
}

func (b *ProtectiveDevice) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}

	if b.tripped {
		if b.params.AutoReset {
			b.tripTime += dt
			if b.tripTime >= b.params.ResetDelay {
				b.Reset()
			}
		}
		return
	}

	if b.current <= b.params.Rating {
		b.overcurrent = 0
		return
	}
	b.overcurrent += dt

	overload := float64(b.current) / float64(b.params.Rating)
	if b.params.Curve.Kind == CurveInstantaneous || b.overcurrent >= b.params.Curve.tripTime(overload) {
		b.tripped = true
		b.tripTime = 0
		b.trips++
	}
}

func (b *ProtectiveDevice) OutputVoltage() units.Voltage {
	if b.tripped {
		return 0
	}
	return b.voltage
}

func (b *ProtectiveDevice) OutputPower() units.Power {
	if b.tripped {
		return 0
	}
	return b.power
}

func (b *ProtectiveDevice) OutputCurrent() units.Current {
	if b.tripped {
		return 0
	}
	return b.current
}

func (b *ProtectiveDevice) InputCurrent() units.Current { return b.OutputCurrent() }

func (b *ProtectiveDevice) SetInputVoltage(v units.Voltage) { b.voltage = v }
func (b *ProtectiveDevice) SetInputPower(p units.Power)     { b.power = p }
func (b *ProtectiveDevice) SetInputCurrent(i units.Current) { b.current = i }
