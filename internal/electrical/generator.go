package electrical

import (
	"math"
	"time"

	"github.com/san-kum/aerotwin/internal/units"
)

// GeneratorState is the spin-up state of a PowerSource.
type GeneratorState int

const (
	GeneratorOff GeneratorState = iota
	GeneratorSpinningUp
	GeneratorAtSpeed
)

func (s GeneratorState) String() string {
	switch s {
	case GeneratorOff:
		return "off"
	case GeneratorSpinningUp:
		return "spinning_up"
	case GeneratorAtSpeed:
		return "at_speed"
	default:
		return "unknown"
	}
}

// GeneratorParams configures a PowerSource. Efficiency is clamped to
// [0, 1].
type GeneratorParams struct {
	Poles              float64          `validate:"gt=0"`
	RatedPower         units.Power      `validate:"gt=0"`
	RatedVoltage       units.Voltage    `validate:"gt=0"`
	RatedFrequency     units.Frequency  `validate:"gt=0"`
	Efficiency         units.Ratio      `validate:"gte=0"`
	InternalResistance units.Resistance `validate:"gte=0"`
	SpinUpTime         time.Duration    `validate:"gte=0"`
	Phases             int              `validate:"gte=1"`
}

// PowerSource is a rotating generator. It sources the network and
// ignores every network input.
//
// Output current for the droop model is approximated as
// P / V_rated × phases; no per-phase circuit is solved.
type PowerSource struct {
	params GeneratorParams

	on           bool
	timeOn       time.Duration
	mechanical   units.Power
	driveSpeed   units.AngularVelocity
	currentSpeed units.AngularVelocity

	outputPower   units.Power
	outputVoltage units.Voltage
}

func NewPowerSource(params GeneratorParams) (*PowerSource, error) {
	if err := validateParams(KindPowerSource, params); err != nil {
		return nil, err
	}
	params.Efficiency = units.Clamp01(params.Efficiency)

	g := &PowerSource{params: params}
	g.driveSpeed = g.RatedSpeed()
	return g, nil
}

func (g *PowerSource) Kind() Kind { return KindPowerSource }
func (g *PowerSource) sealed()    {}

// RatedSpeed is the shaft speed that yields the rated frequency.
func (g *PowerSource) RatedSpeed() units.AngularVelocity {
	return units.AngularVelocity(float64(g.params.RatedFrequency) * 60 / g.params.Poles)
}

// TurnOn starts spin-up from zero elapsed time.
func (g *PowerSource) TurnOn() {
	g.on = true
	g.timeOn = 0
}

// TurnOff collapses every output to zero immediately.
func (g *PowerSource) TurnOff() {
	g.on = false
	g.timeOn = 0
	g.mechanical = 0
	g.zero()
}

func (g *PowerSource) IsOn() bool { return g.on }

// SetMechanicalInput sets shaft power and drive speed. It has no effect
// while the generator is off.
func (g *PowerSource) SetMechanicalInput(power units.Power, speed units.AngularVelocity) {
	if !g.on {
		return
	}
	g.mechanical = power
	g.driveSpeed = speed
}

func (g *PowerSource) State() GeneratorState {
	switch {
	case !g.on:
		return GeneratorOff
	case g.spinProgress() < 1:
		return GeneratorSpinningUp
	default:
		return GeneratorAtSpeed
	}
}

// Speed is the present shaft speed.
func (g *PowerSource) Speed() units.AngularVelocity { return g.currentSpeed }

// TimeOn is the time accumulated since TurnOn.
func (g *PowerSource) TimeOn() time.Duration { return g.timeOn }

func (g *PowerSource) Update(dt time.Duration) {
	if !g.on {
		g.zero()
		return
	}
	if dt <= 0 {
		return
	}
	g.timeOn += dt

	g.currentSpeed = units.AngularVelocity(float64(g.driveSpeed) * g.spinProgress())

	efficiency := float64(g.params.Efficiency)
	rated := float64(g.RatedSpeed())
	if speed := float64(g.currentSpeed); speed < rated {
		efficiency *= speed / rated
	}

	available := float64(g.mechanical) * efficiency
	g.outputPower = units.Power(math.Min(available, float64(g.params.RatedPower)))

	current := units.Current(float64(g.outputPower) / float64(g.params.RatedVoltage) * float64(g.params.Phases))
	drop := units.Drop(current, g.params.InternalResistance)
	g.outputVoltage = units.Voltage(math.Max(0, float64(g.params.RatedVoltage-drop)))
}

func (g *PowerSource) spinProgress() float64 {
	if g.params.SpinUpTime <= 0 {
		return 1
	}
	return math.Min(1, float64(g.timeOn)/float64(g.params.SpinUpTime))
}

func (g *PowerSource) zero() {
	g.outputPower = 0
	g.outputVoltage = 0
	g.currentSpeed = 0
}

func (g *PowerSource) OutputVoltage() units.Voltage { return g.outputVoltage }
func (g *PowerSource) OutputPower() units.Power     { return g.outputPower }

func (g *PowerSource) OutputCurrent() units.Current {
	return DeriveCurrent(g.outputPower, g.outputVoltage)
}

// InputCurrent is zero: a generator draws nothing from the network.
func (g *PowerSource) InputCurrent() units.Current { return 0 }

func (g *PowerSource) SetInputVoltage(units.Voltage) {}
func (g *PowerSource) SetInputPower(units.Power)     {}
func (g *PowerSource) SetInputCurrent(units.Current) {}
