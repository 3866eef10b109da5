package aircraft

import (
	"errors"
	"fmt"

	"github.com/san-kum/aerotwin/internal/instruments"
	"github.com/san-kum/aerotwin/internal/units"
)

var (
	// ErrUnknownComponent indicates a command target that does not exist
	// or is of the wrong kind for the operation.
	ErrUnknownComponent = errors.New("aircraft: unknown component")

	// ErrUnknownOp indicates an operation name with no handler.
	ErrUnknownOp = errors.New("aircraft: unknown operation")
)

// Op is an operator action on a named component.
type Op int

const (
	OpStartGenerator Op = iota
	OpStopGenerator
	OpResetBreaker
	OpSetLoadPowered
	OpSetLoadFactor
	OpSetValve
	OpSetSupplyPressure
	OpSetExternalForce
	OpStartET
	OpResetET
	OpToggleCHR
	OpResetCHR
	OpSetClockMode
)

var opNames = [...]string{
	OpStartGenerator:    "start_generator",
	OpStopGenerator:     "stop_generator",
	OpResetBreaker:      "reset_breaker",
	OpSetLoadPowered:    "set_load_powered",
	OpSetLoadFactor:     "set_load_factor",
	OpSetValve:          "set_valve",
	OpSetSupplyPressure: "set_supply_pressure",
	OpSetExternalForce:  "set_external_force",
	OpStartET:           "start_et",
	OpResetET:           "reset_et",
	OpToggleCHR:         "toggle_chr",
	OpResetCHR:          "reset_chr",
	OpSetClockMode:      "set_clock_mode",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return "unknown"
	}
	return opNames[o]
}

func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return Op(op), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, name)
}

// Command is one operator action. Value is interpreted per Op: mechanical
// power in W for StartGenerator (0 keeps the configured input), non-zero
// for powered, a ratio for factors and valves, psi for supply pressure,
// N for external force, and the ClockMode ordinal for SetClockMode.
type Command struct {
	Op     Op
	Target string
	Value  float64
}

func (c Command) String() string {
	if c.Target == "" {
		return c.Op.String()
	}
	return fmt.Sprintf("%s(%s, %g)", c.Op, c.Target, c.Value)
}

// Execute applies cmd immediately. It must be called from the goroutine
// that drives Update; other goroutines send commands through the store.
func (s *Systems) Execute(cmd Command) error {
	switch cmd.Op {
	case OpStartGenerator:
		g, err := lookup(s.generators, cmd.Target)
		if err != nil {
			return err
		}
		g.start(units.Power(cmd.Value))
		s.logger.Info("generator started", "generator", g.name, "at", s.elapsed)

	case OpStopGenerator:
		g, err := lookup(s.generators, cmd.Target)
		if err != nil {
			return err
		}
		g.source.TurnOff()
		g.started = true
		s.logger.Info("generator stopped", "generator", g.name, "at", s.elapsed)

	case OpResetBreaker:
		b, err := lookup(s.breakers, cmd.Target)
		if err != nil {
			return err
		}
		b.device.Reset()

	case OpSetLoadPowered:
		l, err := lookup(s.loads, cmd.Target)
		if err != nil {
			return err
		}
		l.load.SetPowered(cmd.Value != 0)

	case OpSetLoadFactor:
		l, err := lookup(s.loads, cmd.Target)
		if err != nil {
			return err
		}
		l.load.SetLoadFactor(units.Ratio(cmd.Value))

	case OpSetValve:
		a, err := lookup(s.actuators, cmd.Target)
		if err != nil {
			return err
		}
		a.actuator.SetValveOpening(units.Ratio(cmd.Value))

	case OpSetSupplyPressure:
		a, err := lookup(s.actuators, cmd.Target)
		if err != nil {
			return err
		}
		a.actuator.SetSupplyPressure(units.PSI(cmd.Value))

	case OpSetExternalForce:
		a, err := lookup(s.actuators, cmd.Target)
		if err != nil {
			return err
		}
		a.actuator.SetExternalForce(units.Force(cmd.Value))

	case OpStartET:
		s.clock.StartET()
	case OpResetET:
		s.clock.ResetET()
	case OpToggleCHR:
		s.clock.ToggleCHR()
	case OpResetCHR:
		s.clock.ResetCHR()
	case OpSetClockMode:
		mode := instruments.ClockMode(cmd.Value)
		if mode < instruments.ModeUTC || mode > instruments.ModeCHR {
			return fmt.Errorf("aircraft: clock mode %g out of range", cmd.Value)
		}
		s.clock.SetMode(mode)

	default:
		return fmt.Errorf("%w: %d", ErrUnknownOp, int(cmd.Op))
	}
	return nil
}

type named interface {
	componentName() string
}

func lookup[T named](items []T, name string) (T, error) {
	for _, it := range items {
		if it.componentName() == name {
			return it, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
}
