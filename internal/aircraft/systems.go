// Package aircraft assembles the simulated systems of one airframe from a
// declarative configuration and advances them tick by tick.
package aircraft

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/san-kum/aerotwin/internal/broadcast"
	"github.com/san-kum/aerotwin/internal/config"
	"github.com/san-kum/aerotwin/internal/electrical"
	"github.com/san-kum/aerotwin/internal/hydraulic"
	"github.com/san-kum/aerotwin/internal/instruments"
	"github.com/san-kum/aerotwin/internal/units"
)

type generator struct {
	name   string
	source *electrical.PowerSource
	cfg    config.Generator

	// started is set once the generator has been started or stopped by
	// anyone, which cancels a pending automatic start.
	started bool
	state   electrical.GeneratorState
}

func (g *generator) componentName() string { return g.name }

func (g *generator) start(power units.Power) {
	if power <= 0 {
		power = units.Power(g.cfg.MechanicalPower)
	}
	speed := units.AngularVelocity(g.cfg.DriveSpeed)
	if speed <= 0 {
		speed = g.source.RatedSpeed()
	}
	g.source.TurnOn()
	g.source.SetMechanicalInput(power, speed)
	g.started = true
}

type bus struct {
	name string
	bus  *electrical.Bus
}

type breaker struct {
	name    string
	device  *electrical.ProtectiveDevice
	tripped bool
}

func (b *breaker) componentName() string { return b.name }

type load struct {
	name      string
	load      *electrical.Load
	condition electrical.Condition
}

func (l *load) componentName() string { return l.name }

type actuator struct {
	name     string
	actuator *hydraulic.Actuator
}

func (a *actuator) componentName() string { return a.name }

// Systems owns every subsystem of one aircraft. It is driven from a
// single goroutine; Snapshot values published to the store are the only
// state other goroutines see.
type Systems struct {
	name    string
	network *electrical.Network
	limit   units.Current

	generators []*generator
	buses      []*bus
	breakers   []*breaker
	loads      []*load
	actuators  []*actuator

	clock       *instruments.Clock
	chronometer *instruments.Chronometer

	store  *broadcast.Store
	logger *slog.Logger

	elapsed     time.Duration
	steps       int
	overcurrent string
	snapshot    Snapshot
}

// New validates cfg and builds the network and actuators it describes.
// A nil store or logger is replaced by a private store and a discarding
// logger.
func New(cfg *config.Aircraft, store *broadcast.Store, logger *slog.Logger) (*Systems, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = broadcast.New(broadcast.WithRetention(1))
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mode, err := instruments.ParseClockMode(cfg.Clock.Mode)
	if err != nil {
		return nil, err
	}
	clock := instruments.NewClock(cfg.Clock.UTC)
	clock.SetMode(mode)

	s := &Systems{
		name:        cfg.Name,
		network:     electrical.NewNetwork(),
		limit:       units.Current(cfg.OvercurrentLimit),
		clock:       clock,
		chronometer: instruments.NewChronometer(),
		store:       store,
		logger:      logger.With("aircraft", cfg.Name),
	}

	if err := s.build(cfg); err != nil {
		return nil, err
	}
	s.snapshot = s.capture()
	return s, nil
}

// node resolves a wiring endpoint registered by build.
func (s *Systems) node(name string) (electrical.Handle, error) {
	h, ok := s.network.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	return h, nil
}

func (s *Systems) build(cfg *config.Aircraft) error {
	for _, gc := range cfg.Generators {
		src, err := electrical.NewPowerSource(electrical.GeneratorParams{
			Poles:              gc.Poles,
			RatedPower:         units.Power(gc.RatedPower),
			RatedVoltage:       units.Voltage(gc.RatedVoltage),
			RatedFrequency:     units.Frequency(gc.RatedFrequency),
			Efficiency:         units.Ratio(gc.Efficiency),
			InternalResistance: units.Resistance(gc.InternalResistance),
			SpinUpTime:         gc.SpinUpTime,
			Phases:             gc.Phases,
		})
		if err != nil {
			return fmt.Errorf("aircraft: generator %q: %w", gc.Name, err)
		}
		s.network.Add(gc.Name, src)
		s.generators = append(s.generators, &generator{name: gc.Name, source: src, cfg: gc})
	}

	for _, bc := range cfg.Buses {
		b := electrical.NewBus(units.Voltage(bc.Voltage))
		s.network.Add(bc.Name, b)
		s.buses = append(s.buses, &bus{name: bc.Name, bus: b})
	}

	for _, bc := range cfg.Breakers {
		curve, err := electrical.ParseCurve(bc.Curve, bc.Delay)
		if err != nil {
			return fmt.Errorf("aircraft: breaker %q: %w", bc.Name, err)
		}
		dev, err := electrical.NewBreaker(electrical.BreakerParams{
			Rating:     units.Current(bc.Rating),
			Curve:      curve,
			AutoReset:  bc.AutoReset,
			ResetDelay: bc.ResetDelay,
		})
		if err != nil {
			return fmt.Errorf("aircraft: breaker %q: %w", bc.Name, err)
		}
		s.network.Add(bc.Name, dev)
		s.breakers = append(s.breakers, &breaker{name: bc.Name, device: dev})
	}

	for _, lc := range cfg.Loads {
		response, err := electrical.ParseResponse(lc.Response)
		if err != nil {
			return fmt.Errorf("aircraft: load %q: %w", lc.Name, err)
		}
		l, err := electrical.NewLoad(electrical.LoadParams{
			NominalVoltage: units.Voltage(lc.NominalVoltage),
			NominalPower:   units.Power(lc.NominalPower),
			MinVoltage:     units.Voltage(lc.MinVoltage),
			MaxVoltage:     units.Voltage(lc.MaxVoltage),
			Response:       response,
			PowerFactor:    units.Ratio(lc.PowerFactor),
		})
		if err != nil {
			return fmt.Errorf("aircraft: load %q: %w", lc.Name, err)
		}
		l.SetPowered(lc.Powered)
		if lc.LoadFactor != nil {
			l.SetLoadFactor(units.Ratio(*lc.LoadFactor))
		}
		s.network.Add(lc.Name, l)
		s.loads = append(s.loads, &load{name: lc.Name, load: l})
	}

	for _, w := range cfg.Wires {
		from, err := s.node(w.From)
		if err != nil {
			return fmt.Errorf("aircraft: wire %s -> %s: %w", w.From, w.To, err)
		}
		to, err := s.node(w.To)
		if err != nil {
			return fmt.Errorf("aircraft: wire %s -> %s: %w", w.From, w.To, err)
		}
		if w.Resistance == nil {
			err = s.network.ConnectDirect(from, to)
		} else {
			err = s.network.Connect(from, to, units.Resistance(*w.Resistance))
		}
		if err != nil {
			return fmt.Errorf("aircraft: wire %s -> %s: %w", w.From, w.To, err)
		}
	}

	for _, ac := range cfg.Actuators {
		act, err := hydraulic.NewActuator(hydraulic.Params{
			BoreDiameter:    units.Length(ac.BoreDiameter),
			RodDiameter:     units.Length(ac.RodDiameter),
			StrokeLength:    units.Length(ac.StrokeLength),
			InitialPosition: units.Length(ac.InitialPosition),
			BulkModulus:     units.Pressure(ac.BulkModulus),
			MaxFlowRate:     units.VolumeRate(ac.MaxFlowRate),
			StaticFriction:  units.Force(ac.StaticFriction),
			DynamicFriction: ac.DynamicFriction,
			InternalLeakage: ac.InternalLeakage,
			ExternalLeakage: ac.ExternalLeakage,
			DeadVolume:      units.Volume(ac.DeadVolume),
			ReliefPressure:  units.PSI(ac.ReliefPressurePSI),
		})
		if err != nil {
			return fmt.Errorf("aircraft: actuator %q: %w", ac.Name, err)
		}
		act.SetSupplyPressure(units.PSI(ac.SupplyPressurePSI))
		act.SetValveOpening(units.Ratio(ac.ValveOpening))
		act.SetExternalForce(units.Force(ac.ExternalForce))
		s.actuators = append(s.actuators, &actuator{name: ac.Name, actuator: act})
	}
	return nil
}

// Update advances every subsystem by dt and publishes a Snapshot. A
// non-positive dt changes nothing.
func (s *Systems) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.elapsed += dt
	s.steps++

	s.clock.Update(dt)
	s.chronometer.Update(dt)

	for _, cmd := range broadcast.Take[Command](s.store, broadcast.Commands) {
		if err := s.Execute(cmd); err != nil {
			s.logger.Warn("command rejected", "command", cmd.String(), "err", err)
		}
	}

	for _, g := range s.generators {
		if g.cfg.AutoStart && !g.started && s.elapsed >= g.cfg.StartAfter {
			g.start(0)
			s.logger.Info("generator started", "generator", g.name, "at", s.elapsed)
		}
	}

	s.network.Update(dt)
	for _, a := range s.actuators {
		a.actuator.Update(dt)
	}

	s.audit()
	s.snapshot = s.capture()
	s.store.Send(broadcast.Electrical, s.snapshot)
	s.store.Send(broadcast.Hydraulic, slices.Clone(s.snapshot.Actuators))
}

// audit logs state transitions rather than steady state.
func (s *Systems) audit() {
	for _, g := range s.generators {
		if st := g.source.State(); st != g.state {
			s.logger.Debug("generator state", "generator", g.name, "from", g.state, "to", st)
			g.state = st
		}
	}

	for _, b := range s.breakers {
		switch tripped := b.device.Tripped(); {
		case tripped && !b.tripped:
			s.logger.Warn("breaker tripped", "breaker", b.name, "trips", b.device.Trips(), "at", s.elapsed)
		case !tripped && b.tripped:
			s.logger.Info("breaker reset", "breaker", b.name, "at", s.elapsed)
		}
		b.tripped = b.device.Tripped()
	}

	for _, l := range s.loads {
		if c := l.load.Condition(); c != l.condition {
			level := slog.LevelWarn
			if c == electrical.ConditionNormal {
				level = slog.LevelInfo
			}
			s.logger.Log(context.Background(), level, "load supply", "load", l.name, "condition", c,
				"voltage", float64(l.load.InputVoltage()))
			l.condition = c
		}
	}

	if s.limit <= 0 {
		return
	}
	over := s.network.CheckOvercurrent(s.limit)
	var key strings.Builder
	for _, oc := range over {
		fmt.Fprintf(&key, "%d>%d;", oc.From, oc.To)
	}
	if key.String() == s.overcurrent {
		return
	}
	s.overcurrent = key.String()
	if len(over) == 0 {
		s.logger.Info("overcurrent cleared", "at", s.elapsed)
		return
	}
	for _, oc := range over {
		s.logger.Warn("overcurrent",
			"from", s.network.Name(oc.From),
			"to", s.network.Name(oc.To),
			"current", float64(oc.Current),
			"limit", float64(s.limit))
	}
}

func (s *Systems) Name() string                          { return s.name }
func (s *Systems) Elapsed() time.Duration                { return s.elapsed }
func (s *Systems) Network() *electrical.Network          { return s.network }
func (s *Systems) Clock() *instruments.Clock             { return s.clock }
func (s *Systems) Chronometer() *instruments.Chronometer { return s.chronometer }

// Snapshot returns the state published by the last Update.
func (s *Systems) Snapshot() Snapshot { return s.snapshot }

// Actuator returns the named actuator.
func (s *Systems) Actuator(name string) (*hydraulic.Actuator, error) {
	a, err := lookup(s.actuators, name)
	if err != nil {
		return nil, err
	}
	return a.actuator, nil
}

// Channels names the values returned by Sample.
func (s *Systems) Channels() []string {
	names, _ := s.snapshot.Flatten()
	return names
}

// Sample flattens the last Snapshot.
func (s *Systems) Sample() []float64 {
	_, values := s.snapshot.Flatten()
	return values
}
