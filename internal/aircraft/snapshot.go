package aircraft

import (
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/aerotwin/internal/electrical"
	"github.com/san-kum/aerotwin/internal/units"
)

// Channel kinds used by Flatten.
const (
	KindGenerator = "generator"
	KindBus       = "bus"
	KindBreaker   = "breaker"
	KindLoad      = "load"
	KindWire      = "wire"
	KindActuator  = "actuator"
)

type GeneratorReading struct {
	Name    string
	State   electrical.GeneratorState
	Speed   units.AngularVelocity
	Voltage units.Voltage
	Power   units.Power
	Current units.Current
}

type BusReading struct {
	Name    string
	Voltage units.Voltage
	Power   units.Power
	Current units.Current
}

type BreakerReading struct {
	Name    string
	Tripped bool
	Trips   int
	Voltage units.Voltage
	Current units.Current
}

type LoadReading struct {
	Name      string
	Powered   bool
	Factor    units.Ratio
	Condition electrical.Condition
	Voltage   units.Voltage
	Power     units.Power
	Current   units.Current
}

type WireReading struct {
	From    string
	To      string
	Current units.Current
}

func (w WireReading) Name() string { return w.From + ">" + w.To }

type ActuatorReading struct {
	Name        string
	Position    units.Length
	Velocity    units.Velocity
	Pressure    units.Pressure
	RodPressure units.Pressure
	Valve       units.Ratio
	Extension   units.Ratio
}

// Snapshot is a value copy of the aircraft after one tick. It shares no
// memory with the simulation and may be handed to other goroutines.
type Snapshot struct {
	Aircraft string
	Step     int
	Time     time.Duration
	Clock    string
	ET       time.Duration
	CHR      time.Duration

	Generators  []GeneratorReading
	Buses       []BusReading
	Breakers    []BreakerReading
	Loads       []LoadReading
	Wires       []WireReading
	Overcurrent []WireReading
	Actuators   []ActuatorReading
}

func (s *Systems) capture() Snapshot {
	snap := Snapshot{
		Aircraft: s.name,
		Step:     s.steps,
		Time:     s.elapsed,
		Clock:    s.clock.Display(),
		ET:       s.clock.ET(),
		CHR:      s.clock.CHR(),
	}

	for _, g := range s.generators {
		snap.Generators = append(snap.Generators, GeneratorReading{
			Name:    g.name,
			State:   g.source.State(),
			Speed:   g.source.Speed(),
			Voltage: g.source.OutputVoltage(),
			Power:   g.source.OutputPower(),
			Current: g.source.OutputCurrent(),
		})
	}
	for _, b := range s.buses {
		snap.Buses = append(snap.Buses, BusReading{
			Name:    b.name,
			Voltage: b.bus.OutputVoltage(),
			Power:   b.bus.OutputPower(),
			Current: b.bus.InputCurrent(),
		})
	}
	for _, b := range s.breakers {
		snap.Breakers = append(snap.Breakers, BreakerReading{
			Name:    b.name,
			Tripped: b.device.Tripped(),
			Trips:   b.device.Trips(),
			Voltage: b.device.OutputVoltage(),
			Current: b.device.OutputCurrent(),
		})
	}
	for _, l := range s.loads {
		snap.Loads = append(snap.Loads, LoadReading{
			Name:      l.name,
			Powered:   l.load.Powered(),
			Factor:    l.load.LoadFactor(),
			Condition: l.load.Condition(),
			Voltage:   l.load.InputVoltage(),
			Power:     l.load.ActualPower(),
			Current:   l.load.InputCurrent(),
		})
	}
	for _, e := range s.network.Edges() {
		snap.Wires = append(snap.Wires, WireReading{
			From:    s.network.Name(e.From),
			To:      s.network.Name(e.To),
			Current: e.Current,
		})
	}
	if s.limit > 0 {
		for _, oc := range s.network.CheckOvercurrent(s.limit) {
			snap.Overcurrent = append(snap.Overcurrent, WireReading{
				From:    s.network.Name(oc.From),
				To:      s.network.Name(oc.To),
				Current: oc.Current,
			})
		}
	}
	for _, a := range s.actuators {
		act := a.actuator
		snap.Actuators = append(snap.Actuators, ActuatorReading{
			Name:        a.name,
			Position:    act.Position(),
			Velocity:    act.Velocity(),
			Pressure:    act.Pressure(),
			RodPressure: act.RodPressure(),
			Valve:       act.ValveOpening(),
			Extension:   act.ExtensionRatio(),
		})
	}
	return snap
}

// Channel names one recorded value as kind.name.field.
func Channel(kind, name, field string) string {
	return kind + "." + name + "." + field
}

// SplitChannel reverses Channel. Component names may contain dots; kinds
// and fields never do.
func SplitChannel(ch string) (kind, name, field string, ok bool) {
	kind, rest, ok := strings.Cut(ch, ".")
	if !ok {
		return "", "", "", false
	}
	i := strings.LastIndex(rest, ".")
	if i < 0 {
		return "", "", "", false
	}
	return kind, rest[:i], rest[i+1:], true
}

// Flatten lists every numeric reading as parallel name and value slices.
// The channel set depends only on the configuration, so every snapshot
// of one aircraft flattens to the same names in the same order.
// Overcurrent is omitted; it is derivable from the wire currents.
func (s Snapshot) Flatten() ([]string, []float64) {
	var names []string
	var values []float64
	add := func(kind, name, field string, v float64) {
		names = append(names, Channel(kind, name, field))
		values = append(values, v)
	}

	for _, g := range s.Generators {
		add(KindGenerator, g.Name, "state", float64(g.State))
		add(KindGenerator, g.Name, "speed", float64(g.Speed))
		add(KindGenerator, g.Name, "voltage", float64(g.Voltage))
		add(KindGenerator, g.Name, "power", float64(g.Power))
		add(KindGenerator, g.Name, "current", float64(g.Current))
	}
	for _, b := range s.Buses {
		add(KindBus, b.Name, "voltage", float64(b.Voltage))
		add(KindBus, b.Name, "power", float64(b.Power))
		add(KindBus, b.Name, "current", float64(b.Current))
	}
	for _, b := range s.Breakers {
		add(KindBreaker, b.Name, "tripped", boolValue(b.Tripped))
		add(KindBreaker, b.Name, "trips", float64(b.Trips))
		add(KindBreaker, b.Name, "voltage", float64(b.Voltage))
		add(KindBreaker, b.Name, "current", float64(b.Current))
	}
	for _, l := range s.Loads {
		add(KindLoad, l.Name, "powered", boolValue(l.Powered))
		add(KindLoad, l.Name, "condition", float64(l.Condition))
		add(KindLoad, l.Name, "voltage", float64(l.Voltage))
		add(KindLoad, l.Name, "power", float64(l.Power))
		add(KindLoad, l.Name, "current", float64(l.Current))
	}
	for _, w := range s.Wires {
		add(KindWire, w.Name(), "current", float64(w.Current))
	}
	for _, a := range s.Actuators {
		add(KindActuator, a.Name, "position", float64(a.Position))
		add(KindActuator, a.Name, "velocity", float64(a.Velocity))
		add(KindActuator, a.Name, "pressure_psi", a.Pressure.PSI())
		add(KindActuator, a.Name, "rod_pressure_psi", a.RodPressure.PSI())
		add(KindActuator, a.Name, "valve", float64(a.Valve))
		add(KindActuator, a.Name, "extension", float64(a.Extension))
	}
	return names, values
}

// Summary is a one-line status for logs.
func (s Snapshot) Summary() string {
	tripped := 0
	for _, b := range s.Breakers {
		if b.Tripped {
			tripped++
		}
	}
	var demand units.Power
	for _, l := range s.Loads {
		demand += l.Power
	}
	return fmt.Sprintf("t=%s loads=%.0fW tripped=%d/%d overcurrent=%d",
		s.Time, float64(demand), tripped, len(s.Breakers), len(s.Overcurrent))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
