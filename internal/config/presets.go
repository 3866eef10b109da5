package config

import (
	"sort"
	"time"
)

// Presets builds a fresh Aircraft per call so callers may mutate it.
var Presets = map[string]func() *Aircraft{
	"e170":         E170,
	"breaker-trip": BreakerTrip,
	"inverse-time": InverseTimeTrip,
	"actuator":     FlapActuator,
}

func GetPreset(name string) *Aircraft {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ohms(r float64) *float64 { return &r }

// E170 is the reference electrical system: a 115 V generator started
// after three seconds, a main bus and two breaker-protected 28 V loads.
// The loads are rated 28 V and report overvoltage once the generator is
// up.
func E170() *Aircraft {
	return &Aircraft{
		Name:             "e170",
		Description:      "main generator, main bus, avionics and lights circuits",
		Dt:               DefaultDt,
		Duration:         DefaultDuration,
		OvercurrentLimit: DefaultOvercurrentLimit,
		Clock:            Clock{Mode: "utc", UTC: 12 * time.Hour},
		Generators: []Generator{{
			Name: "Main Generator", Poles: 2, RatedPower: 90_000, RatedVoltage: 115,
			RatedFrequency: 400, Efficiency: 0.95, InternalResistance: 0.05, Phases: 3,
			AutoStart: true, StartAfter: 3 * time.Second,
			MechanicalPower: 80_000, DriveSpeed: 6000,
		}},
		Buses: []Bus{{Name: "Main Bus", Voltage: 28}},
		Breakers: []Breaker{
			{Name: "Avionics CB", Rating: 15, Curve: "short_delay", Delay: 200 * time.Millisecond},
			{Name: "Lights CB", Rating: 10, Curve: "short_delay", Delay: 100 * time.Millisecond,
				AutoReset: true, ResetDelay: 5 * time.Second},
		},
		Loads: []Consumer{
			{Name: "Test Display", NominalVoltage: 28, NominalPower: 120, MinVoltage: 21, MaxVoltage: 32,
				Response: "regulated", PowerFactor: 0.85, Powered: true},
			{Name: "Test Light", NominalVoltage: 28, NominalPower: 200, MinVoltage: 20, MaxVoltage: 32,
				Response: "binary", PowerFactor: 0.9, Powered: true},
		},
		Wires: []Wire{
			{From: "Main Generator", To: "Main Bus"},
			{From: "Main Bus", To: "Avionics CB"},
			{From: "Main Bus", To: "Lights CB"},
			{From: "Avionics CB", To: "Test Display", Resistance: ohms(0.01)},
			{From: "Lights CB", To: "Test Light", Resistance: ohms(0.02)},
		},
		Actuators: []Actuator{flap()},
		Script: []Event{
			{At: 0, Op: "start_et"},
			{At: 5 * time.Second, Op: "set_valve", Target: "Flap Actuator", Value: 0.5},
		},
	}
}

// BreakerTrip overloads a short-delay breaker, then sheds the load and
// resets the breaker from the script.
func BreakerTrip() *Aircraft {
	a := dcCircuit("breaker-trip", "short_delay", 200*time.Millisecond, false)
	a.Script = []Event{
		{At: 2 * time.Second, Op: "set_load_factor", Target: "Heater", Value: 0.5},
		{At: 2500 * time.Millisecond, Op: "reset_breaker", Target: "Heater CB"},
	}
	return a
}

// InverseTimeTrip overloads an inverse-time breaker that resets itself.
func InverseTimeTrip() *Aircraft {
	a := dcCircuit("inverse-time", "inverse_time", 0, true)
	a.Duration = 5 * time.Second
	return a
}

// FlapActuator drives a single actuator out and lets it leak back.
func FlapActuator() *Aircraft {
	return &Aircraft{
		Name:        "actuator",
		Description: "single flap actuator extension and leak-down",
		Dt:          time.Millisecond,
		Duration:    3 * time.Second,
		Actuators:   []Actuator{flap()},
		Script: []Event{
			{At: 500 * time.Millisecond, Op: "set_valve", Target: "Flap Actuator", Value: 1},
			{At: 2 * time.Second, Op: "set_valve", Target: "Flap Actuator", Value: 0},
		},
	}
}

func flap() Actuator {
	return Actuator{
		Name:              "Flap Actuator",
		BoreDiameter:      0.05,
		RodDiameter:       0.02,
		StrokeLength:      0.3,
		BulkModulus:       1.5e9,
		MaxFlowRate:       2e-4,
		StaticFriction:    200,
		DynamicFriction:   500,
		InternalLeakage:   1e-13,
		ExternalLeakage:   1e-14,
		ReliefPressurePSI: 3500,
		SupplyPressurePSI: 3000,
		ExternalForce:     -500,
	}
}

func dcCircuit(name, curve string, delay time.Duration, autoReset bool) *Aircraft {
	return &Aircraft{
		Name:             name,
		Description:      "28 V generator feeding a 400 W heater through a 10 A breaker",
		Dt:               10 * time.Millisecond,
		Duration:         4 * time.Second,
		OvercurrentLimit: DefaultOvercurrentLimit,
		Generators: []Generator{{
			Name: "DC Generator", Poles: 2, RatedPower: 5000, RatedVoltage: 28,
			RatedFrequency: 400, Efficiency: 0.95, InternalResistance: 0.001, Phases: 1,
			AutoStart: true, MechanicalPower: 3000,
		}},
		Buses:    []Bus{{Name: "DC Bus", Voltage: 28}},
		Breakers: []Breaker{{Name: "Heater CB", Rating: 10, Curve: curve, Delay: delay, AutoReset: autoReset, ResetDelay: time.Second}},
		Loads: []Consumer{{
			Name: "Heater", NominalVoltage: 28, NominalPower: 400, MinVoltage: 20, MaxVoltage: 32,
			Response: "linear", PowerFactor: 1, Powered: true,
		}},
		Wires: []Wire{
			{From: "DC Generator", To: "DC Bus"},
			{From: "DC Bus", To: "Heater CB"},
			{From: "Heater CB", To: "Heater", Resistance: ohms(0.01)},
		},
	}
}
