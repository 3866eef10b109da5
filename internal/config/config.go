// Package config describes an aircraft declaratively: which components
// exist, how they are wired, and how the run is stepped.
package config

import (
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt               = time.Second / 60
	DefaultDuration         = 10 * time.Second
	DefaultOvercurrentLimit = 20.0
)

type Aircraft struct {
	Name             string        `yaml:"name" validate:"required"`
	Description      string        `yaml:"description,omitempty"`
	Dt               time.Duration `yaml:"dt" validate:"gt=0"`
	Duration         time.Duration `yaml:"duration" validate:"gt=0"`
	OvercurrentLimit float64       `yaml:"overcurrent_limit" validate:"gte=0"`
	Clock            Clock         `yaml:"clock"`
	Generators       []Generator   `yaml:"generators,omitempty" validate:"dive"`
	Buses            []Bus         `yaml:"buses,omitempty" validate:"dive"`
	Breakers         []Breaker     `yaml:"breakers,omitempty" validate:"dive"`
	Loads            []Consumer    `yaml:"loads,omitempty" validate:"dive"`
	Wires            []Wire        `yaml:"wires,omitempty" validate:"dive"`
	Actuators        []Actuator    `yaml:"actuators,omitempty" validate:"dive"`
	Script           []Event       `yaml:"script,omitempty" validate:"dive"`
}

type Clock struct {
	Mode string        `yaml:"mode,omitempty" validate:"omitempty,oneof=utc et chr UTC ET CHR"`
	UTC  time.Duration `yaml:"utc,omitempty"`
}

// Generator is a rotating power source. With AutoStart set it is turned
// on StartAfter into the run and driven with MechanicalPower at
// DriveSpeed (rpm); a zero DriveSpeed means rated speed.
type Generator struct {
	Name               string        `yaml:"name" validate:"required"`
	Poles              float64       `yaml:"poles" validate:"gt=0"`
	RatedPower         float64       `yaml:"rated_power" validate:"gt=0"`
	RatedVoltage       float64       `yaml:"rated_voltage" validate:"gt=0"`
	RatedFrequency     float64       `yaml:"rated_frequency" validate:"gt=0"`
	Efficiency         float64       `yaml:"efficiency" validate:"gte=0,lte=1"`
	InternalResistance float64       `yaml:"internal_resistance" validate:"gte=0"`
	SpinUpTime         time.Duration `yaml:"spin_up_time" validate:"gte=0"`
	Phases             int           `yaml:"phases" validate:"gte=1"`
	AutoStart          bool          `yaml:"auto_start,omitempty"`
	StartAfter         time.Duration `yaml:"start_after,omitempty" validate:"gte=0"`
	MechanicalPower    float64       `yaml:"mechanical_power,omitempty" validate:"gte=0"`
	DriveSpeed         float64       `yaml:"drive_speed,omitempty" validate:"gte=0"`
}

type Bus struct {
	Name    string  `yaml:"name" validate:"required"`
	Voltage float64 `yaml:"voltage" validate:"gte=0"`
}

type Breaker struct {
	Name       string        `yaml:"name" validate:"required"`
	Rating     float64       `yaml:"rating" validate:"gt=0"`
	Curve      string        `yaml:"curve" validate:"oneof=instantaneous short_delay long_delay inverse_time"`
	Delay      time.Duration `yaml:"delay,omitempty" validate:"gte=0"`
	AutoReset  bool          `yaml:"auto_reset,omitempty"`
	ResetDelay time.Duration `yaml:"reset_delay,omitempty" validate:"gte=0"`
}

// Consumer is a DC load. LoadFactor defaults to 1 when omitted.
type Consumer struct {
	Name           string   `yaml:"name" validate:"required"`
	NominalVoltage float64  `yaml:"nominal_voltage" validate:"gt=0"`
	NominalPower   float64  `yaml:"nominal_power" validate:"gte=0"`
	MinVoltage     float64  `yaml:"min_voltage" validate:"gte=0"`
	MaxVoltage     float64  `yaml:"max_voltage" validate:"gtefield=MinVoltage"`
	Response       string   `yaml:"response" validate:"oneof=binary linear regulated proportional"`
	PowerFactor    float64  `yaml:"power_factor" validate:"gte=0,lte=1"`
	LoadFactor     *float64 `yaml:"load_factor,omitempty" validate:"omitempty,gte=0,lte=1"`
	Powered        bool     `yaml:"powered"`
}

// Wire connects two components. A nil Resistance is a direct connection.
type Wire struct {
	From       string   `yaml:"from" validate:"required"`
	To         string   `yaml:"to" validate:"required"`
	Resistance *float64 `yaml:"resistance,omitempty" validate:"omitempty,gte=0"`
}

// Actuator describes a hydraulic actuator in SI units, except pressures
// given in psi.
type Actuator struct {
	Name              string  `yaml:"name" validate:"required"`
	BoreDiameter      float64 `yaml:"bore_diameter" validate:"gt=0"`
	RodDiameter       float64 `yaml:"rod_diameter" validate:"gte=0,ltfield=BoreDiameter"`
	StrokeLength      float64 `yaml:"stroke_length" validate:"gt=0"`
	InitialPosition   float64 `yaml:"initial_position,omitempty" validate:"gte=0,ltefield=StrokeLength"`
	BulkModulus       float64 `yaml:"bulk_modulus" validate:"gt=0"`
	MaxFlowRate       float64 `yaml:"max_flow_rate" validate:"gte=0"`
	StaticFriction    float64 `yaml:"static_friction" validate:"gte=0"`
	DynamicFriction   float64 `yaml:"dynamic_friction" validate:"gte=0"`
	InternalLeakage   float64 `yaml:"internal_leakage,omitempty" validate:"gte=0"`
	ExternalLeakage   float64 `yaml:"external_leakage,omitempty" validate:"gte=0"`
	DeadVolume        float64 `yaml:"dead_volume,omitempty" validate:"gte=0"`
	ReliefPressurePSI float64 `yaml:"relief_pressure_psi,omitempty" validate:"gte=0"`
	SupplyPressurePSI float64 `yaml:"supply_pressure_psi,omitempty" validate:"gte=0"`
	ValveOpening      float64 `yaml:"valve_opening,omitempty" validate:"gte=0,lte=1"`
	ExternalForce     float64 `yaml:"external_force,omitempty"`
}

// Event is one scripted command applied once the run reaches At.
type Event struct {
	At     time.Duration `yaml:"at" validate:"gte=0"`
	Op     string        `yaml:"op" validate:"required"`
	Target string        `yaml:"target,omitempty"`
	Value  float64       `yaml:"value,omitempty"`
}

// Default is the E170 wiring.
func Default() *Aircraft {
	return E170()
}

func Load(path string) (*Aircraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the stepping defaults. Wiring is not defaulted.
func Parse(data []byte) (*Aircraft, error) {
	cfg := &Aircraft{
		Dt:               DefaultDt,
		Duration:         DefaultDuration,
		OvercurrentLimit: DefaultOvercurrentLimit,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Aircraft) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (a *Aircraft) Clone() *Aircraft {
	c := *a
	c.Generators = slices.Clone(a.Generators)
	c.Buses = slices.Clone(a.Buses)
	c.Breakers = slices.Clone(a.Breakers)
	c.Loads = slices.Clone(a.Loads)
	for i, l := range c.Loads {
		if l.LoadFactor != nil {
			v := *l.LoadFactor
			c.Loads[i].LoadFactor = &v
		}
	}
	c.Wires = slices.Clone(a.Wires)
	for i, w := range c.Wires {
		if w.Resistance != nil {
			v := *w.Resistance
			c.Wires[i].Resistance = &v
		}
	}
	c.Actuators = slices.Clone(a.Actuators)
	c.Script = slices.Clone(a.Script)
	return &c
}

// Names lists every named component in declaration order.
func (a *Aircraft) Names() []string {
	names := a.ElectricalNames()
	for _, act := range a.Actuators {
		names = append(names, act.Name)
	}
	return names
}

// ElectricalNames lists the network components, the valid wire ends.
func (a *Aircraft) ElectricalNames() []string {
	var names []string
	for _, g := range a.Generators {
		names = append(names, g.Name)
	}
	for _, b := range a.Buses {
		names = append(names, b.Name)
	}
	for _, b := range a.Breakers {
		names = append(names, b.Name)
	}
	for _, l := range a.Loads {
		names = append(names, l.Name)
	}
	return names
}

// Steps is the number of fixed ticks in one run.
func (a *Aircraft) Steps() int {
	if a.Dt <= 0 {
		return 0
	}
	return int(a.Duration / a.Dt)
}
