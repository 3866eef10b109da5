// Package hydraulic models a single-rod linear actuator driven through a
// metering valve.
//
// The actuator is not part of an electrical network. Its owner sets the
// valve opening, supply pressure and external load, then calls Update
// once per tick; state advances by explicit Euler integration.
//
// Simplifications carried by the model:
//
//   - the moving mass is the constant EffectiveMass
//   - supply pressure is imposed on the cap end while the valve is open,
//     rather than solved through the valve orifice
//   - only positive valve openings are honored; rod-side flow is wired but
//     unreachable until openings below zero are accepted
//   - chamber pressure rises with net inflow, Δp = K·q·dt/V; the literal
//     Δp = −K·q·dt/V would drain a filling chamber and the piston would
//     never leave rest
//   - internal leakage leaves the cap end and enters the rod end, so it is
//     subtracted from one chamber and added to the other
package hydraulic

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/san-kum/aerotwin/internal/units"
)

// ErrInvalidParams indicates malformed actuator parameters.
var ErrInvalidParams = errors.New("hydraulic: invalid actuator parameters")

const (
	// EffectiveMass stands in for piston, rod and fluid mass.
	EffectiveMass units.Mass = 1

	// stictionVelocity is the speed below which the piston is treated as
	// stationary and static friction applies.
	stictionVelocity = 1e-6

	// DefaultDeadVolume keeps a chamber volume positive at an end stop.
	DefaultDeadVolume units.Volume = 1e-6
)

// Params describes an actuator. Leakage coefficients are in m³/s per Pa,
// DynamicFriction in N·s/m. A zero ReliefPressure disables the relief
// limit; a zero DeadVolume selects DefaultDeadVolume.
type Params struct {
	BoreDiameter    units.Length     `validate:"gt=0"`
	RodDiameter     units.Length     `validate:"gte=0,ltfield=BoreDiameter"`
	StrokeLength    units.Length     `validate:"gt=0"`
	InitialPosition units.Length     `validate:"gte=0,ltefield=StrokeLength"`
	BulkModulus     units.Pressure   `validate:"gt=0"`
	MaxFlowRate     units.VolumeRate `validate:"gte=0"`
	StaticFriction  units.Force      `validate:"gte=0"`
	DynamicFriction float64          `validate:"gte=0"`
	InternalLeakage float64          `validate:"gte=0"`
	ExternalLeakage float64          `validate:"gte=0"`
	DeadVolume      units.Volume     `validate:"gte=0"`
	ReliefPressure  units.Pressure   `validate:"gte=0"`
}

var validate = validator.New()

// Actuator is a continuous-state model of a single-rod cylinder with a
// cap-end and a rod-end chamber. It is not safe for concurrent use.
type Actuator struct {
	params  Params
	capArea units.Area
	rodArea units.Area

	position     units.Length
	velocity     units.Velocity
	acceleration units.Acceleration

	capPressure units.Pressure
	rodPressure units.Pressure
	capVolume   units.Volume
	rodVolume   units.Volume

	valveOpening   units.Ratio
	supplyPressure units.Pressure
	externalForce  units.Force
}

func NewActuator(params Params) (*Actuator, error) {
	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if params.DeadVolume == 0 {
		params.DeadVolume = DefaultDeadVolume
	}

	capArea := units.CircleArea(params.BoreDiameter)
	a := &Actuator{
		params:   params,
		capArea:  capArea,
		rodArea:  capArea - units.CircleArea(params.RodDiameter),
		position: params.InitialPosition,
	}
	a.resize()
	return a, nil
}

// SetValveOpening commands the valve, clamped to [0, 1].
func (a *Actuator) SetValveOpening(opening units.Ratio) {
	a.valveOpening = units.Clamp01(opening)
}

// SetSupplyPressure sets the pressure imposed on the cap end while the
// valve is open.
func (a *Actuator) SetSupplyPressure(p units.Pressure) {
	a.supplyPressure = units.Pressure(math.Max(0, float64(p)))
}

// SetExternalForce sets the load acting on the rod; positive extends.
func (a *Actuator) SetExternalForce(f units.Force) { a.externalForce = f }

// Update advances the actuator by dt. A non-positive dt changes nothing.
func (a *Actuator) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	h := dt.Seconds()
	opening := float64(a.valveOpening)

	if opening > 0 {
		a.capPressure = a.supplyPressure
	}

	var capFlow, rodFlow float64
	switch {
	case opening > 0:
		capFlow = opening * float64(a.params.MaxFlowRate)
	case opening < 0:
		rodFlow = -opening * float64(a.params.MaxFlowRate)
	}

	internal := a.params.InternalLeakage * float64(a.capPressure-a.rodPressure)
	capNet := capFlow - internal - a.params.ExternalLeakage*float64(a.capPressure)
	rodNet := rodFlow + internal - a.params.ExternalLeakage*float64(a.rodPressure)

	a.capPressure = a.limit(a.capPressure + a.compress(capNet, h, a.capVolume))
	a.rodPressure = a.limit(a.rodPressure + a.compress(rodNet, h, a.rodVolume))

	hydraulic := float64(a.capPressure)*float64(a.capArea) - float64(a.rodPressure)*float64(a.rodArea)
	driving := hydraulic + float64(a.externalForce)

	var friction float64
	if v := float64(a.velocity); math.Abs(v) < stictionVelocity {
		fs := float64(a.params.StaticFriction)
		friction = math.Max(-fs, math.Min(fs, driving))
	} else {
		friction = a.params.DynamicFriction * v
	}

	acc := (driving - friction) / float64(EffectiveMass)
	vel := float64(a.velocity) + acc*h
	pos := float64(a.position) + vel*h + 0.5*acc*h*h

	stroke := float64(a.params.StrokeLength)
	switch {
	case pos <= 0:
		pos = 0
		if vel < 0 {
			vel, acc = 0, 0
		}
	case pos >= stroke:
		pos = stroke
		if vel > 0 {
			vel, acc = 0, 0
		}
	}

	a.acceleration = units.Acceleration(acc)
	a.velocity = units.Velocity(vel)
	a.position = units.Length(pos)
	a.resize()
}

// compress is the pressure change of a chamber of volume v receiving the
// net flow q for h seconds.
func (a *Actuator) compress(q, h float64, v units.Volume) units.Pressure {
	return units.Pressure(float64(a.params.BulkModulus) * q * h / float64(v))
}

// limit applies the pressure floor and the optional relief setting.
func (a *Actuator) limit(p units.Pressure) units.Pressure {
	if p < 0 || math.IsNaN(float64(p)) {
		return 0
	}
	if relief := a.params.ReliefPressure; relief > 0 && p > relief {
		return relief
	}
	return p
}

func (a *Actuator) resize() {
	dead := float64(a.params.DeadVolume)
	a.capVolume = units.Volume(float64(a.capArea)*float64(a.position) + dead)
	a.rodVolume = units.Volume(float64(a.rodArea)*float64(a.params.StrokeLength-a.position) + dead)
}

func (a *Actuator) Position() units.Length           { return a.position }
func (a *Actuator) Velocity() units.Velocity         { return a.velocity }
func (a *Actuator) Acceleration() units.Acceleration { return a.acceleration }
func (a *Actuator) Pressure() units.Pressure         { return a.capPressure }
func (a *Actuator) RodPressure() units.Pressure      { return a.rodPressure }
func (a *Actuator) ValveOpening() units.Ratio        { return a.valveOpening }
func (a *Actuator) StrokeLength() units.Length       { return a.params.StrokeLength }

// Volumes reports the cap-end and rod-end chamber volumes.
func (a *Actuator) Volumes() (capEnd, rodEnd units.Volume) {
	return a.capVolume, a.rodVolume
}

// ExtensionRatio is position over stroke length.
func (a *Actuator) ExtensionRatio() units.Ratio {
	return units.Ratio(float64(a.position) / float64(a.params.StrokeLength))
}
