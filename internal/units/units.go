// Package units defines the physical quantities used by the simulation.
//
// Every quantity is a distinct float64 type in SI units (rpm and Hz
// excepted), so passing a Voltage where a Current is expected fails to
// compile. Conversions that cross dimensions are spelled out as helpers:
//
//	i := units.CurrentFromPower(p, v)
//	drop := units.Drop(i, r)
//
// Time is not defined here; the simulation uses time.Duration.
package units

import "math"

type (
	Voltage         float64 // volts
	Current         float64 // amperes
	Power           float64 // watts
	Resistance      float64 // ohms
	AngularVelocity float64 // revolutions per minute
	Frequency       float64 // hertz
	Ratio           float64 // dimensionless, 0..1 unless noted

	Pressure     float64 // pascals
	Length       float64 // meters
	Area         float64 // square meters
	Volume       float64 // cubic meters
	VolumeRate   float64 // cubic meters per second
	Force        float64 // newtons
	Mass         float64 // kilograms
	Velocity     float64 // meters per second
	Acceleration float64 // meters per second squared
)

const pascalsPerPSI = 6894.757293168361

// PSI converts pounds per square inch to a Pressure.
func PSI(psi float64) Pressure { return Pressure(psi * pascalsPerPSI) }

// PSI reports the pressure in pounds per square inch.
func (p Pressure) PSI() float64 { return float64(p) / pascalsPerPSI }

// Millimeters converts a length in millimeters.
func Millimeters(mm float64) Length { return Length(mm / 1000) }

// CurrentFromPower returns P/V, or 0 when v is not positive.
func CurrentFromPower(p Power, v Voltage) Current {
	if v <= 0 {
		return 0
	}
	return Current(float64(p) / float64(v))
}

// Drop returns the voltage across r carrying i.
func Drop(i Current, r Resistance) Voltage {
	return Voltage(float64(i) * float64(r))
}

// OhmsLaw returns v/r, or 0 when r is not positive.
func OhmsLaw(v Voltage, r Resistance) Current {
	if r <= 0 {
		return 0
	}
	return Current(float64(v) / float64(r))
}

// CircleArea is the area of a circle of the given diameter.
func CircleArea(d Length) Area {
	r := float64(d) / 2
	return Area(math.Pi * r * r)
}

// Clamp01 limits r to [0, 1].
func Clamp01(r Ratio) Ratio {
	switch {
	case r < 0 || math.IsNaN(float64(r)):
		return 0
	case r > 1:
		return 1
	}
	return r
}
