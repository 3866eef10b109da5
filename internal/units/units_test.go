package units

import (
	"math"
	"testing"
)

func TestCurrentFromPower(t *testing.T) {
	tests := []struct {
		name string
		p    Power
		v    Voltage
		want Current
	}{
		{"nominal", 280, 28, 10},
		{"zero voltage", 280, 0, 0},
		{"negative voltage", 280, -5, 0},
		{"no power", 0, 28, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentFromPower(tt.p, tt.v); got != tt.want {
				t.Errorf("CurrentFromPower(%v, %v) = %v, want %v", tt.p, tt.v, got, tt.want)
			}
		})
	}
}

func TestOhmsLaw(t *testing.T) {
	if got := OhmsLaw(10, 2); got != 5 {
		t.Errorf("expected 5 A, got %v", got)
	}
	if got := OhmsLaw(10, 0); got != 0 {
		t.Errorf("expected 0 A for zero resistance, got %v", got)
	}
	if got := Drop(5, 2); got != 10 {
		t.Errorf("expected 10 V drop, got %v", got)
	}
}

func TestPSIRoundTrip(t *testing.T) {
	p := PSI(3000)
	if math.Abs(p.PSI()-3000) > 1e-9 {
		t.Errorf("expected 3000 psi, got %f", p.PSI())
	}
	if math.Abs(float64(p)-20684271.88) > 1 {
		t.Errorf("unexpected pascal value %f", float64(p))
	}
}

func TestCircleArea(t *testing.T) {
	a := CircleArea(2)
	if math.Abs(float64(a)-math.Pi) > 1e-12 {
		t.Errorf("expected pi, got %f", float64(a))
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want Ratio
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{7, 1},
		{Ratio(math.NaN()), 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
