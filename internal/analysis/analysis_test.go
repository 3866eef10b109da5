package analysis

import (
	"math"
	"strings"
	"testing"
	"time"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestPowerSpectrumFindsRipple(t *testing.T) {
	const dt = 0.001
	series := make([]float64, 1024)
	for i := range series {
		series[i] = 28 + 0.5*math.Sin(2*math.Pi*125*float64(i)*dt)
	}

	freq, power, ok := PowerSpectrum(series, dt).Dominant()
	if !ok {
		t.Fatal("expected a dominant component")
	}
	if math.Abs(freq-125) > 1 {
		t.Errorf("expected ~125 Hz, got %.2f", freq)
	}
	if power <= 0 {
		t.Errorf("expected positive power, got %f", power)
	}
}

func TestPowerSpectrumFlatSeries(t *testing.T) {
	if _, _, ok := PowerSpectrum([]float64{5, 5, 5, 5, 5}, 0.01).Dominant(); ok {
		t.Error("constant series has no dominant component")
	}
	if s := PowerSpectrum([]float64{1}, 0.01); len(s.Power) != 0 {
		t.Error("single sample should give an empty spectrum")
	}
}

func TestPowerSpectrumBins(t *testing.T) {
	s := PowerSpectrum(make([]float64, 100), 0.01)
	if len(s.Freqs) != 64 {
		t.Fatalf("expected 100 samples padded to 128 giving 64 bins, got %d", len(s.Freqs))
	}
	if math.Abs(s.Freqs[1]-1/1.28) > 1e-12 {
		t.Errorf("unexpected bin spacing %f", s.Freqs[1])
	}
}

func TestDescribe(t *testing.T) {
	st := Describe([]float64{3, -4, math.NaN(), 1})
	if st.Min != -4 || st.Max != 3 || st.Final != 1 {
		t.Errorf("unexpected range: %+v", st)
	}
	if st.Samples != 3 || st.NonFinite != 1 {
		t.Errorf("expected 3 samples and 1 non-finite, got %+v", st)
	}
	if math.Abs(st.Mean-0) > 1e-12 {
		t.Errorf("expected mean 0, got %f", st.Mean)
	}
	if math.Abs(st.RMS-math.Sqrt(26.0/3)) > 1e-12 {
		t.Errorf("unexpected rms %f", st.RMS)
	}

	if empty := Describe(nil); empty.Samples != 0 {
		t.Error("expected empty stats")
	}
}

func TestSettlingTime(t *testing.T) {
	times := []time.Duration{0, ms(10), ms(20), ms(30), ms(40)}
	series := []float64{0, 0.5, 0.95, 0.99, 1.0}

	got, ok := SettlingTime(times, series, 0.02)
	if !ok || got != ms(30) {
		t.Errorf("expected 30ms, got %v (%v)", got, ok)
	}

	got, ok = SettlingTime(times, []float64{1, 1, 1, 1, 1}, 0.02)
	if !ok || got != 0 {
		t.Errorf("flat series settles at 0, got %v", got)
	}

	if _, ok := SettlingTime(times, series[:2], 0.02); ok {
		t.Error("mismatched lengths should fail")
	}
}

func TestCrossings(t *testing.T) {
	times := []time.Duration{0, ms(10), ms(20), ms(30), ms(40)}
	series := []float64{0, 20, 0, 10, 30}

	got := Crossings(times, series, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 crossings, got %v", got)
	}
	if got[0] != ms(5) {
		t.Errorf("expected first crossing at 5ms, got %v", got[0])
	}
	if got[1] != ms(30) {
		t.Errorf("expected second crossing at 30ms, got %v", got[1])
	}
}

func TestPhasePortrait(t *testing.T) {
	points := PhasePortrait([]float64{0, 1, math.Inf(1), 3}, []float64{0, -1, 2, 1, 9})
	if len(points) != 3 {
		t.Fatalf("expected 3 finite pairs, got %d", len(points))
	}

	art := PortraitToASCII(points, 20, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if !strings.ContainsRune(art, '•') || !strings.ContainsRune(art, '│') {
		t.Error("expected late marker and a zero axis")
	}
	if PortraitToASCII(nil, 20, 10) != "" {
		t.Error("expected empty plot without points")
	}
}
