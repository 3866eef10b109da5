package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the one-sided magnitude spectrum of a uniformly sampled
// series.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean, zero-pads to a power of two and
// transforms with go-dsp. dt is the sample spacing in seconds.
func PowerSpectrum(series []float64, dt float64) Spectrum {
	if len(series) < 2 || dt <= 0 {
		return Spectrum{}
	}

	n := 1
	for n < len(series) {
		n *= 2
	}
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	padded := make([]float64, n)
	for i, v := range series {
		padded[i] = v - mean
	}

	bins := fft.FFTReal(padded)
	s := Spectrum{
		Freqs: make([]float64, n/2),
		Power: make([]float64, n/2),
	}
	for i := range s.Power {
		s.Freqs[i] = float64(i) / (float64(n) * dt)
		s.Power[i] = cmplx.Abs(bins[i])
	}
	return s
}

// noiseFloor is the per-sample magnitude below which a bin is rounding
// residue of a flat series.
const noiseFloor = 1e-9

// Dominant returns the strongest non-DC component above the noise floor.
func (s Spectrum) Dominant() (freq, power float64, ok bool) {
	idx := 0
	power = noiseFloor * float64(2*len(s.Power))
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			power = s.Power[i]
			idx = i
		}
	}
	if idx == 0 {
		return 0, 0, false
	}
	return s.Freqs[idx], power, true
}
