package analysis

import (
	"math"
	"time"
)

type Stats struct {
	Min, Max  float64
	Mean, RMS float64
	Final     float64
	Samples   int
	NonFinite int
}

// Describe skips NaN and Inf values, counting them in NonFinite.
func Describe(series []float64) Stats {
	st := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum, sq := 0.0, 0.0
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			st.NonFinite++
			continue
		}
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
		sum += v
		sq += v * v
		st.Final = v
		st.Samples++
	}
	if st.Samples == 0 {
		return Stats{NonFinite: st.NonFinite}
	}
	st.Mean = sum / float64(st.Samples)
	st.RMS = math.Sqrt(sq / float64(st.Samples))
	return st
}

// SettlingTime is the time after which the series stays within tolerance
// (a fraction of the final value's magnitude, or absolute when the final
// value is zero) of its final value.
func SettlingTime(times []time.Duration, series []float64, tolerance float64) (time.Duration, bool) {
	if len(series) == 0 || len(series) != len(times) {
		return 0, false
	}
	final := series[len(series)-1]
	band := math.Abs(final) * tolerance
	if final == 0 {
		band = tolerance
	}

	for i := len(series) - 1; i >= 0; i-- {
		if math.Abs(series[i]-final) > band {
			if i == len(series)-1 {
				return 0, false
			}
			return times[i+1], true
		}
	}
	return times[0], true
}

// Crossings returns the interpolated times at which the series rises
// through threshold.
func Crossings(times []time.Duration, series []float64, threshold float64) []time.Duration {
	var out []time.Duration
	for i := 1; i < len(series) && i < len(times); i++ {
		prev, curr := series[i-1], series[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			span := times[i] - times[i-1]
			out = append(out, times[i-1]+time.Duration(frac*float64(span)))
		}
	}
	return out
}
