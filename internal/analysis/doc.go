// Package analysis characterizes recorded channel series.
//
//   - [Describe]: range, mean, RMS and final value of a series
//   - [SettlingTime]: when a series last enters a band around its final value
//   - [Crossings]: upward threshold crossings
//   - [PowerSpectrum]: ripple and oscillation content
//   - [PhasePortrait]: one channel plotted against another
//
// A breaker current, bus voltage or actuator position series from a
// sim.Result is analysed the same way:
//
//	pos, _ := result.Series("actuator.Flap Actuator.position")
//	settle, ok := analysis.SettlingTime(times, pos, 0.02)
package analysis
