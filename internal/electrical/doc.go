// Package electrical models power distribution as a directed graph of
// physical components advanced once per tick.
//
// The package defines:
//
//   - [Component]: the capability every element implements
//   - [PowerSource]: rotating generator with spin-up and voltage droop
//   - [Bus]: lossless redistribution node
//   - [ProtectiveDevice]: circuit breaker with selectable trip curves
//   - [Load]: DC load with a selectable voltage-response law
//   - [Network]: owns the graph and runs per-tick propagation
//
// # Tick
//
// [Network.Update] updates every component in topological order, derives
// each edge current from this tick's voltages, pushes outputs downstream,
// then feeds the current drawn by consumers back to their feeders.
// Feedback is seen by a feeder's next Update, so quantities that depend on
// downstream demand lag one tick and upstream quantities never do.
//
// # Example
//
//	net := electrical.NewNetwork()
//	gen, _ := electrical.NewPowerSource(params)
//	g := net.Add("gen", gen)
//	b := net.Add("bus", electrical.NewBus(28))
//	if err := net.ConnectDirect(g, b); err != nil {
//	    return err
//	}
//	net.Update(16 * time.Millisecond)
//
// # Thread Safety
//
// Networks and components are NOT safe for concurrent use. A tick is
// the unit of atomicity; callers serialize access.
package electrical
