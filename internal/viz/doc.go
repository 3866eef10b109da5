// Package viz is a terminal cockpit for a running aircraft, built on
// Bubble Tea.
//
// The viewer never touches the simulation directly. It reads the latest
// aircraft.Snapshot from a broadcast.Store and files operator commands
// under broadcast.Commands for the simulation loop to apply.
//
// # Key Bindings
//
//	Tab/Down  - Select next component
//	Up        - Select previous component
//	Enter     - Primary action on the selection
//	+/-       - Raise or lower load factor or valve opening
//	e/E       - Start or reset ET
//	c/C       - Toggle or reset CHR
//	m         - Cycle clock mode
//	t         - Cycle themes
//	?         - Show help
//	q         - Quit
package viz
