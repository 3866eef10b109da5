package electrical

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/aerotwin/internal/units"
)

// NoResistance is the wire resistance used by ConnectDirect. A small
// positive value keeps edge currents finite.
const NoResistance units.Resistance = 0.001

// Handle identifies one component within a Network. Handles are issued by
// Add and stay valid for the lifetime of the network.
type Handle int

type node struct {
	name      string
	component Component
	out       []Handle
	voltage   units.Voltage
}

type edgeKey struct {
	from, to Handle
}

type edge struct {
	resistance units.Resistance
	current    units.Current
}

// Edge is a read-only view of one connection.
type Edge struct {
	From       Handle
	To         Handle
	Resistance units.Resistance
	Current    units.Current
}

// Overcurrent reports an edge whose current magnitude exceeded a limit.
type Overcurrent struct {
	From    Handle
	To      Handle
	Current units.Current
}

// NodeInfo is a read-only view of one node.
type NodeInfo struct {
	Handle Handle
	Name   string
	Kind   Kind
}

// Network owns a directed acyclic graph of components.
type Network struct {
	nodes     []node
	edges     map[edgeKey]*edge
	edgeOrder []edgeKey
	order     []Handle
}

func NewNetwork() *Network {
	return &Network{
		edges: make(map[edgeKey]*edge),
	}
}

// Add registers c under name and returns its handle.
func (n *Network) Add(name string, c Component) Handle {
	h := Handle(len(n.nodes))
	n.nodes = append(n.nodes, node{name: name, component: c})
	n.order = append(n.order, h)
	return h
}

// Connect adds a directed edge with the given wire resistance, or
// overwrites the resistance of an existing one and clears its cached
// current. An edge that would close a cycle is rejected and the network
// is left as it was.
func (n *Network) Connect(from, to Handle, resistance units.Resistance) error {
	if !n.valid(from) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}
	if !n.valid(to) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}
	if resistance < 0 || math.IsNaN(float64(resistance)) {
		return fmt.Errorf("%w: %v", ErrNegativeResistance, resistance)
	}

	key := edgeKey{from, to}
	if e, ok := n.edges[key]; ok {
		e.resistance = resistance
		e.current = 0
		return nil
	}

	n.nodes[from].out = append(n.nodes[from].out, to)
	order, ok := n.sort()
	if !ok {
		out := n.nodes[from].out
		n.nodes[from].out = out[:len(out)-1]
		return fmt.Errorf("%w: %s -> %s", ErrCycle, n.nodes[from].name, n.nodes[to].name)
	}

	n.edges[key] = &edge{resistance: resistance}
	n.edgeOrder = append(n.edgeOrder, key)
	n.order = order
	return nil
}

// ConnectDirect connects two nodes through NoResistance.
func (n *Network) ConnectDirect(from, to Handle) error {
	return n.Connect(from, to, NoResistance)
}

// sort orders nodes with Kahn's algorithm. It reports false when the
// graph contains a cycle.
func (n *Network) sort() ([]Handle, bool) {
	inDegree := make([]int, len(n.nodes))
	for _, nd := range n.nodes {
		for _, to := range nd.out {
			inDegree[to]++
		}
	}

	queue := make([]Handle, 0, len(n.nodes))
	for h := range n.nodes {
		if inDegree[h] == 0 {
			queue = append(queue, Handle(h))
		}
	}

	sorted := make([]Handle, 0, len(n.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, to := range n.nodes[current].out {
			inDegree[to]--
			if inDegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	return sorted, len(sorted) == len(n.nodes)
}

// Update advances every component by dt and propagates the results. A
// non-positive dt leaves every component, input and edge current as it was.
func (n *Network) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	for _, h := range n.order {
		nd := &n.nodes[h]
		nd.component.Update(dt)
		nd.voltage = nd.component.OutputVoltage()
	}

	for _, key := range n.edgeOrder {
		e := n.edges[key]
		diff := n.nodes[key.from].voltage - n.nodes[key.to].voltage
		e.current = units.OhmsLaw(diff, e.resistance)
	}

	for _, h := range n.order {
		nd := &n.nodes[h]
		v := nd.component.OutputVoltage()
		p := nd.component.OutputPower()
		for _, to := range nd.out {
			downstream := n.nodes[to].component
			downstream.SetInputVoltage(v)
			downstream.SetInputPower(p)
			downstream.SetInputCurrent(n.edges[edgeKey{h, to}].current)
		}
	}

	for i := len(n.order) - 1; i >= 0; i-- {
		nd := &n.nodes[n.order[i]]
		if len(nd.out) == 0 {
			continue
		}
		var drawn units.Current
		for _, to := range nd.out {
			drawn += n.nodes[to].component.InputCurrent()
		}
		nd.component.SetInputCurrent(drawn)
	}
}

// Current returns the cached current of the edge from -> to.
func (n *Network) Current(from, to Handle) (units.Current, bool) {
	e, ok := n.edges[edgeKey{from, to}]
	if !ok {
		return 0, false
	}
	return e.current, true
}

// CheckOvercurrent lists every edge whose current exceeds limit, in
// connection order. Current is signed in the edge direction, so reverse
// flow is never reported. It does not change any state.
func (n *Network) CheckOvercurrent(limit units.Current) []Overcurrent {
	var over []Overcurrent
	for _, key := range n.edgeOrder {
		i := n.edges[key].current
		if i > limit {
			over = append(over, Overcurrent{From: key.from, To: key.to, Current: i})
		}
	}
	return over
}

// Component returns the component bound to h.
func (n *Network) Component(h Handle) (Component, bool) {
	if !n.valid(h) {
		return nil, false
	}
	return n.nodes[h].component, true
}

// PowerSource returns the generator bound to h, or false when h names
// another kind of component.
func (n *Network) PowerSource(h Handle) (*PowerSource, bool) {
	c, ok := n.Component(h)
	if !ok || c.Kind() != KindPowerSource {
		return nil, false
	}
	return c.(*PowerSource), true
}

// Bus returns the bus bound to h.
func (n *Network) Bus(h Handle) (*Bus, bool) {
	c, ok := n.Component(h)
	if !ok || c.Kind() != KindBus {
		return nil, false
	}
	return c.(*Bus), true
}

// Breaker returns the protective device bound to h.
func (n *Network) Breaker(h Handle) (*ProtectiveDevice, bool) {
	c, ok := n.Component(h)
	if !ok || c.Kind() != KindProtectiveDevice {
		return nil, false
	}
	return c.(*ProtectiveDevice), true
}

// Load returns the load bound to h.
func (n *Network) Load(h Handle) (*Load, bool) {
	c, ok := n.Component(h)
	if !ok || c.Kind() != KindLoad {
		return nil, false
	}
	return c.(*Load), true
}

// Name returns the name h was registered under.
func (n *Network) Name(h Handle) string {
	if !n.valid(h) {
		return ""
	}
	return n.nodes[h].name
}

// Lookup finds the first node registered under name.
func (n *Network) Lookup(name string) (Handle, bool) {
	for h, nd := range n.nodes {
		if nd.name == name {
			return Handle(h), true
		}
	}
	return 0, false
}

// Nodes lists nodes in registration order.
func (n *Network) Nodes() []NodeInfo {
	infos := make([]NodeInfo, len(n.nodes))
	for h, nd := range n.nodes {
		infos[h] = NodeInfo{Handle: Handle(h), Name: nd.name, Kind: nd.component.Kind()}
	}
	return infos
}

// Edges lists edges in connection order.
func (n *Network) Edges() []Edge {
	edges := make([]Edge, len(n.edgeOrder))
	for i, key := range n.edgeOrder {
		e := n.edges[key]
		edges[i] = Edge{From: key.from, To: key.to, Resistance: e.resistance, Current: e.current}
	}
	return edges
}

// Order returns the topological order used by Update.
func (n *Network) Order() []Handle {
	order := make([]Handle, len(n.order))
	copy(order, n.order)
	return order
}

func (n *Network) valid(h Handle) bool {
	return h >= 0 && int(h) < len(n.nodes)
}
