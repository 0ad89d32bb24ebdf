package chain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrRayOutOfRange is returned when a node's ray is outside [0, Nr).
	ErrRayOutOfRange = errors.New("chain: ray out of range")
	// ErrRayOccupied is returned when a chain already holds a node on a ray.
	ErrRayOccupied = errors.New("chain: ray already occupied")
	// ErrEmptyChain is returned by operations that need at least one node.
	ErrEmptyChain = errors.New("chain: empty chain")
)

// Type distinguishes ordinary fragments from the disk border.
type Type int

const (
	Normal Type = iota
	Border
)

func (t Type) String() string {
	if t == Border {
		return "border"
	}
	return "normal"
}

// Endpoint names one end of a chain. A is the node right after the largest
// angular gap, B the node right before it.
type Endpoint int

const (
	EndpointA Endpoint = iota
	EndpointB
)

// Opposite returns the other endpoint.
func (e Endpoint) Opposite() Endpoint {
	if e == EndpointA {
		return EndpointB
	}
	return EndpointA
}

func (e Endpoint) String() string {
	if e == EndpointA {
		return "A"
	}
	return "B"
}

// Location is the radial side of a chain relative to a support chain.
type Location int

const (
	Inward Location = iota
	Outward
)

func (l Location) String() string {
	if l == Inward {
		return "inward"
	}
	return "outward"
}

// Handle is a stable chain identity used for neighbour references.
// Zero means no chain.
type Handle uint64

// Chain is a set of nodes, at most one per ray.
type Chain struct {
	ID     int
	Handle Handle
	Nr     int
	Type   Type
	Center Point

	ExtA, ExtB *Node

	// Nearest chain seen along the ray of each endpoint.
	AInward, AOutward Handle
	BInward, BOutward Handle

	nodes []*Node // sorted by ray
	rays  []*Node // indexed by ray
}

// New returns an empty chain.
func New(id, nr int, typ Type, center Point) *Chain {
	return &Chain{
		ID:     id,
		Nr:     nr,
		Type:   typ,
		Center: center,
		rays:   make([]*Node, nr),
	}
}

// Size is the node count.
func (c *Chain) Size() int {
	return len(c.nodes)
}

// Nodes returns the nodes sorted by ray. The slice must not be modified.
func (c *Chain) Nodes() []*Node {
	return c.nodes
}

// NodeAt returns the node on ray, or nil.
func (c *Chain) NodeAt(ray int) *Node {
	if ray < 0 || ray >= len(c.rays) {
		return nil
	}
	return c.rays[ray]
}

// HasRay reports whether the chain holds a node on ray.
func (c *Chain) HasRay(ray int) bool {
	return c.NodeAt(ray) != nil
}

// End returns the node at the given endpoint.
func (c *Chain) End(e Endpoint) *Node {
	if e == EndpointA {
		return c.ExtA
	}
	return c.ExtB
}

// SetID renumbers the chain and every node it owns.
func (c *Chain) SetID(id int) {
	c.ID = id
	for _, n := range c.nodes {
		n.ChainID = id
	}
}

// AddNodes takes ownership of nodes and reports whether either endpoint
// changed. Nothing is added when any node is rejected.
func (c *Chain) AddNodes(nodes []*Node) (bool, error) {
	seen := make(map[int]struct{}, len(nodes))
	for _, n := range nodes {
		if n.Ray < 0 || n.Ray >= c.Nr {
			return false, fmt.Errorf("%w: chain %d ray %d nr %d", ErrRayOutOfRange, c.ID, n.Ray, c.Nr)
		}
		if c.rays[n.Ray] != nil {
			return false, fmt.Errorf("%w: chain %d ray %d", ErrRayOccupied, c.ID, n.Ray)
		}
		if _, dup := seen[n.Ray]; dup {
			return false, fmt.Errorf("%w: chain %d ray %d listed twice", ErrRayOccupied, c.ID, n.Ray)
		}
		seen[n.Ray] = struct{}{}
	}
	if len(nodes) == 0 {
		return false, nil
	}

	for _, n := range nodes {
		n.ChainID = c.ID
		c.rays[n.Ray] = n
		c.nodes = append(c.nodes, n)
	}
	sort.Slice(c.nodes, func(i, j int) bool { return c.nodes[i].Ray < c.nodes[j].Ray })

	prevA, prevB := c.ExtA, c.ExtB
	c.findBorders()
	return prevA != c.ExtA || prevB != c.ExtB, nil
}

// Release drops every node without touching them. Used once another chain
// has taken ownership.
func (c *Chain) Release() {
	c.nodes = nil
	c.rays = make([]*Node, c.Nr)
	c.ExtA, c.ExtB = nil, nil
}

// findBorders places ExtA after the largest angular gap and ExtB before it.
// On ties the wrap-around gap wins, so a full chain runs from ray 0.
func (c *Chain) findBorders() {
	k := len(c.nodes)
	if k == 0 {
		c.ExtA, c.ExtB = nil, nil
		return
	}
	best := RaySteps(c.nodes[k-1].Ray, c.nodes[0].Ray, c.Nr)
	if best == 0 {
		best = c.Nr
	}
	bestIdx := k - 1
	for i := 0; i < k-1; i++ {
		if gap := c.nodes[i+1].Ray - c.nodes[i].Ray; gap > best {
			best = gap
			bestIdx = i
		}
	}
	c.ExtB = c.nodes[bestIdx]
	c.ExtA = c.nodes[(bestIdx+1)%k]
}

// Ordered returns the nodes walking forward from ExtA to ExtB.
func (c *Chain) Ordered() []*Node {
	k := len(c.nodes)
	if k == 0 {
		return nil
	}
	start := sort.Search(k, func(i int) bool { return c.nodes[i].Ray >= c.ExtA.Ray })
	out := make([]*Node, 0, k)
	out = append(out, c.nodes[start:]...)
	return append(out, c.nodes[:start]...)
}

// Covers reports whether ray lies inside the span walked from ExtA to ExtB.
func (c *Chain) Covers(ray int) bool {
	if c.ExtA == nil {
		return false
	}
	a, b := c.ExtA.Ray, c.ExtB.Ray
	if a <= b {
		return a <= ray && ray <= b
	}
	return ray >= a || ray <= b
}

// RadialAt returns the chain's radial distance on ray. Where the chain has
// no node, the nearest node by ray distance is used. Ties go to the lower ray.
func (c *Chain) RadialAt(ray int) float64 {
	if n := c.NodeAt(ray); n != nil {
		return n.Radial
	}
	var best *Node
	bestGap := c.Nr + 1
	for _, n := range c.nodes {
		if g := RayGap(n.Ray, ray, c.Nr); g < bestGap {
			best, bestGap = n, g
		}
	}
	if best == nil {
		return 0
	}
	return best.Radial
}

// Neighbour returns the reference stored for an endpoint and location.
func (c *Chain) Neighbour(e Endpoint, l Location) Handle {
	switch {
	case e == EndpointA && l == Inward:
		return c.AInward
	case e == EndpointA:
		return c.AOutward
	case l == Inward:
		return c.BInward
	default:
		return c.BOutward
	}
}

// SetNeighbour stores a reference for an endpoint and location.
func (c *Chain) SetNeighbour(e Endpoint, l Location, h Handle) {
	switch {
	case e == EndpointA && l == Inward:
		c.AInward = h
	case e == EndpointA:
		c.AOutward = h
	case l == Inward:
		c.BInward = h
	default:
		c.BOutward = h
	}
}

// ClearNeighbours drops all four references.
func (c *Chain) ClearNeighbours() {
	c.AInward, c.AOutward, c.BInward, c.BOutward = 0, 0, 0, 0
}

// Validate checks the internal consistency of the chain.
func (c *Chain) Validate() error {
	if len(c.nodes) > c.Nr {
		return fmt.Errorf("chain %d: size %d exceeds nr %d", c.ID, len(c.nodes), c.Nr)
	}
	count := 0
	for ray, n := range c.rays {
		if n == nil {
			continue
		}
		count++
		if n.Ray != ray {
			return fmt.Errorf("chain %d: node on ray %d indexed at %d", c.ID, n.Ray, ray)
		}
		if n.ChainID != c.ID {
			return fmt.Errorf("chain %d: node on ray %d owned by %d", c.ID, ray, n.ChainID)
		}
	}
	if count != len(c.nodes) {
		return fmt.Errorf("chain %d: %d indexed nodes, %d listed", c.ID, count, len(c.nodes))
	}
	if len(c.nodes) == 0 {
		return nil
	}
	a, b := c.ExtA, c.ExtB
	c.findBorders()
	if a != c.ExtA || b != c.ExtB {
		c.ExtA, c.ExtB = a, b
		return fmt.Errorf("chain %d: stale endpoints", c.ID)
	}
	return nil
}

func (c *Chain) String() string {
	if c.ExtA == nil {
		return fmt.Sprintf("chain(id=%d empty)", c.ID)
	}
	return fmt.Sprintf("chain(id=%d size=%d A=%d B=%d %s)", c.ID, c.Size(), c.ExtA.Ray, c.ExtB.Ray, c.Type)
}
