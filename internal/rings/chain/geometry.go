package chain

import (
	"math"
	"sort"
)

// Copy returns a deep copy of c with fresh nodes. Neighbour references are
// carried over verbatim.
func Copy(c *Chain) *Chain {
	out := New(c.ID, c.Nr, c.Type, c.Center)
	out.Handle = c.Handle
	out.AInward, out.AOutward = c.AInward, c.AOutward
	out.BInward, out.BOutward = c.BInward, c.BOutward
	out.nodes = make([]*Node, len(c.nodes))
	for i, n := range c.nodes {
		cp := *n
		out.nodes[i] = &cp
		out.rays[cp.Ray] = &cp
	}
	out.findBorders()
	return out
}

// CopyChains deep-copies every chain in order.
func CopyChains(chains []*Chain) []*Chain {
	out := make([]*Chain, len(chains))
	for i, c := range chains {
		out[i] = Copy(c)
	}
	return out
}

// ByID finds a chain by id.
func ByID(chains []*Chain, id int) *Chain {
	for _, c := range chains {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AngularDistance is the gap in degrees between endpoint e of j and the
// facing endpoint of k. For B it is walked forward from j.ExtB to k.ExtA,
// for A backward from j.ExtA to k.ExtB.
func AngularDistance(j, k *Chain, e Endpoint) float64 {
	var steps int
	if e == EndpointB {
		steps = RaySteps(j.ExtB.Ray, k.ExtA.Ray, j.Nr)
	} else {
		steps = RaySteps(k.ExtB.Ray, j.ExtA.Ray, j.Nr)
	}
	return float64(steps) * 360 / float64(j.Nr)
}

// MinEndpointDistance is the smallest Euclidean distance between any
// endpoint of a and any endpoint of b.
func MinEndpointDistance(a, b *Chain) float64 {
	best := math.Inf(1)
	for _, p := range []*Node{a.ExtA, a.ExtB} {
		for _, q := range []*Node{b.ExtA, b.ExtB} {
			if d := EuclideanDistance(p, q); d < best {
				best = d
			}
		}
	}
	return best
}

// InterpolationDomain lists the rays walked from ray from to ray to,
// excluding from and including to. Endpoint B walks forward, A backward.
// Equal rays yield a full turn.
func InterpolationDomain(e Endpoint, from, to *Node, nr int) []int {
	step := 1
	if e == EndpointA {
		step = -1
	}
	n := RaySteps(from.Ray, to.Ray, nr)
	if e == EndpointA {
		n = RaySteps(to.Ray, from.Ray, nr)
	}
	if n == 0 {
		n = nr
	}
	out := make([]int, 0, n)
	ray := from.Ray
	for i := 0; i < n; i++ {
		ray = WrapRay(ray+step, nr)
		out = append(out, ray)
	}
	return out
}

// NodesOnRay collects the nodes every chain holds on ray, ordered by
// distance from the center. Ties are broken by chain id.
func NodesOnRay(chains []*Chain, ray int) []*Node {
	var out []*Node
	for _, c := range chains {
		if n := c.NodeAt(ray); n != nil {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Radial != out[j].Radial {
			return out[i].Radial < out[j].Radial
		}
		return out[i].ChainID < out[j].ChainID
	})
	return out
}
