// Package interp fills angular gaps between chain endpoints with nodes that
// follow the shape of one or two support chains.
package interp

import (
	"math"

	"github.com/banshee-data/growthrings/internal/rings/chain"
)

// Nodes bridges from (an endpoint of target) to to, walking the rays
// between them in the direction given by e. The rays of from and to are not
// included. New nodes carry target's id but are not added to it.
//
// With one support chain each new node keeps an offset to the support that
// is linearly interpolated between the endpoint offsets. With a second
// support the relative position inside the band between both supports is
// interpolated instead. Without support the radius itself is interpolated.
func Nodes(support *chain.Chain, from, to *chain.Node, e chain.Endpoint, target, support2 *chain.Chain) []*chain.Node {
	domain := chain.InterpolationDomain(e, from, to, target.Nr)
	if len(domain) <= 1 {
		return nil
	}
	rays := domain[:len(domain)-1]
	total := float64(len(domain))

	out := make([]*chain.Node, 0, len(rays))
	for i, ray := range rays {
		t := float64(i+1) / total
		r := radialAt(support, support2, from, to, ray, t)
		out = append(out, chain.NewNode(target.Center, ray, target.Nr, math.Max(r, 0), target.ID))
	}
	return out
}

func radialAt(support, support2 *chain.Chain, from, to *chain.Node, ray int, t float64) float64 {
	switch {
	case support == nil || support.Size() == 0:
		return lerp(from.Radial, to.Radial, t)
	case support2 == nil || support2.Size() == 0:
		offFrom := from.Radial - support.RadialAt(from.Ray)
		offTo := to.Radial - support.RadialAt(to.Ray)
		return support.RadialAt(ray) + lerp(offFrom, offTo, t)
	default:
		fracFrom := bandFraction(support, support2, from)
		fracTo := bandFraction(support, support2, to)
		lo, hi := support.RadialAt(ray), support2.RadialAt(ray)
		return lo + lerp(fracFrom, fracTo, t)*(hi-lo)
	}
}

// bandFraction locates n between the two supports on its own ray: 0 on the
// first support, 1 on the second.
func bandFraction(s1, s2 *chain.Chain, n *chain.Node) float64 {
	lo, hi := s1.RadialAt(n.Ray), s2.RadialAt(n.Ray)
	if hi == lo {
		return 0
	}
	return (n.Radial - lo) / (hi - lo)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
