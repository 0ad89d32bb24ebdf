// Package similarity decides whether two chains look like pieces of the same
// ring, judged against a support chain they both follow.
package similarity

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/interp"
)

// Thresholds groups the knobs of one merge pass that the test reads.
type Thresholds struct {
	RadialTolerance      float64 // relative
	DistributionSize     float64 // standard deviations
	RegularDerivative    float64 // allowed ratio of bridge slope to chain slope
	DerivativeFromCenter bool
	NeighbourhoodSize    float64 // degrees sampled next to each endpoint
	CheckOverlapping     bool
	OverlapBandFraction  float64
}

// Result carries the individual verdicts behind Conditions.
type Result struct {
	Passed          bool
	Distance        float64 // |mean_j - mean_k| of the distances to the support
	RadialTolerance bool
	Distribution    bool
	Derivative      bool
	Overlapping     bool
}

// Conditions tests whether dst can be joined to endpoint e of src using
// support as the shape guide. The returned distance ranks candidates.
func Conditions(th Thresholds, chains []*chain.Chain, support, src, dst *chain.Chain, e chain.Endpoint) (bool, float64) {
	res := Evaluate(th, chains, support, src, dst, e)
	return res.Passed, res.Distance
}

// Evaluate is Conditions with every partial verdict exposed.
func Evaluate(th Thresholds, chains []*chain.Chain, support, src, dst *chain.Chain, e chain.Endpoint) Result {
	srcEnd := src.End(e)
	dstEnd := dst.End(e.Opposite())

	// Both windows are in walking order: src ends on its endpoint, dst
	// starts on its own.
	srcWin := tail(src, e, th.NeighbourhoodSize)
	dstWin := reversed(tail(dst, e.Opposite(), th.NeighbourhoodSize))

	distJ := distancesTo(support, srcWin)
	distK := distancesTo(support, dstWin)

	var res Result
	dJ := distJ[len(distJ)-1]
	dK := distK[0]
	res.RadialTolerance = dK >= dJ*(1-th.RadialTolerance) && dK <= dJ*(1+th.RadialTolerance)

	meanJ, stdJ := meanStd(distJ)
	meanK, stdK := meanStd(distK)
	res.Distance = math.Abs(meanJ - meanK)
	lo := math.Max(meanJ-th.DistributionSize*stdJ, meanK-th.DistributionSize*stdK)
	hi := math.Min(meanJ+th.DistributionSize*stdJ, meanK+th.DistributionSize*stdK)
	res.Distribution = lo <= hi

	bridge := interp.Nodes(support, srcEnd, dstEnd, e, src, nil)
	res.Derivative = regularDerivative(th, support, src.Nr, srcWin, bridge, dstWin)

	if th.CheckOverlapping {
		path := make([]*chain.Node, 0, len(bridge)+2)
		path = append(path, srcEnd)
		path = append(path, bridge...)
		path = append(path, dstEnd)
		res.Overlapping = ExistChainOverlapping(chains, path, src, dst, support, th.OverlapBandFraction)
	}

	res.Passed = (res.RadialTolerance || res.Distribution) && res.Derivative && !res.Overlapping
	return res
}

// tail returns the nodes of c within size degrees of endpoint e, in the
// order met when walking out of the chain through e.
func tail(c *chain.Chain, e chain.Endpoint, size float64) []*chain.Node {
	ordered := c.Ordered()
	w := int(size * float64(c.Nr) / 360)
	if e == chain.EndpointB {
		i := len(ordered) - 1
		for i > 0 && chain.RaySteps(ordered[i-1].Ray, c.ExtB.Ray, c.Nr) <= w {
			i--
		}
		return ordered[i:]
	}
	i := 0
	for i < len(ordered)-1 && chain.RaySteps(c.ExtA.Ray, ordered[i+1].Ray, c.Nr) <= w {
		i++
	}
	return reversed(ordered[:i+1])
}

func reversed(nodes []*chain.Node) []*chain.Node {
	out := make([]*chain.Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}

func distancesTo(support *chain.Chain, nodes []*chain.Node) []float64 {
	out := make([]float64, len(nodes))
	for i, n := range nodes {
		out[i] = math.Abs(n.Radial - supportRadial(support, n.Ray))
	}
	return out
}

func supportRadial(support *chain.Chain, ray int) float64 {
	if support == nil || support.Size() == 0 {
		return 0
	}
	return support.RadialAt(ray)
}

func meanStd(x []float64) (float64, float64) {
	if len(x) < 2 {
		return x[0], 0
	}
	return stat.PopMeanStdDev(x, nil)
}

// regularDerivative rejects bridges that bend harder than the chains they
// connect. Slopes are per ray, with a floor of one pixel per ray.
func regularDerivative(th Thresholds, support *chain.Chain, nr int, srcWin, bridge, dstWin []*chain.Node) bool {
	value := func(n *chain.Node) float64 {
		if th.DerivativeFromCenter {
			return n.Radial
		}
		return n.Radial - supportRadial(support, n.Ray)
	}

	path := make([]*chain.Node, 0, len(bridge)+2)
	path = append(path, srcWin[len(srcWin)-1])
	path = append(path, bridge...)
	path = append(path, dstWin[0])

	limit := math.Max(math.Max(maxSlope(srcWin, nr, value), maxSlope(dstWin, nr, value)), 1)
	return maxSlope(path, nr, value) <= th.RegularDerivative*limit
}

func maxSlope(nodes []*chain.Node, nr int, value func(*chain.Node) float64) float64 {
	if len(nodes) < 2 {
		return 0
	}
	slopes := make([]float64, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		steps := math.Max(float64(chain.RayGap(nodes[i-1].Ray, nodes[i].Ray, nr)), 1)
		slopes[i-1] = math.Abs(value(nodes[i])-value(nodes[i-1])) / steps
	}
	return floats.Max(slopes)
}
