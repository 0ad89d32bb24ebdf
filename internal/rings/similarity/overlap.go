package similarity

import (
	"math"

	"github.com/banshee-data/growthrings/internal/rings/chain"
)

// ExistChainOverlapping reports whether a chain other than chJ, chK and the
// support has a node inside the virtual band around any node of path. The
// band half-width is bandFraction of the node's distance to the support
// (to the center when there is no support), never less than one pixel.
func ExistChainOverlapping(chains []*chain.Chain, path []*chain.Node, chJ, chK, support *chain.Chain, bandFraction float64) bool {
	for _, n := range path {
		half := math.Max(bandFraction*math.Abs(n.Radial-supportRadial(support, n.Ray)), 1)
		for _, c := range chains {
			if c == chJ || c == chK || c == support {
				continue
			}
			if m := c.NodeAt(n.Ray); m != nil && math.Abs(m.Radial-n.Radial) <= half {
				return true
			}
		}
	}
	return false
}
