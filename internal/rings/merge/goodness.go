package merge

import (
	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/similarity"
)

// ConnectivityGoodness decides whether candidate may be joined to endpoint
// e of chJ with support as the shape guide. The distance ranks admissible
// candidates; it is -1 when a structural check fails.
func (s *State) ConnectivityGoodness(chJ, candidate, support *chain.Chain, e chain.Endpoint) (bool, float64) {
	if chJ.Size()+candidate.Size() > chJ.Nr {
		return false, -1
	}
	if !supportCoversGap(support, chJ, candidate, e) {
		return false, -1
	}
	return similarity.Conditions(s.th, s.chains, support, chJ, candidate, e)
}

// supportCoversGap reports whether support holds a node on every ray walked
// from chJ's endpoint to the facing endpoint of candidate.
func supportCoversGap(support, chJ, candidate *chain.Chain, e chain.Endpoint) bool {
	domain := chain.InterpolationDomain(e, chJ.End(e), candidate.End(e.Opposite()), chJ.Nr)
	for _, ray := range domain {
		if !support.HasRay(ray) {
			return false
		}
	}
	return true
}
