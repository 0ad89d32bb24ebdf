package merge

import (
	"sort"

	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/debug"
)

type scored struct {
	c    *chain.Chain
	dist float64
}

// chainsInNeighbourhood keeps the chains of pool within the angular
// neighbourhood of endpoint e of chJ whose facing endpoint sees support on
// the same side as chJ. The result is ordered by angular distance, then
// Euclidean endpoint distance, then id.
func (s *State) chainsInNeighbourhood(chJ, support *chain.Chain, pool []*chain.Chain, e chain.Endpoint, loc chain.Location) []*chain.Chain {
	// chJ lies at loc relative to support, so a matching chain sees support
	// from the opposite side at its facing endpoint.
	facing := e.Opposite()
	seen := chain.Outward
	if loc == chain.Outward {
		seen = chain.Inward
	}

	var found []scored
	for _, c := range pool {
		if c == chJ {
			continue
		}
		d := chain.AngularDistance(chJ, c, e)
		if d > s.params.NeighbourhoodSize {
			continue
		}
		if c.Neighbour(facing, seen) != support.Handle {
			continue
		}
		found = append(found, scored{c: c, dist: d})
	}

	euclid := make(map[*chain.Chain]float64, len(found))
	for _, f := range found {
		euclid[f.c] = chain.MinEndpointDistance(f.c, chJ)
	}
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if euclid[a.c] != euclid[b.c] {
			return euclid[a.c] < euclid[b.c]
		}
		return a.c.ID < b.c.ID
	})

	out := make([]*chain.Chain, len(found))
	for i, f := range found {
		out[i] = f.c
	}
	return out
}

// closestChain returns the first chain in the neighbourhood of endpoint e of
// chJ that passes the goodness test. Chains sharing a ray with it that also
// pass and lie radially closer take its place.
func (s *State) closestChain(chJ, support *chain.Chain, pool []*chain.Chain, e chain.Endpoint, loc chain.Location) *chain.Chain {
	near := s.chainsInNeighbourhood(chJ, support, pool, e, loc)
	for _, cand := range near {
		ok, dist := s.ConnectivityGoodness(chJ, cand, support, e)
		if !ok {
			continue
		}
		return s.closestAmongIntersecting(chJ, support, e, cand, dist, near)
	}
	return nil
}

func (s *State) closestAmongIntersecting(chJ, support *chain.Chain, e chain.Endpoint, cand *chain.Chain, dist float64, near []*chain.Chain) *chain.Chain {
	set := []scored{{c: cand, dist: dist}}
	for _, c := range near {
		if c == cand || !s.m.Intersects(cand.ID, c.ID) {
			continue
		}
		if ok, d := s.ConnectivityGoodness(chJ, c, support, e); ok {
			set = append(set, scored{c: c, dist: d})
		}
	}
	sort.SliceStable(set, func(i, j int) bool { return set[i].dist < set[j].dist })
	return set[0].c
}

// closestChainLogic finds the partner of endpoint e of chJ and confirms it
// by searching back from the partner's facing endpoint. The match is
// dropped unless that reverse search lands on chJ.
func (s *State) closestChainLogic(chJ, support *chain.Chain, candidates, pool []*chain.Chain, e chain.Endpoint, loc chain.Location) (*chain.Chain, error) {
	chK := s.closestChain(chJ, support, pool, e, loc)
	if chK == nil {
		return nil, nil
	}

	poolK, err := s.nonIntersecting(candidates, chK)
	if err != nil {
		return nil, err
	}
	if back := s.closestChain(chK, support, poolK, e.Opposite(), loc); back != chJ {
		tracef("pass %d: chain %d -> %d rejected, reverse search found %v", s.pass, chJ.ID, chK.ID, back)
		return nil, nil
	}
	if chK.Size()+chJ.Size() > s.nr {
		return nil, nil
	}
	return chK, nil
}

// nonIntersecting filters candidates down to chains sharing no ray with c.
func (s *State) nonIntersecting(candidates []*chain.Chain, c *chain.Chain) ([]*chain.Chain, error) {
	row, err := s.m.Row(c.ID)
	if err != nil {
		return nil, err
	}
	hit := make(map[int]bool, len(row))
	for _, id := range row {
		hit[id] = true
	}
	var out []*chain.Chain
	for _, x := range candidates {
		if !hit[x.ID] {
			out = append(out, x)
		}
	}
	return out, nil
}

// findClosest searches both endpoints of chJ and picks one.
func (s *State) findClosest(chJ, support *chain.Chain, candidates, pool []*chain.Chain, loc chain.Location) (*chain.Chain, chain.Endpoint, bool, error) {
	chKB, err := s.closestChainLogic(chJ, support, candidates, pool, chain.EndpointB, loc)
	if err != nil {
		return nil, 0, false, err
	}
	s.observe(debug.CheckpointClosestB, support, chJ, chKB)

	chKA, err := s.closestChainLogic(chJ, support, candidates, pool, chain.EndpointA, loc)
	if err != nil {
		return nil, 0, false, err
	}
	s.observe(debug.CheckpointClosestA, support, chJ, chKA)

	chK, e, ok := selectClosestChain(chJ, chKA, chKB)
	s.observe(debug.CheckpointSelected, support, chJ, chK)
	return chK, e, ok, nil
}

// selectClosestChain picks between the partners found at endpoint A and
// endpoint B of c by the Euclidean gap each merge would bridge. The shorter
// gap wins on purpose, so the merge bridging less empty space goes first;
// ties go to A.
func selectClosestChain(c, a, b *chain.Chain) (*chain.Chain, chain.Endpoint, bool) {
	switch {
	case a == nil && b == nil:
		return nil, 0, false
	case b == nil:
		return a, chain.EndpointA, true
	case a == nil:
		return b, chain.EndpointB, true
	}
	dA := chain.EuclideanDistance(c.ExtA, a.ExtB)
	dB := chain.EuclideanDistance(c.ExtB, b.ExtA)
	if dB < dA {
		return b, chain.EndpointB, true
	}
	return a, chain.EndpointA, true
}
