package merge

import (
	"fmt"

	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/debug"
)

// Run drives support chains until a full lap over the live chains brings
// no merge. It fails with ErrNoConvergence past the selection ceiling.
func (s *State) Run() error {
	support := s.FindSupportChain(nil, nil, nil)
	for support != nil {
		s.selections++
		if s.selections > s.maxSelections {
			return fmt.Errorf("%w: %d selections, %d live chains", ErrNoConvergence, s.maxSelections, len(s.chains))
		}

		outward, inward := s.visibleChains(support)
		if s.cfg.Observer != nil {
			shown := append([]*chain.Chain{support}, inward...)
			s.observe(debug.CheckpointCandidates, append(shown, outward...)...)
		}

		if err := s.scan(support, &inward, chain.Inward); err != nil {
			return err
		}
		if err := s.scan(support, &outward, chain.Outward); err != nil {
			return err
		}

		support = s.FindSupportChain(support, outward, inward)
	}
	return nil
}

// scan tries to merge every chain of candidates, all lying at loc of
// support. After a merge the pointer stays on the grown chain so it can
// absorb further neighbours.
func (s *State) scan(support *chain.Chain, candidates *[]*chain.Chain, loc chain.Location) error {
	j := 0
	for j < len(*candidates) {
		chJ := (*candidates)[j]
		s.observe(debug.CheckpointSource, support, chJ)

		pool, err := s.nonIntersecting(*candidates, chJ)
		if err != nil {
			return err
		}
		chK, e, ok, err := s.findClosest(chJ, support, *candidates, pool, loc)
		if err != nil {
			return err
		}
		if !ok || chK == chJ {
			j = indexOf(*candidates, chJ) + 1
			continue
		}

		if err := s.mergePair(chJ, chK, e, support, candidates); err != nil {
			return err
		}
		j = indexOf(*candidates, chJ)
	}
	return nil
}

func (s *State) mergePair(chJ, chK *chain.Chain, e chain.Endpoint, support *chain.Chain, candidates *[]*chain.Chain) error {
	jID, kID := chJ.ID, chK.ID
	bridge, err := MergeTwoChains(chJ, chK, e, support, nil)
	if err != nil {
		return err
	}
	if err := s.UpdateChainList(chJ, chK, candidates, bridge); err != nil {
		return fmt.Errorf("merge %d into %d: %w", kID, jID, err)
	}
	s.merges++
	tracef("pass %d: chain %d absorbed %d at endpoint %s, %d bridge nodes, size %d/%d",
		s.pass, jID, kID, e, len(bridge), chJ.Size(), s.nr)
	s.observe(debug.CheckpointMerged, support, chJ)

	if s.cfg.CheckInvariants {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("after merging %d into %d: %w", kID, jID, err)
		}
	}
	return nil
}
