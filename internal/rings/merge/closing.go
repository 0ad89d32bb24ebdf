package merge

import (
	"fmt"

	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/debug"
	"github.com/banshee-data/growthrings/internal/rings/interp"
	"github.com/banshee-data/growthrings/internal/rings/similarity"
)

// CloseChains closes every chain holding at least ClosingThreshold*Nr but
// fewer than Nr nodes by bridging ExtB to ExtA along a chain visible across
// the whole gap. Attempts that would run into another chain are skipped.
func (s *State) CloseChains() error {
	for _, c := range append([]*chain.Chain(nil), s.chains...) {
		size := c.Size()
		if size >= c.Nr || float64(size) < s.cfg.ClosingThreshold*float64(c.Nr) {
			continue
		}
		support := s.CommonChainToBothBorders(c)
		if _, err := s.closeChain(c, support, nil); err != nil {
			return err
		}
	}
	return nil
}

// closeChain reports whether c was closed.
func (s *State) closeChain(c, support, support2 *chain.Chain) (bool, error) {
	from, to := c.ExtB, c.ExtA
	bridge := interp.Nodes(support, from, to, chain.EndpointB, c, support2)

	path := make([]*chain.Node, 0, len(bridge)+2)
	path = append(path, from)
	path = append(path, bridge...)
	path = append(path, to)
	if similarity.ExistChainOverlapping(s.chains, path, c, c, support, s.cfg.OverlapBandFraction) {
		tracef("pass %d: chain %d not closed, gap %d->%d overlaps another chain", s.pass, c.ID, from.Ray, to.Ray)
		return false, nil
	}

	if _, err := c.AddNodes(bridge); err != nil {
		return false, fmt.Errorf("close chain %d: %w", c.ID, err)
	}
	if err := s.registerNodes(c, bridge); err != nil {
		return false, fmt.Errorf("close chain %d: %w", c.ID, err)
	}
	s.closed++
	tracef("pass %d: closed chain %d with %d nodes, size %d/%d", s.pass, c.ID, len(bridge), c.Size(), c.Nr)
	s.observe(debug.CheckpointClosed, support, c)

	if s.cfg.CheckInvariants {
		if err := s.Validate(); err != nil {
			return false, fmt.Errorf("after closing %d: %w", c.ID, err)
		}
	}
	return true, nil
}
