package merge

import (
	"fmt"

	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/interp"
)

// MergeTwoChains bridges endpoint e of chJ to the facing endpoint of chK
// with nodes shaped after support (and support2 when given), then moves
// every node of chK into chJ. It returns the bridging nodes. chK is left
// empty.
func MergeTwoChains(chJ, chK *chain.Chain, e chain.Endpoint, support, support2 *chain.Chain) ([]*chain.Node, error) {
	from := chJ.End(e)
	to := chK.End(e.Opposite())
	if from == nil || to == nil {
		return nil, fmt.Errorf("merge %d into %d: %w", chK.ID, chJ.ID, chain.ErrEmptyChain)
	}

	bridge := interp.Nodes(support, from, to, e, chJ, support2)
	if _, err := chJ.AddNodes(bridge); err != nil {
		return nil, fmt.Errorf("merge %d into %d: bridge: %w", chK.ID, chJ.ID, err)
	}
	moved := append([]*chain.Node(nil), chK.Nodes()...)
	chK.Release()
	if _, err := chJ.AddNodes(moved); err != nil {
		return nil, fmt.Errorf("merge %d into %d: move nodes: %w", chK.ID, chJ.ID, err)
	}
	return bridge, nil
}

// UpdateChainList commits a merge of chK into chJ: neighbour references to
// chK are redirected to chJ, chK's matrix row is folded into chJ's and
// removed, chK leaves the live list and candidates, ids above it shift down
// by one, and the bridging nodes are registered.
func (s *State) UpdateChainList(chJ, chK *chain.Chain, candidates *[]*chain.Chain, bridge []*chain.Node) error {
	if !s.isLive(chJ) {
		return fmt.Errorf("%w: %v", ErrUnknownChain, chJ)
	}
	if !s.isLive(chK) {
		return fmt.Errorf("%w: %v", ErrUnknownChain, chK)
	}

	for _, c := range s.chains {
		for _, e := range []chain.Endpoint{chain.EndpointA, chain.EndpointB} {
			for _, l := range []chain.Location{chain.Inward, chain.Outward} {
				if c.Neighbour(e, l) == chK.Handle {
					c.SetNeighbour(e, l, chJ.Handle)
				}
			}
		}
	}

	if err := s.m.Or(chJ.ID, chK.ID); err != nil {
		return err
	}
	if err := s.m.Delete(chK.ID); err != nil {
		return err
	}

	s.chains = remove(s.chains, chK)
	if candidates != nil {
		*candidates = remove(*candidates, chK)
	}
	delete(s.registry, chK.Handle)
	deleted := chK.ID
	s.byID = append(s.byID[:deleted], s.byID[deleted+1:]...)
	for id := deleted; id < len(s.byID); id++ {
		s.byID[id].SetID(id)
	}

	if err := s.registerNodes(chJ, bridge); err != nil {
		return err
	}
	return nil
}

func remove(chains []*chain.Chain, c *chain.Chain) []*chain.Chain {
	i := indexOf(chains, c)
	if i < 0 {
		return chains
	}
	return append(chains[:i], chains[i+1:]...)
}

// registerNodes adds freshly interpolated nodes of owner to the node
// collection, marks the matrix against every chain on their rays and points
// the endpoints right above and below each node at owner. owner's own
// references are recomputed last.
func (s *State) registerNodes(owner *chain.Chain, nodes []*chain.Node) error {
	for _, n := range nodes {
		if _, dup := s.nodes[n]; dup {
			return fmt.Errorf("%w: %v", ErrDuplicateNode, n)
		}
		s.nodes[n] = struct{}{}

		onRay := chain.NodesOnRay(s.chains, n.Ray)
		for _, other := range onRay {
			if err := s.m.Mark(owner.ID, other.ChainID); err != nil {
				return err
			}
		}

		i := indexOfNode(onRay, n)
		if i < 0 {
			return fmt.Errorf("%w: %v not held by chain %d", ErrInvariant, n, owner.ID)
		}
		if i < len(onRay)-1 {
			s.pointAt(onRay[i+1], chain.Inward, owner)
		}
		if i > 0 {
			s.pointAt(onRay[i-1], chain.Outward, owner)
		}
	}
	s.UpdateChainNeighbourhood([]*chain.Chain{owner})
	return nil
}

// pointAt sets the loc reference of the endpoint n belongs to, if n is an
// endpoint of its chain.
func (s *State) pointAt(n *chain.Node, loc chain.Location, target *chain.Chain) {
	c := s.byID[n.ChainID]
	switch n {
	case c.ExtA:
		c.SetNeighbour(chain.EndpointA, loc, target.Handle)
	case c.ExtB:
		c.SetNeighbour(chain.EndpointB, loc, target.Handle)
	}
}
