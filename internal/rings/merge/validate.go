package merge

import (
	"fmt"

	"github.com/banshee-data/growthrings/internal/rings/chain"
)

// Validate checks every structural invariant of the state: dense ids, a
// symmetric matrix sized to the live chains with a unit diagonal and a mark
// for every pair sharing a ray, single ownership of nodes, consistent
// endpoints, no chain above Nr nodes and no dangling neighbour reference.
func (s *State) Validate() error {
	n := len(s.chains)
	if len(s.byID) != n || len(s.registry) != n {
		return fmt.Errorf("%w: %d live chains, %d ids, %d handles", ErrInvariant, n, len(s.byID), len(s.registry))
	}
	if err := s.m.Validate(n); err != nil {
		return err
	}

	owner := make(map[*chain.Node]int, len(s.nodes))
	for id, c := range s.byID {
		if c.ID != id {
			return fmt.Errorf("%w: chain at slot %d has id %d", ErrInvariant, id, c.ID)
		}
		if chain.ByID(s.chains, id) != c {
			return fmt.Errorf("%w: chain %d missing from the live list", ErrInvariant, id)
		}
		if s.registry[c.Handle] != c {
			return fmt.Errorf("%w: chain %d not registered under its handle", ErrInvariant, id)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
		for _, nd := range c.Nodes() {
			if prev, dup := owner[nd]; dup {
				return fmt.Errorf("%w: %v held by chains %d and %d", ErrInvariant, nd, prev, id)
			}
			if _, ok := s.nodes[nd]; !ok {
				return fmt.Errorf("%w: %v not registered", ErrInvariant, nd)
			}
			owner[nd] = id
		}
		for _, h := range []chain.Handle{c.AInward, c.AOutward, c.BInward, c.BOutward} {
			if h != 0 && s.registry[h] == nil {
				return fmt.Errorf("%w: chain %d refers to dead handle %d", ErrInvariant, id, h)
			}
		}
	}
	if len(owner) != len(s.nodes) {
		return fmt.Errorf("%w: %d registered nodes, %d owned", ErrInvariant, len(s.nodes), len(owner))
	}

	for ray := 0; ray < s.nr; ray++ {
		onRay := chain.NodesOnRay(s.chains, ray)
		for a := 0; a < len(onRay); a++ {
			for b := a + 1; b < len(onRay); b++ {
				i, j := onRay[a].ChainID, onRay[b].ChainID
				if !s.m.Intersects(i, j) {
					return fmt.Errorf("%w: chains %d and %d share ray %d but M is 0", ErrInvariant, i, j, ray)
				}
			}
		}
	}
	return nil
}
