package merge

import (
	"fmt"
	"sort"

	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/debug"
	"github.com/banshee-data/growthrings/internal/rings/similarity"
)

// State is the mutable aggregate of one merge pass. It owns the live
// chains, their nodes and the intersection matrix; every structural edit
// goes through it.
type State struct {
	cfg    Config
	params Params
	th     similarity.Thresholds
	pass   int
	center chain.Point
	nr     int

	chains   []*chain.Chain // live chains in support order
	byID     []*chain.Chain // dense id -> chain
	registry map[chain.Handle]*chain.Chain
	nodes    map[*chain.Node]struct{}
	m        *IntersectionMatrix

	// support chain cursor
	nextIndex       int
	sizeAtSelection int
	sinceLastChange int
	selections      int
	maxSelections   int

	merges int
	closed int
	step   int
}

// NewState takes ownership of chains, whose ids must be exactly
// 0..len(chains)-1. Handles are reassigned and neighbour references
// recomputed.
func NewState(chains []*chain.Chain, center chain.Point, nr int, params Params, cfg Config, pass int) (*State, error) {
	s := &State{
		cfg:           cfg,
		params:        params,
		th:            params.thresholds(cfg),
		pass:          pass,
		center:        center,
		nr:            nr,
		byID:          make([]*chain.Chain, len(chains)),
		registry:      make(map[chain.Handle]*chain.Chain, len(chains)),
		nodes:         make(map[*chain.Node]struct{}),
		maxSelections: cfg.maxIterations(len(chains)),
	}
	for _, c := range chains {
		if c.ID < 0 || c.ID >= len(chains) || s.byID[c.ID] != nil {
			return nil, fmt.Errorf("%w: chain id %d is not dense", ErrMatrixIndex, c.ID)
		}
		if c.Nr != nr {
			return nil, fmt.Errorf("%w: chain %d has nr %d, want %d", ErrInvariant, c.ID, c.Nr, nr)
		}
		s.byID[c.ID] = c
	}
	for id, c := range s.byID {
		c.Handle = chain.Handle(id + 1)
		c.ClearNeighbours()
		s.registry[c.Handle] = c
		for _, n := range c.Nodes() {
			if _, dup := s.nodes[n]; dup {
				return nil, fmt.Errorf("%w: %v", ErrDuplicateNode, n)
			}
			s.nodes[n] = struct{}{}
		}
	}

	m, err := ComputeIntersectionMatrix(chains, nr)
	if err != nil {
		return nil, err
	}
	s.m = m

	s.chains = append([]*chain.Chain(nil), chains...)
	sortBySize(s.chains)
	s.UpdateChainNeighbourhood(s.chains)
	return s, nil
}

// sortBySize orders chains by descending size, then ascending id.
func sortBySize(chains []*chain.Chain) {
	sort.SliceStable(chains, func(i, j int) bool {
		if chains[i].Size() != chains[j].Size() {
			return chains[i].Size() > chains[j].Size()
		}
		return chains[i].ID < chains[j].ID
	})
}

// Chains returns the live chains ordered by id.
func (s *State) Chains() []*chain.Chain {
	return append([]*chain.Chain(nil), s.byID...)
}

// Matrix exposes the intersection matrix.
func (s *State) Matrix() *IntersectionMatrix {
	return s.m
}

// Resolve returns the live chain behind a handle, or nil.
func (s *State) Resolve(h chain.Handle) *chain.Chain {
	if h == 0 {
		return nil
	}
	return s.registry[h]
}

// Merges is the number of merges performed so far.
func (s *State) Merges() int { return s.merges }

// Closed is the number of chains closed so far.
func (s *State) Closed() int { return s.closed }

func (s *State) isLive(c *chain.Chain) bool {
	return c != nil && s.registry[c.Handle] == c
}

func indexOf(chains []*chain.Chain, c *chain.Chain) int {
	for i, x := range chains {
		if x == c {
			return i
		}
	}
	return -1
}

// FindSupportChain advances the round-robin cursor and returns the next
// support chain, or nil once a full lap passed without a merge. previous is
// nil on the first call; outward and inward are the chains last visible from
// previous.
func (s *State) FindSupportChain(previous *chain.Chain, outward, inward []*chain.Chain) *chain.Chain {
	if len(s.chains) == 0 {
		return nil
	}

	if previous == nil {
		s.nextIndex = 0
	} else if s.sizeAtSelection > len(s.chains) {
		s.sinceLastChange = 0
		sortBySize(s.chains)
		largest := previous
		for _, c := range append(append([]*chain.Chain(nil), outward...), inward...) {
			if s.isLive(c) && c.Size() > largest.Size() {
				largest = c
			}
		}
		if largest == previous {
			s.nextIndex = s.after(previous)
		} else {
			s.nextIndex = indexOf(s.chains, largest)
		}
	} else {
		s.nextIndex = s.after(previous)
		s.sinceLastChange++
	}

	if s.sinceLastChange >= len(s.chains) {
		return nil
	}
	s.sizeAtSelection = len(s.chains)
	return s.chains[s.nextIndex]
}

func (s *State) after(c *chain.Chain) int {
	i := indexOf(s.chains, c)
	if i < 0 {
		return 0
	}
	return (i + 1) % len(s.chains)
}

// UpdateChainNeighbourhood recomputes the four neighbour references of
// each given chain from the nodes sharing its endpoint rays.
func (s *State) UpdateChainNeighbourhood(chains []*chain.Chain) {
	for _, c := range chains {
		for _, e := range []chain.Endpoint{chain.EndpointA, chain.EndpointB} {
			in, out := s.visibleAt(c, e)
			c.SetNeighbour(e, chain.Inward, in)
			c.SetNeighbour(e, chain.Outward, out)
		}
	}
}

// visibleAt returns the chains owning the nodes right below and above
// endpoint e of c on its ray.
func (s *State) visibleAt(c *chain.Chain, e chain.Endpoint) (in, out chain.Handle) {
	end := c.End(e)
	if end == nil {
		return 0, 0
	}
	onRay := chain.NodesOnRay(s.chains, end.Ray)
	i := indexOfNode(onRay, end)
	if i < 0 {
		return 0, 0
	}
	if i > 0 {
		in = s.handleOf(onRay[i-1])
	}
	if i < len(onRay)-1 {
		out = s.handleOf(onRay[i+1])
	}
	return in, out
}

func indexOfNode(nodes []*chain.Node, n *chain.Node) int {
	for i, x := range nodes {
		if x == n {
			return i
		}
	}
	return -1
}

func (s *State) handleOf(n *chain.Node) chain.Handle {
	if n.ChainID < 0 || n.ChainID >= len(s.byID) {
		return 0
	}
	return s.byID[n.ChainID].Handle
}

// CommonChainToBothBorders finds a chain holding a node on every ray c
// lacks and on both of c's endpoint rays. Among several, the one whose node
// on ExtA's ray lies closest to ExtA wins, then the lower id.
func (s *State) CommonChainToBothBorders(c *chain.Chain) *chain.Chain {
	if c.ExtA == nil {
		return nil
	}
	rays := []int{c.ExtA.Ray, c.ExtB.Ray}
	for ray := 0; ray < s.nr; ray++ {
		if !c.HasRay(ray) {
			rays = append(rays, ray)
		}
	}

	var best *chain.Chain
	bestDist := 0.0
	for _, cand := range s.byID {
		if cand == c || !coversAll(cand, rays) {
			continue
		}
		d := chain.EuclideanDistance(cand.NodeAt(c.ExtA.Ray), c.ExtA)
		if best == nil || d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

func coversAll(c *chain.Chain, rays []int) bool {
	for _, r := range rays {
		if !c.HasRay(r) {
			return false
		}
	}
	return true
}

// visibleChains splits the chains that see support from one of their
// endpoints into those lying outward and inward of it. A chain seen from
// both sides is kept only as inward.
func (s *State) visibleChains(support *chain.Chain) (outward, inward []*chain.Chain) {
	for _, c := range s.chains {
		if c == support {
			continue
		}
		if c.AInward == support.Handle || c.BInward == support.Handle {
			outward = append(outward, c)
		}
		if c.AOutward == support.Handle || c.BOutward == support.Handle {
			inward = append(inward, c)
		}
	}
	kept := outward[:0]
	for _, c := range outward {
		if indexOf(inward, c) < 0 {
			kept = append(kept, c)
		}
	}
	return kept, inward
}

func (s *State) observe(name string, highlight ...*chain.Chain) {
	if s.cfg.Observer == nil {
		return
	}
	s.step++
	s.cfg.Observer.Observe(debug.Checkpoint{
		Pass:      s.pass,
		Step:      s.step,
		Name:      name,
		Highlight: highlight,
		Chains:    s.chains,
		Center:    s.center,
	})
}
