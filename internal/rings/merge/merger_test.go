package merge

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/growthrings/internal/fsutil"
	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/debug"
	"github.com/banshee-data/growthrings/internal/rings/synth"
	"github.com/banshee-data/growthrings/internal/testutil"
	"github.com/banshee-data/growthrings/internal/timeutil"
)

// fragmentedRing is a complete support ring with a second ring broken into
// three arcs by 4-ray gaps.
func fragmentedRing(t *testing.T) []*chain.Chain {
	t.Helper()
	return []*chain.Chain{
		testutil.Ring(t, 0, testNr, 100),
		testutil.Arc(t, 1, testNr, 0, 90, 150),
		testutil.Arc(t, 2, testNr, 95, 200, 150),
		testutil.Arc(t, 3, testNr, 205, 355, 150),
	}
}

func checkedConfig() Config {
	cfg := DefaultConfig()
	cfg.CheckInvariants = true
	return cfg
}

func runMerger(t *testing.T, cfg Config, chains []*chain.Chain) Result {
	t.Helper()
	m, err := NewMerger(cfg)
	require.NoError(t, err)
	res, err := m.Run(chains, testutil.Center, testNr)
	require.NoError(t, err)
	return res
}

func TestMergeTwoChains_UpdateChainList(t *testing.T) {
	support := testutil.Ring(t, 0, testNr, 100)
	b := testutil.Arc(t, 1, testNr, 95, 200, 150)
	a := testutil.Arc(t, 2, testNr, 0, 90, 150)
	st := newTestState(t, checkedConfig(), 0, support, b, a)

	bridge, err := MergeTwoChains(a, b, chain.EndpointB, support, nil)
	require.NoError(t, err)
	require.Len(t, bridge, 4)
	for i, n := range bridge {
		assert.Equal(t, 91+i, n.Ray)
		assert.InDelta(t, 150, n.Radial, 1e-9)
	}
	assert.Equal(t, 0, b.Size())

	require.NoError(t, st.UpdateChainList(a, b, nil, bridge))
	require.NoError(t, st.Validate())

	// b held id 1, so a moves down into it.
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, []*chain.Chain{support, a}, st.Chains())
	assert.Equal(t, 201, a.Size())
	assert.Equal(t, 0, a.ExtA.Ray)
	assert.Equal(t, 200, a.ExtB.Ray)
	for _, n := range a.Nodes() {
		assert.Equal(t, a.ID, n.ChainID)
	}
	assert.Nil(t, st.Resolve(b.Handle))
	assert.True(t, st.Matrix().Intersects(0, 1))
	assert.Equal(t, 2, st.Matrix().Size())

	err = st.UpdateChainList(a, b, nil, nil)
	testutil.AssertErrorIs(t, err, ErrUnknownChain)
}

func TestCloseChains(t *testing.T) {
	support := testutil.Ring(t, 0, testNr, 100)
	c := testutil.Arc(t, 1, testNr, 0, 339, 150)
	short := testutil.Arc(t, 2, testNr, 100, 200, 200)
	st := newTestState(t, checkedConfig(), ScheduleLength-1, support, c, short)

	require.NoError(t, st.CloseChains())
	assert.Equal(t, 1, st.Closed())
	assert.Equal(t, testNr, c.Size())
	assert.Equal(t, 101, short.Size())
	for ray := 340; ray < testNr; ray++ {
		assert.InDelta(t, 150, c.NodeAt(ray).Radial, 1e-9, "ray %d", ray)
	}
	require.NoError(t, st.Validate())

	// A second run finds nothing left to close.
	require.NoError(t, st.CloseChains())
	assert.Equal(t, 1, st.Closed())
	assert.Equal(t, testNr, c.Size())
}

func TestCloseChains_BlockedByOverlap(t *testing.T) {
	support := testutil.Ring(t, 0, testNr, 100)
	c := testutil.Arc(t, 1, testNr, 0, 339, 150)
	intruder := testutil.Arc(t, 2, testNr, 345, 350, 151)
	st := newTestState(t, checkedConfig(), ScheduleLength-1, support, c, intruder)

	require.NoError(t, st.CloseChains())
	assert.Equal(t, 0, st.Closed())
	assert.Equal(t, 340, c.Size())
}

func TestCloseChains_BelowThreshold(t *testing.T) {
	support := testutil.Ring(t, 0, testNr, 100)
	c := testutil.Arc(t, 1, testNr, 0, 300, 150)
	st := newTestState(t, checkedConfig(), ScheduleLength-1, support, c)

	require.NoError(t, st.CloseChains())
	assert.Equal(t, 0, st.Closed())
	assert.Equal(t, 301, c.Size())
}

func TestMerger_CompletesFragmentedRing(t *testing.T) {
	res := runMerger(t, checkedConfig(), fragmentedRing(t))

	require.Len(t, res.Chains, 2)
	for i, c := range res.Chains {
		assert.Equal(t, i, c.ID)
		assert.Equal(t, testNr, c.Size(), "chain %d", i)
	}
	ring := res.Chains[1]
	for ray := 0; ray < testNr; ray++ {
		assert.InDelta(t, 150, ring.NodeAt(ray).Radial, 1e-6, "ray %d", ray)
	}

	require.Len(t, res.Passes, ScheduleLength)
	assert.Equal(t, 2, res.Passes[0].Merges)
	assert.Equal(t, 2, res.Passes[0].ChainsAfter)
	last := res.Passes[ScheduleLength-1]
	assert.Equal(t, 1, last.Closed)
}

func TestMerger_SymmetricRejection(t *testing.T) {
	cfg := checkedConfig()
	cfg.CheckOverlapping = false
	a := testutil.Arc(t, 1, testNr, 0, 50, 148)
	b := testutil.Arc(t, 2, testNr, 55, 100, 150)
	c := testutil.Arc(t, 3, testNr, 20, 52, 150.5)
	chains := []*chain.Chain{testutil.Ring(t, 0, testNr, 100), a, b, c}

	st := newTestState(t, cfg, 0, chain.CopyChains(chains)...)
	require.NoError(t, st.Run())

	got := st.Chains()
	require.Len(t, got, 3)
	// a's best match b prefers c, so a is left alone and b absorbs c.
	assert.Equal(t, 51, got[1].Size())
	assert.Equal(t, 0, got[1].ExtA.Ray)
	assert.InDelta(t, 148, got[1].ExtA.Radial, 1e-9)
	assert.Equal(t, 81, got[2].Size())
	assert.Equal(t, 20, got[2].ExtA.Ray)
	assert.Equal(t, 100, got[2].ExtB.Ray)
}

func TestMerger_IntersectingChainsNeverMerge(t *testing.T) {
	chains := []*chain.Chain{
		testutil.Ring(t, 0, testNr, 100),
		testutil.Arc(t, 1, testNr, 0, 100, 150),
		testutil.Arc(t, 2, testNr, 90, 200, 152),
	}
	res := runMerger(t, checkedConfig(), chains)

	assert.Equal(t, testutil.Summarize(chains), testutil.Summarize(res.Chains))
	for _, p := range res.Passes {
		assert.Zero(t, p.Merges, "pass %d", p.Pass)
	}
}

func TestMerger_SyntheticDisk(t *testing.T) {
	chains, err := synth.Generate(synth.DefaultDisk(testNr), 11)
	require.NoError(t, err)

	res := runMerger(t, checkedConfig(), chains)
	assert.Less(t, len(res.Chains), len(chains))

	borders := 0
	for i, c := range res.Chains {
		assert.Equal(t, i, c.ID)
		assert.LessOrEqual(t, c.Size(), testNr)
		require.NoError(t, c.Validate())
		for _, n := range c.Nodes() {
			assert.Equal(t, c.ID, n.ChainID)
		}
		if c.Type == chain.Border {
			borders++
		}
	}
	assert.Equal(t, 1, borders)

	for i, p := range res.Passes {
		assert.Equal(t, i, p.Pass)
		assert.LessOrEqual(t, p.ChainsAfter, p.ChainsBefore)
		assert.Equal(t, p.ChainsBefore-p.Merges, p.ChainsAfter)
	}
}

func TestMerger_TightenedScheduleIsIdentity(t *testing.T) {
	chains, err := synth.Generate(synth.DefaultDisk(testNr), 5)
	require.NoError(t, err)

	cfg := checkedConfig()
	cfg.ClosingThreshold = 1
	for i := range cfg.Schedule {
		cfg.Schedule[i].NeighbourhoodSize = 0
	}
	res := runMerger(t, cfg, chains)

	if diff := cmp.Diff(testutil.Summarize(chains), testutil.Summarize(res.Chains)); diff != "" {
		t.Errorf("tightened schedule changed the chains (-in +out):\n%s", diff)
	}
}

type nodeSnapshot struct {
	Ray     int
	Radial  float64
	X, Y    float64
	ChainID int
}

func snapshot(chains []*chain.Chain) [][]nodeSnapshot {
	out := make([][]nodeSnapshot, len(chains))
	for i, c := range chains {
		for _, n := range c.Nodes() {
			out[i] = append(out[i], nodeSnapshot{n.Ray, n.Radial, n.X, n.Y, n.ChainID})
		}
	}
	return out
}

func TestMerger_InputUnchanged(t *testing.T) {
	chains, err := synth.Generate(synth.DefaultDisk(testNr), 3)
	require.NoError(t, err)
	summary := testutil.Summarize(chains)
	nodes := snapshot(chains)

	runMerger(t, DefaultConfig(), chains)

	assert.Equal(t, summary, testutil.Summarize(chains))
	if diff := cmp.Diff(nodes, snapshot(chains)); diff != "" {
		t.Errorf("input nodes changed (-before +after):\n%s", diff)
	}
	for _, c := range chains {
		assert.Zero(t, c.Handle)
		assert.Zero(t, c.AInward)
		assert.Zero(t, c.BOutward)
	}
}

func TestMerger_ObserverDoesNotChangeResult(t *testing.T) {
	chains, err := synth.Generate(synth.DefaultDisk(testNr), 9)
	require.NoError(t, err)

	plain := runMerger(t, DefaultConfig(), chains)

	collector := debug.NewCollector()
	collector.SetEnabled(true)
	cfg := DefaultConfig()
	cfg.Observer = collector
	observed := runMerger(t, cfg, chains)

	if diff := cmp.Diff(testutil.Summarize(plain.Chains), testutil.Summarize(observed.Chains)); diff != "" {
		t.Errorf("observer changed the result (-plain +observed):\n%s", diff)
	}

	passes := collector.Passes()
	require.Len(t, passes, ScheduleLength)
	for i, p := range passes {
		assert.True(t, p.Done, "pass %d", i)
		assert.Equal(t, observed.Passes[i].Merges, p.Merges, "pass %d", i)
		assert.Equal(t, observed.Passes[i].Closed, p.Closed, "pass %d", i)
		assert.Equal(t, observed.Passes[i].ChainsAfter, p.Chains, "pass %d", i)
	}
}

func TestMerger_SelectionCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSupportIterations = 1
	m, err := NewMerger(cfg)
	require.NoError(t, err)

	_, err = m.Run(fragmentedRing(t), testutil.Center, testNr)
	testutil.AssertErrorIs(t, err, ErrNoConvergence)
}

func TestState_RunTerminates(t *testing.T) {
	chains, err := synth.Generate(synth.DefaultDisk(testNr), 21)
	require.NoError(t, err)
	// drop the border so ids stay dense without it
	chains = chains[:len(chains)-1]

	cfg := checkedConfig()
	st := newTestState(t, cfg, 5, chain.CopyChains(chains)...)
	require.NoError(t, st.Run())
	assert.LessOrEqual(t, st.selections, cfg.maxIterations(len(chains)))
	require.NoError(t, st.Matrix().Validate(len(st.Chains())))
}

func TestMerger_EdgeInputs(t *testing.T) {
	m, err := NewMerger(DefaultConfig())
	require.NoError(t, err)

	out, err := m.Merge(nil, testutil.Center, testNr)
	require.NoError(t, err)
	assert.Empty(t, out)

	empty := chain.New(0, testNr, chain.Normal, testutil.Center)
	out, err = m.Merge([]*chain.Chain{empty}, testutil.Center, testNr)
	require.NoError(t, err)
	assert.Empty(t, out)

	border := testutil.Border(t, 0, testNr, 300)
	out, err = m.Merge([]*chain.Chain{border}, testutil.Center, testNr)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, chain.Border, out[0].Type)

	_, err = m.Merge(nil, testutil.Center, 0)
	testutil.AssertErrorIs(t, err, ErrBadConfig)

	other := testutil.Arc(t, 0, 180, 0, 10, 100)
	_, err = m.Merge([]*chain.Chain{other}, testutil.Center, testNr)
	testutil.AssertErrorIs(t, err, ErrInvariant)
}

func TestMerger_PassTimings(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	clock.SetStep(time.Millisecond)
	cfg := DefaultConfig()
	cfg.Clock = clock

	res := runMerger(t, cfg, fragmentedRing(t))
	for _, p := range res.Passes {
		assert.Equal(t, time.Millisecond, p.Elapsed, "pass %d", p.Pass)
	}
}

func TestMergeChains_DebugOutput(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	out, err := mergeChains(fs, DefaultConfig(), fragmentedRing(t), testutil.Center, testNr, true, nil, "debug")
	require.NoError(t, err)

	plain, err := MergeChains(fragmentedRing(t), testutil.Center, testNr, false, nil, "")
	require.NoError(t, err)
	assert.Equal(t, testutil.Summarize(plain), testutil.Summarize(out))

	dirs := fs.Dirs("debug")
	require.Len(t, dirs, 1)
	assert.Contains(t, filepath.Base(dirs[0]), "ringmerge-")

	files, err := fs.List(dirs[0])
	require.NoError(t, err)
	assert.Contains(t, files, debug.ReportFile)
	assert.Contains(t, files, "pass8_00001_candidates.png")
	assert.Greater(t, len(files), ScheduleLength)
}
