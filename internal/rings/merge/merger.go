// Package merge fuses chain fragments into growth rings. A nine-pass
// schedule runs a support-chain driven search to a fixed point under
// progressively looser thresholds; the last pass also folds in the disk
// border and closes near-complete rings.
package merge

import (
	"fmt"
	"image"
	"time"

	"github.com/banshee-data/growthrings/internal/fsutil"
	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/debug"
)

// PassStats summarises one pass.
type PassStats struct {
	Pass         int
	ChainsBefore int
	ChainsAfter  int
	Merges       int
	Closed       int
	Elapsed      time.Duration
}

// Result is the outcome of a merge run.
type Result struct {
	Chains []*chain.Chain // ordered by id
	Passes []PassStats
}

// Merger runs the full schedule.
type Merger struct {
	cfg Config
}

// NewMerger validates cfg and returns a Merger.
func NewMerger(cfg Config) (*Merger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Merger{cfg: cfg}, nil
}

// Merge returns the merged chains. The input is never modified.
func (m *Merger) Merge(chains []*chain.Chain, center chain.Point, nr int) ([]*chain.Chain, error) {
	res, err := m.Run(chains, center, nr)
	if err != nil {
		return nil, err
	}
	return res.Chains, nil
}

// Run is Merge with per-pass statistics.
func (m *Merger) Run(chains []*chain.Chain, center chain.Point, nr int) (Result, error) {
	if nr <= 0 {
		return Result{}, fmt.Errorf("%w: nr must be positive, got %d", ErrBadConfig, nr)
	}
	var border *chain.Chain
	var current []*chain.Chain
	for _, c := range chain.CopyChains(chains) {
		if c.Nr != nr {
			return Result{}, fmt.Errorf("%w: chain %d has nr %d, want %d", ErrInvariant, c.ID, c.Nr, nr)
		}
		switch {
		case c.Size() == 0:
			diagf("dropping empty chain %d", c.ID)
		case c.Type == chain.Border && border == nil:
			border = c
		default:
			current = append(current, c)
		}
	}
	if len(current) == 0 && border == nil {
		return Result{Chains: []*chain.Chain{}}, nil
	}

	clock := m.cfg.clock()
	res := Result{Passes: make([]PassStats, 0, ScheduleLength)}
	for pass := 0; pass < ScheduleLength; pass++ {
		final := m.cfg.Schedule.IncludesBorder(pass)
		input := chain.CopyChains(current)
		if final && border != nil {
			input = append(input, chain.Copy(border))
		}
		for i, c := range input {
			c.SetID(i)
		}

		start := clock.Now()
		st, err := NewState(input, center, nr, m.cfg.Schedule[pass], m.cfg, pass)
		if err != nil {
			opsf("pass %d aborted: %v", pass, err)
			return Result{}, fmt.Errorf("pass %d: %w", pass, err)
		}
		if err := st.Run(); err != nil {
			opsf("pass %d aborted: %v", pass, err)
			return Result{}, fmt.Errorf("pass %d: %w", pass, err)
		}
		if final {
			if err := st.CloseChains(); err != nil {
				opsf("pass %d aborted while closing: %v", pass, err)
				return Result{}, fmt.Errorf("pass %d: %w", pass, err)
			}
		}
		st.observe(debug.CheckpointPassDone)

		current = st.Chains()
		stats := PassStats{
			Pass:         pass,
			ChainsBefore: len(input),
			ChainsAfter:  len(current),
			Merges:       st.Merges(),
			Closed:       st.Closed(),
			Elapsed:      clock.Since(start),
		}
		res.Passes = append(res.Passes, stats)
		diagf("pass %d: %d -> %d chains, %d merges, %d closed in %v",
			pass, stats.ChainsBefore, stats.ChainsAfter, stats.Merges, stats.Closed, stats.Elapsed)
	}
	res.Chains = current
	return res, nil
}

// MergeChains is the entry point used by ring extraction. When debug is set
// every checkpoint is drawn over img into a fresh directory below
// outputDir; rendering problems are logged and do not affect the result.
func MergeChains(chains []*chain.Chain, center chain.Point, nr int, debugOn bool, img image.Image, outputDir string) ([]*chain.Chain, error) {
	return mergeChains(fsutil.OSFileSystem{}, DefaultConfig(), chains, center, nr, debugOn, img, outputDir)
}

func mergeChains(fsys fsutil.FileSystem, cfg Config, chains []*chain.Chain, center chain.Point, nr int, debugOn bool, img image.Image, outputDir string) ([]*chain.Chain, error) {
	var po *debug.PlotObserver
	if debugOn {
		var err error
		po, err = debug.NewPlotObserver(fsys, outputDir, img)
		if err != nil {
			opsf("debug output disabled: %v", err)
		} else {
			cfg.Observer = debug.Multi{cfg.Observer, po}
		}
	}

	m, err := NewMerger(cfg)
	if err != nil {
		return nil, err
	}
	out, err := m.Merge(chains, center, nr)
	if po != nil {
		if ferr := po.Flush(); ferr != nil {
			opsf("debug report: %v", ferr)
		}
		if po.Failed() > 0 {
			opsf("%d debug images could not be written", po.Failed())
		}
	}
	return out, err
}
