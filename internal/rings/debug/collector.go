package debug

import "sync"

// defaultPassCapacity matches the length of the merge schedule.
const defaultPassCapacity = 9

// Collector tallies checkpoints per pass. It is disabled by default; a
// disabled collector ignores every checkpoint.
type Collector struct {
	mu      sync.Mutex
	enabled bool
	passes  []PassRecord
}

// PassRecord summarises one merge pass.
type PassRecord struct {
	Pass        int
	Chains      int // live chains when the pass finished
	Merges      int
	Closed      int
	Checkpoints int
	Done        bool
}

// NewCollector creates a disabled collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetEnabled turns collection on or off.
func (c *Collector) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// IsEnabled reports whether checkpoints are being recorded.
func (c *Collector) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Observe implements Observer.
func (c *Collector) Observe(cp Checkpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}

	rec := c.record(cp.Pass)
	rec.Checkpoints++
	switch cp.Name {
	case CheckpointMerged:
		rec.Merges++
	case CheckpointClosed:
		rec.Closed++
	case CheckpointPassDone:
		rec.Chains = len(cp.Chains)
		rec.Done = true
	}
}

func (c *Collector) record(pass int) *PassRecord {
	for i := range c.passes {
		if c.passes[i].Pass == pass {
			return &c.passes[i]
		}
	}
	if c.passes == nil {
		c.passes = make([]PassRecord, 0, defaultPassCapacity)
	}
	c.passes = append(c.passes, PassRecord{Pass: pass})
	return &c.passes[len(c.passes)-1]
}

// Passes returns a copy of the per-pass records in arrival order.
func (c *Collector) Passes() []PassRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PassRecord, len(c.passes))
	copy(out, c.passes)
	return out
}

// Reset drops all records.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passes = nil
}
