// Package debug renders intermediate merge states for inspection. Nothing in
// here feeds back into the merge result.
package debug

import "github.com/banshee-data/growthrings/internal/rings/chain"

// Checkpoint names emitted by the merge driver.
const (
	CheckpointCandidates = "candidates" // support chain and its visible chains
	CheckpointSource     = "source"     // chain about to search for a partner
	CheckpointClosestB   = "closest_b"  // best match from endpoint B
	CheckpointClosestA   = "closest_a"  // best match from endpoint A
	CheckpointSelected   = "selected"   // endpoint chosen
	CheckpointMerged     = "merged"
	CheckpointClosed     = "closed"
	CheckpointPassDone   = "pass_done"
)

// Checkpoint is a snapshot handed to an Observer. Chains are live state and
// must be treated as read-only.
type Checkpoint struct {
	Pass      int
	Step      int
	Name      string
	Highlight []*chain.Chain // may contain nil entries
	Chains    []*chain.Chain
	Center    chain.Point
}

// Observer receives checkpoints during a merge run.
type Observer interface {
	Observe(cp Checkpoint)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(cp Checkpoint)

func (f ObserverFunc) Observe(cp Checkpoint) { f(cp) }

// Multi fans a checkpoint out to several observers in order.
type Multi []Observer

func (m Multi) Observe(cp Checkpoint) {
	for _, o := range m {
		if o != nil {
			o.Observe(cp)
		}
	}
}
