// Package synth generates fragmented concentric rings for exercising the
// merger without an edge detector.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/banshee-data/growthrings/internal/rings/chain"
)

// ErrBadDisk is returned when a Disk cannot be generated.
var ErrBadDisk = errors.New("synth: invalid disk")

// RingSpec describes one ring before fragmentation.
type RingSpec struct {
	Radius float64
	Cuts   int     // number of gaps cut into the ring
	Gap    int     // rays removed at each cut
	Wobble float64 // amplitude of a slow radial oscillation, in pixels
}

// Disk describes a synthetic cross-section.
type Disk struct {
	Center       chain.Point
	Nr           int
	Rings        []RingSpec
	BorderRadius float64 // <= 0 omits the border chain
	Jitter       float64 // fraction of the cut spacing each cut may move, [0, 0.5)
}

// DefaultDisk returns five rings with four cuts each inside a border.
func DefaultDisk(nr int) Disk {
	d := Disk{
		Center:       chain.Point{X: 500, Y: 500},
		Nr:           nr,
		BorderRadius: 300,
		Jitter:       0.25,
	}
	for i := 0; i < 5; i++ {
		d.Rings = append(d.Rings, RingSpec{
			Radius: 60 + 45*float64(i),
			Cuts:   4,
			Gap:    max(nr/120, 1),
			Wobble: 2,
		})
	}
	return d
}

// Validate checks the disk description.
func (d Disk) Validate() error {
	if d.Nr < 4 {
		return fmt.Errorf("%w: Nr must be at least 4, got %d", ErrBadDisk, d.Nr)
	}
	if d.Jitter < 0 || d.Jitter >= 0.5 {
		return fmt.Errorf("%w: Jitter must be in [0, 0.5), got %f", ErrBadDisk, d.Jitter)
	}
	for i, r := range d.Rings {
		if r.Radius <= r.Wobble || r.Radius <= 0 {
			return fmt.Errorf("%w: ring %d radius %f must exceed wobble %f", ErrBadDisk, i, r.Radius, r.Wobble)
		}
		if r.Cuts < 0 || r.Gap < 0 {
			return fmt.Errorf("%w: ring %d has negative cuts or gap", ErrBadDisk, i)
		}
		if r.Cuts > 0 && r.Gap < 1 {
			return fmt.Errorf("%w: ring %d cuts need a gap of at least one ray", ErrBadDisk, i)
		}
		if r.Cuts*(r.Gap+1) > d.Nr {
			return fmt.Errorf("%w: ring %d has more cut rays than rays", ErrBadDisk, i)
		}
	}
	return nil
}

// Generate fragments every ring of d and returns the pieces as chains with
// dense ids, followed by the border chain. The same seed always yields the
// same chains.
func Generate(d Disk, seed int64) ([]*chain.Chain, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	var out []*chain.Chain
	for i, spec := range d.Rings {
		phase := rng.Float64() * 2 * math.Pi
		radius := func(ray int) float64 {
			theta := chain.RayAngle(ray, d.Nr) * math.Pi / 180
			return spec.Radius + spec.Wobble*math.Sin(2*theta+phase)
		}
		for _, s := range fragments(spec, d.Nr, d.Jitter, rng) {
			c, err := build(len(out), d, chain.Normal, s, radius)
			if err != nil {
				return nil, fmt.Errorf("ring %d: %w", i, err)
			}
			out = append(out, c)
		}
	}
	if d.BorderRadius > 0 {
		c, err := build(len(out), d, chain.Border, span{0, d.Nr - 1}, func(int) float64 { return d.BorderRadius })
		if err != nil {
			return nil, fmt.Errorf("border: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// span is an inclusive ray range walked forward from first to last.
type span struct{ first, last int }

func fragments(spec RingSpec, nr int, jitter float64, rng *rand.Rand) []span {
	if spec.Cuts == 0 {
		return []span{{0, nr - 1}}
	}
	spacing := float64(nr) / float64(spec.Cuts)
	offset := rng.Intn(nr)
	cuts := make([]int, spec.Cuts)
	for i := range cuts {
		shift := (rng.Float64()*2 - 1) * jitter * spacing
		cuts[i] = offset + int(math.Round(float64(i)*spacing+shift))
	}

	var out []span
	for i, cut := range cuts {
		first := cut + spec.Gap
		last := cuts[0] + nr - 1
		if i+1 < len(cuts) {
			last = cuts[i+1] - 1
		}
		if last < first {
			continue
		}
		out = append(out, span{chain.WrapRay(first, nr), chain.WrapRay(last, nr)})
	}
	return out
}

func build(id int, d Disk, typ chain.Type, s span, radius func(int) float64) (*chain.Chain, error) {
	c := chain.New(id, d.Nr, typ, d.Center)
	var nodes []*chain.Node
	for ray := s.first; ; ray = chain.WrapRay(ray+1, d.Nr) {
		nodes = append(nodes, chain.NewNode(d.Center, ray, d.Nr, radius(ray), id))
		if ray == s.last {
			break
		}
	}
	if _, err := c.AddNodes(nodes); err != nil {
		return nil, err
	}
	return c, nil
}
