package merge

import (
	"fmt"

	"github.com/banshee-data/growthrings/internal/rings/similarity"
)

// ScheduleLength is the number of merge passes. Only the last one folds in
// the border chain and closes near-complete chains.
const ScheduleLength = 9

// Params holds the thresholds of one merge pass.
type Params struct {
	RadialTolerance      float64 // relative tolerance on endpoint distance to the support
	NeighbourhoodSize    float64 // degrees searched around an endpoint
	RegularDerivative    float64
	DistributionSize     float64 // standard deviations
	DerivativeFromCenter bool
}

// Schedule is the ordered list of pass parameters, tightest first.
type Schedule [ScheduleLength]Params

// DefaultSchedule returns the standard nine-pass schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		{RadialTolerance: 0.1, NeighbourhoodSize: 10, RegularDerivative: 1.5, DistributionSize: 2},
		{RadialTolerance: 0.2, NeighbourhoodSize: 10, RegularDerivative: 1.5, DistributionSize: 2},
		{RadialTolerance: 0.1, NeighbourhoodSize: 22, RegularDerivative: 1.5, DistributionSize: 3},
		{RadialTolerance: 0.2, NeighbourhoodSize: 22, RegularDerivative: 1.5, DistributionSize: 3},
		{RadialTolerance: 0.1, NeighbourhoodSize: 45, RegularDerivative: 1.5, DistributionSize: 3},
		{RadialTolerance: 0.2, NeighbourhoodSize: 45, RegularDerivative: 1.5, DistributionSize: 3},
		{RadialTolerance: 0.1, NeighbourhoodSize: 22, RegularDerivative: 2, DistributionSize: 2, DerivativeFromCenter: true},
		{RadialTolerance: 0.2, NeighbourhoodSize: 45, RegularDerivative: 2, DistributionSize: 3, DerivativeFromCenter: true},
		{RadialTolerance: 0.2, NeighbourhoodSize: 45, RegularDerivative: 2, DistributionSize: 3, DerivativeFromCenter: true},
	}
}

// IncludesBorder reports whether pass i folds in the border chain.
func (s Schedule) IncludesBorder(i int) bool {
	return i == ScheduleLength-1
}

// Validate checks every row.
func (s Schedule) Validate() error {
	for i, p := range s {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pass %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks that all thresholds are usable.
func (p Params) Validate() error {
	if p.RadialTolerance < 0 {
		return fmt.Errorf("%w: RadialTolerance must be non-negative, got %f", ErrBadConfig, p.RadialTolerance)
	}
	if p.NeighbourhoodSize < 0 || p.NeighbourhoodSize > 360 {
		return fmt.Errorf("%w: NeighbourhoodSize must be in [0, 360], got %f", ErrBadConfig, p.NeighbourhoodSize)
	}
	if p.RegularDerivative < 0 {
		return fmt.Errorf("%w: RegularDerivative must be non-negative, got %f", ErrBadConfig, p.RegularDerivative)
	}
	if p.DistributionSize < 0 {
		return fmt.Errorf("%w: DistributionSize must be non-negative, got %f", ErrBadConfig, p.DistributionSize)
	}
	return nil
}

func (p Params) thresholds(cfg Config) similarity.Thresholds {
	return similarity.Thresholds{
		RadialTolerance:      p.RadialTolerance,
		DistributionSize:     p.DistributionSize,
		RegularDerivative:    p.RegularDerivative,
		DerivativeFromCenter: p.DerivativeFromCenter,
		NeighbourhoodSize:    p.NeighbourhoodSize,
		CheckOverlapping:     cfg.CheckOverlapping,
		OverlapBandFraction:  cfg.OverlapBandFraction,
	}
}
