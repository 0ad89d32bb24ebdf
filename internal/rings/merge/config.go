package merge

import (
	"fmt"

	"github.com/banshee-data/growthrings/internal/config"
	"github.com/banshee-data/growthrings/internal/rings/debug"
	"github.com/banshee-data/growthrings/internal/timeutil"
)

// Config controls a merge run.
type Config struct {
	Schedule Schedule

	// Chains with at least ClosingThreshold*Nr nodes are closed in the
	// final pass.
	ClosingThreshold float64 // default 0.9

	// Half-width of the overlap band as a fraction of the distance to the
	// support chain.
	OverlapBandFraction float64 // default 0.1

	// CheckOverlapping enables the overlap guard inside the similarity test.
	// The closing pass always checks.
	CheckOverlapping bool

	// MaxSupportIterations caps support chain selections per pass.
	// Zero derives a ceiling from the chain count.
	MaxSupportIterations int

	// CheckInvariants validates the whole state after every merge.
	CheckInvariants bool

	Observer debug.Observer // optional
	Clock    timeutil.Clock // optional, used for pass timings
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Schedule:            DefaultSchedule(),
		ClosingThreshold:    0.9,
		OverlapBandFraction: 0.1,
		CheckOverlapping:    true,
	}
}

// ConfigFromTuning builds a Config from a tuning file, falling back to
// defaults for anything it leaves out.
func ConfigFromTuning(tc *config.TuningConfig) Config {
	cfg := DefaultConfig()
	if tc == nil {
		return cfg
	}
	radial := tc.GetRadialTolerance()
	neighbourhood := tc.GetNeighbourhoodSize()
	derivative := tc.GetRegularDerivative()
	distribution := tc.GetDistributionSize()
	fromCenter := tc.GetDerivativeFromCenter()
	for i := range cfg.Schedule {
		cfg.Schedule[i] = Params{
			RadialTolerance:      radial[i],
			NeighbourhoodSize:    neighbourhood[i],
			RegularDerivative:    derivative[i],
			DistributionSize:     distribution[i],
			DerivativeFromCenter: fromCenter[i],
		}
	}
	cfg.ClosingThreshold = tc.GetClosingThreshold()
	cfg.OverlapBandFraction = tc.GetOverlapBandFraction()
	cfg.CheckOverlapping = tc.GetCheckOverlapping()
	cfg.MaxSupportIterations = tc.GetMaxSupportIterations()
	return cfg
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if c.ClosingThreshold < 0 || c.ClosingThreshold > 1 {
		return fmt.Errorf("%w: ClosingThreshold must be in [0, 1], got %f", ErrBadConfig, c.ClosingThreshold)
	}
	if c.OverlapBandFraction < 0 {
		return fmt.Errorf("%w: OverlapBandFraction must be non-negative, got %f", ErrBadConfig, c.OverlapBandFraction)
	}
	if c.MaxSupportIterations < 0 {
		return fmt.Errorf("%w: MaxSupportIterations must be non-negative, got %d", ErrBadConfig, c.MaxSupportIterations)
	}
	return nil
}

func (c Config) maxIterations(chains int) int {
	if c.MaxSupportIterations > 0 {
		return c.MaxSupportIterations
	}
	return 64*chains*chains + 1024
}

func (c Config) clock() timeutil.Clock {
	if c.Clock == nil {
		return timeutil.RealClock{}
	}
	return c.Clock
}
