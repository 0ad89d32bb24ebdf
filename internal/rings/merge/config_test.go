package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/growthrings/internal/config"
	"github.com/banshee-data/growthrings/internal/testutil"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.9, cfg.ClosingThreshold)
	assert.True(t, cfg.CheckOverlapping)

	for i := range cfg.Schedule {
		assert.Equal(t, i == ScheduleLength-1, cfg.Schedule.IncludesBorder(i), "pass %d", i)
	}
	assert.Equal(t, Params{RadialTolerance: 0.1, NeighbourhoodSize: 10, RegularDerivative: 1.5, DistributionSize: 2}, cfg.Schedule[0])
	assert.True(t, cfg.Schedule[6].DerivativeFromCenter)
	assert.False(t, cfg.Schedule[5].DerivativeFromCenter)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative tolerance", func(c *Config) { c.Schedule[2].RadialTolerance = -1 }},
		{"neighbourhood too wide", func(c *Config) { c.Schedule[4].NeighbourhoodSize = 361 }},
		{"closing threshold", func(c *Config) { c.ClosingThreshold = 1.1 }},
		{"band fraction", func(c *Config) { c.OverlapBandFraction = -0.5 }},
		{"iterations", func(c *Config) { c.MaxSupportIterations = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			testutil.AssertErrorIs(t, cfg.Validate(), ErrBadConfig)
			_, err := NewMerger(cfg)
			testutil.AssertErrorIs(t, err, ErrBadConfig)
		})
	}
}

func TestConfigFromTuning_Defaults(t *testing.T) {
	want := DefaultConfig()
	assert.Equal(t, want, ConfigFromTuning(nil))
	assert.Equal(t, want, ConfigFromTuning(config.EmptyTuningConfig()))
	assert.Equal(t, want, ConfigFromTuning(config.MustLoadDefaultConfig()))
}

func TestConfigFromTuning_Overrides(t *testing.T) {
	closing := 0.75
	check := false
	tc := config.EmptyTuningConfig()
	tc.ClosingThreshold = &closing
	tc.CheckOverlapping = &check
	tc.NeighbourhoodSize = []float64{5, 5, 5, 5, 5, 5, 5, 5, 5}

	cfg := ConfigFromTuning(tc)
	assert.Equal(t, 0.75, cfg.ClosingThreshold)
	assert.False(t, cfg.CheckOverlapping)
	for i, p := range cfg.Schedule {
		assert.Equal(t, 5.0, p.NeighbourhoodSize, "pass %d", i)
	}
	assert.Equal(t, DefaultSchedule()[3].RadialTolerance, cfg.Schedule[3].RadialTolerance)
}

func TestConfig_MaxIterations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 64*10*10+1024, cfg.maxIterations(10))
	cfg.MaxSupportIterations = 7
	assert.Equal(t, 7, cfg.maxIterations(10))
}
