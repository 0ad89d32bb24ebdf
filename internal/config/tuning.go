package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/growthrings/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Passes is the number of entries every per-pass array must hold.
const Passes = 9

// TuningConfig holds the merge tuning knobs. Per-pass values are arrays
// with one entry per schedule pass. Omitted fields fall back to the
// defaults returned by the Get* methods, so partial files are safe.
type TuningConfig struct {
	// Schedule columns
	RadialTolerance      []float64 `json:"radial_tolerance,omitempty"`
	NeighbourhoodSize    []float64 `json:"neighbourhood_size,omitempty"` // degrees
	RegularDerivative    []float64 `json:"regular_derivative,omitempty"`
	DistributionSize     []float64 `json:"distribution_size,omitempty"`
	DerivativeFromCenter []bool    `json:"derivative_from_center,omitempty"`

	// Closing pass and overlap guard
	ClosingThreshold    *float64 `json:"closing_threshold,omitempty"`
	OverlapBandFraction *float64 `json:"overlap_band_fraction,omitempty"`
	CheckOverlapping    *bool    `json:"check_overlapping,omitempty"`

	// Driver safety net, 0 derives it from the chain count
	MaxSupportIterations *int `json:"max_support_iterations,omitempty"`
}

var (
	defaultRadialTolerance      = []float64{0.1, 0.2, 0.1, 0.2, 0.1, 0.2, 0.1, 0.2, 0.2}
	defaultNeighbourhoodSize    = []float64{10, 10, 22, 22, 45, 45, 22, 45, 45}
	defaultRegularDerivative    = []float64{1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 2, 2, 2}
	defaultDistributionSize     = []float64{2, 2, 3, 3, 3, 3, 2, 3, 3}
	defaultDerivativeFromCenter = []bool{false, false, false, false, false, false, true, true, true}
)

// EmptyTuningConfig returns a TuningConfig with every field unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file on disk.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	return LoadTuningConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadTuningConfigFS loads a TuningConfig through fsys. The file must have
// a .json extension and be at most 1MB.
func LoadTuningConfigFS(fsys fsutil.FileSystem, path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), maxFileSize)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for tests and the demo command.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/, cmd/ringmerge/
		"../../../" + DefaultConfigPath,    // from internal/rings/merge/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	columns := []struct {
		name   string
		values []float64
	}{
		{"radial_tolerance", c.RadialTolerance},
		{"neighbourhood_size", c.NeighbourhoodSize},
		{"regular_derivative", c.RegularDerivative},
		{"distribution_size", c.DistributionSize},
	}
	for _, col := range columns {
		if col.values == nil {
			continue
		}
		if len(col.values) != Passes {
			return fmt.Errorf("%s must have %d entries, got %d", col.name, Passes, len(col.values))
		}
		for i, v := range col.values {
			if v < 0 {
				return fmt.Errorf("%s[%d] must be non-negative, got %f", col.name, i, v)
			}
		}
	}
	if c.NeighbourhoodSize != nil {
		for i, v := range c.NeighbourhoodSize {
			if v > 360 {
				return fmt.Errorf("neighbourhood_size[%d] must be at most 360, got %f", i, v)
			}
		}
	}
	if c.DerivativeFromCenter != nil && len(c.DerivativeFromCenter) != Passes {
		return fmt.Errorf("derivative_from_center must have %d entries, got %d", Passes, len(c.DerivativeFromCenter))
	}

	if c.ClosingThreshold != nil {
		if *c.ClosingThreshold < 0 || *c.ClosingThreshold > 1 {
			return fmt.Errorf("closing_threshold must be between 0 and 1, got %f", *c.ClosingThreshold)
		}
	}
	if c.OverlapBandFraction != nil && *c.OverlapBandFraction < 0 {
		return fmt.Errorf("overlap_band_fraction must be non-negative, got %f", *c.OverlapBandFraction)
	}
	if c.MaxSupportIterations != nil && *c.MaxSupportIterations < 0 {
		return fmt.Errorf("max_support_iterations must be non-negative, got %d", *c.MaxSupportIterations)
	}
	return nil
}

func orFloats(v, def []float64) []float64 {
	if v == nil {
		v = def
	}
	return append([]float64(nil), v...)
}

// GetRadialTolerance returns the per-pass radial tolerance or the default.
func (c *TuningConfig) GetRadialTolerance() []float64 {
	return orFloats(c.RadialTolerance, defaultRadialTolerance)
}

// GetNeighbourhoodSize returns the per-pass neighbourhood in degrees or the default.
func (c *TuningConfig) GetNeighbourhoodSize() []float64 {
	return orFloats(c.NeighbourhoodSize, defaultNeighbourhoodSize)
}

// GetRegularDerivative returns the per-pass derivative threshold or the default.
func (c *TuningConfig) GetRegularDerivative() []float64 {
	return orFloats(c.RegularDerivative, defaultRegularDerivative)
}

// GetDistributionSize returns the per-pass distribution threshold or the default.
func (c *TuningConfig) GetDistributionSize() []float64 {
	return orFloats(c.DistributionSize, defaultDistributionSize)
}

// GetDerivativeFromCenter returns the per-pass derivative origin flag or the default.
func (c *TuningConfig) GetDerivativeFromCenter() []bool {
	v := c.DerivativeFromCenter
	if v == nil {
		v = defaultDerivativeFromCenter
	}
	return append([]bool(nil), v...)
}

// GetClosingThreshold returns the closing_threshold value or the default.
func (c *TuningConfig) GetClosingThreshold() float64 {
	if c.ClosingThreshold == nil {
		return 0.9
	}
	return *c.ClosingThreshold
}

// GetOverlapBandFraction returns the overlap_band_fraction value or the default.
func (c *TuningConfig) GetOverlapBandFraction() float64 {
	if c.OverlapBandFraction == nil {
		return 0.1
	}
	return *c.OverlapBandFraction
}

// GetCheckOverlapping returns the check_overlapping value or the default.
func (c *TuningConfig) GetCheckOverlapping() bool {
	if c.CheckOverlapping == nil {
		return true
	}
	return *c.CheckOverlapping
}

// GetMaxSupportIterations returns the max_support_iterations value or the default.
func (c *TuningConfig) GetMaxSupportIterations() int {
	if c.MaxSupportIterations == nil {
		return 0
	}
	return *c.MaxSupportIterations
}
