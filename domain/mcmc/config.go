package mcmc

import (
	"math"

	"flareshield/domain/core"
)

// Reference defaults
const (
	DefaultIterations = 1000
	DefaultBurnIn     = 100
	DefaultStepSize   = 0.05
	DefaultSeed       = 42
	DefaultHistoryCap = 1000
)

// Config configures one sampling run.
//
// BurnIn is advisory: the sampler never consults it. Summaries only discard leading
// samples when a caller passes an explicit burn-in to the summary view.
type Config struct {
	Iterations int     `json:"iterations" yaml:"iterations"`
	BurnIn     int     `json:"burn_in" yaml:"burn_in"`
	StepSize   float64 `json:"step_size" yaml:"step_size"`
	Seed       int64   `json:"seed" yaml:"seed"`
	HistoryCap int     `json:"history_cap" yaml:"history_cap"`
}

// DefaultConfig returns the reference configuration
func DefaultConfig() Config {
	return Config{
		Iterations: DefaultIterations,
		BurnIn:     DefaultBurnIn,
		StepSize:   DefaultStepSize,
		Seed:       DefaultSeed,
		HistoryCap: DefaultHistoryCap,
	}
}

// Validate fails fast on values that would make a run meaningless
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return core.NewConfigurationError("iterations", "must be a positive integer")
	}
	if !(c.StepSize > 0) || math.IsInf(c.StepSize, 1) {
		return core.NewConfigurationError("step_size", "must be a positive finite number")
	}
	if c.BurnIn < 0 {
		return core.NewConfigurationError("burn_in", "must not be negative")
	}
	if c.HistoryCap <= 0 {
		return core.NewConfigurationError("history_cap", "must be a positive integer")
	}
	return nil
}

// ValidateStepSize applies the step size rule on its own, for callers driving single steps
func ValidateStepSize(stepSize float64) error {
	if !(stepSize > 0) || math.IsInf(stepSize, 1) {
		return core.NewConfigurationError("step_size", "must be a positive finite number")
	}
	return nil
}
