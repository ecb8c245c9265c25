package mcmc

import (
	"errors"
	"math"
	"testing"

	"flareshield/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Iterations)
	assert.Equal(t, 100, cfg.BurnIn)
	assert.Equal(t, 0.05, cfg.StepSize)
}

func TestConfigValidateRejectsContractViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative iterations", func(c *Config) { c.Iterations = -5 }},
		{"zero step", func(c *Config) { c.StepSize = 0 }},
		{"negative step", func(c *Config) { c.StepSize = -0.1 }},
		{"nan step", func(c *Config) { c.StepSize = math.NaN() }},
		{"inf step", func(c *Config) { c.StepSize = math.Inf(1) }},
		{"negative burn-in", func(c *Config) { c.BurnIn = -1 }},
		{"zero history", func(c *Config) { c.HistoryCap = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, core.ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestValidateStepSize(t *testing.T) {
	assert.NoError(t, ValidateStepSize(0.5))
	assert.True(t, errors.Is(ValidateStepSize(0), core.ErrInvalidConfiguration))
}
