package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flareshield/domain/core"
	"flareshield/domain/mcmc"
	"flareshield/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"MCMC_ITERATIONS", "MCMC_BURN_IN", "MCMC_STEP_SIZE", "MCMC_SEED", "MCMC_HISTORY_CAP",
		"DATA_POINTS", "DATA_T_MAX", "STEP_INTERVAL", "PORT", "GIN_MODE", "OPS_PORT", "OPS_ENABLED",
		"PRESET_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.MCMC.Iterations)
	assert.Equal(t, 100, cfg.MCMC.BurnIn)
	assert.Equal(t, 0.05, cfg.MCMC.StepSize)
	assert.Equal(t, int64(42), cfg.MCMC.Seed)
	assert.Equal(t, 1000, cfg.MCMC.HistoryCap)
	assert.Equal(t, 100, cfg.Data.PointCount)
	assert.Equal(t, 10.0, cfg.Data.TMax)
	assert.Equal(t, 30*time.Millisecond, cfg.Runner.StepInterval)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Ops.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCMC_ITERATIONS", "250")
	t.Setenv("MCMC_STEP_SIZE", "0.1")
	t.Setenv("MCMC_SEED", "7")
	t.Setenv("STEP_INTERVAL", "5ms")
	t.Setenv("OPS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.MCMC.Iterations)
	assert.Equal(t, 0.1, cfg.MCMC.StepSize)
	assert.Equal(t, int64(7), cfg.MCMC.Seed)
	assert.Equal(t, 5*time.Millisecond, cfg.Runner.StepInterval)
	assert.False(t, cfg.Ops.Enabled)
}

func TestLoadRejectsInvalidSamplerConfiguration(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCMC_STEP_SIZE", "-0.5")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfiguration, errors.GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrInvalidConfiguration))
}

func TestLoadPresetFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "preset.yaml")
	preset := []byte("mcmc:\n  iterations: 5000\n  step_size: 0.02\ndata:\n  point_count: 40\n")
	require.NoError(t, os.WriteFile(path, preset, 0o644))
	t.Setenv("PRESET_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.MCMC.Iterations)
	assert.Equal(t, 0.02, cfg.MCMC.StepSize)
	assert.Equal(t, 100, cfg.MCMC.BurnIn)
	assert.Equal(t, 40, cfg.Data.PointCount)
	assert.Equal(t, 10.0, cfg.Data.TMax)
}

func TestApplyPresetExplicitZeroOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCMC_BURN_IN", "250")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 250, cfg.MCMC.BurnIn)

	require.NoError(t, ApplyPreset(cfg, []byte("mcmc:\n  burn_in: 0\n  seed: 0\n")))
	assert.Equal(t, 0, cfg.MCMC.BurnIn)
	assert.Equal(t, int64(0), cfg.MCMC.Seed)
	assert.Equal(t, mcmc.DefaultIterations, cfg.MCMC.Iterations)
}

func TestLoadMissingPresetFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRESET_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestApplyPresetRejectsMalformedYAML(t *testing.T) {
	cfg := &Config{}
	err := ApplyPreset(cfg, []byte("mcmc: [unterminated"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
