package container

import (
	"context"
	"testing"
	"time"

	"flareshield/internal/config"
	"flareshield/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestShutdownStopsRuns(t *testing.T) {
	cfg := &config.Config{MCMC: testkit.SmallConfig(1_000_000)}
	cfg.Data.PointCount = 20
	cfg.Data.TMax = 10
	cfg.Runner.StepInterval = time.Millisecond

	c, err := New(cfg)
	require.NoError(t, err)

	s, err := c.Registry.Create(context.Background(), cfg.SessionOptions())
	require.NoError(t, err)
	require.NoError(t, c.Runs.Start(s))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
	assert.False(t, c.Runs.IsRunning(s.ID()))
}
