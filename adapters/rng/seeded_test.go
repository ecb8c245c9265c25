package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(t *testing.T, name string, seed int64) []float64 {
	r, err := NewSeededAdapter().SeededStream(context.Background(), name, seed)
	require.NoError(t, err)
	out := make([]float64, 8)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

func TestSeededStreamIsDeterministic(t *testing.T) {
	assert.Equal(t, sequence(t, "mcmc", 42), sequence(t, "mcmc", 42))
}

func TestSeededStreamSeparatesNamesAndSeeds(t *testing.T) {
	base := sequence(t, "mcmc", 42)
	assert.NotEqual(t, base, sequence(t, "generator", 42))
	assert.NotEqual(t, base, sequence(t, "mcmc", 43))
}

func TestSeededStreamHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSeededAdapter().SeededStream(ctx, "mcmc", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
