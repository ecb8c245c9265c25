package rng

import (
	"context"
	"math/rand/v2"
)

// SeededAdapter implements ports.RNGPort with PCG streams. The same (name, seed) pair always
// yields the same sequence; different names under one seed yield independent streams.
type SeededAdapter struct{}

// NewSeededAdapter creates the adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return New(name, seed), nil
}

// New builds a stream without going through the port
func New(name string, seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(hashString(name))))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
