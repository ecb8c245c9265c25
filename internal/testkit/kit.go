package testkit

import (
	"context"
	"math/rand/v2"
	"sync"

	"flareshield/adapters/rng"
	"flareshield/app"
	"flareshield/domain/flare"
	"flareshield/domain/mcmc"
	"flareshield/ports"
)

// FixtureSeed is the default seed for deterministic fixtures
const FixtureSeed = 42

// NewRand returns a seeded stream for tests that drive adapters directly
func NewRand(seed int64) *rand.Rand {
	return rng.New("testkit", seed)
}

// ReferenceOptions returns the reference scenario: true {1, 5, 10}, 100 points over [0, 10),
// start {0.5, 2, 5}, 1000 iterations at step size 0.05
func ReferenceOptions(seed int64) app.SessionOptions {
	opts := app.DefaultSessionOptions()
	opts.Config.Seed = seed
	truth := flare.DefaultTrueParams()
	start := flare.DefaultInitialParams()
	opts.TrueParams = &truth
	opts.InitialParams = &start
	return opts
}

// NewSession builds a session with the default dependencies
func NewSession(ctx context.Context, opts app.SessionOptions) (*app.InferenceSession, error) {
	return app.NewInferenceSession(ctx, app.DefaultDependencies(), opts)
}

// NoiseFreeData builds exact observations of p, sigma derived from the model value
func NoiseFreeData(p flare.Params, n int, tMax float64) flare.DataSet {
	data := make(flare.DataSet, n)
	dt := tMax / float64(n)
	for i := range data {
		t := float64(i) * dt
		y := flare.Intensity(t, p)
		data[i] = flare.DataPoint{T: t, YData: y, YModel: y, Sigma: flare.NoiseScale(y)}
	}
	return data
}

// ConstantHistory fills n draws with p
func ConstantHistory(p flare.Params, n int) []flare.Params {
	out := make([]flare.Params, n)
	for i := range out {
		out[i] = p
	}
	return out
}

// SmallConfig is a short run for fast tests
func SmallConfig(iterations int) mcmc.Config {
	cfg := mcmc.DefaultConfig()
	cfg.Iterations = iterations
	return cfg
}

// RecordingSink collects published events
type RecordingSink struct {
	mu     sync.Mutex
	events []ports.StepEvent
}

// Publish implements ports.EventSink
func (r *RecordingSink) Publish(event ports.StepEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far
func (r *RecordingSink) Events() []ports.StepEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.StepEvent(nil), r.events...)
}

// CountType counts events of one type
func (r *RecordingSink) CountType(eventType string) int {
	count := 0
	for _, e := range r.Events() {
		if e.EventType == eventType {
			count++
		}
	}
	return count
}
