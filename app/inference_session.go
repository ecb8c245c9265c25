package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"flareshield/adapters/rng"
	"flareshield/adapters/stats/engine"
	"flareshield/adapters/stats/posterior"
	"flareshield/adapters/synthetic"
	"flareshield/domain/core"
	"flareshield/domain/flare"
	"flareshield/domain/mcmc"
	"flareshield/internal/metrics"
	"flareshield/ports"
)

// BurnInDisplayWindow is the fixed window of the burn-in progress indicator. It has no
// statistical effect.
const BurnInDisplayWindow = 50

// DefaultTraceLength is the number of recent draws shown in the trace view
const DefaultTraceLength = 100

// Dependencies are the collaborators a session drives. ObservedSampler drives sessions on
// imported data; when nil those sessions use Sampler too.
type Dependencies struct {
	Sampler         ports.Sampler
	ObservedSampler ports.Sampler
	Generator       ports.DataGenerator
	Summarizer      ports.Summarizer
	RNG             ports.RNGPort
}

// DefaultDependencies wires the standard engine, generator and summarizer
func DefaultDependencies() Dependencies {
	return Dependencies{
		Sampler:         engine.NewDefaultSampler(),
		ObservedSampler: engine.NewObservedSampler(),
		Generator:       synthetic.NewGenerator(synthetic.DefaultGeneratorConfig()),
		Summarizer:      posterior.NewSummarizer(),
		RNG:             rng.NewSeededAdapter(),
	}
}

// SessionOptions describes a new session. When Data is set the session fits that observed
// set and never generates synthetic data.
type SessionOptions struct {
	Config        mcmc.Config
	PointCount    int
	TMax          float64
	TrueParams    *flare.Params
	InitialParams *flare.Params
	Data          flare.DataSet
}

// DefaultSessionOptions returns the reference scenario
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Config:     mcmc.DefaultConfig(),
		PointCount: synthetic.DefaultPointCount,
		TMax:       synthetic.DefaultTMax,
	}
}

// StepOutcome reports one step taken by a session
type StepOutcome struct {
	Iteration      int          `json:"iteration"`
	Accepted       bool         `json:"accepted"`
	AcceptanceRate float64      `json:"acceptance_rate"`
	Current        flare.Params `json:"current"`
	Done           bool         `json:"done"`
}

// Status is a read-only view of a session
type Status struct {
	ID             core.SessionID `json:"id"`
	Config         mcmc.Config    `json:"config"`
	Iteration      int            `json:"iteration"`
	Accepted       int            `json:"accepted"`
	AcceptanceRate float64        `json:"acceptance_rate"`
	Current        flare.Params   `json:"current"`
	Initial        flare.Params   `json:"initial"`
	TrueParams     *flare.Params  `json:"true_params,omitempty"`
	HistoryLen     int            `json:"history_len"`
	DataPoints     int            `json:"data_points"`
	Imported       bool           `json:"imported"`
	Done           bool           `json:"done"`
	BurnInProgress int            `json:"burn_in_progress"`
	BurnInWindow   int            `json:"burn_in_window"`
	FlareActive    bool           `json:"flare_active"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CurvePoint is one point of a model curve
type CurvePoint struct {
	T float64 `json:"t"`
	Y float64 `json:"y"`
}

// InferenceSession owns one chain over one data set: its RNG stream, its bounded history and
// its counters. Every exported method is safe for concurrent use and each step is applied
// as a single unit.
type InferenceSession struct {
	mu sync.Mutex

	id         core.SessionID
	config     mcmc.Config
	pointCount int
	tMax       float64
	deps       Dependencies
	rng        *rand.Rand

	data       flare.DataSet
	imported   bool
	trueParams *flare.Params
	initial    flare.Params
	current    flare.Params
	history    *mcmc.History
	iteration  int
	accepted   int
	createdAt  time.Time
}

// NewInferenceSession validates opts, seeds the session stream and prepares the data set
func NewInferenceSession(ctx context.Context, deps Dependencies, opts SessionOptions) (*InferenceSession, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	stream, err := deps.RNG.SeededStream(ctx, "inference-session", opts.Config.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed session stream: %w", err)
	}

	initial := flare.DefaultInitialParams()
	if opts.InitialParams != nil {
		if !opts.InitialParams.IsFinite() {
			return nil, core.NewConfigurationError("initial_params", "must be finite")
		}
		initial = opts.InitialParams.Clamped()
	}

	s := &InferenceSession{
		id:         core.NewSessionID(),
		config:     opts.Config,
		pointCount: opts.PointCount,
		tMax:       opts.TMax,
		deps:       deps,
		rng:        stream,
		initial:    initial,
		current:    initial,
		history:    mcmc.NewHistory(opts.Config.HistoryCap),
		createdAt:  time.Now(),
	}

	if opts.Data != nil {
		if err := opts.Data.Validate(); err != nil {
			return nil, err
		}
		s.data = opts.Data.Clone()
		s.imported = true
		log.Printf("[Session] %s created on %d observed points", s.id, len(s.data))
		return s, nil
	}

	truth := flare.DefaultTrueParams()
	if opts.TrueParams != nil {
		if !opts.TrueParams.IsFinite() {
			return nil, core.NewConfigurationError("true_params", "must be finite")
		}
		truth = opts.TrueParams.Clamped()
	}
	if err := s.generate(truth); err != nil {
		return nil, err
	}
	log.Printf("[Session] %s created with true params %s, %d synthetic points", s.id, truth, len(s.data))
	return s, nil
}

// generate replaces the data set; callers hold mu or own s exclusively
func (s *InferenceSession) generate(truth flare.Params) error {
	data, err := s.deps.Generator.Generate(s.rng, truth, s.pointCount, s.tMax)
	if err != nil {
		return err
	}
	s.data = data
	s.trueParams = &truth
	return nil
}

// ID returns the session identifier
func (s *InferenceSession) ID() core.SessionID {
	return s.id
}

// Step advances the chain by one Metropolis transition, appends the resulting state to the
// history and updates the counters. It returns core.ErrRunComplete once all iterations ran.
func (s *InferenceSession) Step(ctx context.Context) (StepOutcome, error) {
	if err := ctx.Err(); err != nil {
		return StepOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked()
}

func (s *InferenceSession) stepLocked() (StepOutcome, error) {
	if s.iteration >= s.config.Iterations {
		return StepOutcome{}, core.ErrRunComplete
	}

	started := time.Now()
	result, err := s.samplerLocked().Step(s.rng, s.current, s.data, s.config.StepSize)
	if err != nil {
		return StepOutcome{}, err
	}
	metrics.ObserveStep(result.Accepted, time.Since(started))

	s.current = result.Next
	s.history.Append(result.Next)
	s.iteration++
	if result.Accepted {
		s.accepted++
	}

	return StepOutcome{
		Iteration:      s.iteration,
		Accepted:       result.Accepted,
		AcceptanceRate: s.acceptanceRateLocked(),
		Current:        s.current,
		Done:           s.iteration >= s.config.Iterations,
	}, nil
}

// samplerLocked scores imported data with its measured sigmas and generated data with
// the noise model estimated from each observed value
func (s *InferenceSession) samplerLocked() ports.Sampler {
	if s.imported && s.deps.ObservedSampler != nil {
		return s.deps.ObservedSampler
	}
	return s.deps.Sampler
}

// Advance takes up to n steps, stopping early at completion or when ctx is cancelled. The
// session stays resumable from the last completed step. It returns the number of steps
// taken; core.ErrRunComplete is returned only when no step was possible.
func (s *InferenceSession) Advance(ctx context.Context, n int) (int, error) {
	taken := 0
	for taken < n {
		if err := ctx.Err(); err != nil {
			return taken, err
		}

		s.mu.Lock()
		outcome, err := s.stepLocked()
		s.mu.Unlock()

		if err != nil {
			if errors.Is(err, core.ErrRunComplete) && taken > 0 {
				return taken, nil
			}
			return taken, err
		}
		taken++
		if outcome.Done {
			break
		}
	}
	return taken, nil
}

// Reset draws fresh true parameters, regenerates the synthetic data and clears the chain.
// Sessions on observed data keep their data and only clear the chain.
func (s *InferenceSession) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.imported {
		if err := s.generate(s.deps.Generator.RandomTrueParams(s.rng)); err != nil {
			return err
		}
	}
	s.current = s.initial
	s.history.Clear()
	s.iteration = 0
	s.accepted = 0
	metrics.SessionReset()

	if s.trueParams != nil {
		log.Printf("[Session] %s reset with true params %s", s.id, *s.trueParams)
	} else {
		log.Printf("[Session] %s reset", s.id)
	}
	return nil
}

// Status returns a snapshot of the session
func (s *InferenceSession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		ID:             s.id,
		Config:         s.config,
		Iteration:      s.iteration,
		Accepted:       s.accepted,
		AcceptanceRate: s.acceptanceRateLocked(),
		Current:        s.current,
		Initial:        s.initial,
		HistoryLen:     s.history.Len(),
		DataPoints:     len(s.data),
		Imported:       s.imported,
		Done:           s.iteration >= s.config.Iterations,
		BurnInProgress: min(s.iteration, BurnInDisplayWindow),
		BurnInWindow:   BurnInDisplayWindow,
		CreatedAt:      s.createdAt,
	}
	if s.trueParams != nil {
		truth := *s.trueParams
		status.TrueParams = &truth
		status.FlareActive = truth.IsFlareActive()
	}
	return status
}

func (s *InferenceSession) acceptanceRateLocked() float64 {
	if s.iteration == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.iteration)
}

// Summarize returns the posterior of one parameter over the history window. A positive
// burnIn drops that many leading samples of the window first.
func (s *InferenceSession) Summarize(key flare.ParamKey, burnIn int) (mcmc.Posterior, error) {
	if burnIn < 0 {
		return mcmc.Posterior{}, core.NewConfigurationError("burn_in", "must not be negative")
	}
	window := s.historyValues()
	return s.deps.Summarizer.Summarize(posterior.DropBurnIn(window, burnIn), key)
}

// SummarizeAll returns posteriors for every parameter in display order
func (s *InferenceSession) SummarizeAll(burnIn int) ([]mcmc.Posterior, error) {
	out := make([]mcmc.Posterior, 0, len(flare.Keys))
	for _, key := range flare.Keys {
		p, err := s.Summarize(key, burnIn)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *InferenceSession) historyValues() []flare.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Values()
}

// Trace returns the newest n draws, oldest first
func (s *InferenceSession) Trace(n int) []flare.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Tail(n)
}

// Data returns a copy of the data set
func (s *InferenceSession) Data() flare.DataSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// ModelCurve evaluates the signal model for p at every observation time
func (s *InferenceSession) ModelCurve(p flare.Params) []CurvePoint {
	data := s.Data()
	curve := make([]CurvePoint, len(data))
	for i, point := range data {
		curve[i] = CurvePoint{T: point.T, Y: flare.Intensity(point.T, p)}
	}
	return curve
}

// Report assembles everything an exporter writes for this session
func (s *InferenceSession) Report(burnIn int) (ports.ChainReport, error) {
	posteriors, err := s.SummarizeAll(burnIn)
	if err != nil {
		return ports.ChainReport{}, err
	}
	status := s.Status()
	return ports.ChainReport{
		SessionID:      s.id.String(),
		Config:         status.Config,
		Iterations:     status.Iteration,
		Accepted:       status.Accepted,
		AcceptanceRate: status.AcceptanceRate,
		TrueParams:     status.TrueParams,
		Current:        status.Current,
		Trace:          s.historyValues(),
		Posteriors:     posteriors,
		Data:           s.Data(),
	}, nil
}
