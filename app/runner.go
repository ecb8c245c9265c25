package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"flareshield/domain/core"
	"flareshield/internal"
	"flareshield/ports"
)

// Runner drives a session at a fixed cadence, one step per tick, publishing a StepEvent
// after each. Stopping is cancelling ctx; the session can be resumed later by another Run.
type Runner struct {
	interval time.Duration
	sink     ports.EventSink
	logger   *internal.Logger
}

// NewRunner creates a runner; a nil sink discards events
func NewRunner(interval time.Duration, sink ports.EventSink) *Runner {
	if interval <= 0 {
		interval = 30 * time.Millisecond
	}
	if sink == nil {
		sink = discardSink{}
	}
	return &Runner{interval: interval, sink: sink, logger: internal.NewDefaultLogger("Runner")}
}

// Run steps s until its iterations are exhausted or ctx is cancelled
func (r *Runner) Run(ctx context.Context, s *InferenceSession) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("%s started (interval %s)", s.ID(), r.interval)
	for {
		select {
		case <-ctx.Done():
			r.publish(s, ports.EventStopped, StepOutcome{})
			r.logger.Info("%s stopped at iteration %d", s.ID(), s.Status().Iteration)
			return ctx.Err()

		case <-ticker.C:
			outcome, err := s.Step(ctx)
			if errors.Is(err, core.ErrRunComplete) {
				r.publish(s, ports.EventComplete, StepOutcome{})
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				r.logger.Error("%s step failed: %v", s.ID(), err)
				return err
			}

			r.logger.Trace("%s step %d accepted=%t %s", s.ID(), outcome.Iteration, outcome.Accepted, outcome.Current)
			r.publish(s, ports.EventStep, outcome)
			if outcome.Done {
				r.publish(s, ports.EventComplete, outcome)
				r.logger.Info("%s complete: %d iterations, acceptance %.3f",
					s.ID(), outcome.Iteration, outcome.AcceptanceRate)
				return nil
			}
		}
	}
}

func (r *Runner) publish(s *InferenceSession, eventType string, outcome StepOutcome) {
	event := ports.StepEvent{
		SessionID:      s.ID().String(),
		EventType:      eventType,
		Iteration:      outcome.Iteration,
		Accepted:       outcome.Accepted,
		AcceptanceRate: outcome.AcceptanceRate,
		Current:        outcome.Current,
		Iterations:     s.config.Iterations,
		Timestamp:      time.Now(),
	}
	if eventType != ports.EventStep {
		status := s.Status()
		event.Iteration = status.Iteration
		event.AcceptanceRate = status.AcceptanceRate
		event.Current = status.Current
	}
	r.sink.Publish(event)
}

type discardSink struct{}

func (discardSink) Publish(ports.StepEvent) {}

// RunController tracks background runs so a session runs at most once at a time
type RunController struct {
	runner *Runner
	base   context.Context

	mu      sync.Mutex
	cancels map[core.SessionID]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunController creates a controller whose runs all end when base is cancelled
func NewRunController(base context.Context, runner *Runner) *RunController {
	return &RunController{
		runner:  runner,
		base:    base,
		cancels: make(map[core.SessionID]context.CancelFunc),
	}
}

// Start launches a background run for s
func (c *RunController) Start(s *InferenceSession) error {
	if s.Status().Done {
		return core.ErrRunComplete
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, running := c.cancels[s.ID()]; running {
		return core.ErrRunInProgress
	}

	ctx, cancel := context.WithCancel(c.base)
	c.cancels[s.ID()] = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.forget(s.ID())
		if err := c.runner.Run(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
			c.runner.logger.Error("%s ended with error: %v", s.ID(), err)
		}
	}()
	return nil
}

// Stop cancels a background run; it reports whether one was running
func (c *RunController) Stop(id core.SessionID) bool {
	c.mu.Lock()
	cancel, running := c.cancels[id]
	c.mu.Unlock()
	if running {
		cancel()
	}
	return running
}

// IsRunning reports whether a background run is active for id
func (c *RunController) IsRunning(id core.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, running := c.cancels[id]
	return running
}

// Wait blocks until every background run has returned
func (c *RunController) Wait() {
	c.wg.Wait()
}

func (c *RunController) forget(id core.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.cancels[id]; ok {
		cancel()
		delete(c.cancels, id)
	}
}
