package container

import (
	"context"
	"fmt"
	"log"

	"flareshield/app"
	"flareshield/internal/api"
	"flareshield/internal/config"
	"flareshield/internal/session"
)

// Container holds the server's long-lived components and manages their lifecycle
type Container struct {
	Config *config.Config

	Registry *session.Registry
	Runs     *app.RunController
	SSEHub   *api.SSEHub
	Handler  *api.Handler

	cancel context.CancelFunc
}

// New wires the registry, the background run controller and the SSE hub
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := api.NewSSEHub()
	runner := app.NewRunner(cfg.Runner.StepInterval, hub)

	c := &Container{
		Config:   cfg,
		Registry: session.NewRegistry(app.DefaultDependencies()),
		Runs:     app.NewRunController(ctx, runner),
		SSEHub:   hub,
		cancel:   cancel,
	}
	c.Handler = api.NewHandler(c.Registry, c.Runs, hub, cfg.SessionOptions())

	log.Printf("[Container] initialized (step interval %s)", cfg.Runner.StepInterval)
	return c, nil
}

// Shutdown stops every background run and the SSE hub
func (c *Container) Shutdown(ctx context.Context) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.Runs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown interrupted: %w", ctx.Err())
	}

	c.SSEHub.Close()
	log.Printf("[Container] shutdown complete")
	return nil
}
