package session

import (
	"context"
	"log"
	"sort"
	"sync"

	"flareshield/app"
	"flareshield/domain/core"
	"flareshield/internal/metrics"
)

// Registry holds the inference sessions of one process
type Registry struct {
	deps app.Dependencies

	mu       sync.RWMutex
	sessions map[core.SessionID]*app.InferenceSession
}

// NewRegistry creates an empty registry whose sessions share deps
func NewRegistry(deps app.Dependencies) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[core.SessionID]*app.InferenceSession),
	}
}

// Create builds a new session from opts and registers it
func (r *Registry) Create(ctx context.Context, opts app.SessionOptions) (*app.InferenceSession, error) {
	s, err := app.NewInferenceSession(ctx, r.deps, opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID()] = s
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SessionOpened()
	log.Printf("[Registry] registered session %s (%d active)", s.ID(), count)
	return s, nil
}

// Get returns a registered session
func (r *Registry) Get(id core.SessionID) (*app.InferenceSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, core.NewSessionNotFoundError(id.String())
	}
	return s, nil
}

// List returns every session, oldest first
func (r *Registry) List() []*app.InferenceSession {
	r.mu.RLock()
	out := make([]*app.InferenceSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	// IDs are time-ordered
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Delete removes a session; it returns core.ErrSessionNotFound for unknown ids
func (r *Registry) Delete(id core.SessionID) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return core.NewSessionNotFoundError(id.String())
	}
	metrics.SessionClosed()
	log.Printf("[Registry] removed session %s", id)
	return nil
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
