package api

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"flareshield/app"
	"flareshield/domain/core"
	"flareshield/domain/flare"
	apperrors "flareshield/internal/errors"
	"flareshield/internal/session"
	"flareshield/ports"

	"github.com/gin-gonic/gin"
)

// MaxStepsPerRequest bounds POST /step?n=
const MaxStepsPerRequest = 10000

// CreateSessionRequest overrides the configured defaults for one session; absent fields keep them
type CreateSessionRequest struct {
	Iterations    *int          `json:"iterations"`
	BurnIn        *int          `json:"burn_in"`
	StepSize      *float64      `json:"step_size"`
	Seed          *int64        `json:"seed"`
	HistoryCap    *int          `json:"history_cap"`
	PointCount    *int          `json:"point_count"`
	TMax          *float64      `json:"t_max"`
	TrueParams    *flare.Params `json:"true_params"`
	InitialParams *flare.Params `json:"initial_params"`
	Data          flare.DataSet `json:"data"`
}

// Options applies the request on top of defaults
func (r CreateSessionRequest) Options(defaults app.SessionOptions) app.SessionOptions {
	opts := defaults
	if r.Iterations != nil {
		opts.Config.Iterations = *r.Iterations
	}
	if r.BurnIn != nil {
		opts.Config.BurnIn = *r.BurnIn
	}
	if r.StepSize != nil {
		opts.Config.StepSize = *r.StepSize
	}
	if r.Seed != nil {
		opts.Config.Seed = *r.Seed
	}
	if r.HistoryCap != nil {
		opts.Config.HistoryCap = *r.HistoryCap
	}
	if r.PointCount != nil {
		opts.PointCount = *r.PointCount
	}
	if r.TMax != nil {
		opts.TMax = *r.TMax
	}
	opts.TrueParams = r.TrueParams
	opts.InitialParams = r.InitialParams
	if len(r.Data) > 0 {
		opts.Data = r.Data
	}
	return opts
}

// SessionResponse is a session status plus whether a background run is active
type SessionResponse struct {
	app.Status
	Running bool `json:"running"`
}

// StepResponse reports a POST /step call
type StepResponse struct {
	Taken    int   `json:"taken"`
	Accepted *bool `json:"accepted,omitempty"`
	SessionResponse
}

// Handler serves the session API
type Handler struct {
	registry *session.Registry
	runs     *app.RunController
	events   ports.EventSink

	mu       sync.RWMutex
	defaults app.SessionOptions
}

// NewHandler creates a handler; events receives reset notifications and may be nil
func NewHandler(registry *session.Registry, runs *app.RunController, events ports.EventSink, defaults app.SessionOptions) *Handler {
	return &Handler{registry: registry, runs: runs, events: events, defaults: defaults}
}

// SetDefaults replaces the options later sessions start from; existing sessions keep theirs
func (h *Handler) SetDefaults(defaults app.SessionOptions) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaults = defaults
}

// Defaults returns the options new sessions start from
func (h *Handler) Defaults() app.SessionOptions {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaults
}

func (h *Handler) response(s *app.InferenceSession) SessionResponse {
	return SessionResponse{Status: s.Status(), Running: h.runs.IsRunning(s.ID())}
}

func (h *Handler) lookup(c *gin.Context) (*app.InferenceSession, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	s, err := h.registry.Get(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.InvalidInput("invalid request body: "+err.Error()))
			return
		}
	}

	s, err := h.registry.Create(c.Request.Context(), req.Options(h.Defaults()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.response(s))
}

// ListSessions handles GET /api/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	sessions := h.registry.List()
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, h.response(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out, "count": len(out)})
}

// GetSession handles GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.response(s))
}

// DeleteSession handles DELETE /api/sessions/:id, stopping any background run first
func (h *Handler) DeleteSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	h.runs.Stop(s.ID())
	if err := h.registry.Delete(s.ID()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StepSession handles POST /api/sessions/:id/step?n=1
func (h *Handler) StepSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	n, err := intQuery(c, "n", 1)
	if err != nil {
		respondError(c, err)
		return
	}
	if n < 1 || n > MaxStepsPerRequest {
		respondError(c, apperrors.InvalidInput("n must be between 1 and "+strconv.Itoa(MaxStepsPerRequest)))
		return
	}
	if h.runs.IsRunning(s.ID()) {
		respondError(c, core.ErrRunInProgress)
		return
	}

	resp := StepResponse{}
	if n == 1 {
		outcome, err := s.Step(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Taken = 1
		resp.Accepted = &outcome.Accepted
	} else {
		resp.Taken, err = s.Advance(c.Request.Context(), n)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	resp.SessionResponse = h.response(s)
	c.JSON(http.StatusOK, resp)
}

// RunSession handles POST /api/sessions/:id/run
func (h *Handler) RunSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := h.runs.Start(s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.response(s))
}

// StopSession handles POST /api/sessions/:id/stop
func (h *Handler) StopSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	stopped := h.runs.Stop(s.ID())
	c.JSON(http.StatusOK, gin.H{"stopped": stopped, "session": s.Status()})
}

// ResetSession handles POST /api/sessions/:id/reset, stopping any background run first
func (h *Handler) ResetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if h.runs.Stop(s.ID()) {
		waitStopped(h.runs, s.ID())
	}
	if err := s.Reset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	status := s.Status()
	if h.events != nil {
		h.events.Publish(ports.StepEvent{
			SessionID:  s.ID().String(),
			EventType:  ports.EventReset,
			Iterations: status.Config.Iterations,
			Current:    status.Current,
			Timestamp:  time.Now(),
		})
	}
	log.Printf("[API] session %s reset", s.ID())
	c.JSON(http.StatusOK, h.response(s))
}

// waitStopped polls until the run for id has returned, so a reset never races its last step
func waitStopped(runs *app.RunController, id core.SessionID) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for runs.IsRunning(id) {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// GetData handles GET /api/sessions/:id/data
func (h *Handler) GetData(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	data := s.Data()
	c.JSON(http.StatusOK, gin.H{"points": data, "count": len(data)})
}

// GetTrace handles GET /api/sessions/:id/trace?n=100
func (h *Handler) GetTrace(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	n, err := intQuery(c, "n", app.DefaultTraceLength)
	if err != nil {
		respondError(c, err)
		return
	}
	if n < 0 {
		respondError(c, apperrors.InvalidInput("n must not be negative"))
		return
	}
	trace := s.Trace(n)
	c.JSON(http.StatusOK, gin.H{"trace": trace, "count": len(trace)})
}

// GetPosterior handles GET /api/sessions/:id/posterior/:param?burn_in=0
func (h *Handler) GetPosterior(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	key, err := flare.ParseParamKey(c.Param("param"))
	if err != nil {
		respondError(c, err)
		return
	}
	burnIn, err := intQuery(c, "burn_in", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	post, err := s.Summarize(key, burnIn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetPosteriors handles GET /api/sessions/:id/posterior?burn_in=0
func (h *Handler) GetPosteriors(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	burnIn, err := intQuery(c, "burn_in", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	posteriors, err := s.SummarizeAll(burnIn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posteriors": posteriors})
}

// GetCurve handles GET /api/sessions/:id/curve?A=&tau=&omega=; missing values use the current estimate
func (h *Handler) GetCurve(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	params := s.Status().Current
	for _, key := range flare.Keys {
		raw, present := c.GetQuery(string(key))
		if !present {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			respondError(c, apperrors.InvalidInput("invalid "+string(key)+": "+raw))
			return
		}
		switch key {
		case flare.ParamA:
			params.A = v
		case flare.ParamTau:
			params.Tau = v
		case flare.ParamOmega:
			params.Omega = v
		}
	}

	curve := s.ModelCurve(params)
	for _, point := range curve {
		if math.IsNaN(point.Y) || math.IsInf(point.Y, 0) {
			respondError(c, apperrors.InvalidInput(fmt.Sprintf("curve for %s overflows at t=%g", params, point.T)))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"params": params, "curve": curve})
}

func intQuery(c *gin.Context, name string, defaultValue int) (int, error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + ": " + raw)
	}
	return v, nil
}
