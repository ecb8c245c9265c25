package ports

import (
	"time"

	"flareshield/domain/flare"
)

// StepEvent is published after every sampler step a runner drives
type StepEvent struct {
	SessionID      string       `json:"session_id"`
	EventType      string       `json:"event_type"`
	Iteration      int          `json:"iteration"`
	Iterations     int          `json:"iterations"`
	Accepted       bool         `json:"accepted"`
	AcceptanceRate float64      `json:"acceptance_rate"`
	Current        flare.Params `json:"current"`
	Timestamp      time.Time    `json:"timestamp"`
}

// Event types
const (
	EventStep     = "step"
	EventComplete = "complete"
	EventStopped  = "stopped"
	EventReset    = "reset"
)

// EventSink receives step events; implementations must not block the caller
type EventSink interface {
	Publish(event StepEvent)
}
