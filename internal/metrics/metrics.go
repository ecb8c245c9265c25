package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// stepsTotal counts sampler steps by result
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flareshield_mcmc_steps_total",
		Help: "Total Metropolis steps by result",
	}, []string{"result"})

	// stepDuration tracks single-step latency over the full data set
	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flareshield_mcmc_step_duration_seconds",
		Help:    "Metropolis step duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~260ms
	})

	// sessionsActive tracks sessions held by the registry
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flareshield_sessions_active",
		Help: "Inference sessions currently registered",
	})

	// sessionResets counts session resets
	sessionResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flareshield_session_resets_total",
		Help: "Total session resets",
	})
)

// Result labels
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

// ObserveStep records one step
func ObserveStep(accepted bool, elapsed time.Duration) {
	result := ResultRejected
	if accepted {
		result = ResultAccepted
	}
	stepsTotal.WithLabelValues(result).Inc()
	stepDuration.Observe(elapsed.Seconds())
}

// SessionOpened and SessionClosed keep the active gauge in line with the registry
func SessionOpened() { sessionsActive.Inc() }

func SessionClosed() { sessionsActive.Dec() }

// SessionReset records a reset
func SessionReset() { sessionResets.Inc() }
