package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStepCountsByResult(t *testing.T) {
	accepted := testutil.ToFloat64(stepsTotal.WithLabelValues(ResultAccepted))
	rejected := testutil.ToFloat64(stepsTotal.WithLabelValues(ResultRejected))

	ObserveStep(true, time.Microsecond)
	ObserveStep(false, time.Microsecond)
	ObserveStep(false, time.Microsecond)

	assert.Equal(t, accepted+1, testutil.ToFloat64(stepsTotal.WithLabelValues(ResultAccepted)))
	assert.Equal(t, rejected+2, testutil.ToFloat64(stepsTotal.WithLabelValues(ResultRejected)))
}

func TestSessionGaugeAndResets(t *testing.T) {
	active := testutil.ToFloat64(sessionsActive)
	resets := testutil.ToFloat64(sessionResets)

	SessionOpened()
	SessionOpened()
	SessionClosed()
	SessionReset()

	assert.Equal(t, active+1, testutil.ToFloat64(sessionsActive))
	assert.Equal(t, resets+1, testutil.ToFloat64(sessionResets))
}
