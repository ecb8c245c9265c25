package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flareshield/app"
	"flareshield/domain/mcmc"
	apperrors "flareshield/internal/errors"
	"flareshield/internal/session"
	"flareshield/internal/testkit"
	"flareshield/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router  *gin.Engine
	handler *Handler
	sink    *testkit.RecordingSink
	runs    *app.RunController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sink := &testkit.RecordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	runs := app.NewRunController(ctx, app.NewRunner(time.Millisecond, sink))
	hub := NewSSEHub()
	t.Cleanup(func() {
		cancel()
		runs.Wait()
		hub.Close()
	})

	defaults := app.DefaultSessionOptions()
	defaults.Config = testkit.SmallConfig(50)
	h := NewHandler(session.NewRegistry(app.DefaultDependencies()), runs, sink, defaults)
	return &fixture{router: NewRouter(h, hub), handler: h, sink: sink, runs: runs}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (f *fixture) create(t *testing.T, body interface{}) SessionResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[SessionResponse](t, w)
}

func TestCreateAndGetSession(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, map[string]interface{}{"seed": 7, "point_count": 40})

	assert.Equal(t, 40, created.DataPoints)
	assert.Equal(t, int64(7), created.Config.Seed)
	assert.Equal(t, 50, created.Config.Iterations)
	assert.False(t, created.Running)

	w := f.do(t, http.MethodGet, "/api/sessions/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[SessionResponse](t, w)
	assert.Equal(t, created.ID, got.ID)

	w = f.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Count int `json:"count"`
	}](t, w)
	assert.Equal(t, 1, list.Count)
}

func TestCreateSessionWithoutBodyUsesDefaults(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 100, decode[SessionResponse](t, w).DataPoints)
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/sessions", map[string]interface{}{"step_size": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeInvalidConfiguration, decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, "/api/sessions", map[string]interface{}{"iterations": -3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decode[ErrorResponse](t, rec).Code)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/sessions/missing", "/api/sessions/missing/trace", "/api/sessions/missing/data"} {
		w := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, apperrors.CodeNotFound, decode[ErrorResponse](t, w).Code)
	}
}

func TestStepUntilComplete(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, nil)
	base := "/api/sessions/" + s.ID.String()

	w := f.do(t, http.MethodPost, base+"/step", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	one := decode[StepResponse](t, w)
	assert.Equal(t, 1, one.Taken)
	require.NotNil(t, one.Accepted)
	assert.Equal(t, 1, one.Iteration)

	w = f.do(t, http.MethodPost, base+"/step?n=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	many := decode[StepResponse](t, w)
	assert.Equal(t, 49, many.Taken)
	assert.Nil(t, many.Accepted)
	assert.True(t, many.Done)

	w = f.do(t, http.MethodPost, base+"/step", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.CodeConflict, decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, base+"/run", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStepRejectsBadCount(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, nil)
	for _, q := range []string{"0", "-1", "abc", "10001"} {
		w := f.do(t, http.MethodPost, "/api/sessions/"+s.ID.String()+"/step?n="+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestPosteriorEndpoints(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, nil)
	base := "/api/sessions/" + s.ID.String()
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/step?n=50", nil).Code)

	w := f.do(t, http.MethodGet, base+"/posterior/tau", nil)
	require.Equal(t, http.StatusOK, w.Code)
	post := decode[mcmc.Posterior](t, w)
	assert.Equal(t, 50, post.Samples)
	assert.Len(t, post.Bins, mcmc.HistogramBins)

	w = f.do(t, http.MethodGet, base+"/posterior/A?burn_in=45", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trimmed := decode[mcmc.Posterior](t, w)
	assert.Equal(t, 5, trimmed.Samples)
	assert.Empty(t, trimmed.Bins)

	w = f.do(t, http.MethodGet, base+"/posterior/beta", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodGet, base+"/posterior/A?burn_in=-2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, base+"/posterior", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[struct {
		Posteriors []mcmc.Posterior `json:"posteriors"`
	}](t, w)
	assert.Len(t, all.Posteriors, 3)
}

func TestTraceDataAndCurve(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, map[string]interface{}{"point_count": 20})
	base := "/api/sessions/" + s.ID.String()
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/step?n=10", nil).Code)

	w := f.do(t, http.MethodGet, base+"/trace?n=4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	w = f.do(t, http.MethodGet, base+"/data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	w = f.do(t, http.MethodGet, base+"/curve?A=1&tau=5&omega=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	curve := decode[struct {
		Curve []app.CurvePoint `json:"curve"`
	}](t, w)
	assert.Len(t, curve.Curve, 20)

	w = f.do(t, http.MethodGet, base+"/curve?A=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurveRejectsNonFiniteValues(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, map[string]interface{}{"point_count": 20})
	base := "/api/sessions/" + s.ID.String()

	for _, query := range []string{"A=NaN", "tau=Inf", "omega=-Inf", "A=1e308&tau=10"} {
		w := f.do(t, http.MethodGet, base+"/curve?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Equal(t, apperrors.CodeInvalidInput, decode[ErrorResponse](t, w).Code, query)
	}
}

func TestCreateSessionRejectsOverflowingTimeRange(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/sessions", map[string]interface{}{"t_max": 1000})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, apperrors.CodeInvalidConfiguration, decode[ErrorResponse](t, w).Code)

	list := f.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, 0, decode[struct {
		Count int `json:"count"`
	}](t, list).Count)
}

func TestResetPublishesEvent(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, nil)
	base := "/api/sessions/" + s.ID.String()
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/step?n=10", nil).Code)

	w := f.do(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[SessionResponse](t, w)
	assert.Equal(t, 0, reset.Iteration)
	assert.Equal(t, 1, f.sink.CountType(ports.EventReset))
}

func TestRunAndStop(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, map[string]interface{}{"iterations": 1000000})
	base := "/api/sessions/" + s.ID.String()

	w := f.do(t, http.MethodPost, base+"/run", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, base+"/run", nil).Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, base+"/step", nil).Code)

	w = f.do(t, http.MethodPost, base+"/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[struct {
		Stopped bool `json:"stopped"`
	}](t, w).Stopped)
	f.runs.Wait()

	w = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, base, nil).Code)
}

func TestEventsRequiresSessionID(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetDefaultsAppliesToNewSessions(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, nil)

	defaults := f.handler.Defaults()
	defaults.Config.Iterations = 75
	defaults.PointCount = 12
	f.handler.SetDefaults(defaults)

	after := f.create(t, nil)
	assert.Equal(t, 75, after.Config.Iterations)
	assert.Equal(t, 12, after.DataPoints)

	w := f.do(t, http.MethodGet, "/api/sessions/"+before.ID.String(), nil)
	assert.Equal(t, 50, decode[SessionResponse](t, w).Config.Iterations)
}
