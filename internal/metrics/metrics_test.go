package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuery/zuery/internal/metrics"
)

func TestObserveInterpretation(t *testing.T) {
	m := metrics.New()
	m.ObserveInterpretation(metrics.OutcomeSuccess)
	m.ObserveInterpretation(metrics.OutcomeSuccess)
	m.ObserveInterpretation(metrics.OutcomeParseError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Interpretations.WithLabelValues(metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Interpretations.WithLabelValues(metrics.OutcomeParseError)))
}

func TestInFlight(t *testing.T) {
	m := metrics.New()
	done := m.Begin()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
}

func TestObserveProcessAndRequest(t *testing.T) {
	m := metrics.New()
	m.ObserveProcess(3, 20*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/query", http.StatusOK, time.Millisecond)
	m.ObserveFields(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InterpreterExits.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/query", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveInterpretation(metrics.OutcomeTimeout)
	m.ObserveProcess(0, time.Second)
	m.ObserveRequest("GET", "/", 200, time.Second)
	m.ObserveFields(1)
	m.Begin()()
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := metrics.New()
	m.ObserveInterpretation(metrics.OutcomeLaunchError)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `zuery_interpretations_total{outcome="launch_error"} 1`)
}
