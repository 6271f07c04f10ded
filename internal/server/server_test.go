package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dc-tec/cert-sync-controller/internal/controller"
)

func getBody(t *testing.T, handler http.Handler, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHealthHandler_NoHeartbeat(t *testing.T) {
	status := controller.NewStatus()
	code, body := getBody(t, HealthHandler(status, time.Now), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "no heartbeat", body)
}

func TestHealthHandler_Fresh(t *testing.T) {
	status := controller.NewStatus()
	status.RecordTick(time.Now())

	code, body := getBody(t, HealthHandler(status, time.Now), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body)
}

func TestHealthHandler_Stale(t *testing.T) {
	status := controller.NewStatus()
	tickTime := time.Now()
	status.RecordTick(tickTime)

	// The heartbeat threshold is 120s; a heartbeat that old is stale.
	now := func() time.Time { return tickTime.Add(120 * time.Second) }
	code, body := getBody(t, HealthHandler(status, now), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "stale", body)
}

func TestHealthHandler_JustUnderThreshold(t *testing.T) {
	status := controller.NewStatus()
	tickTime := time.Now()
	status.RecordTick(tickTime)

	now := func() time.Time { return tickTime.Add(119 * time.Second) }
	code, _ := getBody(t, HealthHandler(status, now), "/healthz")
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsEndpoint_SeriesPresent(t *testing.T) {
	status := controller.NewStatus()
	status.MarkUp()
	status.RecordAttempt(nil)
	status.RecordTick(time.Now())

	srv := NewMetrics(":0")
	code, body := getBody(t, srv.Handler, "/metrics")
	require.Equal(t, http.StatusOK, code)

	for _, series := range []string{
		"certsync_up",
		"certsync_sync_total",
		"certsync_sync_success_total",
		"certsync_sync_failure_total",
		"certsync_last_sync_timestamp_seconds",
	} {
		assert.Contains(t, body, series)
	}
	assert.Contains(t, body, "certsync_up 1")
}
