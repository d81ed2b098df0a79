package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/compliance-dashboard/internal/adapter/http"
	"github.com/couchcryptid/compliance-dashboard/internal/domain"
	"github.com/couchcryptid/compliance-dashboard/internal/presentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSession struct {
	mu       sync.Mutex
	snap     domain.Snapshot
	next     domain.Snapshot
	loading  bool
	loads    int
	deadline bool
	ctxErr   error
}

func (m *mockSession) CheckReadiness(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap.IsZero() {
		return assert.AnError
	}
	return nil
}

func (m *mockSession) Load(ctx context.Context) (domain.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, m.deadline = ctx.Deadline()
	m.ctxErr = ctx.Err()
	m.loads++
	m.snap = m.next
	return m.snap.Clone(), true
}

func (m *mockSession) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

func (m *mockSession) Loading() bool { return m.loading }

func fallbackSnapshot(id string) domain.Snapshot {
	return domain.Snapshot{
		LoadID:   id,
		Records:  domain.FallbackProjects(),
		Origin:   domain.OriginFallback,
		Degraded: true,
		Reason:   "upstream unavailable",
		LoadedAt: time.Date(2025, 11, 24, 8, 0, 0, 0, time.UTC),
	}
}

func newTestServer(session *mockSession) *httpadapter.Server {
	return httpadapter.NewServer(":0", session, time.Second, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenLoaded(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{snap: fallbackSnapshot("a")}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503BeforeFirstLoad(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(&mockSession{snap: fallbackSnapshot("a"), loading: true})

	rec := get(t, srv, "/api/v1/dashboard")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body presentation.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 73, body.GlobalCompliance)
	assert.True(t, body.Status.Degraded)
	assert.True(t, body.Status.Loading)
	assert.Equal(t, "a", body.Status.LoadID)
	assert.Len(t, body.MapMarkers, 4)
	assert.Len(t, body.AlertList, 1)
}

func TestViewEndpointsBeforeFirstLoad(t *testing.T) {
	srv := newTestServer(&mockSession{})
	for _, path := range []string{"/api/v1/dashboard", "/api/v1/markers", "/api/v1/tiers", "/api/v1/alerts"} {
		t.Run(path, func(t *testing.T) {
			rec := get(t, srv, path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		})
	}
}

func TestMarkersEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{snap: fallbackSnapshot("a")}), "/api/v1/markers")
	require.Equal(t, http.StatusOK, rec.Code)

	var markers []presentation.MapMarker
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &markers))
	require.Len(t, markers, 4)
	assert.Equal(t, "Hospital de Leiria", markers[0].Label)
	assert.Equal(t, "green", markers[0].Color)
}

func TestTiersEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{snap: fallbackSnapshot("a")}), "/api/v1/tiers")
	require.Equal(t, http.StatusOK, rec.Code)

	var series []presentation.TierPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series, 3)
	assert.Equal(t, domain.TierCompliant, series[0].Tier)
	assert.Equal(t, 2, series[0].Count)
}

func TestAlertsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{snap: fallbackSnapshot("a")}), "/api/v1/alerts")
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []presentation.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "3", alerts[0].ProjectID)
	assert.Equal(t, presentation.UrgentReportAction, alerts[0].Action)
}

func TestTrendEndpointServesWithoutSnapshot(t *testing.T) {
	rec := get(t, newTestServer(&mockSession{}), "/api/v1/trend")
	require.Equal(t, http.StatusOK, rec.Code)

	var trend []presentation.TrendPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
	assert.Len(t, trend, 4)
}

func TestReloadEndpoint(t *testing.T) {
	session := &mockSession{snap: fallbackSnapshot("a"), next: fallbackSnapshot("b")}
	srv := newTestServer(session)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body presentation.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b", body.Status.LoadID)
	assert.Equal(t, 1, session.loads)
	assert.True(t, session.deadline, "reload runs with a bounded context")
}

func TestReloadSurvivesClientDisconnect(t *testing.T) {
	session := &mockSession{snap: fallbackSnapshot("a"), next: fallbackSnapshot("b")}
	srv := newTestServer(session)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, 1, session.loads)
	assert.NoError(t, session.ctxErr, "load context is detached from the request")
	assert.True(t, session.deadline, "load is still bounded by the reload timeout")
	assert.Equal(t, "b", session.Snapshot().LoadID)
}

func TestReloadRejectsGet(t *testing.T) {
	session := &mockSession{snap: fallbackSnapshot("a")}
	rec := get(t, newTestServer(session), "/api/v1/reload")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Zero(t, session.loads)
}
