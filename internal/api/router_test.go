package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/api"
	mw "github.com/kiranshivaraju/mockview/internal/api/middleware"
	"github.com/kiranshivaraju/mockview/internal/metrics"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- stub key store that never finds a key (all auth fails) ---

type stubKeyStore struct{}

func (s *stubKeyStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubKeyStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

// --- stub counter ---

type stubCounter struct{}

func (c *stubCounter) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router tests ---

func newTestRouter(m *metrics.Metrics) http.Handler {
	deps := api.Dependencies{
		Logger:    zap.NewNop(),
		Auth:      mw.NewAuth(&stubKeyStore{}, zap.NewNop()),
		RateLimit: mw.NewRateLimit(&stubCounter{}, 60, zap.NewNop()),
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		},
	}
	if m != nil {
		deps.Metrics = m
		deps.MetricsHandler = m.Handler()
	}
	return api.NewRouter(deps)
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RegisterEndpoint_Public(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("POST", "/api/v1/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Not wired in this router, but reachable without a key.
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter(nil)
	id := uuid.NewString()

	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/me"},
		{"POST", "/api/v1/interviews"},
		{"GET", "/api/v1/interviews"},
		{"POST", "/api/v1/interviews/bulk-delete"},
		{"GET", "/api/v1/interviews/" + id},
		{"DELETE", "/api/v1/interviews/" + id},
		{"PATCH", "/api/v1/interviews/" + id + "/status"},
		{"PUT", "/api/v1/interviews/" + id + "/answers/0"},
		{"POST", "/api/v1/interviews/" + id + "/feedback"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	m := metrics.New()
	router := newTestRouter(m)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/health", nil))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "http_requests_total"), "missing request counter")
	assert.Contains(t, body, `path="/api/v1/health"`)
}

func TestRouter_MetricsEndpoint_NotMountedWithoutHandler(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
