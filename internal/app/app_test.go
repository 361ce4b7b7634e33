package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinvest/internal/config"
	apierrors "agroinvest/internal/errors"
	"agroinvest/internal/shared/testutil"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "prometheus"
	cfg.Server.MaxBodyBytes = 4096
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.OTelProviders.Shutdown(context.Background())
	})
	return a
}

func serve(a *Application, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	a := newTestApp(t, testConfig())

	require.NotNil(t, a.Services)
	assert.NotNil(t, a.Services.Investment)
	assert.NotNil(t, a.Services.Health)
	assert.NotNil(t, a.Router)
	assert.Equal(t, ":8080", a.Server.Addr)
	assert.Equal(t, "embedded", a.Services.Investment.Dataset(context.Background()).Source)
}

func TestNew_DatasetErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", "testdata/does-not-exist.yaml"},
		{"unsupported format", "dataset.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Telemetry.MetricExporter = "none"
			cfg.Dataset.Path = tt.path

			logger, _ := testutil.NewTestLogger(t)
			_, err := New(cfg, logger)

			var appErr *apierrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apierrors.ErrTypeDataset, appErr.Type)
			assert.Equal(t, tt.path, appErr.Context["path"])
		})
	}
}

func TestRouter(t *testing.T) {
	a := newTestApp(t, testConfig())

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{"health", http.MethodGet, "/api/health", "", http.StatusOK, `"status":"ok"`},
		{"ready", http.MethodGet, "/api/health/ready", "", http.StatusOK, `"ready"`},
		{"live", http.MethodGet, "/api/health/live", "", http.StatusOK, `"alive"`},
		{"version", http.MethodGet, "/api/version", "", http.StatusOK, `"go_version"`},
		{"dataset", http.MethodGet, "/api/dataset", "", http.StatusOK, `"source":"embedded"`},
		{"opportunities", http.MethodPost, "/api/opportunities", "", http.StatusOK, `"opportunities"`},
		{"gaps with selection", http.MethodPost, "/api/gaps", `{"categories":["oilseeds"]}`, http.StatusOK, `"findings"`},
		{"unknown opportunity", http.MethodGet, "/api/opportunities/no-such-thing", "", http.StatusNotFound, apierrors.TypeOpportunityNotFound},
		{"invalid JSON", http.MethodPost, "/api/rollup", `{"countries":`, http.StatusBadRequest, apierrors.CodeInvalidRequest},
		{"oversized body", http.MethodPost, "/api/rollup", `{"countries":["` + strings.Repeat("A", 5000) + `"]}`, http.StatusRequestEntityTooLarge, apierrors.TypePayloadTooLarge},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, apierrors.TypeNotFound},
		{"wrong method", http.MethodGet, "/api/gaps", "", http.StatusMethodNotAllowed, apierrors.TypeMethodNotAllowed},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "go_goroutines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestRouter_RequestIDAndSecurityHeaders(t *testing.T) {
	a := newTestApp(t, testConfig())

	rec := serve(a, http.MethodGet, "/api/health", "")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.MetricExporter = "none"
	a := newTestApp(t, cfg)

	rec := serve(a, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	a := newTestApp(t, cfg)

	first := serve(a, http.MethodGet, "/api/dataset", "")
	second := serve(a, http.MethodGet, "/api/dataset", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// probes are not rate limited
	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/api/health/live", "").Code)
}

func TestStartStop(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.Start(ctx, cancel))
	require.NoError(t, a.Stop(ctx))
}
