package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"agroinvest/internal/dataset"
	apierrors "agroinvest/internal/errors"
	"agroinvest/internal/services"
	"agroinvest/internal/shared/testutil"
)

type staticDataset services.DatasetInfo

func (s staticDataset) Dataset(context.Context) services.DatasetInfo {
	return services.DatasetInfo(s)
}

func TestHealthHandler(t *testing.T) {
	loaded := staticDataset{Source: "embedded", Summary: dataset.Summary{Countries: []string{"AAA"}}}

	tests := []struct {
		name           string
		data           services.DatasetProvider
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{"health", loaded, "/api/health", http.StatusOK, `"status":"ok"`},
		{"health degraded", nil, "/api/health", http.StatusOK, `"status":"degraded"`},
		{"ready", loaded, "/api/health/ready", http.StatusOK, `"status":"ready"`},
		{"not ready without dataset", nil, "/api/health/ready", http.StatusServiceUnavailable, `"status":"not_ready"`},
		{"empty dataset not ready", staticDataset{Source: "empty.yaml"}, "/api/health/ready", http.StatusServiceUnavailable, `"not_ready"`},
		{"live", nil, "/api/health/live", http.StatusOK, `"status":"alive"`},
		{"version", nil, "/api/version", http.StatusOK, `"version"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewHealthHandler(services.NewHealthService(tt.data, logger), logger)

			r := chi.NewRouter()
			r.Mount("/api/health", handler.Routes())
			r.Get("/api/version", handler.Version)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("delegates to exporter", func(t *testing.T) {
		exporter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# HELP agroinvest_roi_computations_total\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exporter, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "agroinvest_roi_computations_total")
	})

	t.Run("disabled exporter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), apierrors.CodeUnavailable)
	})
}
