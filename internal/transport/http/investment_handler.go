package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"agroinvest/internal/aggregation"
	apierrors "agroinvest/internal/errors"
	"agroinvest/internal/exporter"
	"agroinvest/internal/infrastructure"
	appmw "agroinvest/internal/middleware"
	"agroinvest/internal/selection"
	"agroinvest/internal/services"
	api "agroinvest/pkg/contracts/api/v1"
)

// Report download formats
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// InvestmentHandler serves the analysis API with RFC 7807 errors
type InvestmentHandler struct {
	service      InvestmentServiceInterface
	validator    *appmw.ValidationMiddleware
	query        *appmw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(service InvestmentServiceInterface, validator *appmw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *InvestmentHandler {
	return &InvestmentHandler{
		service:      service,
		validator:    validator,
		query:        appmw.NewQueryParamValidator(logger, errorHandler),
		logger:       infrastructure.WithComponent(logger, "investment_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *InvestmentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dataset", h.GetDataset)

	// Selection-driven analyses; an empty body selects everything
	r.Post("/selection", h.PostSelection)
	r.Post("/rollup", h.PostRollup)
	r.Post("/overview", h.PostOverview)
	r.Post("/gaps", h.PostGaps)
	r.Post("/opportunities", h.PostOpportunities)
	r.Post("/report", h.PostReport)

	// Assumption endpoints always carry a JSON body
	requireJSON := appmw.ContentTypeValidator("application/json")

	r.Route("/opportunities/{id}", func(r chi.Router) {
		r.Use(h.OpportunityCtx)
		r.Get("/", h.GetOpportunity)
		r.With(requireJSON).Post("/roi", h.PostROI)
		r.With(requireJSON).Post("/sensitivity", h.PostSensitivity)
	})

	r.With(requireJSON).Post("/roi/batch", h.PostBatchROI)

	return r
}

// OpportunityCtx middleware validates the opportunity ID parameter
func (h *InvestmentHandler) OpportunityCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.validator.ValidateVar("id", id, "required,slug"); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetDataset handles GET /api/dataset
func (h *InvestmentHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.service.Dataset(r.Context()))
}

// PostSelection handles POST /api/selection
func (h *InvestmentHandler) PostSelection(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}
	respond(w, r, h.service.Select(r.Context(), c))
}

// PostRollup handles POST /api/rollup
func (h *InvestmentHandler) PostRollup(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}
	respond(w, r, h.service.Rollup(r.Context(), c))
}

// PostOverview handles POST /api/overview. ?top=N trims the top crop and
// import lists.
func (h *InvestmentHandler) PostOverview(w http.ResponseWriter, r *http.Request) {
	top, ok := h.query.ValidateInt(w, r, "top", 1, aggregation.TopImportsLimit, aggregation.TopImportsLimit)
	if !ok {
		return
	}
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	res := h.service.Overview(r.Context(), c)
	if len(res.Overview.TopCrops) > top {
		res.Overview.TopCrops = res.Overview.TopCrops[:top]
	}
	if len(res.Overview.TopImports) > top {
		res.Overview.TopImports = res.Overview.TopImports[:top]
	}
	respond(w, r, res)
}

// PostGaps handles POST /api/gaps
func (h *InvestmentHandler) PostGaps(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}
	respond(w, r, h.service.Gaps(r.Context(), c))
}

// PostOpportunities handles POST /api/opportunities
func (h *InvestmentHandler) PostOpportunities(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}
	respond(w, r, h.service.Opportunities(r.Context(), c))
}

// GetOpportunity handles GET /api/opportunities/{id}
func (h *InvestmentHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	opp, err := h.service.Opportunity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, opp)
}

// PostROI handles POST /api/opportunities/{id}/roi
func (h *InvestmentHandler) PostROI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req api.ROIRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "computing roi",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("opportunity_id", id),
		slog.String("mode", req.Mode()),
	)

	scenario, err := h.service.ComputeROI(r.Context(), id, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, scenario)
}

// PostSensitivity handles POST /api/opportunities/{id}/sensitivity
func (h *InvestmentHandler) PostSensitivity(w http.ResponseWriter, r *http.Request) {
	var req api.SensitivityRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Sensitivity(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	respond(w, r, result)
}

// PostBatchROI handles POST /api/roi/batch. Per-item failures are part of
// a 200 response; only request-level problems fail the call.
func (h *InvestmentHandler) PostBatchROI(w http.ResponseWriter, r *http.Request) {
	var req api.BatchROIRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Batch(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Results),
	})
}

// PostReport handles POST /api/report?format=json|xlsx|csv
func (h *InvestmentHandler) PostReport(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{FormatJSON, FormatXLSX, FormatCSV}, FormatJSON)
	if !ok {
		return
	}
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	report, err := h.service.BuildReport(r.Context(), c)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == FormatJSON {
		respond(w, r, report)
		return
	}

	var buf bytes.Buffer
	contentType := contentTypeXLSX
	if format == FormatXLSX {
		err = exporter.WriteXLSX(&buf, report)
	} else {
		contentType = "text/csv; charset=utf-8"
		err = exporter.WriteOpportunitiesCSV(&buf, report)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("failed to export report", err).
			WithContext("format", format))
		return
	}

	h.logger.InfoContext(r.Context(), "report exported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("run_id", report.RunID),
		slog.String("format", format),
		slog.Int("bytes", buf.Len()),
	)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="opportunity-report-%s.%s"`, report.RunID, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// criteria decodes an optional SelectionRequest body
func (h *InvestmentHandler) criteria(w http.ResponseWriter, r *http.Request) (selection.Criteria, bool) {
	var req api.SelectionRequest
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return services.Criteria(req), true
	}
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return selection.Criteria{}, false
	}
	return services.Criteria(req), true
}

// respond writes the success envelope
func respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}
