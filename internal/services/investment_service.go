package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"agroinvest/internal/aggregation"
	"agroinvest/internal/config"
	"agroinvest/internal/dataset"
	apperrors "agroinvest/internal/errors"
	"agroinvest/internal/gaps"
	"agroinvest/internal/infrastructure"
	"agroinvest/internal/roi"
	"agroinvest/internal/selection"
	api "agroinvest/pkg/contracts/api/v1"
	"agroinvest/pkg/contracts/domain"
)

// DefaultSensitivitySteps are the relative changes swept when a sensitivity
// request gives neither values nor steps
var DefaultSensitivitySteps = []float64{-20, -10, 0, 10, 20}

// InvestmentService runs selection, aggregation, gap analysis and ROI over
// one loaded dataset. The dataset is read-only, so every method is safe for
// concurrent use.
type InvestmentService struct {
	model       *dataset.Model
	source      string
	analyzer    *gaps.Analyzer
	options     aggregation.Options
	capacity    roi.CapacityModel
	costRatio   float64
	concurrency int
	maxBatch    int
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger
}

// NewInvestmentService creates the service from a loaded model and the
// analysis section of the configuration. metrics may be nil.
func NewInvestmentService(model *dataset.Model, source string, cfg config.AnalysisConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*InvestmentService, error) {
	if model == nil {
		return nil, apperrors.NewDatasetError("dataset not loaded", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	analyzer, err := gaps.NewAnalyzer(gaps.Thresholds{High: cfg.GapHighThreshold, Medium: cfg.GapMediumThreshold})
	if err != nil {
		return nil, apperrors.NewConfigError("invalid gap thresholds", err)
	}

	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &InvestmentService{
		model:    model,
		source:   source,
		analyzer: analyzer,
		options:  aggregation.Options{TrendYears: cfg.TrendYears},
		capacity: roi.CapacityModel{
			CapacityT:        cfg.Capacity.CapacityT,
			UtilizationPct:   cfg.Capacity.UtilizationPct,
			MarginUSDPerT:    cfg.Capacity.MarginUSDPerT,
			OperatingCostPct: cfg.Capacity.OperatingCostPct,
		},
		costRatio:   cfg.DefaultCostRatio,
		concurrency: concurrency,
		maxBatch:    cfg.MaxBatchSize,
		metrics:     metrics,
		logger:      infrastructure.WithComponent(logger, "investment_service"),
	}, nil
}

// DatasetInfo describes the loaded dataset
type DatasetInfo struct {
	Source string `json:"source"`
	dataset.Summary
}

// SelectionResult is the outcome of applying a selection
type SelectionResult struct {
	Criteria  selection.Criteria  `json:"criteria"`
	Countries []string            `json:"countries"`
	Counts    selection.Counts    `json:"counts"`
	Warnings  []selection.Warning `json:"warnings"`
}

// RollupResult is the aggregation of a selection
type RollupResult struct {
	Rollup   aggregation.Rollup  `json:"rollup"`
	Warnings []selection.Warning `json:"warnings"`
}

// OverviewResult is the market overview of a selection
type OverviewResult struct {
	Overview    aggregation.Overview     `json:"overview"`
	PriceTrends []aggregation.PriceTrend `json:"price_trends"`
	Warnings    []selection.Warning      `json:"warnings"`
}

// GapsResult is the gap analysis of a selection
type GapsResult struct {
	Findings   []gaps.GapFinding     `json:"findings"`
	Skipped    []gaps.Skipped        `json:"skipped"`
	BySeverity map[gaps.Severity]int `json:"by_severity"`
	Thresholds gaps.Thresholds       `json:"thresholds"`
	Warnings   []selection.Warning   `json:"warnings"`
}

// OpportunitiesResult is the ranked opportunity list of a selection
type OpportunitiesResult struct {
	Opportunities []gaps.RankedOpportunity `json:"opportunities"`
	Warnings      []selection.Warning      `json:"warnings"`
}

// BatchROIResult holds per-item results in request order
type BatchROIResult struct {
	Results []roi.BatchResult `json:"results"`
	Failed  int               `json:"failed"`
}

// Dataset returns the summary of the loaded dataset
func (s *InvestmentService) Dataset(ctx context.Context) DatasetInfo {
	return DatasetInfo{Source: s.source, Summary: s.model.Summary()}
}

// Criteria converts an API selection into engine criteria
func Criteria(req api.SelectionRequest) selection.Criteria {
	return selection.Criteria{
		Countries:  req.Countries,
		Categories: req.Categories,
		YearFrom:   req.YearFrom,
		YearTo:     req.YearTo,
		SizeBand:   selection.SizeBand(strings.ToLower(strings.TrimSpace(req.SizeBand))),
	}
}

// Select applies the criteria and reports what matched
func (s *InvestmentService) Select(ctx context.Context, c selection.Criteria) SelectionResult {
	v := s.selectView(ctx, c)
	return SelectionResult{
		Criteria:  v.Criteria(),
		Countries: v.Countries(),
		Counts:    v.Counts(),
		Warnings:  warningsOf(v),
	}
}

// Rollup aggregates the selected records
func (s *InvestmentService) Rollup(ctx context.Context, c selection.Criteria) RollupResult {
	v := s.selectView(ctx, c)
	return RollupResult{Rollup: s.aggregate(ctx, v), Warnings: warningsOf(v)}
}

// Overview summarizes the selected market
func (s *InvestmentService) Overview(ctx context.Context, c selection.Criteria) OverviewResult {
	v := s.selectView(ctx, c)
	r := s.aggregate(ctx, v)
	return OverviewResult{
		Overview:    aggregation.Summarize(v, r),
		PriceTrends: aggregation.PriceTrends(v),
		Warnings:    warningsOf(v),
	}
}

// Gaps classifies processing and trade gaps in the selection
func (s *InvestmentService) Gaps(ctx context.Context, c selection.Criteria) GapsResult {
	v := s.selectView(ctx, c)
	res := s.analyze(ctx, v, s.aggregate(ctx, v))
	skipped := res.Skipped
	if skipped == nil {
		skipped = []gaps.Skipped{}
	}
	return GapsResult{
		Findings:   res.Findings,
		Skipped:    skipped,
		BySeverity: res.CountBySeverity(),
		Thresholds: s.analyzer.Thresholds(),
		Warnings:   warningsOf(v),
	}
}

// Opportunities ranks the selected opportunities by the gap each addresses
func (s *InvestmentService) Opportunities(ctx context.Context, c selection.Criteria) OpportunitiesResult {
	v := s.selectView(ctx, c)
	res := s.analyze(ctx, v, s.aggregate(ctx, v))
	return OpportunitiesResult{
		Opportunities: gaps.RankOpportunities(v.Opportunities(), res.Findings),
		Warnings:      warningsOf(v),
	}
}

// Opportunity looks up one opportunity by ID
func (s *InvestmentService) Opportunity(ctx context.Context, id string) (domain.Opportunity, error) {
	opp, ok := s.model.Opportunity(id)
	if !ok {
		return domain.Opportunity{}, apperrors.NewNotFoundError("opportunity "+id).WithContext("opportunity_id", id)
	}
	return opp, nil
}

// ComputeROI computes the ROI of one opportunity
func (s *InvestmentService) ComputeROI(ctx context.Context, id string, req api.ROIRequest) (domain.ROIScenario, error) {
	ctx, span := infrastructure.StartSpan(ctx, "investment.ComputeROI",
		attribute.String("opportunity_id", id),
		attribute.String("mode", req.Mode()),
	)
	defer span.End()

	opp, err := s.Opportunity(ctx, id)
	if err != nil {
		return domain.ROIScenario{}, err
	}

	scenario, err := s.computeROI(ctx, opp, req)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.ROIScenario{}, err
	}
	return scenario, nil
}

// Sensitivity sweeps one assumption of an opportunity's ROI
func (s *InvestmentService) Sensitivity(ctx context.Context, id string, req api.SensitivityRequest) (roi.SensitivityResult, error) {
	ctx, span := infrastructure.StartSpan(ctx, "investment.Sensitivity",
		attribute.String("opportunity_id", id),
		attribute.String("parameter", req.Parameter),
	)
	defer span.End()

	opp, err := s.Opportunity(ctx, id)
	if err != nil {
		return roi.SensitivityResult{}, err
	}

	param := roi.Parameter(strings.ToLower(strings.TrimSpace(req.Parameter)))
	if !param.IsValid() {
		return roi.SensitivityResult{}, fmt.Errorf("%w: %q", roi.ErrUnknownParameter, req.Parameter)
	}

	base, err := s.assumptions(opp, req.ROIRequest)
	if err != nil {
		return roi.SensitivityResult{}, err
	}

	values := req.Values
	if len(values) == 0 {
		center, ok := param.Current(opp, base)
		if !ok {
			return roi.SensitivityResult{}, apperrors.NewAppValidationError(
				fmt.Sprintf("values are required to sweep %s when the request does not set it", param))
		}
		steps := req.StepsPct
		if len(steps) == 0 {
			steps = DefaultSensitivitySteps
		}
		values = roi.RelativeSteps(center, steps...)
	}

	start := time.Now()
	res, err := roi.Sensitivity(opp, base, param, values)
	infrastructure.RecordAnalysis(ctx, s.metrics, "sensitivity", time.Since(start))
	if err != nil {
		return roi.SensitivityResult{}, err
	}

	s.logger.InfoContext(ctx, "sensitivity computed",
		slog.String("opportunity_id", id),
		slog.String("parameter", string(param)),
		slog.Int("points", len(res.Points)),
		slog.Int("failed", res.Failed()),
	)
	return res, nil
}

// Batch computes ROI for many opportunities on a bounded worker pool.
// Results keep request order; a failing item never stops the others.
func (s *InvestmentService) Batch(ctx context.Context, req api.BatchROIRequest) (BatchROIResult, error) {
	if s.maxBatch > 0 && len(req.Items) > s.maxBatch {
		return BatchROIResult{}, apperrors.NewAppValidationError(
			fmt.Sprintf("batch has %d items, the maximum is %d", len(req.Items), s.maxBatch))
	}
	return s.runBatch(ctx, req.Items)
}

func (s *InvestmentService) runBatch(ctx context.Context, items []api.BatchROIItem) (BatchROIResult, error) {
	ctx, span := infrastructure.StartSpan(ctx, "investment.Batch", attribute.Int("items", len(items)))
	defer span.End()

	start := time.Now()
	results := make([]roi.BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.batchItem(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchROIResult{}, err
	}

	out := BatchROIResult{Results: results, Failed: roi.Failures(results)}
	infrastructure.RecordAnalysis(ctx, s.metrics, "roi_batch", time.Since(start))
	s.logger.InfoContext(ctx, "batch roi computed",
		slog.Int("items", len(results)),
		slog.Int("failed", out.Failed),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func (s *InvestmentService) batchItem(ctx context.Context, item api.BatchROIItem) roi.BatchResult {
	res := roi.BatchResult{OpportunityID: item.OpportunityID}
	opp, err := s.Opportunity(ctx, item.OpportunityID)
	if err == nil {
		var scenario domain.ROIScenario
		scenario, err = s.computeROI(ctx, opp, item.ROIRequest)
		if err == nil {
			res.Scenario = &scenario
			return res
		}
	}
	res.Err = err
	res.Error = err.Error()
	return res
}

func (s *InvestmentService) computeROI(ctx context.Context, opp domain.Opportunity, req api.ROIRequest) (domain.ROIScenario, error) {
	mode := req.Mode()
	a, err := s.assumptions(opp, req)
	if err == nil {
		var scenario domain.ROIScenario
		scenario, err = roi.ComputeROI(opp, a)
		if err == nil {
			infrastructure.RecordROIOutcome(ctx, s.metrics, mode, "ok")
			return scenario, nil
		}
	}

	outcome := "error"
	if errors.Is(err, roi.ErrInvalidAssumption) {
		outcome = "invalid_assumption"
	}
	infrastructure.RecordROIOutcome(ctx, s.metrics, mode, outcome)
	s.logger.WarnContext(ctx, "roi rejected",
		slog.String("opportunity_id", opp.ID),
		slog.String("mode", mode),
		slog.String("error", err.Error()),
	)
	return domain.ROIScenario{}, err
}

// assumptions resolves a request into calculator inputs. Capacity requests
// start from the configured plant model, explicit ones from the default
// cost ratio.
func (s *InvestmentService) assumptions(opp domain.Opportunity, req api.ROIRequest) (roi.FinancialAssumptions, error) {
	var a roi.FinancialAssumptions

	if c := req.Capacity; c != nil {
		model := s.capacity
		if c.SizeToGap {
			model = model.ForOpportunity(opp)
		}
		override(&model.CapacityT, c.CapacityT)
		override(&model.UtilizationPct, c.UtilizationPct)
		override(&model.MarginUSDPerT, c.MarginUSDPerT)
		override(&model.OperatingCostPct, c.OperatingCostPct)
		if err := model.Validate(opp.ID); err != nil {
			return roi.FinancialAssumptions{}, err
		}
		a = model.Assumptions(req.InvestmentAmount)
	} else {
		if req.AnnualRevenue == nil {
			return roi.FinancialAssumptions{}, apperrors.NewAppValidationError("annual_revenue is required without a capacity block")
		}
		a = roi.FinancialAssumptions{
			InvestmentAmount: req.InvestmentAmount,
			AnnualRevenue:    *req.AnnualRevenue,
			AnnualCostRatio:  s.costRatio,
		}
		override(&a.AnnualCostRatio, req.AnnualCostRatio)
	}

	a.DiscountRate = req.DiscountRate
	a.HorizonYears = req.HorizonYears
	return a, nil
}

func override(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func (s *InvestmentService) selectView(ctx context.Context, c selection.Criteria) selection.View {
	start := time.Now()
	v := selection.Select(s.model, c)
	infrastructure.RecordAnalysis(ctx, s.metrics, "selection", time.Since(start))

	for _, w := range v.Warnings() {
		infrastructure.RecordSelectionWarning(ctx, s.metrics, string(w.Kind))
	}
	if n := v.WarningCount(); n > 0 {
		s.logger.InfoContext(ctx, "selection inputs matched nothing",
			slog.Int("warnings", n),
			slog.Any("warning_list", v.Warnings()),
		)
	}
	return v
}

func (s *InvestmentService) aggregate(ctx context.Context, v selection.View) aggregation.Rollup {
	start := time.Now()
	r := aggregation.Aggregate(v, s.options)
	infrastructure.RecordAnalysis(ctx, s.metrics, "aggregation", time.Since(start))
	infrastructure.RecordUnitMismatches(ctx, s.metrics, r.UnitMismatchCount())
	return r
}

func (s *InvestmentService) analyze(ctx context.Context, v selection.View, r aggregation.Rollup) gaps.Result {
	start := time.Now()
	res := s.analyzer.AnalyzeGaps(r, v.Facilities())
	infrastructure.RecordAnalysis(ctx, s.metrics, "gaps", time.Since(start))

	for _, f := range res.Findings {
		infrastructure.RecordGapFinding(ctx, s.metrics, string(f.Kind), string(f.Severity))
	}
	for _, sk := range res.Skipped {
		infrastructure.RecordSkippedGap(ctx, s.metrics, string(sk.Kind))
	}
	return res
}

func warningsOf(v selection.View) []selection.Warning {
	w := v.Warnings()
	if w == nil {
		return []selection.Warning{}
	}
	return w
}
