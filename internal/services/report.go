package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agroinvest/internal/aggregation"
	"agroinvest/internal/gaps"
	"agroinvest/internal/roi"
	"agroinvest/internal/selection"
	api "agroinvest/pkg/contracts/api/v1"
)

// Report bundles every analysis of one selection for export
type Report struct {
	RunID         string                   `json:"run_id"`
	GeneratedAt   time.Time                `json:"generated_at"`
	Source        string                   `json:"source"`
	Criteria      selection.Criteria       `json:"criteria"`
	Overview      aggregation.Overview     `json:"overview"`
	PriceTrends   []aggregation.PriceTrend `json:"price_trends"`
	Rollup        aggregation.Rollup       `json:"rollup"`
	Gaps          gaps.Result              `json:"gaps"`
	Opportunities []gaps.RankedOpportunity `json:"opportunities"`
	Scenarios     []roi.BatchResult        `json:"scenarios"`
	Warnings      []selection.Warning      `json:"warnings"`
}

// BuildReport runs the full analysis of a selection. Each ranked
// opportunity gets a capacity-model ROI sized to its market gap.
func (s *InvestmentService) BuildReport(ctx context.Context, c selection.Criteria) (*Report, error) {
	start := time.Now()

	v := s.selectView(ctx, c)
	r := s.aggregate(ctx, v)
	res := s.analyze(ctx, v, r)
	ranked := gaps.RankOpportunities(v.Opportunities(), res.Findings)

	batch := api.BatchROIRequest{Items: make([]api.BatchROIItem, len(ranked))}
	for i, ro := range ranked {
		batch.Items[i] = api.BatchROIItem{
			OpportunityID: ro.Opportunity.ID,
			ROIRequest:    api.ROIRequest{Capacity: &api.CapacityRequest{SizeToGap: true}},
		}
	}

	// Report size is bounded by the dataset, not by the API batch limit
	scenarios, err := s.runBatch(ctx, batch.Items)
	if err != nil {
		return nil, fmt.Errorf("compute report scenarios: %w", err)
	}

	report := &Report{
		RunID:         uuid.New().String(),
		GeneratedAt:   time.Now().UTC(),
		Source:        s.source,
		Criteria:      v.Criteria(),
		Overview:      aggregation.Summarize(v, r),
		PriceTrends:   aggregation.PriceTrends(v),
		Rollup:        r,
		Gaps:          res,
		Opportunities: ranked,
		Scenarios:     scenarios.Results,
		Warnings:      warningsOf(v),
	}

	s.logger.InfoContext(ctx, "report built",
		slog.String("run_id", report.RunID),
		slog.Int("findings", len(res.Findings)),
		slog.Int("opportunities", len(ranked)),
		slog.Int("roi_failed", scenarios.Failed),
		slog.Duration("duration", time.Since(start)),
	)
	return report, nil
}
