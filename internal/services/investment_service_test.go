package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"agroinvest/internal/config"
	"agroinvest/internal/dataset/datasettest"
	apperrors "agroinvest/internal/errors"
	"agroinvest/internal/infrastructure"
	"agroinvest/internal/roi"
	"agroinvest/internal/selection"
	"agroinvest/internal/shared/testutil"
	api "agroinvest/pkg/contracts/api/v1"
)

func newTestService(t *testing.T) (*InvestmentService, *sdkmetric.ManualReader) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	svc, err := NewInvestmentService(datasettest.Model(t), "synthetic", config.Default().Analysis, metrics, logger)
	require.NoError(t, err)
	return svc, reader
}

func sumCounter(t *testing.T, reader *sdkmetric.ManualReader, name string, attr, value string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(attr)); attr == "" || (ok && v.AsString() == value) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestNewInvestmentService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	_, err := NewInvestmentService(nil, "none", config.Default().Analysis, nil, logger)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeDataset, appErr.Type)

	cfg := config.Default().Analysis
	cfg.GapHighThreshold, cfg.GapMediumThreshold = 0.1, 0.5
	_, err = NewInvestmentService(datasettest.Model(t), "synthetic", cfg, nil, logger)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
}

func TestInvestmentServiceSelection(t *testing.T) {
	svc, reader := newTestService(t)
	ctx := context.Background()

	res := svc.Select(ctx, Criteria(api.SelectionRequest{Countries: []string{"aaa", "Atlantis"}}))
	assert.Equal(t, []string{"AAA"}, res.Countries)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, selection.WarnUnmatchedCountry, res.Warnings[0].Kind)
	assert.Equal(t, int64(1), sumCounter(t, reader, "selection_warnings_total", "kind", string(selection.WarnUnmatchedCountry)))

	all := svc.Select(ctx, selection.Criteria{})
	assert.NotNil(t, all.Warnings)
	assert.Empty(t, all.Warnings)
	assert.Equal(t, 3, all.Counts.Opportunities)
}

func TestInvestmentServiceAnalyses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info := svc.Dataset(ctx)
	assert.Equal(t, "synthetic", info.Source)
	assert.Equal(t, []string{"AAA", "BBB"}, info.Countries)

	rollup := svc.Rollup(ctx, selection.Criteria{Countries: []string{"AAA"}})
	require.Len(t, rollup.Rollup.Countries, 1)
	assert.Equal(t, config.Default().Analysis.TrendYears, rollup.Rollup.TrendYears)

	overview := svc.Overview(ctx, selection.Criteria{})
	assert.Equal(t, 3, overview.Overview.OpportunityCount)
	assert.NotEmpty(t, overview.PriceTrends)

	g := svc.Gaps(ctx, selection.Criteria{})
	assert.NotEmpty(t, g.Findings)
	assert.NotNil(t, g.Skipped)
	assert.Equal(t, 0.50, g.Thresholds.High)
	total := 0
	for _, n := range g.BySeverity {
		total += n
	}
	assert.Equal(t, len(g.Findings), total)

	ranked := svc.Opportunities(ctx, selection.Criteria{})
	require.Len(t, ranked.Opportunities, 3)
	for i, ro := range ranked.Opportunities {
		assert.Equal(t, i+1, ro.Rank)
		if ro.Opportunity.ID == "aaa-oil" {
			assert.NotNil(t, ro.Finding)
		}
	}
}

func TestInvestmentServiceComputeROI(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		req         api.ROIRequest
		wantPayback float64
		wantErr     func(t *testing.T, err error)
	}{
		{
			name:        "explicit assumptions",
			id:          "aaa-oil",
			req:         api.ROIRequest{AnnualRevenue: roi.Float(10_000_000), AnnualCostRatio: roi.Float(0.6)},
			wantPayback: 1.25,
		},
		{
			name:        "default cost ratio",
			id:          "aaa-oil",
			req:         api.ROIRequest{AnnualRevenue: roi.Float(10_000_000)},
			wantPayback: 5_000_000 / 3_500_000.0,
		},
		{
			name:        "capacity defaults",
			id:          "aaa-oil",
			req:         api.ROIRequest{Capacity: &api.CapacityRequest{}},
			wantPayback: 5_000_000 / (50_000 * 0.7 * 150 * 0.35),
		},
		{
			name:        "capacity sized to gap",
			id:          "aaa-oil",
			req:         api.ROIRequest{Capacity: &api.CapacityRequest{SizeToGap: true}},
			wantPayback: 5_000_000 / (85_000 * 0.7 * 150 * 0.35),
		},
		{
			name: "capacity override out of range",
			id:   "aaa-oil",
			req:  api.ROIRequest{Capacity: &api.CapacityRequest{UtilizationPct: roi.Float(120)}},
			wantErr: func(t *testing.T, err error) {
				var ia *roi.InvalidAssumptionError
				require.ErrorAs(t, err, &ia)
				assert.Equal(t, "utilization_pct", ia.Field)
			},
		},
		{
			name: "zero horizon",
			id:   "aaa-oil",
			req:  api.ROIRequest{AnnualRevenue: roi.Float(10_000_000), HorizonYears: roi.Float(0)},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, roi.ErrInvalidAssumption)
			},
		},
		{
			name: "missing revenue",
			id:   "aaa-oil",
			req:  api.ROIRequest{},
			wantErr: func(t *testing.T, err error) {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
			},
		},
		{
			name: "unknown opportunity",
			id:   "nope",
			req:  api.ROIRequest{AnnualRevenue: roi.Float(1)},
			wantErr: func(t *testing.T, err error) {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
				assert.Equal(t, "nope", appErr.Context["opportunity_id"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			s, err := svc.ComputeROI(context.Background(), tt.id, tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, s.OpportunityID)
			assert.InDelta(t, tt.wantPayback, s.PaybackYears, 1e-9)
		})
	}
}

func TestInvestmentServiceROIMetrics(t *testing.T) {
	svc, reader := newTestService(t)
	ctx := context.Background()

	_, err := svc.ComputeROI(ctx, "aaa-oil", api.ROIRequest{AnnualRevenue: roi.Float(10_000_000)})
	require.NoError(t, err)
	_, err = svc.ComputeROI(ctx, "aaa-oil", api.ROIRequest{AnnualRevenue: roi.Float(10_000_000), AnnualCostRatio: roi.Float(1)})
	require.Error(t, err)

	assert.Equal(t, int64(1), sumCounter(t, reader, "roi_computations_total", "outcome", "ok"))
	assert.Equal(t, int64(1), sumCounter(t, reader, "roi_computations_total", "outcome", "invalid_assumption"))
}

func TestInvestmentServiceSensitivity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	base := api.ROIRequest{AnnualRevenue: roi.Float(10_000_000), AnnualCostRatio: roi.Float(0.6)}

	t.Run("default steps around revenue", func(t *testing.T) {
		res, err := svc.Sensitivity(ctx, "aaa-oil", api.SensitivityRequest{ROIRequest: base, Parameter: "Revenue"})
		require.NoError(t, err)
		require.Len(t, res.Points, len(DefaultSensitivitySteps))
		assert.InDelta(t, 8_000_000, res.Points[0].Value, 1e-6)
		assert.InDelta(t, 10_000_000, res.Points[2].Value, 1e-6)
		require.NotNil(t, res.Base)
		assert.InDelta(t, 1.25, res.Base.PaybackYears, 1e-9)
	})

	t.Run("explicit values", func(t *testing.T) {
		res, err := svc.Sensitivity(ctx, "aaa-oil", api.SensitivityRequest{ROIRequest: base, Parameter: "cost_ratio", Values: []float64{0.5, 1.2}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed())
	})

	t.Run("unknown parameter", func(t *testing.T) {
		_, err := svc.Sensitivity(ctx, "aaa-oil", api.SensitivityRequest{ROIRequest: base, Parameter: "tax_rate"})
		assert.ErrorIs(t, err, roi.ErrUnknownParameter)
	})

	t.Run("discount rate needs values", func(t *testing.T) {
		_, err := svc.Sensitivity(ctx, "aaa-oil", api.SensitivityRequest{ROIRequest: base, Parameter: "discount_rate"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
	})
}

func TestInvestmentServiceBatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := api.BatchROIRequest{Items: []api.BatchROIItem{
		{OpportunityID: "aaa-oil", ROIRequest: api.ROIRequest{AnnualRevenue: roi.Float(10_000_000)}},
		{OpportunityID: "missing", ROIRequest: api.ROIRequest{AnnualRevenue: roi.Float(10_000_000)}},
		{OpportunityID: "bbb-mill", ROIRequest: api.ROIRequest{AnnualRevenue: roi.Float(1_000_000), AnnualCostRatio: roi.Float(1)}},
		{OpportunityID: "aaa-wheat", ROIRequest: api.ROIRequest{Capacity: &api.CapacityRequest{}}},
	}}

	res, err := svc.Batch(ctx, req)
	require.NoError(t, err)
	require.Len(t, res.Results, 4)
	assert.Equal(t, 2, res.Failed)

	for i, item := range req.Items {
		assert.Equal(t, item.OpportunityID, res.Results[i].OpportunityID)
	}
	assert.NotNil(t, res.Results[0].Scenario)
	assert.Contains(t, res.Results[1].Error, "not found")
	assert.ErrorIs(t, res.Results[2].Err, roi.ErrInvalidAssumption)
	assert.NotNil(t, res.Results[3].Scenario)
}

func TestInvestmentServiceBatchLimits(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default().Analysis
	cfg.MaxBatchSize = 1
	svc, err := NewInvestmentService(datasettest.Model(t), "synthetic", cfg, nil, logger)
	require.NoError(t, err)

	items := []api.BatchROIItem{{OpportunityID: "aaa-oil"}, {OpportunityID: "bbb-mill"}}
	_, err = svc.Batch(context.Background(), api.BatchROIRequest{Items: items})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Batch(ctx, api.BatchROIRequest{Items: items[:1]})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuildReport(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.BuildReport(context.Background(), selection.Criteria{})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "synthetic", report.Source)
	assert.Len(t, report.Scenarios, len(report.Opportunities))
	for i, ro := range report.Opportunities {
		assert.Equal(t, ro.Opportunity.ID, report.Scenarios[i].OpportunityID)
	}
	assert.NotEmpty(t, report.Gaps.Findings)
}
