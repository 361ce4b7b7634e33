package http

import (
	"context"

	"agroinvest/internal/roi"
	"agroinvest/internal/selection"
	"agroinvest/internal/services"
	api "agroinvest/pkg/contracts/api/v1"
	"agroinvest/pkg/contracts/domain"
)

// InvestmentServiceInterface defines the analysis operations served over HTTP
type InvestmentServiceInterface interface {
	Dataset(ctx context.Context) services.DatasetInfo
	Select(ctx context.Context, c selection.Criteria) services.SelectionResult
	Rollup(ctx context.Context, c selection.Criteria) services.RollupResult
	Overview(ctx context.Context, c selection.Criteria) services.OverviewResult
	Gaps(ctx context.Context, c selection.Criteria) services.GapsResult
	Opportunities(ctx context.Context, c selection.Criteria) services.OpportunitiesResult
	Opportunity(ctx context.Context, id string) (domain.Opportunity, error)
	ComputeROI(ctx context.Context, id string, req api.ROIRequest) (domain.ROIScenario, error)
	Sensitivity(ctx context.Context, id string, req api.SensitivityRequest) (roi.SensitivityResult, error)
	Batch(ctx context.Context, req api.BatchROIRequest) (services.BatchROIResult, error)
	BuildReport(ctx context.Context, c selection.Criteria) (*services.Report, error)
}

var _ InvestmentServiceInterface = (*services.InvestmentService)(nil)
