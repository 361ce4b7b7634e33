// Package api contains the request contracts of the agroinvest HTTP API.
// Version v1 represents the current stable API version.
package api

// SelectionRequest selects a subset of the dataset. Empty fields select
// everything; values that match nothing come back as warnings.
type SelectionRequest struct {
	Countries  []string `json:"countries,omitempty" validate:"omitempty,max=64,dive,required,max=64"`
	Categories []string `json:"categories,omitempty" validate:"omitempty,max=32,dive,required,max=64"`
	YearFrom   int      `json:"year_from,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	YearTo     int      `json:"year_to,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	SizeBand   string   `json:"size_band,omitempty" validate:"omitempty,max=16"`
}

// CapacityRequest switches ROI to the capacity model. Unset fields keep the
// configured defaults; SizeToGap sizes the plant to the opportunity gap.
type CapacityRequest struct {
	CapacityT        *float64 `json:"capacity_t,omitempty" validate:"omitempty,gt=0"`
	UtilizationPct   *float64 `json:"utilization_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
	MarginUSDPerT    *float64 `json:"margin_usd_per_t,omitempty" validate:"omitempty,gte=0"`
	OperatingCostPct *float64 `json:"operating_cost_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
	SizeToGap        bool     `json:"size_to_gap,omitempty"`
}

// ROIRequest carries explicit assumptions, or a capacity block from which
// revenue and cost are derived. Range checks that make an ROI undefined
// are reported by the calculator as invalid assumptions.
type ROIRequest struct {
	InvestmentAmount *float64         `json:"investment_amount,omitempty"`
	AnnualRevenue    *float64         `json:"annual_revenue,omitempty" validate:"required_without=Capacity"`
	AnnualCostRatio  *float64         `json:"annual_cost_ratio,omitempty"`
	DiscountRate     *float64         `json:"discount_rate,omitempty"`
	HorizonYears     *float64         `json:"horizon_years,omitempty"`
	Capacity         *CapacityRequest `json:"capacity,omitempty"`
}

// Mode names the ROI model the request selects
func (r ROIRequest) Mode() string {
	if r.Capacity != nil {
		return "capacity"
	}
	return "explicit"
}

// SensitivityRequest sweeps one parameter around an ROI request. Values are
// used as given; otherwise StepsPct (default -20,-10,0,10,20) are applied
// to the parameter's current value.
type SensitivityRequest struct {
	ROIRequest
	Parameter string    `json:"parameter" validate:"required"`
	Values    []float64 `json:"values,omitempty" validate:"omitempty,max=50"`
	StepsPct  []float64 `json:"steps_pct,omitempty" validate:"omitempty,max=50,dive,gt=-100"`
}

// BatchROIItem is one opportunity in a batch ROI request
type BatchROIItem struct {
	OpportunityID string `json:"opportunity_id" validate:"required,slug"`
	ROIRequest
}

// BatchROIRequest computes ROI for several opportunities at once
type BatchROIRequest struct {
	Items []BatchROIItem `json:"items" validate:"required,min=1,dive"`
}
