package roi

import (
	"agroinvest/pkg/contracts/domain"
)

// Capacity model defaults
const (
	DefaultCapacityT        = 50_000
	DefaultUtilizationPct   = 70
	DefaultMarginUSDPerT    = 150
	DefaultOperatingCostPct = 65
)

// CapacityModel derives revenue and cost from plant capacity
type CapacityModel struct {
	CapacityT        float64 `json:"capacity_t" yaml:"capacity_t"`
	UtilizationPct   float64 `json:"utilization_pct" yaml:"utilization_pct"`
	MarginUSDPerT    float64 `json:"margin_usd_per_t" yaml:"margin_usd_per_t"`
	OperatingCostPct float64 `json:"operating_cost_pct" yaml:"operating_cost_pct"`
}

// DefaultCapacityModel returns the default plant assumptions
func DefaultCapacityModel() CapacityModel {
	return CapacityModel{
		CapacityT:        DefaultCapacityT,
		UtilizationPct:   DefaultUtilizationPct,
		MarginUSDPerT:    DefaultMarginUSDPerT,
		OperatingCostPct: DefaultOperatingCostPct,
	}
}

// ForOpportunity sizes the model to the opportunity's market gap when the
// gap is a mass volume, keeping the other parameters
func (c CapacityModel) ForOpportunity(opp domain.Opportunity) CapacityModel {
	if t, err := opp.GapUnit.ToMetricTons(opp.MarketGapVolume); err == nil && t > 0 {
		c.CapacityT = t
	}
	return c
}

// ProcessedT is the annual processed volume in metric tons
func (c CapacityModel) ProcessedT() float64 {
	return c.CapacityT * c.UtilizationPct / 100
}

// Validate checks the model for one opportunity
func (c CapacityModel) Validate(opportunityID string) error {
	switch {
	case !finite(c.CapacityT) || c.CapacityT <= 0:
		return invalid(opportunityID, "capacity_t", c.CapacityT, "must be positive")
	case !finite(c.UtilizationPct) || c.UtilizationPct < 0 || c.UtilizationPct > 100:
		return invalid(opportunityID, "utilization_pct", c.UtilizationPct, "must be within [0,100]")
	case !finite(c.MarginUSDPerT) || c.MarginUSDPerT < 0:
		return invalid(opportunityID, "margin_usd_per_t", c.MarginUSDPerT, "must not be negative")
	case !finite(c.OperatingCostPct) || c.OperatingCostPct < 0 || c.OperatingCostPct > 100:
		return invalid(opportunityID, "operating_cost_pct", c.OperatingCostPct, "must be within [0,100]")
	}
	return nil
}

// Assumptions converts the model into financial assumptions
func (c CapacityModel) Assumptions(investment *float64) FinancialAssumptions {
	return FinancialAssumptions{
		InvestmentAmount: investment,
		AnnualRevenue:    c.ProcessedT() * c.MarginUSDPerT,
		AnnualCostRatio:  c.OperatingCostPct / 100,
	}
}

// ComputeCapacityROI validates the model and computes the ROI it implies
func ComputeCapacityROI(opp domain.Opportunity, c CapacityModel, investment *float64) (domain.ROIScenario, error) {
	if err := c.Validate(opp.ID); err != nil {
		return domain.ROIScenario{}, err
	}
	return ComputeROI(opp, c.Assumptions(investment))
}
