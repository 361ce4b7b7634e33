package roi

import (
	"math"

	"agroinvest/pkg/contracts/domain"
)

// FinancialAssumptions are caller overrides for one ROI computation
type FinancialAssumptions struct {
	// InvestmentAmount defaults to the midpoint of the opportunity range
	InvestmentAmount *float64 `json:"investment_amount,omitempty"`
	AnnualRevenue    float64  `json:"annual_revenue"`
	// AnnualCostRatio is annual cost as a fraction of revenue
	AnnualCostRatio float64 `json:"annual_cost_ratio"`
	// DiscountRate enables the NPV variant
	DiscountRate *float64 `json:"discount_rate,omitempty"`
	// HorizonYears is the NPV horizon, defaulting to the expected ROI years
	HorizonYears *float64 `json:"horizon_years,omitempty"`
}

// Float returns a pointer to v, for optional assumption fields
func Float(v float64) *float64 { return &v }

// ComputeROI derives an ROIScenario from an opportunity and assumptions.
// The opportunity is never modified.
func ComputeROI(opp domain.Opportunity, a FinancialAssumptions) (domain.ROIScenario, error) {
	id := opp.ID

	if !finite(opp.ExpectedROIYears) || opp.ExpectedROIYears <= 0 {
		return domain.ROIScenario{}, invalid(id, "expected_roi_years", opp.ExpectedROIYears, "must be positive")
	}

	investment := opp.Midpoint()
	if a.InvestmentAmount != nil {
		investment = *a.InvestmentAmount
	}
	if !finite(investment) || investment <= 0 {
		return domain.ROIScenario{}, invalid(id, "investment_amount", investment, "must be positive")
	}
	if !finite(a.AnnualRevenue) || a.AnnualRevenue < 0 {
		return domain.ROIScenario{}, invalid(id, "annual_revenue", a.AnnualRevenue, "must not be negative")
	}
	if !finite(a.AnnualCostRatio) || a.AnnualCostRatio < 0 {
		return domain.ROIScenario{}, invalid(id, "annual_cost_ratio", a.AnnualCostRatio, "must not be negative")
	}

	cost := a.AnnualRevenue * a.AnnualCostRatio
	net := a.AnnualRevenue * (1 - a.AnnualCostRatio)
	if net <= 0 {
		return domain.ROIScenario{}, invalid(id, "annual_net_margin", net, "no positive net margin, payback is undefined")
	}

	horizon := opp.ExpectedROIYears
	if a.HorizonYears != nil {
		horizon = *a.HorizonYears
	}
	if !finite(horizon) || horizon <= 0 {
		return domain.ROIScenario{}, invalid(id, "horizon_years", horizon, "must be positive")
	}

	s := domain.ROIScenario{
		OpportunityID:    id,
		InvestmentAmount: investment,
		AnnualRevenue:    a.AnnualRevenue,
		AnnualCost:       cost,
		AnnualNetMargin:  net,
		PaybackYears:     investment / net,
		SimpleROIPct:     (net*opp.ExpectedROIYears - investment) / investment * 100,
		AnnualROIPct:     net / investment * 100,
		HorizonYears:     horizon,
	}

	if a.DiscountRate != nil {
		r := *a.DiscountRate
		if !finite(r) || r <= -1 {
			return domain.ROIScenario{}, invalid(id, "discount_rate", r, "must be greater than -1")
		}
		npv := NPV(investment, net, r, horizon)
		s.DiscountRate = &r
		s.NPV = &npv
	}
	return s, nil
}

// NPV discounts a level annual net margin over horizon years against an
// upfront investment
func NPV(investment, net, rate, horizon float64) float64 {
	return -investment + net*AnnuityFactor(rate, horizon)
}

// AnnuityFactor returns the present value of 1 per year for horizon years
func AnnuityFactor(rate, horizon float64) float64 {
	if rate == 0 {
		return horizon
	}
	return (1 - math.Pow(1+rate, -horizon)) / rate
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
