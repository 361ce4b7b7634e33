package roi

import (
	"fmt"

	"agroinvest/pkg/contracts/domain"
)

// Parameter names an assumption that Sensitivity can sweep
type Parameter string

const (
	ParamRevenue      Parameter = "revenue"
	ParamCostRatio    Parameter = "cost_ratio"
	ParamInvestment   Parameter = "investment"
	ParamDiscountRate Parameter = "discount_rate"
	ParamHorizon      Parameter = "horizon"
)

// Parameters lists every sweepable parameter
func Parameters() []Parameter {
	return []Parameter{ParamRevenue, ParamCostRatio, ParamInvestment, ParamDiscountRate, ParamHorizon}
}

// IsValid reports whether p is a known parameter
func (p Parameter) IsValid() bool {
	for _, k := range Parameters() {
		if p == k {
			return true
		}
	}
	return false
}

// Current returns the value p takes for opp under a, after defaults.
// The discount rate has no default, so ok is false when it is unset.
func (p Parameter) Current(opp domain.Opportunity, a FinancialAssumptions) (v float64, ok bool) {
	switch p {
	case ParamRevenue:
		return a.AnnualRevenue, true
	case ParamCostRatio:
		return a.AnnualCostRatio, true
	case ParamInvestment:
		if a.InvestmentAmount != nil {
			return *a.InvestmentAmount, true
		}
		return opp.Midpoint(), true
	case ParamDiscountRate:
		if a.DiscountRate != nil {
			return *a.DiscountRate, true
		}
		return 0, false
	case ParamHorizon:
		if a.HorizonYears != nil {
			return *a.HorizonYears, true
		}
		return opp.ExpectedROIYears, true
	}
	return 0, false
}

func (p Parameter) apply(a FinancialAssumptions, v float64) FinancialAssumptions {
	switch p {
	case ParamRevenue:
		a.AnnualRevenue = v
	case ParamCostRatio:
		a.AnnualCostRatio = v
	case ParamInvestment:
		a.InvestmentAmount = Float(v)
	case ParamDiscountRate:
		a.DiscountRate = Float(v)
	case ParamHorizon:
		a.HorizonYears = Float(v)
	}
	return a
}

// SensitivityPoint is the outcome of one swept value
type SensitivityPoint struct {
	Value    float64             `json:"value"`
	Scenario *domain.ROIScenario `json:"scenario,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// SensitivityResult holds a one-parameter sweep
type SensitivityResult struct {
	OpportunityID string              `json:"opportunity_id"`
	Parameter     Parameter           `json:"parameter"`
	Base          *domain.ROIScenario `json:"base,omitempty"`
	BaseError     string              `json:"base_error,omitempty"`
	Points        []SensitivityPoint  `json:"points"`
}

// Failed returns the number of points that could not be computed
func (r SensitivityResult) Failed() int {
	n := 0
	for _, p := range r.Points {
		if p.Scenario == nil {
			n++
		}
	}
	return n
}

// Sensitivity recomputes the ROI for each value of one parameter, holding
// the rest of base fixed. Points fail independently; the returned error is
// only for an unknown parameter.
func Sensitivity(opp domain.Opportunity, base FinancialAssumptions, p Parameter, values []float64) (SensitivityResult, error) {
	if !p.IsValid() {
		return SensitivityResult{}, fmt.Errorf("%w: %q", ErrUnknownParameter, p)
	}
	res := SensitivityResult{
		OpportunityID: opp.ID,
		Parameter:     p,
		Points:        make([]SensitivityPoint, 0, len(values)),
	}
	if s, err := ComputeROI(opp, base); err != nil {
		res.BaseError = err.Error()
	} else {
		res.Base = &s
	}
	for _, v := range values {
		pt := SensitivityPoint{Value: v}
		s, err := ComputeROI(opp, p.apply(base, v))
		if err != nil {
			pt.Error = err.Error()
		} else {
			pt.Scenario = &s
		}
		res.Points = append(res.Points, pt)
	}
	return res, nil
}

// RelativeSteps scales center by each percentage change, e.g. -20 gives
// 0.8 × center
func RelativeSteps(center float64, pcts ...float64) []float64 {
	out := make([]float64, len(pcts))
	for i, p := range pcts {
		out[i] = center * (1 + p/100)
	}
	return out
}
