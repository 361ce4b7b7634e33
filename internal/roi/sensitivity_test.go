package roi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinvest/internal/roi"
	"agroinvest/pkg/contracts/domain"
)

func baseAssumptions() roi.FinancialAssumptions {
	return roi.FinancialAssumptions{
		InvestmentAmount: roi.Float(5_000_000),
		AnnualRevenue:    10_000_000,
		AnnualCostRatio:  0.6,
	}
}

func TestSensitivity(t *testing.T) {
	res, err := roi.Sensitivity(opportunity(), baseAssumptions(), roi.ParamRevenue, []float64{8e6, 10e6, 12e6, 0})
	require.NoError(t, err)

	require.NotNil(t, res.Base)
	assert.InDelta(t, 1.25, res.Base.PaybackYears, 1e-9)
	assert.Equal(t, roi.ParamRevenue, res.Parameter)
	require.Len(t, res.Points, 4)
	assert.Equal(t, 1, res.Failed())

	for i := 1; i < 3; i++ {
		assert.Less(t, res.Points[i].Scenario.PaybackYears, res.Points[i-1].Scenario.PaybackYears)
	}
	assert.Nil(t, res.Points[3].Scenario)
	assert.Contains(t, res.Points[3].Error, "annual_net_margin")
}

func TestSensitivityParameters(t *testing.T) {
	tests := []struct {
		param roi.Parameter
		value float64
		check func(t *testing.T, s *domain.ROIScenario)
	}{
		{roi.ParamCostRatio, 0.5, func(t *testing.T, s *domain.ROIScenario) {
			assert.InDelta(t, 5_000_000, s.AnnualNetMargin, 1e-6)
		}},
		{roi.ParamInvestment, 8_000_000, func(t *testing.T, s *domain.ROIScenario) {
			assert.InDelta(t, 2, s.PaybackYears, 1e-9)
		}},
		{roi.ParamDiscountRate, 0, func(t *testing.T, s *domain.ROIScenario) {
			require.NotNil(t, s.NPV)
			assert.InDelta(t, 11_000_000, *s.NPV, 1e-6)
		}},
		{roi.ParamHorizon, 2, func(t *testing.T, s *domain.ROIScenario) {
			assert.Equal(t, 2.0, s.HorizonYears)
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.param), func(t *testing.T) {
			res, err := roi.Sensitivity(opportunity(), baseAssumptions(), tt.param, []float64{tt.value})
			require.NoError(t, err)
			require.NotNil(t, res.Points[0].Scenario, res.Points[0].Error)
			tt.check(t, res.Points[0].Scenario)
		})
	}
}

func TestSensitivityUnknownParameter(t *testing.T) {
	_, err := roi.Sensitivity(opportunity(), baseAssumptions(), "tax_rate", []float64{1})
	assert.ErrorIs(t, err, roi.ErrUnknownParameter)
}

func TestSensitivityInvalidBase(t *testing.T) {
	base := baseAssumptions()
	base.AnnualCostRatio = 1
	res, err := roi.Sensitivity(opportunity(), base, roi.ParamCostRatio, []float64{0.5})
	require.NoError(t, err)
	assert.Nil(t, res.Base)
	assert.NotEmpty(t, res.BaseError)
	assert.Equal(t, 0, res.Failed())
}

func TestRelativeSteps(t *testing.T) {
	assert.Equal(t, []float64{80, 100, 120}, roi.RelativeSteps(100, -20, 0, 20))
}

func TestComputeBatch(t *testing.T) {
	good := opportunity()
	bad := opportunity()
	bad.ID = "broken"

	results := roi.ComputeBatch([]roi.BatchItem{
		{Opportunity: good, Assumptions: baseAssumptions()},
		{Opportunity: bad, Assumptions: roi.FinancialAssumptions{AnnualRevenue: 1e6, AnnualCostRatio: 1}},
		{Opportunity: good, Assumptions: roi.FinancialAssumptions{AnnualRevenue: 12e6, AnnualCostRatio: 0.6}},
	})

	require.Len(t, results, 3)
	assert.Equal(t, 1, roi.Failures(results))
	require.NotNil(t, results[0].Scenario)
	assert.Nil(t, results[1].Scenario)
	assert.ErrorIs(t, results[1].Err, roi.ErrInvalidAssumption)
	assert.Equal(t, "broken", results[1].OpportunityID)
	assert.Contains(t, results[1].Error, "opportunity broken")
	require.NotNil(t, results[2].Scenario)
}

func TestParameterCurrent(t *testing.T) {
	opp := opportunity()
	tests := []struct {
		name   string
		param  roi.Parameter
		a      roi.FinancialAssumptions
		want   float64
		wantOK bool
	}{
		{"revenue", roi.ParamRevenue, baseAssumptions(), 10_000_000, true},
		{"cost ratio", roi.ParamCostRatio, baseAssumptions(), 0.6, true},
		{"investment override", roi.ParamInvestment, baseAssumptions(), 5_000_000, true},
		{"investment midpoint", roi.ParamInvestment, roi.FinancialAssumptions{}, opp.Midpoint(), true},
		{"horizon default", roi.ParamHorizon, roi.FinancialAssumptions{}, opp.ExpectedROIYears, true},
		{"discount rate unset", roi.ParamDiscountRate, roi.FinancialAssumptions{}, 0, false},
		{"discount rate set", roi.ParamDiscountRate, roi.FinancialAssumptions{DiscountRate: roi.Float(0.1)}, 0.1, true},
		{"unknown", roi.Parameter("tax"), baseAssumptions(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.param.Current(opp, tt.a)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
