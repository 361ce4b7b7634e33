package roi_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinvest/internal/roi"
	"agroinvest/pkg/contracts/domain"
)

func TestCapacityModel(t *testing.T) {
	m := roi.DefaultCapacityModel()
	assert.InDelta(t, 35_000, m.ProcessedT(), 1e-9)

	s, err := roi.ComputeCapacityROI(opportunity(), m, roi.Float(5_000_000))
	require.NoError(t, err)
	assert.InDelta(t, 5_250_000, s.AnnualRevenue, 1e-6)
	assert.InDelta(t, 1_837_500, s.AnnualNetMargin, 1e-6)
	assert.InDelta(t, 5_000_000/1_837_500.0, s.PaybackYears, 1e-9)
	assert.InDelta(t, 36.75, s.AnnualROIPct, 1e-9)
}

func TestCapacityModelForOpportunity(t *testing.T) {
	m := roi.DefaultCapacityModel().ForOpportunity(opportunity())
	assert.Equal(t, 85_000.0, m.CapacityT)

	kt := opportunity()
	kt.MarketGapVolume, kt.GapUnit = 2, domain.UnitKiloton
	assert.Equal(t, 2_000.0, roi.DefaultCapacityModel().ForOpportunity(kt).CapacityT)

	other := opportunity()
	other.GapUnit = "head"
	assert.Equal(t, float64(roi.DefaultCapacityT), roi.DefaultCapacityModel().ForOpportunity(other).CapacityT)
}

func TestCapacityModelValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *roi.CapacityModel)
		field  string
	}{
		{"zero capacity", func(m *roi.CapacityModel) { m.CapacityT = 0 }, "capacity_t"},
		{"utilization above 100", func(m *roi.CapacityModel) { m.UtilizationPct = 120 }, "utilization_pct"},
		{"negative margin", func(m *roi.CapacityModel) { m.MarginUSDPerT = -5 }, "margin_usd_per_t"},
		{"operating cost above 100", func(m *roi.CapacityModel) { m.OperatingCostPct = 101 }, "operating_cost_pct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := roi.DefaultCapacityModel()
			tt.mutate(&m)
			_, err := roi.ComputeCapacityROI(opportunity(), m, nil)
			var iae *roi.InvalidAssumptionError
			require.True(t, errors.As(err, &iae))
			assert.Equal(t, tt.field, iae.Field)
		})
	}

	t.Run("full operating cost has no margin", func(t *testing.T) {
		m := roi.DefaultCapacityModel()
		m.OperatingCostPct = 100
		_, err := roi.ComputeCapacityROI(opportunity(), m, nil)
		assert.ErrorIs(t, err, roi.ErrInvalidAssumption)
	})
}
