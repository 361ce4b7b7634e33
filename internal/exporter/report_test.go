package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agroinvest/internal/aggregation"
	"agroinvest/internal/gaps"
	"agroinvest/internal/roi"
	"agroinvest/internal/selection"
	"agroinvest/internal/services"
	"agroinvest/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func sampleReport() *services.Report {
	finding := gaps.GapFinding{
		Country: "AAA", Sector: "Oil Extraction", Category: "oilseeds", Kind: gaps.KindProcessing,
		GapVolume: 85000, GapUnit: domain.UnitMetricTon, ReferenceVolume: 100000,
		GapShare: 0.85, Severity: gaps.SeverityHigh,
	}
	return &services.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Source:      "synthetic",
		Overview: aggregation.Overview{
			LatestYear:       2021,
			OpportunityCount: 2,
			AverageROIYears:  ptr(3.5),
			TopCrops:         []aggregation.CropTotal{{Crop: "Maize", ProductionT: 370}},
		},
		PriceTrends: []aggregation.PriceTrend{{Commodity: "Maize", LatestMonth: "2021-01", LatestPrice: 220, BasePrice: ptr(200), YoYChangePct: ptr(10)}},
		Rollup: aggregation.Rollup{
			Countries: []aggregation.CountryRollup{{Country: "AAA", Name: "Alpha", LatestYear: 2021, CropCount: 4}},
			Crops:     []aggregation.CropRollup{{Country: "AAA", Crop: "Maize", Category: "cereals", LatestYear: 2021, LatestProduction: 150}},
		},
		Gaps: gaps.Result{
			Findings: []gaps.GapFinding{finding},
			Skipped:  []gaps.Skipped{{Country: "AAA", Sector: "Sorghum", Kind: gaps.KindTrade, Reason: "unit not convertible"}},
		},
		Opportunities: []gaps.RankedOpportunity{
			{
				Rank: 1,
				Opportunity: domain.Opportunity{
					ID: "aaa-oil", Country: "AAA", Sector: "Oil Extraction", Category: "oilseeds",
					Title: "Oil, cold press", InvestmentLowUSD: 4e6, InvestmentHighUSD: 6e6,
					ExpectedROIYears: 4, MarketGapVolume: 85000, GapUnit: domain.UnitMetricTon,
				},
				Finding: &finding,
			},
			{
				Rank:        2,
				Opportunity: domain.Opportunity{ID: "bbb-mill", Country: "BBB", Sector: "Milling"},
			},
		},
		Scenarios: []roi.BatchResult{
			{OpportunityID: "aaa-oil", Scenario: &domain.ROIScenario{
				OpportunityID: "aaa-oil", InvestmentAmount: 5e6, AnnualNetMargin: 1e6, PaybackYears: 5, SimpleROIPct: 20,
			}},
			{OpportunityID: "bbb-mill", Error: "investment_amount must be positive"},
		},
		Warnings: []selection.Warning{{Kind: selection.WarnUnmatchedCountry, Value: "ZZZ"}},
	}
}

func TestWriteOpportunitiesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOpportunitiesCSV(&buf, sampleReport()))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, opportunityHeaders(), records[0])

	first := records[1]
	require.Len(t, first, len(opportunityHeaders()))
	assert.Equal(t, []string{"1", "aaa-oil", "AAA", "Oil Extraction", "oilseeds", "Oil, cold press"}, first[:6])
	assert.Equal(t, "processing", first[11])
	assert.Equal(t, "high", first[12])
	assert.Equal(t, "5.00", first[16])
	assert.Equal(t, "", first[18])

	second := records[2]
	assert.Equal(t, "bbb-mill", second[1])
	assert.Equal(t, "", second[11], "no finding leaves gap columns empty")
	assert.Equal(t, "", second[16])
	assert.Equal(t, "investment_amount must be positive", second[18])
}

func TestWriteGapsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGapsCSV(&buf, sampleReport()))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, 2)
	assert.Equal(t, gapHeaders(), records[0])
	assert.Equal(t, []string{
		"AAA", "Oil Extraction", "oilseeds", "processing", "high",
		"85000.00", "t", "100000.00", "0.85", "", "",
	}, records[1])
}

func TestReportExporter_ExportCSV(t *testing.T) {
	dir := t.TempDir()
	exp := NewReportExporter(dir)

	paths, err := exp.ExportCSV(sampleReport(), "run")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "run_opportunities.csv"),
		filepath.Join(dir, "run_gaps.csv"),
	}, paths)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, utf8BOM), p)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetSummary, SheetOpportunities, SheetGaps, SheetCountries, SheetCrops, SheetPrices, SheetWarnings,
	}, f.GetSheetList())

	tests := []struct {
		sheet string
		cell  string
		want  string
	}{
		{SheetSummary, "A1", "Field"},
		{SheetSummary, "B2", "run-1"},
		{SheetSummary, "B4", "synthetic"},
		{SheetOpportunities, "A1", "Rank"},
		{SheetOpportunities, "B2", "aaa-oil"},
		{SheetOpportunities, "B3", "bbb-mill"},
		{SheetOpportunities, "S3", "investment_amount must be positive"},
		{SheetGaps, "D2", "processing"},
		{SheetCountries, "B2", "Alpha"},
		{SheetCrops, "B2", "Maize"},
		{SheetPrices, "B2", "2021-01"},
		{SheetWarnings, "A2", "unmatched_country"},
		{SheetWarnings, "B2", "ZZZ"},
		{SheetWarnings, "A3", "gap_skipped"},
		{SheetWarnings, "C3", "unit not convertible"},
	}
	for _, tt := range tests {
		t.Run(tt.sheet+"!"+tt.cell, func(t *testing.T) {
			got, err := f.GetCellValue(tt.sheet, tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
