// Package datasettest provides small synthetic datasets for tests
package datasettest

import (
	"testing"

	"agroinvest/internal/dataset"
	"agroinvest/pkg/contracts/domain"
)

// Bags is a unit with no metric ton conversion
const Bags domain.Unit = "bags"

// Records returns a two-country synthetic dataset. Country AAA has a three
// year maize series with area and kilogram imports, a wheat import gap and a
// sorghum import counted in bags; country BBB has a series starting at zero
// and a milling facility.
func Records() dataset.Records {
	metric := func(c, crop string, cat domain.Category, y int, k domain.MetricKind, v float64, u domain.Unit) domain.CountryCropMetric {
		return domain.CountryCropMetric{Country: c, Crop: crop, Category: cat, Year: y, Kind: k, Volume: v, Unit: u}
	}
	return dataset.Records{
		Countries: []domain.Country{{Code: "AAA", Name: "Alpha"}, {Code: "BBB", Name: "Beta"}},
		Metrics: []domain.CountryCropMetric{
			metric("AAA", "Maize", "cereals", 2019, domain.MetricProduction, 100, domain.UnitMetricTon),
			metric("AAA", "Maize", "cereals", 2020, domain.MetricProduction, 120, domain.UnitMetricTon),
			metric("AAA", "Maize", "cereals", 2021, domain.MetricProduction, 150, domain.UnitMetricTon),
			metric("AAA", "Maize", "cereals", 2021, domain.MetricArea, 50, domain.UnitHectare),
			metric("AAA", "Maize", "cereals", 2021, domain.MetricImport, 50000, domain.UnitKilogram),
			metric("AAA", "Wheat", "cereals", 2021, domain.MetricProduction, 10, domain.UnitMetricTon),
			metric("AAA", "Wheat", "cereals", 2021, domain.MetricImport, 40, domain.UnitMetricTon),
			metric("AAA", "Sorghum", "cereals", 2021, domain.MetricProduction, 5, domain.UnitMetricTon),
			metric("AAA", "Sorghum", "cereals", 2021, domain.MetricImport, 90, Bags),
			metric("AAA", "Soybean", "oilseeds", 2020, domain.MetricProduction, 30, domain.UnitMetricTon),
			metric("AAA", "Soybean", "oilseeds", 2021, domain.MetricProduction, 20, domain.UnitMetricTon),
			metric("BBB", "Millet", "cereals", 2020, domain.MetricProduction, 0, domain.UnitMetricTon),
			metric("BBB", "Millet", "cereals", 2021, domain.MetricProduction, 8, domain.UnitMetricTon),
		},
		Facilities: []domain.ProcessingFacility{
			{Country: "AAA", Sector: "Oil Extraction", Category: "oilseeds", InstalledCapacity: 100000, UtilizedCapacity: 15000, Unit: domain.UnitMetricTon},
			{Country: "BBB", Sector: "Maize Milling", Category: "cereals", InstalledCapacity: 100000, UtilizedCapacity: 82000, Unit: domain.UnitMetricTon},
		},
		TradeFlows: []domain.TradeFlow{
			{Country: "AAA", Commodity: "Maize", Category: "cereals", Direction: domain.DirectionImport, ValueUSD: 2_000_000, Year: 2021},
			{Country: "BBB", Commodity: "Vegetable Oil", Category: "oilseeds", Direction: domain.DirectionImport, ValueUSD: 1_000_000, Year: 2021},
		},
		FoodSecurity: []domain.FoodSecurityIndicator{
			{Country: "AAA", ImportDependencyPct: 30, UndernourishmentPct: 12, CerealPerCapita: 150},
		},
		InvestmentClimate: []domain.InvestmentClimateIndicator{
			{Country: "BBB", EaseOfBusinessRank: 40, FDIInflowUSD: 1e8, LandAvailabilityScore: 5, PoliticalStabilityScore: 7},
		},
		Opportunities: []domain.Opportunity{
			{ID: "aaa-oil", Country: "AAA", Sector: "Oil Extraction", Category: "oilseeds", Title: "Oil plant",
				InvestmentLowUSD: 4_000_000, InvestmentHighUSD: 6_000_000, ExpectedROIYears: 4, MarketGapVolume: 85000, GapUnit: domain.UnitMetricTon},
			{ID: "bbb-mill", Country: "BBB", Sector: "Maize Milling", Category: "cereals", Title: "Mill upgrade",
				InvestmentLowUSD: 1_000_000, InvestmentHighUSD: 2_000_000, ExpectedROIYears: 3, MarketGapVolume: 18000, GapUnit: domain.UnitMetricTon},
			{ID: "aaa-wheat", Country: "AAA", Sector: "Wheat", Category: "cereals", Title: "Wheat import substitution",
				InvestmentLowUSD: 10_000_000, InvestmentHighUSD: 20_000_000, ExpectedROIYears: 5, MarketGapVolume: 30, GapUnit: domain.UnitMetricTon},
		},
		Prices: []domain.CommodityPrice{
			{Commodity: "Maize", Category: "cereals", Month: "2020-01", USDPerMT: 200},
			{Commodity: "Maize", Category: "cereals", Month: "2021-01", USDPerMT: 250},
		},
	}
}

// Model builds a validated Model from Records and fails the test on error
func Model(t testing.TB) *dataset.Model {
	t.Helper()
	m, err := dataset.New(Records())
	if err != nil {
		t.Fatalf("build synthetic dataset: %v", err)
	}
	return m
}
