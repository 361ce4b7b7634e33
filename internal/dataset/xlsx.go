package dataset

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"agroinvest/pkg/contracts/domain"
)

// Workbook sheet names, one per entity kind
const (
	SheetCountries         = "Countries"
	SheetMetrics           = "Metrics"
	SheetFacilities        = "Facilities"
	SheetTradeFlows        = "TradeFlows"
	SheetFoodSecurity      = "FoodSecurity"
	SheetInvestmentClimate = "InvestmentClimate"
	SheetOpportunities     = "Opportunities"
	SheetPrices            = "Prices"
)

// ReadXLSX decodes a dataset workbook. Each sheet starts with a header row;
// column order is free and headers are matched case-insensitively with
// spaces read as underscores. Missing sheets yield no records.
func ReadXLSX(r io.Reader) (*Model, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	recs, err := readWorkbook(f)
	if err != nil {
		return nil, err
	}
	return New(recs)
}

func readWorkbook(f *excelize.File) (Records, error) {
	var r Records
	var errs []error

	for _, row := range sheetRows(f, SheetCountries, &errs) {
		r.Countries = append(r.Countries, domain.Country{Code: row.str("code"), Name: row.str("name")})
	}
	for _, row := range sheetRows(f, SheetMetrics, &errs) {
		r.Metrics = append(r.Metrics, domain.CountryCropMetric{
			Country:  row.str("country"),
			Crop:     row.str("crop"),
			Category: domain.Category(row.str("category")),
			Year:     row.int("year"),
			Kind:     domain.MetricKind(strings.ToLower(row.str("kind"))),
			Volume:   row.float("volume"),
			Unit:     domain.ParseUnit(row.str("unit")),
		})
	}
	for _, row := range sheetRows(f, SheetFacilities, &errs) {
		pf := domain.ProcessingFacility{
			Country:             row.str("country"),
			Sector:              row.str("sector"),
			Category:            domain.Category(row.str("category")),
			FacilityCount:       row.int("facility_count"),
			InstalledCapacity:   row.float("installed_capacity"),
			UtilizedCapacity:    row.float("utilized_capacity"),
			Unit:                domain.ParseUnit(row.str("unit")),
			InvestmentPotential: row.str("investment_potential"),
		}
		if row.has("utilization_pct") {
			pf.UtilizedCapacity = pf.InstalledCapacity * row.float("utilization_pct") / 100
		}
		r.Facilities = append(r.Facilities, pf)
	}
	for _, row := range sheetRows(f, SheetTradeFlows, &errs) {
		tf := domain.TradeFlow{
			Country:   row.str("country"),
			Commodity: row.str("commodity"),
			Category:  domain.Category(row.str("category")),
			Direction: domain.Direction(strings.ToLower(row.str("direction"))),
			ValueUSD:  row.float("value_usd"),
			Year:      row.int("year"),
		}
		if row.has("value_usd_millions") {
			tf.ValueUSD = row.float("value_usd_millions") * 1_000_000
		}
		r.TradeFlows = append(r.TradeFlows, tf)
	}
	for _, row := range sheetRows(f, SheetFoodSecurity, &errs) {
		r.FoodSecurity = append(r.FoodSecurity, domain.FoodSecurityIndicator{
			Country:             row.str("country"),
			ImportDependencyPct: row.float("import_dependency_pct"),
			UndernourishmentPct: row.float("undernourishment_pct"),
			CerealPerCapita:     row.float("cereal_per_capita"),
		})
	}
	for _, row := range sheetRows(f, SheetInvestmentClimate, &errs) {
		r.InvestmentClimate = append(r.InvestmentClimate, domain.InvestmentClimateIndicator{
			Country:                 row.str("country"),
			EaseOfBusinessRank:      row.int("ease_of_business_rank"),
			FDIInflowUSD:            row.float("fdi_inflow_usd"),
			LandAvailabilityScore:   row.float("land_availability_score"),
			PoliticalStabilityScore: row.float("political_stability_score"),
		})
	}
	for _, row := range sheetRows(f, SheetOpportunities, &errs) {
		o := domain.Opportunity{
			ID:                row.str("id"),
			Country:           row.str("country"),
			Sector:            row.str("sector"),
			Category:          domain.Category(row.str("category")),
			Title:             row.str("title"),
			InvestmentLowUSD:  row.float("investment_low_usd"),
			InvestmentHighUSD: row.float("investment_high_usd"),
			ExpectedROIYears:  row.float("expected_roi_years"),
			MarketGapVolume:   row.float("market_gap_volume"),
			GapUnit:           domain.ParseUnit(row.str("gap_unit")),
			KeyDriver:         row.str("key_driver"),
		}
		if s := row.str("investment_range"); s != "" {
			low, high, err := ParseInvestmentRange(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s row %d: %w", SheetOpportunities, row.line, err))
			}
			o.InvestmentLowUSD, o.InvestmentHighUSD = low, high
		}
		r.Opportunities = append(r.Opportunities, o)
	}
	for _, row := range sheetRows(f, SheetPrices, &errs) {
		r.Prices = append(r.Prices, domain.CommodityPrice{
			Commodity: row.str("commodity"),
			Category:  domain.Category(row.str("category")),
			Month:     row.str("month"),
			USDPerMT:  row.float("usd_per_mt"),
		})
	}

	if err := errors.Join(errs...); err != nil {
		return Records{}, fmt.Errorf("read workbook: %w", err)
	}
	return r, nil
}

// sheetRow is one data row keyed by normalized header name
type sheetRow struct {
	sheet  string
	line   int
	values map[string]string
	errs   *[]error
}

func sheetRows(f *excelize.File, sheet string, errs *[]error) []sheetRow {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("read sheet %s: %w", sheet, err))
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = normalizeHeader(h)
	}
	out := make([]sheetRow, 0, len(rows)-1)
	for n, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		row := sheetRow{sheet: sheet, line: n + 2, values: make(map[string]string, len(header)), errs: errs}
		for i, c := range cells {
			if i < len(header) && header[i] != "" {
				row.values[header[i]] = strings.TrimSpace(c)
			}
		}
		out = append(out, row)
	}
	return out
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r sheetRow) has(col string) bool { return r.values[col] != "" }

func (r sheetRow) str(col string) string { return r.values[col] }

func (r sheetRow) float(col string) float64 {
	s := strings.ReplaceAll(r.values[col], ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Errorf("%s row %d: column %s: invalid number %q", r.sheet, r.line, col, s))
	}
	return v
}

func (r sheetRow) int(col string) int {
	v := r.float(col)
	return int(v)
}
