package selection

import (
	"agroinvest/internal/dataset"
	"agroinvest/pkg/contracts/domain"
)

// SizeBand is an investment size focus, classified by opportunity midpoint
type SizeBand string

const (
	SizeAll    SizeBand = "all"
	SizeSmall  SizeBand = "small"
	SizeMedium SizeBand = "medium"
	SizeLarge  SizeBand = "large"
)

// Size band boundaries in USD
const (
	SmallUpperUSD  = 3_000_000
	MediumUpperUSD = 10_000_000
)

// ClassifySize returns the size band of an opportunity: small below 3M,
// large above 10M, medium otherwise.
func ClassifySize(o domain.Opportunity) SizeBand {
	mid := o.Midpoint()
	switch {
	case mid < SmallUpperUSD:
		return SizeSmall
	case mid > MediumUpperUSD:
		return SizeLarge
	default:
		return SizeMedium
	}
}

// Criteria describes a selection. Zero values select everything.
type Criteria struct {
	Countries  []string `json:"countries,omitempty"`
	Categories []string `json:"categories,omitempty"`
	YearFrom   int      `json:"year_from,omitempty"`
	YearTo     int      `json:"year_to,omitempty"`
	SizeBand   SizeBand `json:"size_band,omitempty"`
}

// WarningKind identifies why a requested value matched nothing
type WarningKind string

const (
	WarnUnmatchedCountry  WarningKind = "unmatched_country"
	WarnUnmatchedCategory WarningKind = "unmatched_category"
	WarnUnknownSizeBand   WarningKind = "unknown_size_band"
	WarnEmptyYearRange    WarningKind = "empty_year_range"
)

// Warning is a non-fatal selection problem
type Warning struct {
	Kind  WarningKind `json:"kind"`
	Value string      `json:"value"`
}

// Counts holds the number of records per entity type
type Counts struct {
	Metrics           int `json:"metrics"`
	Facilities        int `json:"facilities"`
	TradeFlows        int `json:"trade_flows"`
	FoodSecurity      int `json:"food_security"`
	InvestmentClimate int `json:"investment_climate"`
	Opportunities     int `json:"opportunities"`
	Prices            int `json:"prices"`
}

// View is a filtered, read-only subset of the dataset
type View struct {
	criteria  Criteria
	countries []string
	records   dataset.Records
	warnings  []Warning
}

// NewView wraps records that are already filtered. Mostly useful in tests.
func NewView(r dataset.Records) View {
	return View{records: r}
}

// Criteria returns the normalized criteria that produced the view
func (v View) Criteria() Criteria { return v.criteria }

// Countries returns the resolved country codes, empty when all were selected
func (v View) Countries() []string { return append([]string(nil), v.countries...) }

// Catalogue returns the catalogue entries of the selected countries
func (v View) Catalogue() []domain.Country {
	return append([]domain.Country(nil), v.records.Countries...)
}

// Warnings returns the selection warnings
func (v View) Warnings() []Warning { return append([]Warning(nil), v.warnings...) }

// WarningCount returns the number of selection warnings
func (v View) WarningCount() int { return len(v.warnings) }

// Metrics returns the selected metrics
func (v View) Metrics() []domain.CountryCropMetric {
	return append([]domain.CountryCropMetric(nil), v.records.Metrics...)
}

// Facilities returns the selected processing facilities
func (v View) Facilities() []domain.ProcessingFacility {
	return append([]domain.ProcessingFacility(nil), v.records.Facilities...)
}

// TradeFlows returns the selected trade flows
func (v View) TradeFlows() []domain.TradeFlow {
	return append([]domain.TradeFlow(nil), v.records.TradeFlows...)
}

// FoodSecurity returns the selected food security indicators
func (v View) FoodSecurity() []domain.FoodSecurityIndicator {
	return append([]domain.FoodSecurityIndicator(nil), v.records.FoodSecurity...)
}

// InvestmentClimate returns the selected investment climate indicators
func (v View) InvestmentClimate() []domain.InvestmentClimateIndicator {
	return append([]domain.InvestmentClimateIndicator(nil), v.records.InvestmentClimate...)
}

// Opportunities returns the selected opportunities
func (v View) Opportunities() []domain.Opportunity {
	return append([]domain.Opportunity(nil), v.records.Opportunities...)
}

// Prices returns the selected monthly prices
func (v View) Prices() []domain.CommodityPrice {
	return append([]domain.CommodityPrice(nil), v.records.Prices...)
}

// Counts returns record counts per entity type
func (v View) Counts() Counts {
	return Counts{
		Metrics:           len(v.records.Metrics),
		Facilities:        len(v.records.Facilities),
		TradeFlows:        len(v.records.TradeFlows),
		FoodSecurity:      len(v.records.FoodSecurity),
		InvestmentClimate: len(v.records.InvestmentClimate),
		Opportunities:     len(v.records.Opportunities),
		Prices:            len(v.records.Prices),
	}
}
