package aggregation

import (
	"agroinvest/pkg/contracts/domain"
)

// DefaultTrendYears is the length of the trend window
const DefaultTrendYears = 5

// Options tunes aggregation
type Options struct {
	// TrendYears is the number of most recent years kept in each series
	TrendYears int `json:"trend_years" yaml:"trend_years"`
}

// DefaultOptions returns the default aggregation options
func DefaultOptions() Options {
	return Options{TrendYears: DefaultTrendYears}
}

// Trend is the direction of a yearly series
type Trend string

const (
	TrendUp           Trend = "up"
	TrendDown         Trend = "down"
	TrendFlat         Trend = "flat"
	TrendInsufficient Trend = "insufficient_data"
)

// YearValue is one point of a yearly series
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is a yearly volume series, earliest to latest
type Series struct {
	Years   []YearValue `json:"years"`
	Total   float64     `json:"total"`
	Average float64     `json:"average"`
	Trend   Trend       `json:"trend"`
	Slope   *float64    `json:"slope,omitempty"`
	YoYPct  *float64    `json:"yoy_pct,omitempty"`
}

// Latest returns the last point of the series
func (s Series) Latest() (YearValue, bool) {
	if len(s.Years) == 0 {
		return YearValue{}, false
	}
	return s.Years[len(s.Years)-1], true
}

// CountryRollup aggregates all crops of one country. Volumes are in metric tons.
type CountryRollup struct {
	Country          string   `json:"country"`
	Name             string   `json:"name,omitempty"`
	Production       Series   `json:"production"`
	LatestYear       int      `json:"latest_year,omitempty"`
	ImportVolume     float64  `json:"import_volume"`
	ImportDependency *float64 `json:"import_dependency,omitempty"`
	// UnitMismatch is set when a latest-year volume could not be converted;
	// ImportDependency is then omitted.
	UnitMismatch       bool                               `json:"unit_mismatch,omitempty"`
	ImportValueUSD     float64                            `json:"import_value_usd"`
	ExportValueUSD     float64                            `json:"export_value_usd"`
	ProductionSharePct float64                            `json:"production_share_pct"`
	CropCount          int                                `json:"crop_count"`
	FoodSecurity       *domain.FoodSecurityIndicator      `json:"food_security,omitempty"`
	InvestmentClimate  *domain.InvestmentClimateIndicator `json:"investment_climate,omitempty"`
}

// CropRollup aggregates one crop of one country. Volumes are in metric tons.
type CropRollup struct {
	Country          string          `json:"country"`
	Crop             string          `json:"crop"`
	Category         domain.Category `json:"category"`
	Unit             domain.Unit     `json:"unit"`
	LatestYear       int             `json:"latest_year"`
	Production       Series          `json:"production"`
	LatestProduction float64         `json:"latest_production"`
	AreaHa           *float64        `json:"area_ha,omitempty"`
	Yield            *float64        `json:"yield,omitempty"`
	AverageYield     *float64        `json:"average_yield,omitempty"`
	ImportVolume     *float64        `json:"import_volume,omitempty"`
	ExportVolume     *float64        `json:"export_volume,omitempty"`
	ImportDependency *float64        `json:"import_dependency,omitempty"`
	// UnitMismatch marks a latest-year production or import record whose
	// unit could not be normalized; comparisons for this crop are omitted.
	UnitMismatch bool `json:"unit_mismatch,omitempty"`
	// TradePair is set when the latest year holds both an import and a
	// production record, whatever their units.
	TradePair bool `json:"trade_pair"`
}

// UnitMismatch describes a record left out because of its unit
type UnitMismatch struct {
	Country string            `json:"country"`
	Crop    string            `json:"crop"`
	Year    int               `json:"year"`
	Kind    domain.MetricKind `json:"kind"`
	Unit    domain.Unit       `json:"unit"`
}

// Rollup is the result of Aggregate
type Rollup struct {
	Countries      []CountryRollup `json:"countries"`
	Crops          []CropRollup    `json:"crops"`
	UnitMismatches []UnitMismatch  `json:"unit_mismatches,omitempty"`
	YearFrom       int             `json:"year_from,omitempty"`
	YearTo         int             `json:"year_to,omitempty"`
	TrendYears     int             `json:"trend_years"`
}

// UnitMismatchCount returns the number of records skipped for their unit
func (r Rollup) UnitMismatchCount() int { return len(r.UnitMismatches) }

// Country returns the rollup of one country
func (r Rollup) Country(code string) (CountryRollup, bool) {
	for _, c := range r.Countries {
		if c.Country == code {
			return c, true
		}
	}
	return CountryRollup{}, false
}

// Crop returns the rollup of one crop in one country
func (r Rollup) Crop(country, crop string) (CropRollup, bool) {
	for _, c := range r.Crops {
		if c.Country == country && c.Crop == crop {
			return c, true
		}
	}
	return CropRollup{}, false
}
