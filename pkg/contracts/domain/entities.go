package domain

// Category groups crops and commodities for filtering, e.g. "cereals"
type Category string

// MetricKind distinguishes the measures recorded per country, crop and year
type MetricKind string

const (
	MetricProduction MetricKind = "production"
	MetricImport     MetricKind = "import"
	MetricExport     MetricKind = "export"
	// MetricArea is the harvested-area equivalent used for yield
	MetricArea MetricKind = "area"
)

// IsValid checks the metric kind
func (k MetricKind) IsValid() bool {
	switch k {
	case MetricProduction, MetricImport, MetricExport, MetricArea:
		return true
	}
	return false
}

// Direction is the side of a trade flow
type Direction string

const (
	DirectionImport Direction = "import"
	DirectionExport Direction = "export"
)

// IsValid checks the trade direction
func (d Direction) IsValid() bool {
	return d == DirectionImport || d == DirectionExport
}

// Country is a dataset country entry
type Country struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// CountryCropMetric is one yearly volume for a country and crop
type CountryCropMetric struct {
	Country  string     `json:"country" yaml:"country"`
	Crop     string     `json:"crop" yaml:"crop"`
	Category Category   `json:"category" yaml:"category"`
	Year     int        `json:"year" yaml:"year"`
	Kind     MetricKind `json:"kind" yaml:"kind"`
	Volume   float64    `json:"volume" yaml:"volume"`
	Unit     Unit       `json:"unit" yaml:"unit"`
}

// MetricKey identifies a metric record; at most one volume exists per key
type MetricKey struct {
	Country string
	Crop    string
	Year    int
	Kind    MetricKind
}

// Key returns the uniqueness key of the metric
func (m CountryCropMetric) Key() MetricKey {
	return MetricKey{Country: m.Country, Crop: m.Crop, Year: m.Year, Kind: m.Kind}
}

// ProcessingFacility describes installed and utilized processing capacity
// for one sector of one country
type ProcessingFacility struct {
	Country             string   `json:"country" yaml:"country"`
	Sector              string   `json:"sector" yaml:"sector"`
	Category            Category `json:"category" yaml:"category"`
	FacilityCount       int      `json:"facility_count" yaml:"facility_count"`
	InstalledCapacity   float64  `json:"installed_capacity" yaml:"installed_capacity"`
	UtilizedCapacity    float64  `json:"utilized_capacity" yaml:"utilized_capacity"`
	Unit                Unit     `json:"unit" yaml:"unit"`
	InvestmentPotential string   `json:"investment_potential,omitempty" yaml:"investment_potential"`
}

// Gap returns unutilized capacity, never negative
func (f ProcessingFacility) Gap() float64 {
	g := f.InstalledCapacity - f.UtilizedCapacity
	if g < 0 {
		return 0
	}
	return g
}

// UtilizationPct returns utilized capacity as a percentage of installed
func (f ProcessingFacility) UtilizationPct() float64 {
	if f.InstalledCapacity <= 0 {
		return 0
	}
	return f.UtilizedCapacity / f.InstalledCapacity * 100
}

// TradeFlow is a yearly trade value for a commodity
type TradeFlow struct {
	Country   string    `json:"country" yaml:"country"`
	Commodity string    `json:"commodity" yaml:"commodity"`
	Category  Category  `json:"category" yaml:"category"`
	Direction Direction `json:"direction" yaml:"direction"`
	ValueUSD  float64   `json:"value_usd" yaml:"value_usd"`
	Year      int       `json:"year" yaml:"year"`
}

// FoodSecurityIndicator holds country-level food security context
type FoodSecurityIndicator struct {
	Country             string  `json:"country" yaml:"country"`
	ImportDependencyPct float64 `json:"import_dependency_pct" yaml:"import_dependency_pct"`
	UndernourishmentPct float64 `json:"undernourishment_pct" yaml:"undernourishment_pct"`
	CerealPerCapita     float64 `json:"cereal_per_capita" yaml:"cereal_per_capita"`
}

// InvestmentClimateIndicator holds country-level business climate context
type InvestmentClimateIndicator struct {
	Country                 string  `json:"country" yaml:"country"`
	EaseOfBusinessRank      int     `json:"ease_of_business_rank" yaml:"ease_of_business_rank"`
	FDIInflowUSD            float64 `json:"fdi_inflow_usd" yaml:"fdi_inflow_usd"`
	LandAvailabilityScore   float64 `json:"land_availability_score" yaml:"land_availability_score"`
	PoliticalStabilityScore float64 `json:"political_stability_score" yaml:"political_stability_score"`
}

// Opportunity is a candidate investment project
type Opportunity struct {
	ID                string   `json:"id" yaml:"id"`
	Country           string   `json:"country" yaml:"country"`
	Sector            string   `json:"sector" yaml:"sector"`
	Category          Category `json:"category" yaml:"category"`
	Title             string   `json:"title" yaml:"title"`
	InvestmentLowUSD  float64  `json:"investment_low_usd" yaml:"investment_low_usd"`
	InvestmentHighUSD float64  `json:"investment_high_usd" yaml:"investment_high_usd"`
	ExpectedROIYears  float64  `json:"expected_roi_years" yaml:"expected_roi_years"`
	MarketGapVolume   float64  `json:"market_gap_volume" yaml:"market_gap_volume"`
	GapUnit           Unit     `json:"gap_unit" yaml:"gap_unit"`
	KeyDriver         string   `json:"key_driver,omitempty" yaml:"key_driver"`
}

// MaxOpportunityIDLength bounds opportunity IDs
const MaxOpportunityIDLength = 64

// IsValidOpportunityID reports whether id is usable as a URL path segment:
// 1 to 64 lowercase letters, digits, dashes or underscores.
func IsValidOpportunityID(id string) bool {
	if id == "" || len(id) > MaxOpportunityIDLength {
		return false
	}
	for _, ch := range id {
		if !((ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_') {
			return false
		}
	}
	return true
}

// Midpoint returns the middle of the investment range
func (o Opportunity) Midpoint() float64 {
	return (o.InvestmentLowUSD + o.InvestmentHighUSD) / 2
}

// CommodityPrice is one monthly price observation
type CommodityPrice struct {
	Commodity string   `json:"commodity" yaml:"commodity"`
	Category  Category `json:"category" yaml:"category"`
	// Month is formatted YYYY-MM
	Month    string  `json:"month" yaml:"month"`
	USDPerMT float64 `json:"usd_per_mt" yaml:"usd_per_mt"`
}

// Year returns the calendar year of the observation, 0 if malformed
func (p CommodityPrice) Year() int {
	if len(p.Month) < 4 {
		return 0
	}
	y := 0
	for _, c := range p.Month[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		y = y*10 + int(c-'0')
	}
	return y
}

// ROIScenario is a derived, request-scoped return estimate for one opportunity
type ROIScenario struct {
	OpportunityID    string   `json:"opportunity_id"`
	InvestmentAmount float64  `json:"investment_amount"`
	AnnualRevenue    float64  `json:"annual_revenue"`
	AnnualCost       float64  `json:"annual_cost"`
	AnnualNetMargin  float64  `json:"annual_net_margin"`
	PaybackYears     float64  `json:"payback_years"`
	SimpleROIPct     float64  `json:"simple_roi_pct"`
	AnnualROIPct     float64  `json:"annual_roi_pct"`
	HorizonYears     float64  `json:"horizon_years"`
	DiscountRate     *float64 `json:"discount_rate,omitempty"`
	NPV              *float64 `json:"npv,omitempty"`
}
