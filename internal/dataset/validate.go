package dataset

import (
	"errors"
	"fmt"

	"agroinvest/pkg/contracts/domain"
)

// ValidationError reports one dataset invariant violation
type ValidationError struct {
	Entity  string      `json:"entity"`
	Index   int         `json:"index"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s[%d].%s: %s", ve.Entity, ve.Index, ve.Field, ve.Message)
}

// Validate checks the dataset invariants and returns every violation
// joined into one error, or nil.
func Validate(r Records) error {
	var errs []error
	fail := func(entity string, i int, field, msg string, v interface{}) {
		errs = append(errs, &ValidationError{Entity: entity, Index: i, Field: field, Message: msg, Value: v})
	}

	known := make(map[string]struct{}, len(r.Countries))
	for i, c := range r.Countries {
		if c.Code == "" {
			fail("countries", i, "code", "country code is required", nil)
			continue
		}
		if _, dup := known[c.Code]; dup {
			fail("countries", i, "code", "duplicate country code", c.Code)
		}
		known[c.Code] = struct{}{}
	}
	checkCategory := func(entity string, i int, c domain.Category) {
		if c == "" {
			fail(entity, i, "category", "category is required", nil)
		}
	}
	checkCountry := func(entity string, i int, code string) {
		if code == "" {
			fail(entity, i, "country", "country is required", nil)
			return
		}
		if len(known) == 0 {
			return
		}
		if _, ok := known[code]; !ok {
			fail(entity, i, "country", "country is not in the catalogue", code)
		}
	}

	keys := make(map[domain.MetricKey]struct{}, len(r.Metrics))
	for i, m := range r.Metrics {
		checkCountry("metrics", i, m.Country)
		checkCategory("metrics", i, m.Category)
		if m.Crop == "" {
			fail("metrics", i, "crop", "crop is required", nil)
		}
		if !m.Kind.IsValid() {
			fail("metrics", i, "kind", "unknown metric kind", m.Kind)
		}
		if m.Year <= 0 {
			fail("metrics", i, "year", "year must be positive", m.Year)
		}
		if m.Volume < 0 {
			fail("metrics", i, "volume", "volume must not be negative", m.Volume)
		}
		if m.Unit == "" {
			fail("metrics", i, "unit", "unit is required", nil)
		}
		if _, dup := keys[m.Key()]; dup {
			fail("metrics", i, "key", "duplicate country/crop/year/kind", m.Key())
		}
		keys[m.Key()] = struct{}{}
	}

	for i, f := range r.Facilities {
		checkCountry("facilities", i, f.Country)
		checkCategory("facilities", i, f.Category)
		if f.Sector == "" {
			fail("facilities", i, "sector", "sector is required", nil)
		}
		if f.InstalledCapacity < 0 || f.UtilizedCapacity < 0 {
			fail("facilities", i, "capacity", "capacity must not be negative",
				map[string]float64{"installed": f.InstalledCapacity, "utilized": f.UtilizedCapacity})
		}
		if f.UtilizedCapacity > f.InstalledCapacity {
			fail("facilities", i, "utilized_capacity", "utilized capacity exceeds installed capacity",
				map[string]float64{"installed": f.InstalledCapacity, "utilized": f.UtilizedCapacity})
		}
		if f.Unit == "" {
			fail("facilities", i, "unit", "unit is required", nil)
		}
	}

	for i, t := range r.TradeFlows {
		checkCountry("trade_flows", i, t.Country)
		checkCategory("trade_flows", i, t.Category)
		if !t.Direction.IsValid() {
			fail("trade_flows", i, "direction", "direction must be import or export", t.Direction)
		}
		if t.ValueUSD < 0 {
			fail("trade_flows", i, "value_usd", "trade value must not be negative", t.ValueUSD)
		}
	}

	for i, fs := range r.FoodSecurity {
		checkCountry("food_security", i, fs.Country)
		if !isPct(fs.ImportDependencyPct) {
			fail("food_security", i, "import_dependency_pct", "percentage must be within [0,100]", fs.ImportDependencyPct)
		}
		if !isPct(fs.UndernourishmentPct) {
			fail("food_security", i, "undernourishment_pct", "percentage must be within [0,100]", fs.UndernourishmentPct)
		}
	}

	for i, ic := range r.InvestmentClimate {
		checkCountry("investment_climate", i, ic.Country)
	}

	ids := make(map[string]struct{}, len(r.Opportunities))
	for i, o := range r.Opportunities {
		checkCountry("opportunities", i, o.Country)
		checkCategory("opportunities", i, o.Category)
		if o.ID == "" {
			fail("opportunities", i, "id", "opportunity id is required", nil)
		} else if !domain.IsValidOpportunityID(o.ID) {
			fail("opportunities", i, "id", "opportunity id must be lowercase letters, digits, dashes or underscores", o.ID)
		} else if _, dup := ids[o.ID]; dup {
			fail("opportunities", i, "id", "duplicate opportunity id", o.ID)
		}
		ids[o.ID] = struct{}{}
		if o.InvestmentLowUSD < 0 || o.InvestmentLowUSD > o.InvestmentHighUSD {
			fail("opportunities", i, "investment_low_usd", "investment range must satisfy 0 <= low <= high",
				map[string]float64{"low": o.InvestmentLowUSD, "high": o.InvestmentHighUSD})
		}
		if o.ExpectedROIYears <= 0 {
			fail("opportunities", i, "expected_roi_years", "expected ROI years must be positive", o.ExpectedROIYears)
		}
	}

	for i, p := range r.Prices {
		if p.Commodity == "" {
			fail("prices", i, "commodity", "commodity is required", nil)
		}
		checkCategory("prices", i, p.Category)
		if p.Year() == 0 {
			fail("prices", i, "month", "month must be formatted YYYY-MM", p.Month)
		}
		if p.USDPerMT < 0 {
			fail("prices", i, "usd_per_mt", "price must not be negative", p.USDPerMT)
		}
	}

	return errors.Join(errs...)
}

func isPct(v float64) bool { return v >= 0 && v <= 100 }
