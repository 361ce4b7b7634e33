package selection

import (
	"sort"
	"strconv"
	"strings"

	"agroinvest/internal/dataset"
	"agroinvest/pkg/contracts/domain"
)

// Select returns the subset of m matching c. It is pure and never fails.
func Select(m *dataset.Model, c Criteria) View {
	v := View{}

	countries, cw := resolveCountries(m, c.Countries)
	categories, kw := resolveCategories(m, c.Categories)
	v.warnings = append(v.warnings, cw...)
	v.warnings = append(v.warnings, kw...)

	band := c.SizeBand
	switch band {
	case "", SizeAll:
		band = SizeAll
	case SizeSmall, SizeMedium, SizeLarge:
	default:
		v.warnings = append(v.warnings, Warning{Kind: WarnUnknownSizeBand, Value: string(band)})
		band = SizeAll
	}
	if c.YearFrom > 0 && c.YearTo > 0 && c.YearFrom > c.YearTo {
		v.warnings = append(v.warnings, Warning{Kind: WarnEmptyYearRange,
			Value: strconv.Itoa(c.YearFrom) + "-" + strconv.Itoa(c.YearTo)})
	}

	v.criteria = Criteria{
		Countries:  sortedSet(countries),
		Categories: sortedSet(categories),
		YearFrom:   c.YearFrom,
		YearTo:     c.YearTo,
		SizeBand:   band,
	}
	v.countries = v.criteria.Countries

	f := filter{
		countries:  countries,
		categories: categories,
		yearFrom:   c.YearFrom,
		yearTo:     c.YearTo,
		band:       band,
		all:        len(c.Countries) == 0,
		allCats:    len(c.Categories) == 0,
	}

	r := m.Records()
	for _, x := range r.Metrics {
		if f.country(x.Country) && f.category(x.Category) && f.year(x.Year) {
			v.records.Metrics = append(v.records.Metrics, x)
		}
	}
	for _, x := range r.Facilities {
		if f.country(x.Country) && f.category(x.Category) {
			v.records.Facilities = append(v.records.Facilities, x)
		}
	}
	for _, x := range r.TradeFlows {
		if f.country(x.Country) && f.category(x.Category) && f.year(x.Year) {
			v.records.TradeFlows = append(v.records.TradeFlows, x)
		}
	}
	for _, x := range r.FoodSecurity {
		if f.country(x.Country) {
			v.records.FoodSecurity = append(v.records.FoodSecurity, x)
		}
	}
	for _, x := range r.InvestmentClimate {
		if f.country(x.Country) {
			v.records.InvestmentClimate = append(v.records.InvestmentClimate, x)
		}
	}
	for _, x := range r.Opportunities {
		if f.country(x.Country) && f.category(x.Category) && f.size(x) {
			v.records.Opportunities = append(v.records.Opportunities, x)
		}
	}
	// Prices are commodity-wide; only category and year apply.
	for _, x := range r.Prices {
		if f.category(x.Category) && f.year(x.Year()) {
			v.records.Prices = append(v.records.Prices, x)
		}
	}
	for _, x := range r.Countries {
		if f.country(x.Code) {
			v.records.Countries = append(v.records.Countries, x)
		}
	}
	return v
}

type filter struct {
	countries  map[string]struct{}
	categories map[string]struct{}
	yearFrom   int
	yearTo     int
	band       SizeBand
	all        bool
	allCats    bool
}

func (f filter) country(code string) bool {
	if f.all {
		return true
	}
	_, ok := f.countries[code]
	return ok
}

func (f filter) category(c domain.Category) bool {
	if f.allCats {
		return true
	}
	_, ok := f.categories[strings.ToLower(string(c))]
	return ok
}

func (f filter) year(y int) bool {
	if f.yearFrom > 0 && y < f.yearFrom {
		return false
	}
	if f.yearTo > 0 && y > f.yearTo {
		return false
	}
	return true
}

func (f filter) size(o domain.Opportunity) bool {
	return f.band == SizeAll || ClassifySize(o) == f.band
}

// resolveCountries maps requested values to dataset country codes. Codes
// match exactly first, then codes or names case-insensitively.
func resolveCountries(m *dataset.Model, requested []string) (map[string]struct{}, []Warning) {
	out := make(map[string]struct{}, len(requested))
	if len(requested) == 0 {
		return out, nil
	}
	codes := make(map[string]struct{})
	for _, c := range m.CountryCodes() {
		codes[c] = struct{}{}
	}
	byFold := make(map[string]string)
	for c := range codes {
		byFold[strings.ToLower(c)] = c
	}
	for _, c := range m.Countries() {
		if c.Name != "" {
			byFold[strings.ToLower(c.Name)] = c.Code
		}
	}

	var warnings []Warning
	for _, req := range requested {
		req = strings.TrimSpace(req)
		if _, ok := codes[req]; ok {
			out[req] = struct{}{}
			continue
		}
		if code, ok := byFold[strings.ToLower(req)]; ok {
			out[code] = struct{}{}
			continue
		}
		warnings = append(warnings, Warning{Kind: WarnUnmatchedCountry, Value: req})
	}
	return out, warnings
}

// resolveCategories lowercases requested categories and flags unknown ones
func resolveCategories(m *dataset.Model, requested []string) (map[string]struct{}, []Warning) {
	out := make(map[string]struct{}, len(requested))
	if len(requested) == 0 {
		return out, nil
	}
	known := make(map[string]struct{})
	for _, c := range m.Categories() {
		known[strings.ToLower(c)] = struct{}{}
	}
	var warnings []Warning
	for _, req := range requested {
		key := strings.ToLower(strings.TrimSpace(req))
		if _, ok := known[key]; !ok {
			warnings = append(warnings, Warning{Kind: WarnUnmatchedCategory, Value: req})
			continue
		}
		out[key] = struct{}{}
	}
	return out, warnings
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
