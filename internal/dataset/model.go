package dataset

import (
	"sort"

	"agroinvest/pkg/contracts/domain"
)

// Records is the raw bundle of base entities a loader produces
type Records struct {
	Countries         []domain.Country                    `json:"countries" yaml:"countries"`
	Metrics           []domain.CountryCropMetric          `json:"metrics" yaml:"metrics"`
	Facilities        []domain.ProcessingFacility         `json:"facilities" yaml:"facilities"`
	TradeFlows        []domain.TradeFlow                  `json:"trade_flows" yaml:"trade_flows"`
	FoodSecurity      []domain.FoodSecurityIndicator      `json:"food_security" yaml:"food_security"`
	InvestmentClimate []domain.InvestmentClimateIndicator `json:"investment_climate" yaml:"investment_climate"`
	Opportunities     []domain.Opportunity                `json:"opportunities" yaml:"opportunities"`
	Prices            []domain.CommodityPrice             `json:"prices" yaml:"prices"`
}

// Model is the validated, read-only dataset
type Model struct {
	records Records
	oppByID map[string]int
}

// New validates the records and wraps them in a Model. The slices are
// copied so later changes by the caller do not leak in.
func New(r Records) (*Model, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	m := &Model{records: r.clone(), oppByID: make(map[string]int, len(r.Opportunities))}
	for i, o := range m.records.Opportunities {
		m.oppByID[o.ID] = i
	}
	return m, nil
}

func (r Records) clone() Records {
	return Records{
		Countries:         append([]domain.Country(nil), r.Countries...),
		Metrics:           append([]domain.CountryCropMetric(nil), r.Metrics...),
		Facilities:        append([]domain.ProcessingFacility(nil), r.Facilities...),
		TradeFlows:        append([]domain.TradeFlow(nil), r.TradeFlows...),
		FoodSecurity:      append([]domain.FoodSecurityIndicator(nil), r.FoodSecurity...),
		InvestmentClimate: append([]domain.InvestmentClimateIndicator(nil), r.InvestmentClimate...),
		Opportunities:     append([]domain.Opportunity(nil), r.Opportunities...),
		Prices:            append([]domain.CommodityPrice(nil), r.Prices...),
	}
}

// Records returns a copy of every base record
func (m *Model) Records() Records { return m.records.clone() }

// Countries returns the country catalogue
func (m *Model) Countries() []domain.Country {
	return append([]domain.Country(nil), m.records.Countries...)
}

// Metrics returns all country/crop metrics
func (m *Model) Metrics() []domain.CountryCropMetric {
	return append([]domain.CountryCropMetric(nil), m.records.Metrics...)
}

// Facilities returns all processing facilities
func (m *Model) Facilities() []domain.ProcessingFacility {
	return append([]domain.ProcessingFacility(nil), m.records.Facilities...)
}

// TradeFlows returns all trade flows
func (m *Model) TradeFlows() []domain.TradeFlow {
	return append([]domain.TradeFlow(nil), m.records.TradeFlows...)
}

// FoodSecurity returns all food security indicators
func (m *Model) FoodSecurity() []domain.FoodSecurityIndicator {
	return append([]domain.FoodSecurityIndicator(nil), m.records.FoodSecurity...)
}

// InvestmentClimate returns all investment climate indicators
func (m *Model) InvestmentClimate() []domain.InvestmentClimateIndicator {
	return append([]domain.InvestmentClimateIndicator(nil), m.records.InvestmentClimate...)
}

// Opportunities returns all opportunities
func (m *Model) Opportunities() []domain.Opportunity {
	return append([]domain.Opportunity(nil), m.records.Opportunities...)
}

// Prices returns all monthly price observations
func (m *Model) Prices() []domain.CommodityPrice {
	return append([]domain.CommodityPrice(nil), m.records.Prices...)
}

// Opportunity looks up an opportunity by ID
func (m *Model) Opportunity(id string) (domain.Opportunity, bool) {
	i, ok := m.oppByID[id]
	if !ok {
		return domain.Opportunity{}, false
	}
	return m.records.Opportunities[i], true
}

// CountryCodes returns every country code referenced anywhere in the model, sorted
func (m *Model) CountryCodes() []string {
	seen := make(map[string]struct{})
	add := func(c string) {
		if c != "" {
			seen[c] = struct{}{}
		}
	}
	for _, c := range m.records.Countries {
		add(c.Code)
	}
	for _, x := range m.records.Metrics {
		add(x.Country)
	}
	for _, x := range m.records.Facilities {
		add(x.Country)
	}
	for _, x := range m.records.TradeFlows {
		add(x.Country)
	}
	for _, x := range m.records.FoodSecurity {
		add(x.Country)
	}
	for _, x := range m.records.InvestmentClimate {
		add(x.Country)
	}
	for _, x := range m.records.Opportunities {
		add(x.Country)
	}
	return sortedKeys(seen)
}

// Categories returns every category label referenced in the model, sorted
func (m *Model) Categories() []string {
	seen := make(map[string]struct{})
	add := func(c domain.Category) {
		if c != "" {
			seen[string(c)] = struct{}{}
		}
	}
	for _, x := range m.records.Metrics {
		add(x.Category)
	}
	for _, x := range m.records.Facilities {
		add(x.Category)
	}
	for _, x := range m.records.TradeFlows {
		add(x.Category)
	}
	for _, x := range m.records.Opportunities {
		add(x.Category)
	}
	for _, x := range m.records.Prices {
		add(x.Category)
	}
	return sortedKeys(seen)
}

// Summary describes the loaded model
type Summary struct {
	Countries         []string `json:"countries"`
	Categories        []string `json:"categories"`
	Metrics           int      `json:"metrics"`
	Facilities        int      `json:"facilities"`
	TradeFlows        int      `json:"trade_flows"`
	FoodSecurity      int      `json:"food_security"`
	InvestmentClimate int      `json:"investment_climate"`
	Opportunities     int      `json:"opportunities"`
	Prices            int      `json:"prices"`
	YearFrom          int      `json:"year_from"`
	YearTo            int      `json:"year_to"`
}

// Summary returns record counts and coverage
func (m *Model) Summary() Summary {
	s := Summary{
		Countries:         m.CountryCodes(),
		Categories:        m.Categories(),
		Metrics:           len(m.records.Metrics),
		Facilities:        len(m.records.Facilities),
		TradeFlows:        len(m.records.TradeFlows),
		FoodSecurity:      len(m.records.FoodSecurity),
		InvestmentClimate: len(m.records.InvestmentClimate),
		Opportunities:     len(m.records.Opportunities),
		Prices:            len(m.records.Prices),
	}
	for _, x := range m.records.Metrics {
		if s.YearFrom == 0 || x.Year < s.YearFrom {
			s.YearFrom = x.Year
		}
		if x.Year > s.YearTo {
			s.YearTo = x.Year
		}
	}
	return s
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
