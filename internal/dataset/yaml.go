package dataset

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"agroinvest/pkg/contracts/domain"
)

// document mirrors Records but accepts the shorthand fields found in
// survey sheets: investment ranges as text and utilization as a percentage.
type document struct {
	Countries         []domain.Country                    `yaml:"countries"`
	Metrics           []domain.CountryCropMetric          `yaml:"metrics"`
	Facilities        []facilityDoc                       `yaml:"facilities"`
	TradeFlows        []tradeDoc                          `yaml:"trade_flows"`
	FoodSecurity      []domain.FoodSecurityIndicator      `yaml:"food_security"`
	InvestmentClimate []domain.InvestmentClimateIndicator `yaml:"investment_climate"`
	Opportunities     []opportunityDoc                    `yaml:"opportunities"`
	Prices            []domain.CommodityPrice             `yaml:"prices"`
}

type facilityDoc struct {
	domain.ProcessingFacility `yaml:",inline"`
	UtilizationPct            *float64 `yaml:"utilization_pct"`
}

type tradeDoc struct {
	domain.TradeFlow `yaml:",inline"`
	ValueUSDMillions *float64 `yaml:"value_usd_millions"`
}

type opportunityDoc struct {
	domain.Opportunity `yaml:",inline"`
	InvestmentRange    string `yaml:"investment_range"`
}

// ParseYAML decodes a YAML dataset document and validates it
func ParseYAML(data []byte) (*Model, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode dataset yaml: %w", err)
	}
	r, err := doc.records()
	if err != nil {
		return nil, err
	}
	return New(r)
}

func (d document) records() (Records, error) {
	r := Records{
		Countries:         d.Countries,
		FoodSecurity:      d.FoodSecurity,
		InvestmentClimate: d.InvestmentClimate,
		Prices:            d.Prices,
	}
	r.Metrics = make([]domain.CountryCropMetric, len(d.Metrics))
	for i, m := range d.Metrics {
		m.Unit = domain.ParseUnit(string(m.Unit))
		r.Metrics[i] = m
	}
	for _, f := range d.Facilities {
		pf := f.ProcessingFacility
		if f.UtilizationPct != nil {
			pf.UtilizedCapacity = pf.InstalledCapacity * *f.UtilizationPct / 100
		}
		pf.Unit = domain.ParseUnit(string(pf.Unit))
		r.Facilities = append(r.Facilities, pf)
	}
	for _, t := range d.TradeFlows {
		tf := t.TradeFlow
		if t.ValueUSDMillions != nil {
			tf.ValueUSD = *t.ValueUSDMillions * 1_000_000
		}
		r.TradeFlows = append(r.TradeFlows, tf)
	}
	for _, o := range d.Opportunities {
		op := o.Opportunity
		if o.InvestmentRange != "" {
			low, high, err := ParseInvestmentRange(o.InvestmentRange)
			if err != nil {
				return Records{}, fmt.Errorf("opportunity %s: %w", op.ID, err)
			}
			op.InvestmentLowUSD, op.InvestmentHighUSD = low, high
		}
		op.GapUnit = domain.ParseUnit(string(op.GapUnit))
		r.Opportunities = append(r.Opportunities, op)
	}
	return r, nil
}
