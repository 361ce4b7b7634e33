package aggregation

import (
	"fmt"
	"sort"

	"agroinvest/internal/selection"
	"agroinvest/pkg/contracts/domain"
)

// Overview is the headline market summary of a selection
type Overview struct {
	LatestYear          int      `json:"latest_year,omitempty"`
	LatestProductionT   float64  `json:"latest_production_t"`
	PreviousProductionT float64  `json:"previous_production_t"`
	YoYGrowthPct        *float64 `json:"yoy_growth_pct,omitempty"`
	TotalProductionT    float64  `json:"total_production_t"`
	TotalImportValueUSD float64  `json:"total_import_value_usd"`
	TotalExportValueUSD float64  `json:"total_export_value_usd"`
	// ProcessingGapT is unutilized capacity across facilities with mass units
	ProcessingGapT   float64      `json:"processing_gap_t"`
	OpportunityCount int          `json:"opportunity_count"`
	AverageROIYears  *float64     `json:"average_roi_years,omitempty"`
	TopCrops         []CropTotal  `json:"top_crops"`
	TopImports       []TradeTotal `json:"top_imports"`
	UnitMismatches   int          `json:"unit_mismatches"`
}

// CropTotal is total production of one crop across the selected countries
type CropTotal struct {
	Crop        string  `json:"crop"`
	ProductionT float64 `json:"production_t"`
}

// TradeTotal is the summed trade value of one commodity in one country
type TradeTotal struct {
	Country   string  `json:"country"`
	Commodity string  `json:"commodity"`
	ValueUSD  float64 `json:"value_usd"`
}

// Overview list lengths
const (
	TopCropsLimit   = 5
	TopImportsLimit = 10
)

// Summarize computes the market overview of a view and its rollup
func Summarize(v selection.View, r Rollup) Overview {
	o := Overview{
		LatestYear:     r.YearTo,
		TopCrops:       TopCrops(r, TopCropsLimit),
		TopImports:     []TradeTotal{},
		UnitMismatches: r.UnitMismatchCount(),
	}

	for _, c := range r.Countries {
		o.TotalImportValueUSD += c.ImportValueUSD
		o.TotalExportValueUSD += c.ExportValueUSD
	}
	for _, c := range r.Crops {
		for _, p := range c.Production.Years {
			o.TotalProductionT += p.Value
			switch p.Year {
			case o.LatestYear:
				o.LatestProductionT += p.Value
			case o.LatestYear - 1:
				o.PreviousProductionT += p.Value
			}
		}
	}
	if pct, ok := YoYPct(o.LatestProductionT, o.PreviousProductionT); ok {
		o.YoYGrowthPct = &pct
	}

	for _, f := range v.Facilities() {
		if gap, err := f.Unit.ToMetricTons(f.Gap()); err == nil {
			o.ProcessingGapT += gap
		}
	}

	opps := v.Opportunities()
	o.OpportunityCount = len(opps)
	if len(opps) > 0 {
		var sum float64
		for _, op := range opps {
			sum += op.ExpectedROIYears
		}
		avg := sum / float64(len(opps))
		o.AverageROIYears = &avg
	}

	o.TopImports = topImports(v.TradeFlows(), TopImportsLimit)
	return o
}

// TopCrops ranks crops by production summed over countries and trend
// windows, largest first, ties by name
func TopCrops(r Rollup, n int) []CropTotal {
	totals := make(map[string]float64)
	for _, c := range r.Crops {
		if len(c.Production.Years) > 0 {
			totals[c.Crop] += c.Production.Total
		}
	}
	out := make([]CropTotal, 0, len(totals))
	for crop, t := range totals {
		out = append(out, CropTotal{Crop: crop, ProductionT: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductionT != out[j].ProductionT {
			return out[i].ProductionT > out[j].ProductionT
		}
		return out[i].Crop < out[j].Crop
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func topImports(flows []domain.TradeFlow, n int) []TradeTotal {
	type key struct{ country, commodity string }
	totals := make(map[key]float64)
	for _, f := range flows {
		if f.Direction == domain.DirectionImport {
			totals[key{f.Country, f.Commodity}] += f.ValueUSD
		}
	}
	out := make([]TradeTotal, 0, len(totals))
	for k, v := range totals {
		out = append(out, TradeTotal{Country: k.country, Commodity: k.commodity, ValueUSD: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ValueUSD != out[j].ValueUSD {
			return out[i].ValueUSD > out[j].ValueUSD
		}
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Commodity < out[j].Commodity
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PriceTrend summarizes the monthly price series of one commodity
type PriceTrend struct {
	Commodity    string   `json:"commodity"`
	LatestMonth  string   `json:"latest_month"`
	LatestPrice  float64  `json:"latest_price"`
	BaseMonth    string   `json:"base_month,omitempty"`
	BasePrice    *float64 `json:"base_price,omitempty"`
	YoYChangePct *float64 `json:"yoy_change_pct,omitempty"`
	Average12M   float64  `json:"average_12m"`
	Observations int      `json:"observations"`
}

// PriceTrends compares each commodity's latest monthly price with the price
// twelve months earlier. Commodities are returned in name order.
func PriceTrends(v selection.View) []PriceTrend {
	series := make(map[string][]domain.CommodityPrice)
	for _, p := range v.Prices() {
		series[p.Commodity] = append(series[p.Commodity], p)
	}
	names := make([]string, 0, len(series))
	for c := range series {
		names = append(names, c)
	}
	sort.Strings(names)

	out := make([]PriceTrend, 0, len(names))
	for _, c := range names {
		ps := series[c]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Month < ps[j].Month })
		latest := ps[len(ps)-1]
		pt := PriceTrend{
			Commodity:    c,
			LatestMonth:  latest.Month,
			LatestPrice:  latest.USDPerMT,
			Observations: len(ps),
		}

		base := shiftYear(latest.Month, -1)
		for _, p := range ps {
			if p.Month == base {
				price := p.USDPerMT
				pt.BaseMonth = base
				pt.BasePrice = &price
				if pct, ok := YoYPct(latest.USDPerMT, price); ok {
					pt.YoYChangePct = &pct
				}
				break
			}
		}

		from := len(ps) - 12
		if from < 0 {
			from = 0
		}
		var sum float64
		for _, p := range ps[from:] {
			sum += p.USDPerMT
		}
		pt.Average12M = sum / float64(len(ps)-from)
		out = append(out, pt)
	}
	return out
}

// shiftYear moves a YYYY-MM month label by delta years
func shiftYear(month string, delta int) string {
	p := domain.CommodityPrice{Month: month}
	y := p.Year()
	if y == 0 {
		return ""
	}
	return fmt.Sprintf("%04d%s", y+delta, month[4:])
}
