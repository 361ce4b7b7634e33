package exporter

import (
	"agroinvest/internal/services"
)

// Report rows shared by the CSV and XLSX writers. nil cells stay empty.

func opportunityRows(rep *services.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(rep.Opportunities))
	for i, ro := range rep.Opportunities {
		o := ro.Opportunity
		row := []interface{}{
			ro.Rank, o.ID, o.Country, o.Sector, string(o.Category), o.Title,
			o.InvestmentLowUSD, o.InvestmentHighUSD, o.ExpectedROIYears,
			o.MarketGapVolume, string(o.GapUnit),
		}
		if f := ro.Finding; f != nil {
			row = append(row, string(f.Kind), string(f.Severity), f.GapShare)
		} else {
			row = append(row, nil, nil, nil)
		}

		var scenarioErr string
		if i < len(rep.Scenarios) {
			r := rep.Scenarios[i]
			if s := r.Scenario; s != nil {
				row = append(row, s.InvestmentAmount, s.AnnualNetMargin, s.PaybackYears, s.SimpleROIPct)
			} else {
				row = append(row, nil, nil, nil, nil)
				scenarioErr = r.Error
			}
		} else {
			row = append(row, nil, nil, nil, nil)
		}
		rows = append(rows, append(row, scenarioErr))
	}
	return rows
}

func gapRows(rep *services.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(rep.Gaps.Findings))
	for _, f := range rep.Gaps.Findings {
		var year interface{}
		if f.Year != 0 {
			year = f.Year
		}
		rows = append(rows, []interface{}{
			f.Country, f.Sector, string(f.Category), string(f.Kind), string(f.Severity),
			f.GapVolume, string(f.GapUnit), f.ReferenceVolume, f.GapShare, year, f.InvestmentPotential,
		})
	}
	return rows
}

func countryRows(rep *services.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(rep.Rollup.Countries))
	for _, c := range rep.Rollup.Countries {
		rows = append(rows, []interface{}{
			c.Country, c.Name, c.LatestYear, c.Production.Total, string(c.Production.Trend),
			c.ImportVolume, optional(c.ImportDependency), c.ImportValueUSD, c.ExportValueUSD,
			c.ProductionSharePct, c.CropCount, c.UnitMismatch,
		})
	}
	return rows
}

func cropRows(rep *services.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(rep.Rollup.Crops))
	for _, c := range rep.Rollup.Crops {
		rows = append(rows, []interface{}{
			c.Country, c.Crop, string(c.Category), c.LatestYear, c.LatestProduction,
			optional(c.Production.YoYPct), string(c.Production.Trend),
			optional(c.Yield), optional(c.ImportVolume), optional(c.ImportDependency), c.UnitMismatch,
		})
	}
	return rows
}

func priceRows(rep *services.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(rep.PriceTrends))
	for _, p := range rep.PriceTrends {
		rows = append(rows, []interface{}{
			p.Commodity, p.LatestMonth, p.LatestPrice, optional(p.BasePrice), optional(p.YoYChangePct), p.Average12M,
		})
	}
	return rows
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
