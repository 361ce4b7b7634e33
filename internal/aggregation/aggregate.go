package aggregation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"agroinvest/internal/selection"
	"agroinvest/pkg/contracts/domain"
)

type cropKey struct {
	country string
	crop    string
}

// cropAcc collects the normalized yearly volumes of one crop
type cropAcc struct {
	category   domain.Category
	production map[int]float64
	area       map[int]float64
	imports    map[int]float64
	exports    map[int]float64
	mismatch   map[int]bool
	// years with a production or import record, convertible or not
	producedIn map[int]bool
	importedIn map[int]bool
}

func newCropAcc() *cropAcc {
	return &cropAcc{
		production: make(map[int]float64),
		area:       make(map[int]float64),
		imports:    make(map[int]float64),
		exports:    make(map[int]float64),
		mismatch:   make(map[int]bool),
		producedIn: make(map[int]bool),
		importedIn: make(map[int]bool),
	}
}

// Aggregate computes the rollup of a view
func Aggregate(v selection.View, opts Options) Rollup {
	if opts.TrendYears <= 0 {
		opts.TrendYears = DefaultTrendYears
	}
	out := Rollup{
		Countries:  []CountryRollup{},
		Crops:      []CropRollup{},
		TrendYears: opts.TrendYears,
	}

	accs := make(map[cropKey]*cropAcc)
	for _, m := range v.Metrics() {
		if out.YearFrom == 0 || m.Year < out.YearFrom {
			out.YearFrom = m.Year
		}
		if m.Year > out.YearTo {
			out.YearTo = m.Year
		}

		k := cropKey{m.Country, m.Crop}
		acc, ok := accs[k]
		if !ok {
			acc = newCropAcc()
			accs[k] = acc
		}
		if acc.category == "" {
			acc.category = m.Category
		}

		if m.Kind == domain.MetricArea {
			if m.Unit != domain.UnitHectare {
				out.UnitMismatches = append(out.UnitMismatches, mismatchOf(m))
				continue
			}
			acc.area[m.Year] += m.Volume
			continue
		}

		switch m.Kind {
		case domain.MetricProduction:
			acc.producedIn[m.Year] = true
		case domain.MetricImport:
			acc.importedIn[m.Year] = true
		}

		tons, err := m.Unit.ToMetricTons(m.Volume)
		if err != nil {
			out.UnitMismatches = append(out.UnitMismatches, mismatchOf(m))
			if m.Kind == domain.MetricProduction || m.Kind == domain.MetricImport {
				acc.mismatch[m.Year] = true
			}
			continue
		}
		switch m.Kind {
		case domain.MetricProduction:
			acc.production[m.Year] += tons
		case domain.MetricImport:
			acc.imports[m.Year] += tons
		case domain.MetricExport:
			acc.exports[m.Year] += tons
		}
	}

	keys := make([]cropKey, 0, len(accs))
	for k := range accs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].crop < keys[j].crop
	})

	countryProd := make(map[string]map[int]float64)
	countryImp := make(map[string]map[int]float64)
	countryMismatch := make(map[string]map[int]bool)
	countryCrops := make(map[string]int)
	for _, k := range keys {
		acc := accs[k]
		out.Crops = append(out.Crops, cropRollup(k, acc, opts.TrendYears))

		if countryProd[k.country] == nil {
			countryProd[k.country] = make(map[int]float64)
			countryImp[k.country] = make(map[int]float64)
			countryMismatch[k.country] = make(map[int]bool)
		}
		for _, y := range sortedYears(acc.production) {
			countryProd[k.country][y] += acc.production[y]
		}
		for _, y := range sortedYears(acc.imports) {
			countryImp[k.country][y] += acc.imports[y]
		}
		for y := range acc.mismatch {
			countryMismatch[k.country][y] = true
		}
		if len(acc.production) > 0 {
			countryCrops[k.country]++
		}
	}

	out.Countries = countryRollups(v, countryVolumes{
		production: countryProd,
		imports:    countryImp,
		mismatch:   countryMismatch,
		crops:      countryCrops,
	}, opts.TrendYears)
	return out
}

func mismatchOf(m domain.CountryCropMetric) UnitMismatch {
	return UnitMismatch{Country: m.Country, Crop: m.Crop, Year: m.Year, Kind: m.Kind, Unit: m.Unit}
}

func cropRollup(k cropKey, acc *cropAcc, window int) CropRollup {
	cr := CropRollup{
		Country:    k.country,
		Crop:       k.crop,
		Category:   acc.category,
		Unit:       domain.UnitMetricTon,
		Production: buildSeries(acc.production, window),
	}

	cr.LatestYear = maxYear(acc.production, acc.imports, boolYears(acc.mismatch))
	if cr.LatestYear == 0 {
		cr.LatestYear = maxYear(acc.area, acc.exports)
	}
	y := cr.LatestYear

	prod, hasProd := acc.production[y]
	cr.LatestProduction = prod
	if area, ok := acc.area[y]; ok {
		cr.AreaHa = ptr(area)
		if hasProd && area > 0 {
			cr.Yield = ptr(prod / area)
		}
	}
	cr.AverageYield = averageYield(acc, cr.Production)

	imp, hasImp := acc.imports[y]
	if hasImp {
		cr.ImportVolume = ptr(imp)
	}
	if exp, ok := acc.exports[y]; ok {
		cr.ExportVolume = ptr(exp)
	}

	cr.UnitMismatch = acc.mismatch[y]
	cr.TradePair = acc.producedIn[y] && acc.importedIn[y]
	if !cr.UnitMismatch && (hasProd || hasImp) {
		cr.ImportDependency = ptr(ImportDependency(imp, prod))
	}
	return cr
}

func averageYield(acc *cropAcc, s Series) *float64 {
	var sum float64
	var n int
	for _, p := range s.Years {
		if area, ok := acc.area[p.Year]; ok && area > 0 {
			sum += p.Value / area
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return ptr(sum / float64(n))
}

// countryVolumes holds per-country yearly sums of the crop accumulators.
// mismatch marks years in which some production or import volume could
// not be converted to metric tons.
type countryVolumes struct {
	production map[string]map[int]float64
	imports    map[string]map[int]float64
	mismatch   map[string]map[int]bool
	crops      map[string]int
}

func countryRollups(v selection.View, cv countryVolumes, window int) []CountryRollup {
	prod, imp := cv.production, cv.imports
	codes := make(map[string]struct{})
	for c := range prod {
		codes[c] = struct{}{}
	}
	names := make(map[string]string)
	for _, c := range v.Catalogue() {
		codes[c.Code] = struct{}{}
		names[c.Code] = c.Name
	}
	importUSD := make(map[string]float64)
	exportUSD := make(map[string]float64)
	for _, t := range v.TradeFlows() {
		codes[t.Country] = struct{}{}
		if t.Direction == domain.DirectionImport {
			importUSD[t.Country] += t.ValueUSD
		} else {
			exportUSD[t.Country] += t.ValueUSD
		}
	}
	food := make(map[string]domain.FoodSecurityIndicator)
	for _, f := range v.FoodSecurity() {
		codes[f.Country] = struct{}{}
		if _, ok := food[f.Country]; !ok {
			food[f.Country] = f
		}
	}
	climate := make(map[string]domain.InvestmentClimateIndicator)
	for _, c := range v.InvestmentClimate() {
		codes[c.Country] = struct{}{}
		if _, ok := climate[c.Country]; !ok {
			climate[c.Country] = c
		}
	}

	sorted := make([]string, 0, len(codes))
	for c := range codes {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)

	out := make([]CountryRollup, 0, len(sorted))
	var grand float64
	for _, code := range sorted {
		cr := CountryRollup{
			Country:        code,
			Name:           names[code],
			Production:     buildSeries(prod[code], window),
			ImportValueUSD: importUSD[code],
			ExportValueUSD: exportUSD[code],
			CropCount:      cv.crops[code],
		}
		if len(prod[code]) > 0 || len(imp[code]) > 0 || len(cv.mismatch[code]) > 0 {
			cr.LatestYear = maxYear(prod[code], imp[code], boolYears(cv.mismatch[code]))
			p := prod[code][cr.LatestYear]
			i := imp[code][cr.LatestYear]
			cr.ImportVolume = i
			cr.UnitMismatch = cv.mismatch[code][cr.LatestYear]
			if !cr.UnitMismatch {
				cr.ImportDependency = ptr(ImportDependency(i, p))
			}
		}
		if f, ok := food[code]; ok {
			cr.FoodSecurity = &f
		}
		if c, ok := climate[code]; ok {
			cr.InvestmentClimate = &c
		}
		grand += cr.Production.Total
		out = append(out, cr)
	}
	if grand > 0 {
		for i := range out {
			out[i].ProductionSharePct = out[i].Production.Total / grand * 100
		}
	}
	return out
}

// ImportDependency returns imports / (production + imports), or 0 when both are 0
func ImportDependency(imports, production float64) float64 {
	total := imports + production
	if total <= 0 {
		return 0
	}
	return imports / total
}

// YoYPct returns the percentage change from previous to current. The second
// result is false when previous is not positive.
func YoYPct(current, previous float64) (float64, bool) {
	if previous <= 0 {
		return 0, false
	}
	return (current - previous) / previous * 100, true
}

// buildSeries keeps the years within window of the latest year
func buildSeries(values map[int]float64, window int) Series {
	s := Series{Years: []YearValue{}, Trend: TrendInsufficient}
	years := sortedYears(values)
	if len(years) == 0 {
		return s
	}
	latest := years[len(years)-1]
	for _, y := range years {
		if y > latest-window {
			s.Years = append(s.Years, YearValue{Year: y, Value: values[y]})
			s.Total += values[y]
		}
	}
	s.Average = s.Total / float64(len(s.Years))

	if prev, ok := values[latest-1]; ok {
		if pct, ok := YoYPct(values[latest], prev); ok {
			s.YoYPct = ptr(pct)
		}
	}

	if len(s.Years) >= 2 {
		slope := Slope(s.Years)
		s.Slope = ptr(slope)
		s.Trend = trendOf(slope, s.Average)
	}
	return s
}

// Slope returns the least-squares slope of value over year
func Slope(points []YearValue) float64 {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Year)
		ys[i] = p.Value
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}

// flatTolerance is the slope, relative to the series mean, treated as zero
const flatTolerance = 1e-9

func trendOf(slope, mean float64) Trend {
	if math.Abs(slope) <= flatTolerance*math.Max(1, math.Abs(mean)) {
		return TrendFlat
	}
	if slope > 0 {
		return TrendUp
	}
	return TrendDown
}

func sortedYears[V any](m map[int]V) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func boolYears(m map[int]bool) map[int]float64 {
	out := make(map[int]float64, len(m))
	for y := range m {
		out[y] = 0
	}
	return out
}

func maxYear(ms ...map[int]float64) int {
	latest := 0
	for _, m := range ms {
		for y := range m {
			if y > latest {
				latest = y
			}
		}
	}
	return latest
}

func ptr(v float64) *float64 { return &v }
