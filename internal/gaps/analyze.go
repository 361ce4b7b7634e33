package gaps

import (
	"sort"
	"strings"

	"agroinvest/internal/aggregation"
	"agroinvest/pkg/contracts/domain"
)

// Analyzer classifies gaps with a fixed set of thresholds
type Analyzer struct {
	thresholds Thresholds
}

// NewAnalyzer creates an analyzer, rejecting inconsistent thresholds
func NewAnalyzer(t Thresholds) (*Analyzer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{thresholds: t}, nil
}

// Thresholds returns the analyzer's severity thresholds
func (a *Analyzer) Thresholds() Thresholds { return a.thresholds }

// AnalyzeGaps classifies gaps with the default thresholds
func AnalyzeGaps(r aggregation.Rollup, facilities []domain.ProcessingFacility) Result {
	a := &Analyzer{thresholds: DefaultThresholds()}
	return a.AnalyzeGaps(r, facilities)
}

// AnalyzeGaps derives processing gaps from facilities and trade gaps from
// the rollup's crops, and returns them in deterministic order.
func (a *Analyzer) AnalyzeGaps(r aggregation.Rollup, facilities []domain.ProcessingFacility) Result {
	res := Result{Findings: []GapFinding{}}

	type sectorKey struct{ country, sector string }
	type capacity struct {
		installed, gap float64
		category       domain.Category
		potential      string
	}
	sectors := make(map[sectorKey]*capacity)
	for _, f := range facilities {
		installed, err := f.Unit.ToMetricTons(f.InstalledCapacity)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{
				Country: f.Country, Sector: f.Sector, Kind: KindProcessing, Unit: f.Unit,
				Reason: "capacity unit is not convertible to metric tons",
			})
			continue
		}
		gap, _ := f.Unit.ToMetricTons(f.Gap())

		k := sectorKey{f.Country, f.Sector}
		c, ok := sectors[k]
		if !ok {
			c = &capacity{category: f.Category, potential: f.InvestmentPotential}
			sectors[k] = c
		}
		c.installed += installed
		c.gap += gap
	}
	keys := make([]sectorKey, 0, len(sectors))
	for k := range sectors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].sector < keys[j].sector
	})
	for _, k := range keys {
		c := sectors[k]
		share := 0.0
		if c.installed > 0 {
			share = c.gap / c.installed
		}
		res.Findings = append(res.Findings, GapFinding{
			Country:             k.country,
			Sector:              k.sector,
			Category:            c.category,
			Kind:                KindProcessing,
			GapVolume:           c.gap,
			GapUnit:             domain.UnitMetricTon,
			ReferenceVolume:     c.installed,
			GapShare:            share,
			Severity:            a.thresholds.Classify(share),
			InvestmentPotential: c.potential,
		})
	}

	for _, c := range r.Crops {
		if !c.TradePair {
			continue
		}
		if c.UnitMismatch {
			res.Skipped = append(res.Skipped, Skipped{
				Country: c.Country, Sector: c.Crop, Kind: KindTrade,
				Reason: "import and production units differ",
			})
			continue
		}
		if c.ImportVolume == nil {
			continue
		}
		latest, ok := c.Production.Latest()
		if !ok || latest.Year != c.LatestYear {
			continue
		}
		imports := *c.ImportVolume
		gap := imports - latest.Value
		if gap <= 0 {
			continue
		}
		share := gap / imports
		res.Findings = append(res.Findings, GapFinding{
			Country:         c.Country,
			Sector:          c.Crop,
			Category:        c.Category,
			Kind:            KindTrade,
			GapVolume:       gap,
			GapUnit:         domain.UnitMetricTon,
			ReferenceVolume: imports,
			GapShare:        share,
			Severity:        a.thresholds.Classify(share),
			Year:            c.LatestYear,
		})
	}

	sort.SliceStable(res.Findings, func(i, j int) bool {
		x, y := res.Findings[i], res.Findings[j]
		if x.GapVolume != y.GapVolume {
			return x.GapVolume > y.GapVolume
		}
		if x.Country != y.Country {
			return x.Country < y.Country
		}
		if x.Sector != y.Sector {
			return x.Sector < y.Sector
		}
		return x.Kind < y.Kind
	})
	return res
}

// RankOpportunities pairs each opportunity with the most severe finding in
// the same country and sector, then orders them by severity, gap volume,
// market gap and ID. Opportunities without a finding rank last.
func RankOpportunities(opps []domain.Opportunity, findings []GapFinding) []RankedOpportunity {
	out := make([]RankedOpportunity, 0, len(opps))
	for _, o := range opps {
		ro := RankedOpportunity{Opportunity: o}
		for i := range findings {
			f := findings[i]
			if f.Country != o.Country || !strings.EqualFold(f.Sector, o.Sector) {
				continue
			}
			if ro.Finding == nil || betterFinding(f, *ro.Finding) {
				ro.Finding = &f
			}
		}
		out = append(out, ro)
	}

	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i], out[j]
		xs, ys := severityOf(x), severityOf(y)
		if xs != ys {
			return xs > ys
		}
		xg, yg := gapOf(x), gapOf(y)
		if xg != yg {
			return xg > yg
		}
		if x.Opportunity.MarketGapVolume != y.Opportunity.MarketGapVolume {
			return x.Opportunity.MarketGapVolume > y.Opportunity.MarketGapVolume
		}
		return x.Opportunity.ID < y.Opportunity.ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func betterFinding(a, b GapFinding) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	return a.GapVolume > b.GapVolume
}

func severityOf(r RankedOpportunity) int {
	if r.Finding == nil {
		return 0
	}
	return r.Finding.Severity.Rank()
}

func gapOf(r RankedOpportunity) float64 {
	if r.Finding == nil {
		return 0
	}
	return r.Finding.GapVolume
}
