package gaps

import (
	"fmt"

	"agroinvest/pkg/contracts/domain"
)

// Severity is the three-tier gap classification
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities; unknown values rank below low
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Kind distinguishes processing gaps from trade gaps
type Kind string

const (
	KindProcessing Kind = "processing"
	KindTrade      Kind = "trade"
)

// Default severity thresholds as shares of the reference volume
const (
	DefaultHighThreshold   = 0.50
	DefaultMediumThreshold = 0.20
)

// Thresholds are the severity cut-offs
type Thresholds struct {
	High   float64 `json:"high" yaml:"high"`
	Medium float64 `json:"medium" yaml:"medium"`
}

// DefaultThresholds returns the 50% / 20% policy
func DefaultThresholds() Thresholds {
	return Thresholds{High: DefaultHighThreshold, Medium: DefaultMediumThreshold}
}

// Validate checks 0 < medium <= high <= 1
func (t Thresholds) Validate() error {
	if t.Medium <= 0 || t.Medium > t.High || t.High > 1 {
		return fmt.Errorf("invalid gap thresholds: medium=%.2f high=%.2f (need 0 < medium <= high <= 1)", t.Medium, t.High)
	}
	return nil
}

// Classify returns the severity of a gap share
func (t Thresholds) Classify(share float64) Severity {
	switch {
	case share >= t.High:
		return SeverityHigh
	case share >= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// GapFinding is one classified gap. Volumes are in GapUnit (metric tons).
type GapFinding struct {
	Country             string          `json:"country"`
	Sector              string          `json:"sector"`
	Category            domain.Category `json:"category,omitempty"`
	Kind                Kind            `json:"kind"`
	GapVolume           float64         `json:"gap_volume"`
	GapUnit             domain.Unit     `json:"gap_unit"`
	ReferenceVolume     float64         `json:"reference_volume"`
	GapShare            float64         `json:"gap_share"`
	Severity            Severity        `json:"severity"`
	Year                int             `json:"year,omitempty"`
	InvestmentPotential string          `json:"investment_potential,omitempty"`
}

// Skipped describes a gap left out because its units could not be compared
type Skipped struct {
	Country string      `json:"country"`
	Sector  string      `json:"sector"`
	Kind    Kind        `json:"kind"`
	Unit    domain.Unit `json:"unit,omitempty"`
	Reason  string      `json:"reason"`
}

// Result is the output of AnalyzeGaps
type Result struct {
	Findings []GapFinding `json:"findings"`
	Skipped  []Skipped    `json:"skipped,omitempty"`
}

// SkippedCount returns the number of unit-mismatch skips
func (r Result) SkippedCount() int { return len(r.Skipped) }

// CountBySeverity returns the number of findings per severity
func (r Result) CountBySeverity() map[Severity]int {
	out := map[Severity]int{SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0}
	for _, f := range r.Findings {
		out[f.Severity]++
	}
	return out
}

// RankedOpportunity is an opportunity with the gap it addresses, if any
type RankedOpportunity struct {
	Rank        int                `json:"rank"`
	Opportunity domain.Opportunity `json:"opportunity"`
	Finding     *GapFinding        `json:"finding,omitempty"`
}
