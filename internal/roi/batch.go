package roi

import (
	"agroinvest/pkg/contracts/domain"
)

// BatchItem is one opportunity with its assumptions
type BatchItem struct {
	Opportunity domain.Opportunity   `json:"opportunity"`
	Assumptions FinancialAssumptions `json:"assumptions"`
}

// BatchResult is the outcome for one BatchItem
type BatchResult struct {
	OpportunityID string              `json:"opportunity_id"`
	Scenario      *domain.ROIScenario `json:"scenario,omitempty"`
	Err           error               `json:"-"`
	Error         string              `json:"error,omitempty"`
}

// Compute runs ComputeROI for one item and records any failure on the result
func (it BatchItem) Compute() BatchResult {
	r := BatchResult{OpportunityID: it.Opportunity.ID}
	s, err := ComputeROI(it.Opportunity, it.Assumptions)
	if err != nil {
		r.Err = err
		r.Error = err.Error()
		return r
	}
	r.Scenario = &s
	return r
}

// ComputeBatch computes every item in order. A failing item is recorded on
// its own result and never stops the others.
func ComputeBatch(items []BatchItem) []BatchResult {
	out := make([]BatchResult, len(items))
	for i, it := range items {
		out[i] = it.Compute()
	}
	return out
}

// Failures counts the failed results
func Failures(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
