// Package roi computes payback, simple ROI and net present value for an
// investment opportunity under caller-supplied financial assumptions.
//
// Formulas:
//
//	net margin   = revenue × (1 − costRatio)
//	payback      = investment / net margin
//	simple ROI % = (net margin × expectedROIYears − investment) / investment × 100
//	annual ROI % = net margin / investment × 100
//	NPV          = −investment + net margin × (1 − (1+r)^−h) / r     (h = horizon years)
//
// Investment defaults to the midpoint of the opportunity's range and the NPV
// horizon to its expected ROI years. A non-positive net margin is not
// reported as an infinite payback: ComputeROI returns an
// *InvalidAssumptionError carrying the opportunity ID, which matches
// ErrInvalidAssumption under errors.Is. Failures are per opportunity;
// ComputeBatch and Sensitivity isolate them so one bad input never aborts
// the rest.
//
// CapacityModel reproduces the capacity-driven calculator: processed volume
// times gross margin per ton gives revenue, and a fixed operating cost share
// (65% by default) gives the cost ratio.
package roi
