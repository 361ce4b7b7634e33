// Package aggregation computes per-country and per-crop rollups from a
// selection.View.
//
// Volumes are normalized to metric tons before they are summed. Records whose
// unit cannot be normalized are left out and reported as UnitMismatch values
// rather than folded into totals.
//
// Derived metrics are omitted instead of zeroed when they are undefined:
//
//	yield            production / area, only when area in hectares exists
//	year-over-year   (current - previous) / previous, only when previous > 0
//	trend            sign of the least-squares slope, needs at least two years
//
// The import dependency ratio imports / (production + imports) is the one
// exception: it is exactly 0 when both volumes are 0.
//
// Aggregate is a pure function of its input view. The same view always
// produces the same Rollup, with countries and crops in sorted order.
package aggregation
