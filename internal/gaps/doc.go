// Package gaps derives processing and trade gaps from a rollup and the
// processing facilities of a selection, classifies them by severity and
// ranks investment opportunities against them.
//
// Severity compares the gap with its reference volume:
//
//	high    gap >= 50% of the reference
//	medium  gap >= 20% of the reference
//	low     otherwise
//
// The reference is installed capacity for processing gaps and import volume
// for trade gaps. Both thresholds are policy defaults and can be changed
// through Thresholds; the same values apply to every sector.
//
// Findings are ordered by gap volume in metric tons, largest first, with
// ties broken by country, then sector, then kind. Records whose units cannot
// be normalized are skipped and counted, never guessed.
package gaps
