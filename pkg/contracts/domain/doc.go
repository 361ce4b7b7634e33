// Package domain defines the immutable records shared by the dataset,
// selection, aggregation, gap and ROI packages.
//
// Every volume carries an explicit Unit so that mismatched units are
// detected and skipped rather than silently combined.
package domain
