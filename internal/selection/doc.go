// Package selection narrows a dataset.Model to a View for a set of
// countries, categories, a year range and an investment size band.
//
// Empty country or category sets mean "all". Selection never fails:
// requested values that match nothing become Warnings. An excluded country
// disappears from every entity type, so views are referentially consistent.
package selection
