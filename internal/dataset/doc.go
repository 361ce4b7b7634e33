// Package dataset holds the read-only Model of base records and the
// loaders that build it.
//
// A Model is built once, validated, and shared for the lifetime of the
// process. Accessors return copies so callers can never mutate the
// underlying records.
//
// Loaders:
//
//	ParseYAML    - YAML document with one list per entity kind
//	Loader.Load  - dispatches on file extension (.yaml, .yml, .xlsx)
//	ReadXLSX     - workbook with one sheet per entity kind
//	Sample       - embedded SADC sample (Zambia, Botswana 2019-2023)
//
// Dataset invariants (utilized <= installed capacity, unique metric keys,
// percentages in [0,100], low <= high investment) are checked at load time
// by Validate and reported as joined *ValidationError values.
package dataset
