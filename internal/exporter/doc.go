// Package exporter writes analysis reports as CSV files and XLSX workbooks.
//
// CSVWriter is the low-level writer with optional UTF-8 BOM for Excel.
// ReportExporter renders a services.Report into opportunity and gap CSV
// files. WriteXLSX renders the same report as a workbook with one sheet per
// analysis.
//
// Example usage:
//
//	exp := exporter.NewReportExporter("data/reports")
//	paths, err := exp.ExportCSV(report, "opportunities_2024")
//
//	f, _ := os.Create("report.xlsx")
//	err = exporter.WriteXLSX(f, report)
package exporter
