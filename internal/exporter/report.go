package exporter

import (
	"fmt"
	"io"

	"agroinvest/internal/services"
)

// ReportExporter writes report CSV files
type ReportExporter struct {
	csvWriter *CSVWriter
}

// NewReportExporter creates an exporter writing under outputDir
func NewReportExporter(outputDir string) *ReportExporter {
	return &ReportExporter{
		csvWriter: NewCSVWriter(outputDir),
	}
}

// ExportCSV writes <prefix>_opportunities.csv and <prefix>_gaps.csv and
// returns the written paths
func (e *ReportExporter) ExportCSV(rep *services.Report, prefix string) ([]string, error) {
	files := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{prefix + "_opportunities.csv", opportunityHeaders(), opportunityRows(rep)},
		{prefix + "_gaps.csv", gapHeaders(), gapRows(rep)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := e.csvWriter.WriteCSV(f.name, WriteOptions{
			Headers:   f.headers,
			Records:   formatRows(f.rows),
			BOMPrefix: true,
		})
		if err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteOpportunitiesCSV streams the ranked opportunities without BOM
func WriteOpportunitiesCSV(w io.Writer, rep *services.Report) error {
	return WriteTo(w, WriteOptions{
		Headers: opportunityHeaders(),
		Records: formatRows(opportunityRows(rep)),
	})
}

// WriteGapsCSV streams the gap findings without BOM
func WriteGapsCSV(w io.Writer, rep *services.Report) error {
	return WriteTo(w, WriteOptions{
		Headers: gapHeaders(),
		Records: formatRows(gapRows(rep)),
	})
}

// opportunityHeaders returns the CSV headers for ranked opportunities
func opportunityHeaders() []string {
	return []string{
		"Rank", "ID", "Country", "Sector", "Category", "Title",
		"InvestmentLowUSD", "InvestmentHighUSD", "ExpectedROIYears",
		"MarketGap", "GapUnit", "GapKind", "GapSeverity", "GapShare",
		"InvestmentUSD", "AnnualNetMarginUSD", "PaybackYears", "SimpleROIPct", "ROIError",
	}
}

// gapHeaders returns the CSV headers for gap findings
func gapHeaders() []string {
	return []string{
		"Country", "Sector", "Category", "Kind", "Severity",
		"GapVolume", "GapUnit", "ReferenceVolume", "GapShare", "Year", "InvestmentPotential",
	}
}
