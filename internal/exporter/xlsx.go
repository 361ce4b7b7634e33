package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"agroinvest/internal/services"
)

// Sheet names of the report workbook
const (
	SheetSummary       = "Summary"
	SheetOpportunities = "Opportunities"
	SheetGaps          = "Gaps"
	SheetCountries     = "Countries"
	SheetCrops         = "Crops"
	SheetPrices        = "Prices"
	SheetWarnings      = "Warnings"
)

type sheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

// WriteXLSX writes rep as a workbook with one sheet per analysis
func WriteXLSX(w io.Writer, rep *services.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sheets := []sheet{
		{SheetSummary, []string{"Field", "Value"}, summaryRows(rep)},
		{SheetOpportunities, opportunityHeaders(), opportunityRows(rep)},
		{SheetGaps, gapHeaders(), gapRows(rep)},
		{SheetCountries, []string{
			"Country", "Name", "LatestYear", "ProductionTotalT", "ProductionTrend",
			"ImportVolumeT", "ImportDependency", "ImportValueUSD", "ExportValueUSD",
			"ProductionSharePct", "CropCount", "UnitMismatch",
		}, countryRows(rep)},
		{SheetCrops, []string{
			"Country", "Crop", "Category", "LatestYear", "LatestProduction", "YoYPct",
			"Trend", "Yield", "ImportVolume", "ImportDependency", "UnitMismatch",
		}, cropRows(rep)},
		{SheetPrices, []string{
			"Commodity", "LatestMonth", "LatestPrice", "BasePrice", "YoYChangePct", "Average12M",
		}, priceRows(rep)},
		{SheetWarnings, []string{"Kind", "Value", "Reason"}, warningRows(rep)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]interface{}, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(s.name, cell, &values); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	return f.SetColWidth(s.name, "A", last, 18)
}

func summaryRows(rep *services.Report) [][]interface{} {
	o := rep.Overview
	rows := [][]interface{}{
		{"RunID", rep.RunID},
		{"GeneratedAt", rep.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Source", rep.Source},
		{"LatestYear", o.LatestYear},
		{"LatestProductionT", o.LatestProductionT},
		{"PreviousProductionT", o.PreviousProductionT},
		{"YoYGrowthPct", optional(o.YoYGrowthPct)},
		{"TotalProductionT", o.TotalProductionT},
		{"TotalImportValueUSD", o.TotalImportValueUSD},
		{"TotalExportValueUSD", o.TotalExportValueUSD},
		{"ProcessingGapT", o.ProcessingGapT},
		{"OpportunityCount", o.OpportunityCount},
		{"AverageROIYears", optional(o.AverageROIYears)},
		{"UnitMismatches", o.UnitMismatches},
		{"GapFindings", len(rep.Gaps.Findings)},
	}
	for _, c := range o.TopCrops {
		rows = append(rows, []interface{}{"TopCrop:" + c.Crop, c.ProductionT})
	}
	return rows
}

func warningRows(rep *services.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(rep.Warnings)+len(rep.Gaps.Skipped))
	for _, w := range rep.Warnings {
		rows = append(rows, []interface{}{string(w.Kind), w.Value, nil})
	}
	for _, s := range rep.Gaps.Skipped {
		rows = append(rows, []interface{}{"gap_skipped", s.Country + "/" + s.Sector, s.Reason})
	}
	return rows
}
