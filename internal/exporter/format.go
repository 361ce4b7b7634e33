package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatCell formats a report cell; nil stays empty
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x)
	case int:
		return formatInt(x)
	case bool:
		return formatBool(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// formatRows converts report rows to CSV records
func formatRows(rows [][]interface{}) [][]string {
	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = formatCell(v)
		}
		records[i] = record
	}
	return records
}
