package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"schemaforge/src/models"
)

// ExportTemplateCSV serializes a set of raw record values against the
// template's current header definitions. Only headers that are members of a
// section are exported, in header iteration order. Records are expected to
// be pre-filtered by the caller to the relevant record type; a missing or
// nil value renders as an empty cell.
//
// A date header grows a second "<name> Time" column when any record's value
// for it carries a non-midnight time component. The decision is per field
// across the whole dataset, not per row.
func ExportTemplateCSV(t *models.Template, records []map[string]interface{}) string {
	type column struct {
		header   *models.Header
		withTime bool
	}

	var columns []column
	for _, h := range t.Headers {
		if !t.HeaderUsed(h.Key) {
			continue
		}
		col := column{header: h}
		if h.Type == models.HeaderTypeDate {
			for _, record := range records {
				if ts, ok := parseDateValue(record[h.Key]); ok && hasClockTime(ts) {
					col.withTime = true
					break
				}
			}
		}
		columns = append(columns, col)
	}

	var rows []string

	var headerCells []string
	for _, col := range columns {
		headerCells = append(headerCells, escapeCell(col.header.Name))
		if col.withTime {
			headerCells = append(headerCells, escapeCell(col.header.Name+" Time"))
		}
	}
	rows = append(rows, strings.Join(headerCells, ","))

	for _, record := range records {
		var cells []string
		for _, col := range columns {
			value := record[col.header.Key]
			cells = append(cells, escapeCell(formatCell(col.header, value)))
			if col.withTime {
				cells = append(cells, escapeCell(formatTimeCell(value)))
			}
		}
		rows = append(rows, strings.Join(cells, ","))
	}

	return strings.Join(rows, "\r\n")
}

func formatCell(h *models.Header, value interface{}) string {
	if value == nil {
		return ""
	}
	switch h.Type {
	case models.HeaderTypeDate:
		if ts, ok := parseDateValue(value); ok {
			return ts.Format("2006-01-02")
		}
		return coerceString(value)
	case models.HeaderTypeCurrency:
		if f, ok := numericValue(value); ok {
			return strconv.FormatFloat(f, 'f', 2, 64)
		}
		return coerceString(value)
	case models.HeaderTypeNumber:
		if f, ok := numericValue(value); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return coerceString(value)
	case models.HeaderTypeDropdown, models.HeaderTypeMultiSelect:
		switch list := value.(type) {
		case []string:
			return strings.Join(list, "; ")
		case []interface{}:
			parts := make([]string, 0, len(list))
			for _, item := range list {
				parts = append(parts, coerceString(item))
			}
			return strings.Join(parts, "; ")
		}
		return coerceString(value)
	default:
		return coerceString(value)
	}
}

// formatTimeCell fills the companion column: 24-hour local clock time, or
// an empty string when the record's value has no time detail.
func formatTimeCell(value interface{}) string {
	if value == nil {
		return ""
	}
	if ts, ok := parseDateValue(value); ok && hasClockTime(ts) {
		return ts.Format("15:04:05")
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDateValue(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func hasClockTime(ts time.Time) bool {
	return ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0
}

func numericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func coerceString(value interface{}) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// escapeCell wraps a cell in double quotes, doubling embedded quotes, only
// when the cell contains a comma, a quote or a newline.
func escapeCell(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n\r") {
		return cell
	}
	return "\"" + strings.ReplaceAll(cell, "\"", "\"\"") + "\""
}
