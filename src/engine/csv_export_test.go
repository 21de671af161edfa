package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"schemaforge/src/models"
)

func exportTemplate(headers []*models.Header, keys []string) *models.Template {
	return &models.Template{
		Name:     "Export",
		Headers:  headers,
		Sections: []*models.Section{{Name: "Main", Keys: keys}},
	}
}

func TestExportCSV_DateGrowsTimeColumnDatasetWide(t *testing.T) {
	tmpl := exportTemplate(
		[]*models.Header{{Key: "closed", Name: "Closed", Type: models.HeaderTypeDate}},
		[]string{"closed"},
	)
	records := []map[string]interface{}{
		{"closed": "2024-01-05T00:00:00"},
		{"closed": "2024-01-06T14:30:00"},
		{"closed": nil},
	}

	csv := ExportTemplateCSV(tmpl, records)
	rows := strings.Split(csv, "\r\n")
	require.Equal(t, []string{
		"Closed,Closed Time",
		"2024-01-05,",
		"2024-01-06,14:30:00",
		",",
	}, rows)
}

func TestExportCSV_NoTimeColumnWhenAllMidnight(t *testing.T) {
	tmpl := exportTemplate(
		[]*models.Header{{Key: "closed", Name: "Closed", Type: models.HeaderTypeDate}},
		[]string{"closed"},
	)
	records := []map[string]interface{}{
		{"closed": "2024-01-05T00:00:00"},
		{"closed": "2024-02-10"},
	}

	csv := ExportTemplateCSV(tmpl, records)
	rows := strings.Split(csv, "\r\n")
	require.Equal(t, []string{
		"Closed",
		"2024-01-05",
		"2024-02-10",
	}, rows)
}

func TestExportCSV_OnlySectionMembersExported(t *testing.T) {
	tmpl := exportTemplate(
		[]*models.Header{
			{Key: "a", Name: "Used", Type: models.HeaderTypeText},
			{Key: "b", Name: "Orphan", Type: models.HeaderTypeText},
		},
		[]string{"a"},
	)
	records := []map[string]interface{}{{"a": "x", "b": "hidden"}}

	csv := ExportTemplateCSV(tmpl, records)
	require.Equal(t, "Used\r\nx", csv)
}

func TestExportCSV_EscapesQuotesAndCommas(t *testing.T) {
	tmpl := exportTemplate(
		[]*models.Header{{Key: "note", Name: "Note", Type: models.HeaderTypeText}},
		[]string{"note"},
	)
	records := []map[string]interface{}{{"note": `He said "hi", bye`}}

	csv := ExportTemplateCSV(tmpl, records)
	rows := strings.Split(csv, "\r\n")
	require.Equal(t, `"He said ""hi"", bye"`, rows[1])
}

func TestExportCSV_TypedFormatting(t *testing.T) {
	tmpl := exportTemplate(
		[]*models.Header{
			{Key: "price", Name: "Price", Type: models.HeaderTypeCurrency},
			{Key: "count", Name: "Count", Type: models.HeaderTypeNumber},
			{Key: "tags", Name: "Tags", Type: models.HeaderTypeMultiSelect},
		},
		[]string{"price", "count", "tags"},
	)
	records := []map[string]interface{}{
		{"price": 1234.5, "count": int64(42), "tags": []string{"red", "blue"}},
		{"price": 10, "count": 3.25, "tags": []interface{}{"solo"}},
	}

	csv := ExportTemplateCSV(tmpl, records)
	rows := strings.Split(csv, "\r\n")
	require.Equal(t, "1234.50,42,red; blue", rows[1])
	require.Equal(t, "10.00,3.25,solo", rows[2])
}

func TestExportCSV_UnparseableDateFallsThrough(t *testing.T) {
	tmpl := exportTemplate(
		[]*models.Header{{Key: "closed", Name: "Closed", Type: models.HeaderTypeDate}},
		[]string{"closed"},
	)
	records := []map[string]interface{}{{"closed": "not-a-date"}}

	csv := ExportTemplateCSV(tmpl, records)
	rows := strings.Split(csv, "\r\n")
	require.Equal(t, "not-a-date", rows[1])
}
