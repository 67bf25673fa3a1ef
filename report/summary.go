package report

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/aluiziolira/go-scrape-yes24/models"
)

const (
	previewRows  = 5
	previewWidth = 24
)

var columnTypes = map[string]string{
	"original_price": "int",
	"sale_price":     "int",
	"sale_index":     "int",
	"review_count":   "int",
	"rating":         "float",
}

// PrintSummary writes the shape, column overview, a preview of the first rows
// and the descriptive statistics of books to w.
func PrintSummary(w io.Writer, books []models.Book) {
	shape := newTable(w, "Shape")
	shape.AppendHeader(table.Row{"rows", "columns"})
	shape.AppendRow(table.Row{len(books), len(models.Columns)})
	shape.Render()

	columns := newTable(w, "Columns")
	columns.AppendHeader(table.Row{"#", "column", "type", "missing"})
	for i, c := range MissingValues(books) {
		kind, ok := columnTypes[c.Label]
		if !ok {
			kind = "text"
		}
		columns.AppendRow(table.Row{i, c.Label, kind, c.N})
	}
	columns.Render()

	preview := newTable(w, fmt.Sprintf("First %d rows", min(previewRows, len(books))))
	header := make(table.Row, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	preview.AppendHeader(header)
	for _, b := range books[:min(previewRows, len(books))] {
		preview.AppendRow(table.Row{
			truncate(b.Title), truncate(b.Author), truncate(b.Publisher), b.PublicationDate,
			b.OriginalPrice, b.SalePrice, b.SaleIndex, b.ReviewCount, b.Rating,
			truncate(b.ImageURL), truncate(b.BookURL),
		})
	}
	preview.Render()

	describe := newTable(w, "Describe")
	describe.AppendHeader(table.Row{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	for _, s := range Describe(books) {
		describe.AppendRow(table.Row{
			s.Column, s.Count,
			formatStat(s.Mean), formatStat(s.Std), formatStat(s.Min),
			formatStat(s.Q25), formatStat(s.Median), formatStat(s.Q75), formatStat(s.Max),
		})
	}
	describe.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= previewWidth {
		return s
	}
	return string(runes[:previewWidth-1]) + "…"
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}
