package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Table is one captioned block of a PDF document.
type Table struct {
	Caption string
	Data    Dataset
}

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	return e.RenderTables(title, []Table{{Data: data}})
}

// RenderTables lays out several captioned tables one after the other. Wide
// tables switch the page to landscape.
func (e *PDFExporter) RenderTables(title string, tables []Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("pdf requires at least one table")
	}
	for _, t := range tables {
		if len(t.Data.Headers) == 0 {
			return nil, fmt.Errorf("pdf requires at least one header")
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, t := range tables {
		orientation, width := "P", 190.0
		if len(t.Data.Headers) > 8 {
			orientation, width = "L", 277.0
		}
		pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: 210, Ht: 297})

		if i == 0 && title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
			pdf.Ln(5)
		}
		if t.Caption != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(t.Caption), "", 1, "L", false, 0, "")
		}

		pdf.SetFont("Arial", "B", 8)
		colWidth := width / float64(len(t.Data.Headers))
		for _, header := range t.Data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range t.Data.Rows {
			for _, header := range t.Data.Headers {
				pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
