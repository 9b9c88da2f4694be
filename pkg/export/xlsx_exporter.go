package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named worksheet of an XLSX export.
type Sheet struct {
	Name string
	Data Dataset
}

// XLSXExporter renders datasets into a workbook, one sheet per dataset.
type XLSXExporter struct {
	headerFont string
}

// NewXLSXExporter constructs an XLSX exporter with bold Palatino headers.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{headerFont: "Palatino"}
}

// Render writes every sheet in order and returns the workbook bytes.
func (e *XLSXExporter) Render(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Family: e.headerFont, Size: 12},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			return nil, fmt.Errorf("sheet %s requires at least one header", sheet.Name)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}

		if err := e.writeRow(f, sheet.Name, 1, sheet.Data.Headers); err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Data.Headers), 1)
		if err != nil {
			return nil, fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}

		for r, row := range sheet.Data.Rows {
			values := make([]string, len(sheet.Data.Headers))
			for c, header := range sheet.Data.Headers {
				values[c] = row[header]
			}
			if err := e.writeRow(f, sheet.Name, r+2, values); err != nil {
				return nil, err
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	record := make([]any, len(values))
	for i, v := range values {
		record[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &record); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
