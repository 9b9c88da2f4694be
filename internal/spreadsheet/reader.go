package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Open reads every sheet of an xlsx workbook into memory.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	r := &reader{f: f, dateStyles: make(map[int]bool)}
	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		sheet, err := r.sheet(name)
		if err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

type reader struct {
	f          *excelize.File
	dateStyles map[int]bool
}

func (r *reader) sheet(name string) (*Sheet, error) {
	raw, err := r.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	rows := make([][]Cell, len(raw))
	for i, values := range raw {
		rows[i] = make([]Cell, len(values))
		for j, value := range values {
			if value == "" {
				continue
			}
			cell, err := r.cell(name, i, j, value)
			if err != nil {
				return nil, err
			}
			rows[i][j] = cell
		}
	}
	return NewSheet(name, rows), nil
}

func (r *reader) cell(sheet string, row, col int, value string) (Cell, error) {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, err
	}
	typ, err := r.f.GetCellType(sheet, axis)
	if err != nil {
		return Cell{}, fmt.Errorf("cell type %s!%s: %w", sheet, axis, err)
	}
	switch typ {
	case excelize.CellTypeBool:
		return BoolCell(value == "1" || strings.EqualFold(value, "true")), nil
	case excelize.CellTypeError:
		return ErrorCell(value), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return TextCell(value), nil
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return TextCell(value), nil
	}
	isDate, err := r.isDate(sheet, axis)
	if err != nil {
		return Cell{}, err
	}
	if typ == excelize.CellTypeDate || isDate {
		t, err := excelize.ExcelDateToTime(n, false)
		if err == nil {
			return DateCell(t), nil
		}
	}
	return NumberCell(n), nil
}

func (r *reader) isDate(sheet, axis string) (bool, error) {
	id, err := r.f.GetCellStyle(sheet, axis)
	if err != nil {
		return false, fmt.Errorf("cell style %s!%s: %w", sheet, axis, err)
	}
	if cached, ok := r.dateStyles[id]; ok {
		return cached, nil
	}
	style, err := r.f.GetStyle(id)
	if err != nil {
		return false, fmt.Errorf("style %d: %w", id, err)
	}
	date := isDateFormat(style.NumFmt, style.CustomNumFmt)
	r.dateStyles[id] = date
	return date, nil
}

// isDateFormat recognises the built-in date/time formats and custom ones
// made of date tokens.
func isDateFormat(numFmt int, custom *string) bool {
	switch {
	case numFmt >= 14 && numFmt <= 22, numFmt >= 27 && numFmt <= 36,
		numFmt >= 45 && numFmt <= 47, numFmt >= 50 && numFmt <= 58:
		return true
	}
	if custom == nil {
		return false
	}
	format := strings.ToLower(*custom)
	if i := strings.IndexByte(format, ';'); i >= 0 {
		format = format[:i]
	}
	var quoted bool
	for _, ch := range format {
		if ch == '"' {
			quoted = !quoted
			continue
		}
		if !quoted && (ch == 'y' || ch == 'd' || ch == 'h' || ch == 's') {
			return true
		}
	}
	return false
}
