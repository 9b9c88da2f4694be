package spreadsheet

// Sheet is a named rectangular grid of cells, 0-indexed.
type Sheet struct {
	Name  string
	rows  [][]Cell
	width int
}

// NewSheet builds a sheet from rows; ragged rows are allowed.
func NewSheet(name string, rows [][]Cell) *Sheet {
	s := &Sheet{Name: name, rows: rows}
	for _, r := range rows {
		if len(r) > s.width {
			s.width = len(r)
		}
	}
	return s
}

// Cell returns the cell at (row, col); out-of-range positions are empty.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return Cell{}
	}
	return s.rows[row][col]
}

// Text returns the trimmed text coercion of a cell.
func (s *Sheet) Text(row, col int) string {
	return s.Cell(row, col).String()
}

// Number returns the value of a numeric cell.
func (s *Sheet) Number(row, col int) (float64, bool) {
	c := s.Cell(row, col)
	if c.Kind != KindNumber {
		return 0, false
	}
	return c.Number, true
}

// UsedRows is the number of rows up to the last one holding data.
func (s *Sheet) UsedRows() int { return len(s.rows) }

// UsedCols is the width of the widest row.
func (s *Sheet) UsedCols() int { return s.width }

// Workbook is an ordered set of sheets.
type Workbook struct {
	Sheets []*Sheet
}

// Sheet returns the sheet called name, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}
