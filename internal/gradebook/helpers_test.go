package gradebook

import (
	"time"

	"github.com/noah-isme/gradesync/internal/spreadsheet"
)

// buildSheet turns literal rows into a sheet. Strings become text, numbers
// become numeric cells, nil stays empty.
func buildSheet(name string, rows ...[]any) *spreadsheet.Sheet {
	cells := make([][]spreadsheet.Cell, len(rows))
	for i, r := range rows {
		cells[i] = make([]spreadsheet.Cell, len(r))
		for j, v := range r {
			switch x := v.(type) {
			case nil:
			case string:
				if x != "" {
					cells[i][j] = spreadsheet.TextCell(x)
				}
			case int:
				cells[i][j] = spreadsheet.NumberCell(float64(x))
			case float64:
				cells[i][j] = spreadsheet.NumberCell(x)
			case bool:
				cells[i][j] = spreadsheet.BoolCell(x)
			case time.Time:
				cells[i][j] = spreadsheet.DateCell(x)
			case spreadsheet.Cell:
				cells[i][j] = x
			}
		}
	}
	return spreadsheet.NewSheet(name, cells)
}

func meta(preferred, labels, family, given, course string) []any {
	return []any{preferred, labels, family, given, course}
}

func row(head []any, tail ...any) []any {
	return append(append([]any{}, head...), tail...)
}

func header(cells ...any) []any {
	return row([]any{nil, nil, nil, nil, nil}, cells...)
}
