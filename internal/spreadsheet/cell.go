// Package spreadsheet loads workbooks into in-memory sheets of tagged cells.
package spreadsheet

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the type of a cell value.
type Kind int

// Cell kinds.
const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindBoolean
	KindDate
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindError:
		return "error"
	default:
		return "empty"
	}
}

// Cell is one tagged spreadsheet value.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
}

// TextCell builds a text cell.
func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }

// NumberCell builds a numeric cell.
func NumberCell(n float64) Cell { return Cell{Kind: KindNumber, Number: n} }

// BoolCell builds a boolean cell.
func BoolCell(b bool) Cell { return Cell{Kind: KindBoolean, Bool: b} }

// DateCell builds a date cell.
func DateCell(t time.Time) Cell { return Cell{Kind: KindDate, Time: t} }

// ErrorCell builds a formula error cell such as "#DIV/0!".
func ErrorCell(code string) Cell { return Cell{Kind: KindError, Text: code} }

// String coerces any cell to trimmed plain text. Errors read as blank.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return strings.TrimSpace(c.Text)
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(c.Bool)
	case KindDate:
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}
