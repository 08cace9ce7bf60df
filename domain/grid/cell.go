package grid

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies a cell value
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Cell is one heterogeneous spreadsheet value. The zero value is a missing cell.
type Cell struct {
	Kind Kind
	Num  float64
	Text string
}

// Missing returns a blank cell
func Missing() Cell { return Cell{} }

// Number returns a numeric cell. NaN is treated as missing.
func Number(f float64) Cell {
	if math.IsNaN(f) {
		return Cell{}
	}
	return Cell{Kind: KindNumber, Num: f}
}

// Text returns a text cell. The empty string is treated as missing.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Text: s}
}

// ParseCell coerces a raw loader string: "" is missing, a float literal is a
// number, anything else is text kept verbatim (whitespace included, since
// label maps key on the exact spelling).
func ParseCell(raw string) Cell {
	if raw == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(raw)
}

// IsMissing reports whether the cell is blank
func (c Cell) IsMissing() bool {
	return c.Kind == KindMissing
}

// String renders the cell the way the keyword scan and label lookup see it
func (c Cell) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindText:
		return c.Text
	default:
		return ""
	}
}

// Float coerces the cell to a number. Numeric text (thousands separators
// allowed) parses; anything else reports ok=false.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case KindNumber:
		return c.Num, true
	case KindText:
		s := strings.ReplaceAll(strings.TrimSpace(c.Text), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FloatOr coerces the cell to a number, falling back to def
func (c Cell) FloatOr(def float64) float64 {
	if f, ok := c.Float(); ok {
		return f
	}
	return def
}

// Value returns the cell as a plain Go value: float64, string or nil
func (c Cell) Value() interface{} {
	switch c.Kind {
	case KindNumber:
		return c.Num
	case KindText:
		return c.Text
	default:
		return nil
	}
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and missing as null
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

// UnmarshalJSON is the inverse of MarshalJSON
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*c = Missing()
	case float64:
		*c = Number(val)
	case string:
		*c = Text(val)
	case bool:
		*c = Text(strconv.FormatBool(val))
	default:
		return fmt.Errorf("unsupported cell JSON value %s", string(data))
	}
	return nil
}
