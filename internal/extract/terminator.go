package extract

import (
	"fmt"
	"strings"

	"talentmetrics/domain/grid"
)

type terminatorKind int

const (
	readToEnd terminatorKind = iota
	blankCell
	literalTotal
	blankOrTotal
	fixedRows
)

// Terminator decides where a section's data ends. It is only consulted for
// rows that have at least one non-missing cell.
type Terminator struct {
	kind   terminatorKind
	column int
	limit  int
}

// ReadToEnd never stops; the section runs to the last row of the grid
func ReadToEnd() Terminator {
	return Terminator{kind: readToEnd}
}

// StopAtBlankCell stops at the first row whose cell in column is missing
func StopAtBlankCell(column int) Terminator {
	return Terminator{kind: blankCell, column: column}
}

// StopAtTotal stops at the first row whose cell in column reads "total"
// (case-insensitive)
func StopAtTotal(column int) Terminator {
	return Terminator{kind: literalTotal, column: column}
}

// StopAtBlankOrTotal combines StopAtBlankCell and StopAtTotal
func StopAtBlankOrTotal(column int) Terminator {
	return Terminator{kind: blankOrTotal, column: column}
}

// StopAfterRows stops once n rows have been taken
func StopAfterRows(n int) Terminator {
	if n < 0 {
		n = 0
	}
	return Terminator{kind: fixedRows, limit: n}
}

// Stop reports whether row ends the section, given how many rows were
// already taken
func (t Terminator) Stop(row []grid.Cell, taken int) bool {
	switch t.kind {
	case blankCell:
		return t.cell(row).IsMissing()
	case literalTotal:
		return isTotal(t.cell(row))
	case blankOrTotal:
		c := t.cell(row)
		return c.IsMissing() || isTotal(c)
	case fixedRows:
		return taken >= t.limit
	default:
		return false
	}
}

func (t Terminator) cell(row []grid.Cell) grid.Cell {
	if t.column < 0 || t.column >= len(row) {
		return grid.Missing()
	}
	return row[t.column]
}

func isTotal(c grid.Cell) bool {
	return !c.IsMissing() && strings.ToLower(c.String()) == "total"
}

// String names the policy, e.g. "blank-or-total(col=0)"
func (t Terminator) String() string {
	switch t.kind {
	case blankCell:
		return fmt.Sprintf("blank(col=%d)", t.column)
	case literalTotal:
		return fmt.Sprintf("total(col=%d)", t.column)
	case blankOrTotal:
		return fmt.Sprintf("blank-or-total(col=%d)", t.column)
	case fixedRows:
		return fmt.Sprintf("rows(%d)", t.limit)
	default:
		return "end"
	}
}

// ParseTerminator parses the CLI form: end, blank, total, blank-or-total, or
// rows=N. column applies to the cell based policies.
func ParseTerminator(s string, column int) (Terminator, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "end":
		return ReadToEnd(), nil
	case s == "blank":
		return StopAtBlankCell(column), nil
	case s == "total":
		return StopAtTotal(column), nil
	case s == "blank-or-total":
		return StopAtBlankOrTotal(column), nil
	case strings.HasPrefix(s, "rows="):
		var n int
		if _, err := fmt.Sscanf(s, "rows=%d", &n); err != nil || n < 0 {
			return Terminator{}, fmt.Errorf("invalid row count in %q", s)
		}
		return StopAfterRows(n), nil
	default:
		return Terminator{}, fmt.Errorf("unknown terminator %q", s)
	}
}
