// Package table holds the tabular result of a section extraction and the
// derived tables handed to report sinks.
package table

import (
	"strconv"

	"talentmetrics/domain/grid"
)

// Section records where an extraction found its data
type Section struct {
	Keyword     string `json:"keyword"`
	Found       bool   `json:"found"`
	KeywordRow  int    `json:"keyword_row"`
	HeaderRow   int    `json:"header_row"`
	StartColumn int    `json:"start_column"`
	Terminator  string `json:"terminator,omitempty"`
}

// Table is an ordered set of records sharing one column list.
// Every row has exactly len(Columns) cells. Unnamed columns are "".
type Table struct {
	Columns []string      `json:"columns"`
	Rows    [][]grid.Cell `json:"rows"`

	// Degraded is set when column binding failed and the columns were left
	// unnamed. The rows are still the best-effort data.
	Degraded bool `json:"degraded"`

	Section Section `json:"section"`
}

// Empty returns a table with no columns and no rows
func Empty() *Table {
	return &Table{}
}

// New builds a table, padding or truncating rows to the column count
func New(columns []string, rows [][]grid.Cell) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

// FromGrid reads a header-first grid: row 0 names the columns, the rest are
// records. Fully blank rows are dropped.
func FromGrid(g *grid.Grid) *Table {
	if g.NumRows() == 0 {
		return Empty()
	}
	header := g.Row(0)
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = c.String()
	}

	t := &Table{Columns: columns}
	for r := 1; r < g.NumRows(); r++ {
		if g.RowIsBlank(r) {
			continue
		}
		t.Rows = append(t.Rows, g.Row(r))
	}
	return t
}

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of columns
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// AppendRow adds a row, padding with missing cells or truncating to width
func (t *Table) AppendRow(cells []grid.Cell) {
	row := make([]grid.Cell, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the index of the first column called name, or -1
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a column called name exists
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Value returns the cell in row r under column name; missing when absent
func (t *Table) Value(r int, name string) grid.Cell {
	idx := t.ColumnIndex(name)
	if idx < 0 || r < 0 || r >= t.Len() {
		return grid.Missing()
	}
	return t.Rows[r][idx]
}

// Column returns every cell under column name, or nil when absent
func (t *Table) Column(name string) []grid.Cell {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]grid.Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	if t == nil {
		return Empty()
	}
	out := &Table{
		Columns:  append([]string(nil), t.Columns...),
		Rows:     make([][]grid.Cell, len(t.Rows)),
		Degraded: t.Degraded,
		Section:  t.Section,
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]grid.Cell(nil), row...)
	}
	return out
}

// WithColumn returns a copy with column name set to values. An existing
// column is overwritten in place; otherwise the column is appended.
// values shorter than the table leave missing cells.
func (t *Table) WithColumn(name string, values []grid.Cell) *Table {
	out := t.Clone()
	idx := out.ColumnIndex(name)
	if idx < 0 {
		out.Columns = append(out.Columns, name)
		idx = len(out.Columns) - 1
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], grid.Missing())
		}
	}
	for i := range out.Rows {
		if i < len(values) {
			out.Rows[i][idx] = values[i]
		} else {
			out.Rows[i][idx] = grid.Missing()
		}
	}
	return out
}

// WithConstant returns a copy with column name set to v on every row
func (t *Table) WithConstant(name string, v grid.Cell) *Table {
	values := make([]grid.Cell, t.Len())
	for i := range values {
		values[i] = v
	}
	return t.WithColumn(name, values)
}

// Concat stacks tables by column name. Columns appear in first-seen order;
// cells a table does not have are missing. Empty tables contribute nothing.
// Unnamed columns line up by position instead of collapsing into one.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	index := make(map[string]int)
	for _, t := range tables {
		if t.IsEmpty() {
			continue
		}
		for j, c := range t.Columns {
			key := concatKey(c, j)
			if _, ok := index[key]; !ok {
				index[key] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
		out.Degraded = out.Degraded || t.Degraded
	}

	for _, t := range tables {
		if t.IsEmpty() {
			continue
		}
		for _, row := range t.Rows {
			merged := make([]grid.Cell, len(out.Columns))
			for j, c := range t.Columns {
				merged[index[concatKey(c, j)]] = row[j]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

func concatKey(column string, pos int) string {
	if column == "" {
		return "\x00" + strconv.Itoa(pos)
	}
	return column
}
