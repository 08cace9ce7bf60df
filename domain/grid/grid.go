// Package grid models the raw, schema-less cell grid produced by a loader.
package grid

import (
	"strconv"

	"talentmetrics/domain/core"
)

// Grid is an immutable rectangular grid of cells. Rows shorter than the
// widest row are padded with missing cells at construction time.
type Grid struct {
	rows  [][]Cell
	width int
}

// New builds a grid from rows, copying the input
func New(rows [][]Cell) *Grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	out := make([][]Cell, len(rows))
	for i, r := range rows {
		row := make([]Cell, width)
		copy(row, r)
		out[i] = row
	}
	return &Grid{rows: out, width: width}
}

// FromStrings builds a grid from loader strings using ParseCell
func FromStrings(rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, r := range rows {
		cells[i] = make([]Cell, len(r))
		for j, raw := range r {
			cells[i][j] = ParseCell(raw)
		}
	}
	return New(cells)
}

// NumRows returns the number of rows
func (g *Grid) NumRows() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// Width returns the number of columns
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

// IsEmpty reports whether the grid has no rows
func (g *Grid) IsEmpty() bool {
	return g.NumRows() == 0
}

// Cell returns the cell at (r, c); out of range reads are missing
func (g *Grid) Cell(r, c int) Cell {
	if r < 0 || r >= g.NumRows() || c < 0 || c >= g.width {
		return Cell{}
	}
	return g.rows[r][c]
}

// Row returns a copy of row r
func (g *Grid) Row(r int) []Cell {
	if r < 0 || r >= g.NumRows() {
		return nil
	}
	out := make([]Cell, g.width)
	copy(out, g.rows[r])
	return out
}

// RowIsBlank reports whether every cell in row r is missing
func (g *Grid) RowIsBlank(r int) bool {
	return IsBlank(g.Row(r))
}

// IsBlank reports whether every cell in cells is missing
func IsBlank(cells []Cell) bool {
	for _, c := range cells {
		if !c.IsMissing() {
			return false
		}
	}
	return true
}

// Hash returns a content hash of the grid
func (g *Grid) Hash() core.Hash {
	buf := make([]byte, 0, 64*g.NumRows())
	buf = strconv.AppendInt(buf, int64(g.Width()), 10)
	for _, row := range g.rows {
		buf = append(buf, '\n')
		for _, c := range row {
			buf = strconv.AppendInt(buf, int64(c.Kind), 10)
			buf = append(buf, ':')
			buf = strconv.AppendQuote(buf, c.String())
			buf = append(buf, '\t')
		}
	}
	return core.NewHash(buf)
}
