// Package extract locates labeled sub-tables inside an unstructured cell
// grid and reshapes them into tables.
//
// A section is a keyword row, followed by a header row, followed by data
// rows up to a terminator. Absent sections and ragged widths are not errors:
// the first yields an empty table, the second a table flagged Degraded.
package extract

import (
	"strings"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// Extract finds the first row containing keyword and returns the section
// below it. See the package doc for the layout.
func Extract(g *grid.Grid, keyword string, stop Terminator, columnNames ...string) *table.Table {
	section := table.Section{
		Keyword:     keyword,
		KeywordRow:  -1,
		HeaderRow:   -1,
		StartColumn: -1,
		Terminator:  stop.String(),
	}

	start := FindKeywordRow(g, keyword)
	if start < 0 {
		return &table.Table{Section: section}
	}
	section.Found = true
	section.KeywordRow = start

	headerRow := start + 1
	if headerRow >= g.NumRows() {
		return &table.Table{Section: section}
	}
	section.HeaderRow = headerRow
	header := g.Row(headerRow)

	var buffer [][]grid.Cell
	for r := headerRow + 1; r < g.NumRows(); r++ {
		row := g.Row(r)
		if grid.IsBlank(row) {
			continue
		}
		if stop.Stop(row, len(buffer)) {
			break
		}
		buffer = append(buffer, row)
	}
	if len(buffer) == 0 {
		return &table.Table{Section: section}
	}

	if len(columnNames) > 0 {
		return bindNamed(buffer, header, columnNames, section)
	}
	return bindHeader(buffer, header, section)
}

// FindKeywordRow returns the index of the first row with a non-missing cell
// whose text contains keyword, ignoring case; -1 when there is none.
func FindKeywordRow(g *grid.Grid, keyword string) int {
	needle := strings.ToLower(keyword)
	for r := 0; r < g.NumRows(); r++ {
		for c := 0; c < g.Width(); c++ {
			cell := g.Cell(r, c)
			if cell.IsMissing() {
				continue
			}
			if strings.Contains(strings.ToLower(cell.String()), needle) {
				return r
			}
		}
	}
	return -1
}

// HeaderStart returns the column of the first non-missing header cell, or 0
func HeaderStart(header []grid.Cell) int {
	for i, c := range header {
		if !c.IsMissing() {
			return i
		}
	}
	return 0
}

func bindNamed(buffer [][]grid.Cell, header []grid.Cell, names []string, section table.Section) *table.Table {
	start := HeaderStart(header)
	section.StartColumn = start

	end := start + len(names)
	if width := len(header); end > width {
		end = width
	}
	if end < start {
		end = start
	}
	sliced := end - start

	t := &table.Table{Section: section}
	if sliced == len(names) {
		t.Columns = append([]string(nil), names...)
	} else {
		t.Columns = make([]string, sliced)
		t.Degraded = true
	}
	for _, row := range buffer {
		t.Rows = append(t.Rows, append([]grid.Cell(nil), row[start:end]...))
	}
	return t
}

func bindHeader(buffer [][]grid.Cell, header []grid.Cell, section table.Section) *table.Table {
	section.StartColumn = 0
	width := len(buffer[0])

	t := &table.Table{Section: section, Rows: buffer}
	if width == len(header) {
		t.Columns = make([]string, width)
		for i, c := range header {
			t.Columns[i] = c.String()
		}
	} else {
		t.Columns = make([]string, width)
		t.Degraded = true
	}
	return t
}
