package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/report"
	dtable "talentmetrics/domain/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// printTable renders t as a bordered terminal table, at most limit rows
// (0 means all)
func printTable(w io.Writer, name string, t *dtable.Table, limit int) {
	fmt.Fprintln(w, titleStyle.Render(name))
	if t.IsEmpty() {
		fmt.Fprintln(w, warnStyle.Render("  (no rows)"))
		return
	}

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if c == "" {
			c = "col" + strconv.Itoa(i)
		}
		headers[i] = c
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = c.String()
		}
		tbl.Row(cells...)
	}
	fmt.Fprintln(w, tbl.Render())
	if len(rows) < t.Len() {
		fmt.Fprintf(w, "  ... %d more rows\n", t.Len()-len(rows))
	}
	if t.Degraded {
		fmt.Fprintln(w, warnStyle.Render("  columns could not be bound to the expected names"))
	}
}

// printDiagnostics summarizes the data-quality findings of a run
func printDiagnostics(w io.Writer, d report.Diagnostics) {
	if d.IsClean() && len(d.MissingSections) == 0 && len(d.HighRisk) == 0 {
		fmt.Fprintln(w, okStyle.Render("No data-quality findings."))
		return
	}
	for _, f := range d.LoadFailures {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("load failed: %s (%s): %s", f.Input, f.Source, f.Error)))
	}
	if len(d.MissingSections) > 0 {
		fmt.Fprintln(w, warnStyle.Render("missing sections: "+strings.Join(d.MissingSections, ", ")))
	}
	if len(d.DegradedSections) > 0 {
		fmt.Fprintln(w, warnStyle.Render("degraded sections: "+strings.Join(d.DegradedSections, ", ")))
	}
	for section, raw := range d.UnmappedLabels {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("unmapped %s labels: %s", section, strings.Join(raw, ", "))))
	}
	if len(d.HighRisk) > 0 {
		fmt.Fprintln(w, errorStyle.Render("high risk: "+strings.Join(d.HighRisk, ", ")))
	}
}

func textCells(values ...string) []grid.Cell {
	cells := make([]grid.Cell, len(values))
	for i, v := range values {
		cells[i] = grid.Text(v)
	}
	return cells
}
