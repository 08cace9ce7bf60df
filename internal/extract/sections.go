package extract

import (
	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// Spec describes one section to pull out of a grid
type Spec struct {
	Name    string
	Keyword string
	Stop    Terminator
	Columns []string
}

// All runs Extract for every spec against the same grid. Sections are
// independent; a missing one yields an empty table under its name.
func All(g *grid.Grid, specs []Spec) map[string]*table.Table {
	out := make(map[string]*table.Table, len(specs))
	for _, s := range specs {
		out[s.Name] = Extract(g, s.Keyword, s.Stop, s.Columns...)
	}
	return out
}
