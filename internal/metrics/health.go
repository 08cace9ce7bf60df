package metrics

import (
	"sort"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// Health status labels
const (
	StatusHighRisk = "High Risk"
	StatusStable   = "Stable"
)

// HealthOptions tunes DeptHealth
type HealthOptions struct {
	// HighRiskThreshold flags a category when its total exits exceed it
	HighRiskThreshold float64
}

// DefaultHealthOptions returns the threshold used by the reference workbook
func DefaultHealthOptions() HealthOptions {
	return HealthOptions{HighRiskThreshold: 5}
}

// DeptHealthRow is one category of the department health view
type DeptHealthRow struct {
	Category    string
	ExitsByType map[string]float64
	Investment  float64
	TotalExits  float64
	HighRisk    bool
}

// Status returns the health label for the row
func (r DeptHealthRow) Status() string {
	if r.HighRisk {
		return StatusHighRisk
	}
	return StatusStable
}

// Health is the pivoted department health view
type Health struct {
	// Types are the exit types present in the input, sorted
	Types []string
	// HasTraining is set when training investment was joined in
	HasTraining bool
	Rows        []DeptHealthRow
}

// IsEmpty reports whether there are no categories
func (h *Health) IsEmpty() bool {
	return h == nil || len(h.Rows) == 0
}

// DeptHealth groups exits by (category, type), pivots the types into
// columns and left-joins the summed training investment per category.
// Exits must carry the category column written by normalize.Categories;
// rows without a category or type are ignored.
func DeptHealth(exits, training *table.Table, opts HealthOptions) *Health {
	h := &Health{}
	if exits.IsEmpty() || !exits.HasColumn(ColCategory) || !exits.HasColumn(ColType) {
		return h
	}

	byCategory := make(map[string]*DeptHealthRow)
	types := make(map[string]bool)
	for i := range exits.Rows {
		category := exits.Value(i, ColCategory)
		kind := exits.Value(i, ColType)
		if category.IsMissing() || kind.IsMissing() {
			continue
		}
		row, ok := byCategory[category.String()]
		if !ok {
			row = &DeptHealthRow{Category: category.String(), ExitsByType: make(map[string]float64)}
			byCategory[row.Category] = row
		}
		row.ExitsByType[kind.String()] += exits.Value(i, ColCount).FloatOr(0)
		types[kind.String()] = true
	}

	invested := make(map[string]float64)
	if !training.IsEmpty() && training.HasColumn(ColCategory) {
		h.HasTraining = true
		for i := range training.Rows {
			category := training.Value(i, ColCategory)
			if category.IsMissing() {
				continue
			}
			invested[category.String()] += training.Value(i, ColInvestment).FloatOr(0)
		}
	}

	for t := range types {
		h.Types = append(h.Types, t)
	}
	sort.Strings(h.Types)

	for _, row := range byCategory {
		for _, t := range h.Types {
			row.TotalExits += row.ExitsByType[t]
		}
		row.Investment = invested[row.Category]
		row.HighRisk = row.TotalExits > opts.HighRiskThreshold
		h.Rows = append(h.Rows, *row)
	}
	sort.Slice(h.Rows, func(i, j int) bool { return h.Rows[i].Category < h.Rows[j].Category })
	return h
}

// Columns returns the column layout of ToTable
func (h *Health) Columns() []string {
	cols := []string{ColCategory}
	cols = append(cols, h.Types...)
	if h.HasTraining {
		cols = append(cols, ColInvestment)
	}
	return append(cols, ColTotalExits, ColHealthStatus)
}

// ToTable renders the view for report sinks
func (h *Health) ToTable() *table.Table {
	if h.IsEmpty() {
		return table.Empty()
	}
	t := &table.Table{Columns: h.Columns()}
	for _, r := range h.Rows {
		t.Rows = append(t.Rows, h.cells(r))
	}
	return t
}

func (h *Health) cells(r DeptHealthRow) []grid.Cell {
	cells := []grid.Cell{grid.Text(r.Category)}
	for _, t := range h.Types {
		cells = append(cells, grid.Number(r.ExitsByType[t]))
	}
	if h.HasTraining {
		cells = append(cells, grid.Number(r.Investment))
	}
	return append(cells, grid.Number(r.TotalExits), grid.Text(r.Status()))
}

// HighRisk returns the categories flagged high risk
func (h *Health) HighRisk() []string {
	if h == nil {
		return nil
	}
	var out []string
	for _, r := range h.Rows {
		if r.HighRisk {
			out = append(out, r.Category)
		}
	}
	return out
}
