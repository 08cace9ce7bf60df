// Package normalize maps raw department labels onto canonical categories.
package normalize

import (
	"sort"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/labels"
	"talentmetrics/domain/table"
)

// Column is the name of the column Categories writes
const Column = "Unified_Category"

// Categories returns a copy of t with Column set from the raw labels in
// column. Tables that are empty or lack column come back unchanged.
//
// Under Passthrough an unmapped cell is copied as is, so a missing raw label
// stays missing. Under Sentinel every unmapped cell, missing ones included,
// becomes the map's sentinel.
func Categories(t *table.Table, column string, m *labels.Map) *table.Table {
	if t.IsEmpty() || !t.HasColumn(column) || m == nil {
		return t
	}

	raw := t.Column(column)
	out := make([]grid.Cell, len(raw))
	for i, cell := range raw {
		out[i] = canonical(cell, m)
	}
	return t.WithColumn(Column, out)
}

func canonical(cell grid.Cell, m *labels.Map) grid.Cell {
	if !cell.IsMissing() {
		if v, ok := m.Lookup(cell.String()); ok {
			return grid.Text(v)
		}
	}
	if m.Fallback() == labels.Sentinel {
		return grid.Text(m.Sentinel())
	}
	return cell
}

// Unmapped returns the distinct non-missing raw labels in column that have no
// entry in m, sorted. A non-empty result means the map needs a new variant.
func Unmapped(t *table.Table, column string, m *labels.Map) []string {
	if t.IsEmpty() || m == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, cell := range t.Column(column) {
		if cell.IsMissing() {
			continue
		}
		raw := cell.String()
		if _, ok := m.Lookup(raw); ok || seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}
