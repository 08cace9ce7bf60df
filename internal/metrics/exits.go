package metrics

import (
	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// ExitColumns are the names bound to the exit-per-department sections
var ExitColumns = []string{ColDepartment, ColCount}

// TrainingColumns are the names bound to the training investment section
var TrainingColumns = []string{ColDepartment, ColInvestment, ColHours}

// TenureColumns are the names bound to the exit timing section
var TenureColumns = []string{ColTimingCategory, ColCount, ColAvgTenure}

// ExitsFromSections stacks the voluntary and dismissal sections into one
// exit log with a Type column. Counts are coerced to numbers, with
// non-numeric values counted as 0. Empty sections contribute nothing.
func ExitsFromSections(voluntary, dismissal *table.Table) *table.Table {
	var parts []*table.Table
	if !voluntary.IsEmpty() {
		parts = append(parts, voluntary.WithConstant(ColType, grid.Text(ExitVoluntary)))
	}
	if !dismissal.IsEmpty() {
		parts = append(parts, dismissal.WithConstant(ColType, grid.Text(ExitDismissal)))
	}
	if len(parts) == 0 {
		return table.Empty()
	}
	return coerceColumn(table.Concat(parts...), ColCount)
}

// TrainingFrom coerces the investment column of the training section
func TrainingFrom(t *table.Table) *table.Table {
	if t.IsEmpty() {
		return table.Empty()
	}
	return coerceColumn(t, ColInvestment)
}

func coerceColumn(t *table.Table, name string) *table.Table {
	values := t.Column(name)
	if values == nil {
		return t
	}
	for i, c := range values {
		values[i] = coerce(c)
	}
	return t.WithColumn(name, values)
}
