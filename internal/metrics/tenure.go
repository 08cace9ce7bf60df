package metrics

import (
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// Risk labels of the retention view
const (
	RiskEarlyChurn  = "Early Churn (Hiring Miss)"
	RiskRegrettable = "Regrettable Loss"
)

// TenureRow is one exit timing category
type TenureRow struct {
	Timing    string
	Count     float64
	AvgTenure grid.Cell
	RiskLabel string
}

// TenureSummary aggregates the average tenure column
type TenureSummary struct {
	Exits        float64
	MeanTenure   float64
	MedianTenure float64
	// WeightedTenure weights each category's average by its exit count
	WeightedTenure float64
}

// Tenure is the Retention_Tenure view
type Tenure struct {
	Rows    []TenureRow
	Summary TenureSummary
}

// RetentionTenure labels each timing category: anything mentioning
// probation is an early churn, the rest are regrettable losses.
func RetentionTenure(t *table.Table) *Tenure {
	out := &Tenure{}
	if t.IsEmpty() || !t.HasColumn(ColTimingCategory) {
		return out
	}

	var tenures, weights []float64
	for i := range t.Rows {
		timing := t.Value(i, ColTimingCategory)
		row := TenureRow{
			Timing:    timing.String(),
			Count:     t.Value(i, ColCount).FloatOr(0),
			AvgTenure: t.Value(i, ColAvgTenure),
			RiskLabel: RiskLabel(timing.String()),
		}
		out.Rows = append(out.Rows, row)
		out.Summary.Exits += row.Count

		if v, ok := row.AvgTenure.Float(); ok {
			tenures = append(tenures, v)
			weights = append(weights, row.Count)
		}
	}

	if len(tenures) > 0 {
		out.Summary.MeanTenure, _ = stats.Mean(tenures)
		out.Summary.MedianTenure, _ = stats.Median(tenures)
		if floats.Sum(weights) > 0 {
			out.Summary.WeightedTenure = gstat.Mean(tenures, weights)
		}
	}
	return out
}

// RiskLabel classifies a timing category
func RiskLabel(timing string) string {
	if strings.Contains(strings.ToLower(timing), "probation") {
		return RiskEarlyChurn
	}
	return RiskRegrettable
}

// IsEmpty reports whether there are no timing categories
func (t *Tenure) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// ToTable renders the view
func (t *Tenure) ToTable() *table.Table {
	if t.IsEmpty() {
		return table.Empty()
	}
	out := &table.Table{Columns: []string{ColTimingCategory, ColCount, ColAvgTenure, ColRiskLabel}}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, []grid.Cell{
			grid.Text(r.Timing), grid.Number(r.Count), r.AvgTenure, grid.Text(r.RiskLabel),
		})
	}
	return out
}
