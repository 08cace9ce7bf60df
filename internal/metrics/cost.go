package metrics

import (
	"gonum.org/v1/gonum/floats"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// CostAssumptions are the per-exit unit costs in EUR
type CostAssumptions struct {
	ReplacementCost float64
	OpsLossValue    float64
}

// DefaultCostAssumptions returns 12000 replacement and 8000 lost productivity per exit
func DefaultCostAssumptions() CostAssumptions {
	return CostAssumptions{ReplacementCost: 12000, OpsLossValue: 8000}
}

// CostRow is the churn cost of one category
type CostRow struct {
	Category         string
	TotalExits       float64
	ReplacementCost  float64
	ProductivityLoss float64
	TotalLoss        float64
}

// Cost is the Cost_of_Churn view: the health view extended with cost
// columns, plus a total row.
type Cost struct {
	health *Health
	Rows   []CostRow
}

// CostOfChurn prices every category of the health view
func CostOfChurn(health *Health, a CostAssumptions) *Cost {
	c := &Cost{health: health}
	if health.IsEmpty() {
		return c
	}
	for _, r := range health.Rows {
		replacement := r.TotalExits * a.ReplacementCost
		productivity := r.TotalExits * a.OpsLossValue
		c.Rows = append(c.Rows, CostRow{
			Category:         r.Category,
			TotalExits:       r.TotalExits,
			ReplacementCost:  replacement,
			ProductivityLoss: productivity,
			TotalLoss:        replacement + productivity,
		})
	}
	return c
}

// IsEmpty reports whether there is nothing to price
func (c *Cost) IsEmpty() bool {
	return c == nil || len(c.Rows) == 0
}

// TotalLoss is the summed estimated loss across categories
func (c *Cost) TotalLoss() float64 {
	if c.IsEmpty() {
		return 0
	}
	losses := make([]float64, len(c.Rows))
	for i, r := range c.Rows {
		losses[i] = r.TotalLoss
	}
	return floats.Sum(losses)
}

// ToTable renders the view. The last row is labeled TOTAL and holds the
// column-wise sum of every numeric column; text columns are left blank.
func (c *Cost) ToTable() *table.Table {
	if c.IsEmpty() {
		return table.Empty()
	}
	base := c.health.ToTable()
	t := &table.Table{Columns: append(base.Columns, ColReplacementCost, ColProductivityLoss, ColTotalLoss)}
	for i, r := range c.Rows {
		row := append(base.Rows[i], numbers(r.ReplacementCost, r.ProductivityLoss, r.TotalLoss)...)
		t.Rows = append(t.Rows, row)
	}
	t.Rows = append(t.Rows, totalRow(t))
	return t
}

func totalRow(t *table.Table) []grid.Cell {
	total := make([]grid.Cell, t.Width())
	total[0] = grid.Text(TotalLabel)
	for j := 1; j < t.Width(); j++ {
		column := make([]float64, 0, len(t.Rows))
		numeric := true
		for _, row := range t.Rows {
			if row[j].Kind != grid.KindNumber {
				numeric = false
				break
			}
			column = append(column, row[j].Num)
		}
		if numeric {
			total[j] = grid.Number(floats.Sum(column))
		}
	}
	return total
}
