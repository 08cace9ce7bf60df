package metrics

import (
	"time"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// DefaultMixWindow keeps the last two years of monthly observations
const DefaultMixWindow = 24

// MixRow is the internal/external split of one observation
type MixRow struct {
	Date           time.Time
	TotalWorkforce float64
	Internal       float64
	External       []float64
	ShareInternal  float64
	ShareExternal  float64
}

// Mix is the Workforce_Mix view
type Mix struct {
	Columns HeadcountColumns
	Rows    []MixRow
}

// WorkforceMix computes the shares over the most recent window
// observations. A zero workforce gives shares of 0. window <= 0 keeps the
// whole series.
func WorkforceMix(h *Headcount, window int) *Mix {
	m := &Mix{}
	if h.IsEmpty() {
		return m
	}
	m.Columns = h.Columns

	obs := h.Observations
	if window > 0 && len(obs) > window {
		obs = obs[len(obs)-window:]
	}
	for _, o := range obs {
		row := MixRow{
			Date:           o.Date,
			TotalWorkforce: o.Total(),
			Internal:       o.Internal,
			External:       append([]float64(nil), o.External...),
		}
		if row.TotalWorkforce != 0 {
			row.ShareInternal = o.Internal / row.TotalWorkforce
			row.ShareExternal = o.ExternalTotal() / row.TotalWorkforce
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

// ToTable renders the view
func (m *Mix) ToTable() *table.Table {
	if m == nil || len(m.Rows) == 0 {
		return table.Empty()
	}
	cols := []string{m.Columns.Date, ColTotalWorkforce, m.Columns.Internal, ColShareInternal}
	cols = append(cols, m.Columns.External...)
	t := &table.Table{Columns: append(cols, ColShareExternal)}
	for _, r := range m.Rows {
		row := []grid.Cell{
			grid.Text(r.Date.Format(dateLayout)),
			grid.Number(r.TotalWorkforce),
			grid.Number(r.Internal),
			grid.Number(r.ShareInternal),
		}
		row = append(row, numbers(r.External...)...)
		t.Rows = append(t.Rows, append(row, grid.Number(r.ShareExternal)))
	}
	return t
}
