package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/floats"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// HeadcountColumns names the columns of the headcount time series
type HeadcountColumns struct {
	Date     string
	Internal string
	External []string
}

// DefaultHeadcountColumns returns the layout of the headcount evolution sheet
func DefaultHeadcountColumns() HeadcountColumns {
	return HeadcountColumns{
		Date:     ColDate,
		Internal: "Leadtech",
		External: []string{"Randstad", "Deel", "Freelance"},
	}
}

// Observation is one dated headcount snapshot
type Observation struct {
	Date     time.Time
	Internal float64
	// External holds one value per HeadcountColumns.External entry
	External []float64
}

// ExternalTotal sums the external providers
func (o Observation) ExternalTotal() float64 {
	return floats.Sum(o.External)
}

// Total is the whole workforce
func (o Observation) Total() float64 {
	return o.Internal + o.ExternalTotal()
}

// Headcount is the parsed time series, oldest first
type Headcount struct {
	Columns      HeadcountColumns
	Observations []Observation
}

// IsEmpty reports whether there are no observations
func (h *Headcount) IsEmpty() bool {
	return h == nil || len(h.Observations) == 0
}

// Latest returns the most recent observation
func (h *Headcount) Latest() (Observation, bool) {
	if h.IsEmpty() {
		return Observation{}, false
	}
	return h.Observations[len(h.Observations)-1], true
}

// ParseHeadcount reads a header-first headcount table. A table without the
// date column yields an empty series. Absent provider columns and blank
// cells count as 0; rows whose date cannot be parsed are dropped.
func ParseHeadcount(t *table.Table, cols HeadcountColumns) *Headcount {
	h := &Headcount{Columns: cols}
	if t.IsEmpty() || !t.HasColumn(cols.Date) {
		return h
	}
	for i := range t.Rows {
		date, ok := ParseDate(t.Value(i, cols.Date))
		if !ok {
			continue
		}
		obs := Observation{
			Date:     date,
			Internal: t.Value(i, cols.Internal).FloatOr(0),
			External: make([]float64, len(cols.External)),
		}
		for j, name := range cols.External {
			obs.External[j] = t.Value(i, name).FloatOr(0)
		}
		h.Observations = append(h.Observations, obs)
	}
	sort.SliceStable(h.Observations, func(i, j int) bool {
		return h.Observations[i].Date.Before(h.Observations[j].Date)
	})
	return h
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
	"Jan 2006",
	"January 2006",
	"Jan-06",
}

// ParseDate reads a date cell. Numbers are Excel serial dates; text is tried
// against the common layouts, month first.
func ParseDate(c grid.Cell) (time.Time, bool) {
	switch c.Kind {
	case grid.KindNumber:
		if c.Num <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(c.Num, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case grid.KindText:
		s := strings.TrimSpace(c.Text)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ToTable renders the series with a Total_Workforce column
func (h *Headcount) ToTable() *table.Table {
	if h.IsEmpty() {
		return table.Empty()
	}
	cols := append([]string{h.Columns.Date, h.Columns.Internal}, h.Columns.External...)
	t := &table.Table{Columns: append(cols, ColTotalWorkforce)}
	for _, o := range h.Observations {
		row := []grid.Cell{grid.Text(o.Date.Format(dateLayout)), grid.Number(o.Internal)}
		row = append(row, numbers(o.External...)...)
		t.Rows = append(t.Rows, append(row, grid.Number(o.Total())))
	}
	return t
}
