package metrics

import (
	"math"
	"time"

	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
)

// ForecastParams drives the hiring projection
type ForecastParams struct {
	AnnualChurnRate   float64
	MonthlyGrowthRate float64
	Horizon           int
}

// DefaultForecastParams returns 17% annual churn, 1% monthly growth, 6 months
func DefaultForecastParams() ForecastParams {
	return ForecastParams{AnnualChurnRate: 0.17, MonthlyGrowthRate: 0.01, Horizon: 6}
}

// ForecastRow is one projected month
type ForecastRow struct {
	Month              time.Time
	OpeningHeadcount   int
	PredictedAttrition int
	NetGrowthTarget    int
	RecruitmentTarget  int
}

// HiringForecast compounds the headcount forward from the given month.
// Each step truncates attrition and growth to whole people before growth is
// added, so the truncation error carries into later months.
func HiringForecast(headcount float64, from time.Time, p ForecastParams) []ForecastRow {
	monthlyChurn := p.AnnualChurnRate / 12
	current := headcount

	rows := make([]ForecastRow, 0, p.Horizon)
	for i := 1; i <= p.Horizon; i++ {
		attrition := math.Floor(current * monthlyChurn)
		growth := math.Floor(current * p.MonthlyGrowthRate)

		rows = append(rows, ForecastRow{
			Month:              AddMonths(from, i),
			OpeningHeadcount:   int(math.Floor(current)),
			PredictedAttrition: int(attrition),
			NetGrowthTarget:    int(growth),
			RecruitmentTarget:  int(attrition + growth),
		})
		current += growth
	}
	return rows
}

// ForecastFrom projects from the latest observation of the series
func ForecastFrom(h *Headcount, p ForecastParams) []ForecastRow {
	latest, ok := h.Latest()
	if !ok {
		return nil
	}
	return HiringForecast(latest.Total(), latest.Date, p)
}

// AddMonths moves t forward n calendar months, clamping the day to the end
// of the target month (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// ForecastTable renders forecast rows
func ForecastTable(rows []ForecastRow) *table.Table {
	if len(rows) == 0 {
		return table.Empty()
	}
	t := &table.Table{Columns: []string{
		ColMonth, ColOpeningHeadcount, ColPredictedAttrition, ColNetGrowthTarget, ColRecruitmentTarget,
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []grid.Cell{
			grid.Text(r.Month.Format(dateLayout)),
			grid.Number(float64(r.OpeningHeadcount)),
			grid.Number(float64(r.PredictedAttrition)),
			grid.Number(float64(r.NetGrowthTarget)),
			grid.Number(float64(r.RecruitmentTarget)),
		})
	}
	return t
}
