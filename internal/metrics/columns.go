// Package metrics derives the HR analytics tables from extracted and
// normalized sections. Every function is pure and treats empty input as
// "no data": the result is empty, never an error.
package metrics

import (
	"talentmetrics/domain/grid"
	"talentmetrics/internal/normalize"
)

// Column names shared by the derived tables
const (
	ColDepartment   = "Department"
	ColCount        = "Count"
	ColType         = "Type"
	ColCategory     = normalize.Column
	ColInvestment   = "Investment_EUR"
	ColHours        = "Hours"
	ColTotalExits   = "Total_Exits"
	ColHealthStatus = "Health_Status"

	ColReplacementCost  = "Replacement_Cost"
	ColProductivityLoss = "Productivity_Loss"
	ColTotalLoss        = "Total_Estimated_Loss"

	ColDate           = "Fecha"
	ColTotalWorkforce = "Total_Workforce"
	ColShareInternal  = "Share_Internal"
	ColShareExternal  = "Share_External"

	ColMonth              = "Month"
	ColOpeningHeadcount   = "Projected_Opening_HC"
	ColPredictedAttrition = "Predicted_Attrition"
	ColNetGrowthTarget    = "Net_Growth_Target"
	ColRecruitmentTarget  = "Recruitment_Target"

	ColTimingCategory = "Timing_Category"
	ColAvgTenure      = "Avg_Tenure_Months"
	ColRiskLabel      = "Risk_Label"
)

// Exit types tagged onto the stacked exit sections
const (
	ExitVoluntary = "Voluntary"
	ExitDismissal = "Dismissal"
)

// TotalLabel names the synthetic summary row of Cost_of_Churn
const TotalLabel = "TOTAL"

const dateLayout = "2006-01-02"

// coerce turns a cell into a number, with anything non-numeric becoming 0
func coerce(c grid.Cell) grid.Cell {
	return grid.Number(c.FloatOr(0))
}

func numbers(values ...float64) []grid.Cell {
	out := make([]grid.Cell, len(values))
	for i, v := range values {
		out[i] = grid.Number(v)
	}
	return out
}
