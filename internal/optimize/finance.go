package optimize

import (
	"fmt"

	"github.com/decisio/retail-dss/internal/models"
)

// marginBoostThreshold is the realized profit margin (percent) above
// which the next-period budget proposal grows by 15%.
const marginBoostThreshold = 95.0

// Decide derives the five-line financial decision table from an order
// plan. Zero total cost or zero months degrade to zero-valued outputs
// rather than failing; downstream rendering treats those as "no
// recommendation".
func Decide(plan models.OrderPlan, budget float64, months int) []models.DecisionLine {
	margin := safeDiv(plan.TotalProfit, plan.TotalCost) * 100

	nextBudget := budget
	if margin >= marginBoostThreshold {
		nextBudget = budget * 1.15
	}
	addProfit := (nextBudget - budget) * safeDiv(plan.TotalProfit, plan.TotalCost)
	expectedNext := plan.TotalProfit + addProfit

	avgMonthly := 0.0
	if months > 0 {
		avgMonthly = plan.TotalCost / float64(months)
	}
	avgWeekly := avgMonthly / 4

	return []models.DecisionLine{
		{
			Objective: "1. Allocate budget by profit",
			Action: fmt.Sprintf("Approve purchasing %d products for a total of £%.0f out of £%.0f",
				len(plan.Lines), plan.TotalCost, budget),
		},
		{
			Objective: "2. Manage cash-flow risk",
			Action:    fmt.Sprintf("Hold back ~£%.0f as a flexible financial reserve", budget-plan.TotalCost),
		},
		{
			Objective: "3. Track financial performance",
			Action: fmt.Sprintf("Review weekly profit reports over %d months against the expected £%.0f",
				months, plan.TotalProfit),
		},
		{
			Objective: "4. Plan payments and cash flow",
			Action: fmt.Sprintf("Supplier payments: on average £%.0f/month (~£%.0f/week)",
				avgMonthly, avgWeekly),
		},
		{
			Objective: "5. Next-period budget proposal",
			Action: fmt.Sprintf("At a %.2f%% profit margin, propose a next-period budget of £%.0f with profit ~£%.0f",
				margin, nextBudget, expectedNext),
		},
	}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
