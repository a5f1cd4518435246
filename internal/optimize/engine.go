package optimize

import (
	"github.com/decisio/retail-dss/internal/models"
)

// Run executes the full purchase-optimization pipeline: per-product
// demand aggregation, LP solve under the budget, and the derived
// financial decision table. A plan with no lines is a valid result when
// the rounded solution orders nothing.
func Run(rows []models.Transaction, keyword string, budget float64, months int) (*models.OptimizationResult, error) {
	products, err := Preprocess(rows, keyword, months)
	if err != nil {
		return nil, err
	}
	plan, err := Solve(products, budget)
	if err != nil {
		return nil, err
	}
	return &models.OptimizationResult{
		Plan:     plan,
		Top5:     plan.Top(5),
		Decision: Decide(plan, budget, months),
		Budget:   budget,
		Months:   months,
	}, nil
}
