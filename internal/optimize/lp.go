package optimize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/decisio/retail-dss/internal/models"
)

// Solve maximizes total expected profit subject to the budget and
// per-product bounds, then rounds the continuous LP solution into an
// integer order plan.
//
// The LP, in the original variables:
//
//	max  sum(qty_i * profit_i)
//	s.t. sum(qty_i * price_i) <= budget
//	     0 <= qty_i <= min(demand_i, floor(budget*DiversifyShare/price_i))
//
// It is translated to standard form (min c'x, Ax=b, x>=0) with one slack
// per constraint and handed to gonum's Simplex. Rounding can push realized
// cost past the budget; quantities are then clipped from the
// lowest-profit lines until the plan fits.
func Solve(products []models.ProductDemand, budget float64) (models.OrderPlan, error) {
	var plan models.OrderPlan
	if len(products) == 0 {
		return plan, &models.DataError{Reason: "no products to optimize"}
	}
	if budget <= 0 {
		return plan, &models.InfeasibleError{Reason: "budget must be positive"}
	}

	n := len(products)
	upper := make([]float64, n)
	for i, p := range products {
		cap := math.Inf(1)
		if p.UnitPrice > 0 {
			cap = math.Floor(budget * DiversifyShare / p.UnitPrice)
		}
		upper[i] = math.Min(float64(p.Demand), cap)
		if upper[i] < 0 {
			upper[i] = 0
		}
	}

	// Standard form: variables are the n order quantities, one budget
	// slack, and n upper-bound slacks.
	nVar := 2*n + 1
	c := make([]float64, nVar)
	for i, p := range products {
		c[i] = -p.ProfitPerUnit
	}
	a := mat.NewDense(n+1, nVar, nil)
	b := make([]float64, n+1)
	for i, p := range products {
		a.Set(0, i, p.UnitPrice)
	}
	a.Set(0, n, 1)
	b[0] = budget
	for i := 0; i < n; i++ {
		a.Set(i+1, i, 1)
		a.Set(i+1, n+1+i, 1)
		b[i+1] = upper[i]
	}

	_, x, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) || errors.Is(err, lp.ErrUnbounded) {
			return plan, &models.InfeasibleError{Reason: "no feasible order plan under the given budget and bounds"}
		}
		return plan, fmt.Errorf("lp solve: %w", err)
	}

	for i, p := range products {
		qty := int(math.Round(x[i]))
		if qty <= 0 {
			continue
		}
		plan.Lines = append(plan.Lines, models.OrderLine{
			Description:    p.Description,
			OrderQty:       qty,
			TotalCost:      float64(qty) * p.UnitPrice,
			ExpectedProfit: float64(qty) * p.ProfitPerUnit,
		})
	}

	sort.SliceStable(plan.Lines, func(i, j int) bool {
		if plan.Lines[i].ExpectedProfit != plan.Lines[j].ExpectedProfit {
			return plan.Lines[i].ExpectedProfit > plan.Lines[j].ExpectedProfit
		}
		return plan.Lines[i].Description < plan.Lines[j].Description
	})

	clipToBudget(&plan, products, budget)
	recomputeTotals(&plan)
	return plan, nil
}

// clipToBudget walks back integer rounding overshoot: while realized cost
// exceeds the budget, the lowest-profit line loses one unit at a time.
// Lines reaching zero are dropped.
func clipToBudget(plan *models.OrderPlan, products []models.ProductDemand, budget float64) {
	price := make(map[string]float64, len(products))
	profit := make(map[string]float64, len(products))
	for _, p := range products {
		price[p.Description] = p.UnitPrice
		profit[p.Description] = p.ProfitPerUnit
	}

	cost := 0.0
	for _, l := range plan.Lines {
		cost += l.TotalCost
	}
	for cost > budget {
		idx := -1
		for i := len(plan.Lines) - 1; i >= 0; i-- {
			if price[plan.Lines[i].Description] > 0 {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		l := &plan.Lines[idx]
		l.OrderQty--
		cost -= price[l.Description]
		l.TotalCost = float64(l.OrderQty) * price[l.Description]
		l.ExpectedProfit = float64(l.OrderQty) * profit[l.Description]
		if l.OrderQty <= 0 {
			plan.Lines = append(plan.Lines[:idx], plan.Lines[idx+1:]...)
		}
	}
}

func recomputeTotals(plan *models.OrderPlan) {
	plan.TotalCost, plan.TotalProfit = 0, 0
	for _, l := range plan.Lines {
		plan.TotalCost += l.TotalCost
		plan.TotalProfit += l.ExpectedProfit
	}
}
