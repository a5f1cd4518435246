package optimize

import (
	"errors"
	"reflect"
	"testing"

	"github.com/decisio/retail-dss/internal/models"
)

func catalog() []models.ProductDemand {
	return []models.ProductDemand{
		{Description: "RED CANDLE", Demand: 100, UnitPrice: 2.0, ProfitPerUnit: 0.8},
		{Description: "BLUE LAMP", Demand: 50, UnitPrice: 5.0, ProfitPerUnit: 2.0},
		{Description: "GREEN MUG", Demand: 200, UnitPrice: 1.0, ProfitPerUnit: 0.4},
	}
}

func TestSolveRespectsBudget(t *testing.T) {
	budget := 300.0
	plan, err := Solve(catalog(), budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Lines) == 0 {
		t.Fatal("expected a non-empty plan")
	}
	if plan.TotalCost > budget+1e-9 {
		t.Errorf("total cost %.2f exceeds budget %.2f", plan.TotalCost, budget)
	}
}

func TestSolveRespectsDiversificationCap(t *testing.T) {
	budget := 300.0
	plan, err := Solve(catalog(), budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, l := range plan.Lines {
		if l.TotalCost > budget*DiversifyShare+1e-9 {
			t.Errorf("%s: line cost %.2f exceeds %.0f%% of budget",
				l.Description, l.TotalCost, DiversifyShare*100)
		}
	}
}

func TestSolveRespectsDemand(t *testing.T) {
	products := []models.ProductDemand{
		{Description: "SCARCE", Demand: 3, UnitPrice: 1, ProfitPerUnit: 10},
	}
	plan, err := Solve(products, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Lines) != 1 || plan.Lines[0].OrderQty != 3 {
		t.Fatalf("expected 3 units capped by demand, got %+v", plan.Lines)
	}
}

func TestSolvePrefersHigherMargin(t *testing.T) {
	// Same price, very different profit. The budget only covers part of
	// the demand, so the better product must dominate the plan.
	products := []models.ProductDemand{
		{Description: "WINNER", Demand: 40, UnitPrice: 1, ProfitPerUnit: 0.9},
		{Description: "LOSER", Demand: 40, UnitPrice: 1, ProfitPerUnit: 0.1},
	}
	plan, err := Solve(products, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Lines[0].Description != "WINNER" {
		t.Fatalf("expected WINNER first, got %+v", plan.Lines)
	}
	// 40% of 50 caps each line at 20 units
	if plan.Lines[0].OrderQty != 20 {
		t.Errorf("WINNER qty: want 20 (diversification cap), got %d", plan.Lines[0].OrderQty)
	}
}

func TestSolveDeterministic(t *testing.T) {
	first, err := Solve(catalog(), 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Solve(catalog(), 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different plans")
	}
}

func TestSolveNonPositiveBudget(t *testing.T) {
	for _, budget := range []float64{0, -100} {
		_, err := Solve(catalog(), budget)
		var ie *models.InfeasibleError
		if !errors.As(err, &ie) {
			t.Errorf("budget %.0f: expected InfeasibleError, got %v", budget, err)
		}
	}
}

func TestSolveNoProducts(t *testing.T) {
	_, err := Solve(nil, 100)
	var de *models.DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestSolveTinyBudgetYieldsEmptyPlan(t *testing.T) {
	products := []models.ProductDemand{
		{Description: "PRICEY", Demand: 10, UnitPrice: 100, ProfitPerUnit: 40},
	}
	plan, err := Solve(products, 5)
	if err != nil {
		t.Fatalf("an unaffordable catalog is not an error: %v", err)
	}
	if len(plan.Lines) != 0 || plan.TotalCost != 0 {
		t.Fatalf("expected an empty plan, got %+v", plan)
	}
}

func TestClipToBudgetTrimsLowestProfitLine(t *testing.T) {
	products := []models.ProductDemand{
		{Description: "A", UnitPrice: 10, ProfitPerUnit: 4},
		{Description: "B", UnitPrice: 10, ProfitPerUnit: 1},
	}
	plan := models.OrderPlan{Lines: []models.OrderLine{
		{Description: "A", OrderQty: 5, TotalCost: 50, ExpectedProfit: 20},
		{Description: "B", OrderQty: 5, TotalCost: 50, ExpectedProfit: 5},
	}}
	clipToBudget(&plan, products, 80)
	recomputeTotals(&plan)
	if plan.TotalCost > 80 {
		t.Fatalf("cost still over budget: %.2f", plan.TotalCost)
	}
	if plan.Lines[0].OrderQty != 5 {
		t.Errorf("high-profit line should be untouched, got qty %d", plan.Lines[0].OrderQty)
	}
	if plan.Lines[1].OrderQty != 3 {
		t.Errorf("low-profit line: want qty 3, got %d", plan.Lines[1].OrderQty)
	}
}

func TestClipToBudgetDropsExhaustedLines(t *testing.T) {
	products := []models.ProductDemand{
		{Description: "A", UnitPrice: 10, ProfitPerUnit: 4},
		{Description: "B", UnitPrice: 10, ProfitPerUnit: 1},
	}
	plan := models.OrderPlan{Lines: []models.OrderLine{
		{Description: "A", OrderQty: 2, TotalCost: 20, ExpectedProfit: 8},
		{Description: "B", OrderQty: 1, TotalCost: 10, ExpectedProfit: 1},
	}}
	clipToBudget(&plan, products, 20)
	if len(plan.Lines) != 1 || plan.Lines[0].Description != "A" {
		t.Fatalf("expected only line A to survive, got %+v", plan.Lines)
	}
}
