package models

import "time"

// Transaction is one row of the retail sales log. It is the only input
// shared by all three analysis engines.
type Transaction struct {
	CustomerID  string
	InvoiceID   string
	InvoiceDate time.Time
	Description string
	Quantity    int
	UnitPrice   float64
}

// Revenue is quantity times unit price. Only rows with positive quantity
// and price are counted toward monetary aggregates.
func (t Transaction) Revenue() float64 { return float64(t.Quantity) * t.UnitPrice }

// RFMRecord holds the per-customer behavioral features used for
// segmentation. Cluster is appended by the clustering step.
type RFMRecord struct {
	CustomerID   string
	LastPurchase time.Time
	RecencyDays  int
	Frequency    int
	Monetary     float64
	AvgSpend     float64
	Cluster      int
}

// ClusterSummary aggregates one cluster. Segment is the semantic label
// derived from the ranking rules in the segment package.
type ClusterSummary struct {
	Cluster      int
	AvgRecency   float64
	AvgFrequency float64
	AvgMonetary  float64
	Customers    int
	Segment      string
}

type SegmentationResult struct {
	K       int              `json:"k"`
	Records []RFMRecord      `json:"records"`
	Summary []ClusterSummary `json:"summary"`
	// Inertia is the elbow sequence for k=1..maxK, zero-padded when the
	// customer count caps the sweep. Empty unless requested.
	Inertia []float64 `json:"inertia,omitempty"`
}

// ProductDemand is the per-product input row of the purchase optimizer.
// Demand is already projected to the forecast horizon.
type ProductDemand struct {
	Description   string
	Demand        int
	UnitPrice     float64
	ProfitPerUnit float64
}

type OrderLine struct {
	Description    string  `json:"description"`
	OrderQty       int     `json:"order_qty"`
	TotalCost      float64 `json:"total_cost"`
	ExpectedProfit float64 `json:"expected_profit"`
}

// OrderPlan is the rounded LP solution, lines sorted by expected profit
// descending. Totals are recomputed from the rounded quantities, so they
// may differ slightly from the LP objective value.
type OrderPlan struct {
	Lines       []OrderLine `json:"lines"`
	TotalCost   float64     `json:"total_cost"`
	TotalProfit float64     `json:"total_profit"`
}

// Top returns the first n lines of the plan as a convenience view.
func (p OrderPlan) Top(n int) []OrderLine {
	if n > len(p.Lines) {
		n = len(p.Lines)
	}
	out := make([]OrderLine, n)
	copy(out, p.Lines[:n])
	return out
}

// DecisionLine is one row of the financial decision table derived from
// an order plan.
type DecisionLine struct {
	Objective string `json:"objective"`
	Action    string `json:"action"`
}

type OptimizationResult struct {
	Plan     OrderPlan      `json:"plan"`
	Top5     []OrderLine    `json:"top5"`
	Decision []DecisionLine `json:"decision"`
	Budget   float64        `json:"budget"`
	Months   int            `json:"months"`
}

// ForecastPoint is one month of revenue, historical or forecast.
// Month is always a month-end date.
type ForecastPoint struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
}

// PeriodAdvice classifies one forecast month and carries the matching
// operational suggestion.
type PeriodAdvice struct {
	Month      time.Time `json:"month"`
	Revenue    float64   `json:"revenue"`
	Status     string    `json:"status"`
	Suggestion string    `json:"suggestion"`
}

type ForecastResult struct {
	Model        string  `json:"model"`
	AccuracyMAPE float64 `json:"accuracy_mape"`
	TotalRevenue float64 `json:"total_revenue"`
	GrossProfit  float64 `json:"gross_profit"`
	AvgUnitPrice float64 `json:"avg_unit_price"`

	History  []ForecastPoint `json:"history"`
	Forecast []ForecastPoint `json:"forecast"`

	// Periods classifies each forecast month against the forecast mean
	// (peak/trough/stable); Marketing compares against the historical
	// mean and suggests campaign posture.
	Periods   []PeriodAdvice `json:"periods"`
	Marketing []PeriodAdvice `json:"marketing"`

	Suggestions []string `json:"suggestions"`

	// ChangePercent is the first-to-last forecast delta in percent,
	// zero when the first forecast value is zero.
	ChangePercent float64 `json:"change_percent"`

	LastMonthUnits   int `json:"last_month_units"`
	AvgForecastUnits int `json:"avg_forecast_units"`
	UnitGap          int `json:"unit_gap"`
}
