package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/decisio/retail-dss/internal/models"
)

// flatRows builds n months of identical sales: 10 units at £100 each,
// £1000 of revenue per month.
func flatRows(n int) []models.Transaction {
	out := make([]models.Transaction, n)
	start := time.Date(2022, time.January, 15, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Transaction{
			InvoiceID:   "1",
			InvoiceDate: start.AddDate(0, i, 0),
			Description: "WHITE CANDLE",
			Quantity:    10,
			UnitPrice:   100,
		}
	}
	return out
}

func bumpyRows() []models.Transaction {
	revs := []int{5, 12, 8, 15, 7, 13, 9, 16, 6, 12, 8, 15, 7, 14, 9, 16}
	out := make([]models.Transaction, len(revs))
	start := time.Date(2022, time.January, 15, 0, 0, 0, 0, time.UTC)
	for i, r := range revs {
		out[i] = models.Transaction{
			InvoiceID:   "1",
			InvoiceDate: start.AddDate(0, i, 0),
			Description: "WHITE CANDLE",
			Quantity:    r,
			UnitPrice:   100,
		}
	}
	return out
}

func TestRunFlatSeriesStopsAtFirstTier(t *testing.T) {
	res, err := Run(flatRows(18), Config{Keyword: "candle", HorizonMonths: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model != "ARIMA" {
		t.Errorf("a flat series should satisfy the first tier, got %q", res.Model)
	}
	if res.AccuracyMAPE > 0.5 {
		t.Errorf("flat-series MAPE should be near zero, got %v", res.AccuracyMAPE)
	}
	if len(res.Forecast) != 3 {
		t.Fatalf("expected 3 forecast points, got %d", len(res.Forecast))
	}
	for i, p := range res.Forecast {
		if math.Abs(p.Revenue-1000) > 1 {
			t.Errorf("forecast %d: want ~1000, got %v", i, p.Revenue)
		}
	}
	if res.AvgUnitPrice != 100 {
		t.Errorf("avg unit price: want 100, got %v", res.AvgUnitPrice)
	}
	// zero capital cost leaves revenue untouched
	if res.GrossProfit != res.TotalRevenue {
		t.Errorf("gross profit %v should equal revenue %v at zero capital cost",
			res.GrossProfit, res.TotalRevenue)
	}
}

func TestRunEscalatesToLastTier(t *testing.T) {
	res, err := Run(bumpyRows(), Config{
		Keyword:       "candle",
		HorizonMonths: 4,
		MAPEThreshold: 1e-9,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model != "ADDITIVE" {
		t.Fatalf("an unreachable threshold must fall through to the last tier, got %q", res.Model)
	}
	if res.AccuracyMAPE <= 1e-9 {
		t.Errorf("accuracy should reflect the failed threshold, got %v", res.AccuracyMAPE)
	}
}

func TestRunCapitalCostReducesProfit(t *testing.T) {
	res, err := Run(flatRows(18), Config{Keyword: "candle", HorizonMonths: 2, CapitalCost: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	units := res.TotalRevenue / res.AvgUnitPrice
	want := res.TotalRevenue - units*40
	if math.Abs(res.GrossProfit-want) > 1e-6 {
		t.Errorf("gross profit: want %v, got %v", want, res.GrossProfit)
	}
	if res.GrossProfit >= res.TotalRevenue {
		t.Errorf("capital cost should cut into revenue: %v >= %v", res.GrossProfit, res.TotalRevenue)
	}
}

func TestRunPopulatesAdvice(t *testing.T) {
	res, err := Run(flatRows(18), Config{Keyword: "candle", HorizonMonths: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Periods) != 3 || len(res.Marketing) != 3 {
		t.Fatalf("expected advice per forecast month, got %d periods, %d marketing",
			len(res.Periods), len(res.Marketing))
	}
	if len(res.Suggestions) < 2 {
		t.Fatalf("expected trend and accuracy suggestions, got %v", res.Suggestions)
	}
}

func TestRunRejectsBadHorizon(t *testing.T) {
	_, err := Run(flatRows(12), Config{Keyword: "candle", HorizonMonths: 0})
	var de *models.DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestRunShortHistorySkipsHoldout(t *testing.T) {
	// history no longer than the horizon: no test window, accuracy 0,
	// first tier accepted
	res, err := Run(flatRows(3), Config{Keyword: "candle", HorizonMonths: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model != "ARIMA" || res.AccuracyMAPE != 0 {
		t.Fatalf("want ARIMA with accuracy 0, got %q / %v", res.Model, res.AccuracyMAPE)
	}
}

func TestDeriveFinancials(t *testing.T) {
	res := &models.ForecastResult{
		AvgUnitPrice: 10,
		Forecast: []models.ForecastPoint{
			{Revenue: 600},
			{Revenue: 400},
		},
	}
	deriveFinancials(res, 2)
	if res.TotalRevenue != 1000 {
		t.Errorf("total revenue: want 1000, got %v", res.TotalRevenue)
	}
	// 100 units at £2 capital cost each
	if res.GrossProfit != 800 {
		t.Errorf("gross profit: want 800, got %v", res.GrossProfit)
	}
	if math.Abs(res.ChangePercent-(-100.0/3)) > 1e-9 {
		t.Errorf("change percent: want -33.33, got %v", res.ChangePercent)
	}
}

func TestDeriveFinancialsZeroPrice(t *testing.T) {
	res := &models.ForecastResult{Forecast: []models.ForecastPoint{{Revenue: 500}}}
	deriveFinancials(res, 3)
	if res.GrossProfit != 0 {
		t.Fatalf("zero avg price should zero the profit estimate, got %v", res.GrossProfit)
	}
}

func TestClassifyPeriods(t *testing.T) {
	pts := []models.ForecastPoint{
		{Revenue: 100}, {Revenue: 150}, {Revenue: 100}, {Revenue: 50},
	}
	got := classifyPeriods(pts)
	want := []string{"stable", "peak", "stable", "trough"}
	for i, status := range want {
		if got[i].Status != status {
			t.Errorf("month %d: want %q, got %q", i, status, got[i].Status)
		}
	}
}

func TestMapePercent(t *testing.T) {
	got := mapePercent([]float64{100, 200}, []float64{110, 180})
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("want 10%%, got %v", got)
	}
	if mapePercent(nil, nil) != 0 {
		t.Error("empty input should score 0")
	}
	// zero actual uses an epsilon denominator instead of dividing by zero
	if got := mapePercent([]float64{0}, []float64{5}); math.IsInf(got, 1) || math.IsNaN(got) {
		t.Errorf("zero actual must stay finite, got %v", got)
	}
}

func TestForecastWithUnknownModel(t *testing.T) {
	_, err := forecastWith(Model(99), nil, 3)
	var ue *models.UnknownModelError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnknownModelError, got %v", err)
	}
}

func TestRepeatLast(t *testing.T) {
	got := repeatLast([]float64{1, 2, 7}, 3)
	for i, v := range got {
		if v != 7 {
			t.Errorf("index %d: want 7, got %v", i, v)
		}
	}
	for _, v := range repeatLast(nil, 2) {
		if v != 0 {
			t.Errorf("empty series should repeat zero, got %v", v)
		}
	}
}
