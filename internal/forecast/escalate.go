package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/decisio/retail-dss/internal/models"
)

// Config parameterizes one forecasting run.
type Config struct {
	Keyword       string
	HistoryMonths int
	HorizonMonths int
	CapitalCost   float64
	MAPEThreshold float64
}

// DefaultMAPEThreshold is the accepted accuracy bound, in percent.
const DefaultMAPEThreshold = 15.0

// Run executes the tiered forecasting pipeline. Model tiers are tried in
// fixed order; for each tier the history is split into train/test with
// the test window equal to the forecast horizon, the tier is fitted on
// train and scored by MAPE on test. The first tier within the threshold
// (or the last tier) is accepted and refitted on the full history for
// the forward forecast. The recorded accuracy always comes from the
// train/test split, not from the refit.
func Run(rows []models.Transaction, cfg Config) (*models.ForecastResult, error) {
	if cfg.HorizonMonths <= 0 {
		return nil, &models.DataError{Reason: "forecast horizon must be at least 1 month"}
	}
	if cfg.MAPEThreshold <= 0 {
		cfg.MAPEThreshold = DefaultMAPEThreshold
	}

	history, avgPrice, err := Preprocess(rows, cfg.Keyword, cfg.HistoryMonths)
	if err != nil {
		return nil, err
	}

	h := cfg.HorizonMonths
	train, test := history, []models.ForecastPoint(nil)
	if len(history) > h {
		train = history[:len(history)-h]
		test = history[len(history)-h:]
	}

	var (
		chosen   Model
		accuracy float64
		final    []float64
	)
	for i, tier := range tiers {
		pred, err := forecastWith(tier, train, h)
		if err != nil {
			return nil, err
		}
		acc := 0.0
		if len(test) > 0 {
			acc = mapePercent(revenues(test), pred)
		}
		if acc <= cfg.MAPEThreshold || i == len(tiers)-1 {
			chosen, accuracy = tier, acc
			final, err = forecastWith(tier, history, h)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	months := forecastMonths(history[len(history)-1].Month, h)
	forecastPts := make([]models.ForecastPoint, h)
	for i := range forecastPts {
		forecastPts[i] = models.ForecastPoint{Month: months[i], Revenue: final[i]}
	}

	res := &models.ForecastResult{
		Model:        chosen.String(),
		AccuracyMAPE: accuracy,
		AvgUnitPrice: avgPrice,
		History:      history,
		Forecast:     forecastPts,
	}
	deriveFinancials(res, cfg.CapitalCost)
	res.Periods = classifyPeriods(forecastPts)
	res.Marketing = marketingAdvice(history, forecastPts)
	res.Suggestions = suggestions(history, accuracy)
	deriveUnits(res, h)
	return res, nil
}

// deriveFinancials computes total forecast revenue and the gross profit
// estimate. Without a positive average unit price the revenue cannot be
// converted to a unit count, so gross profit degrades to zero.
func deriveFinancials(res *models.ForecastResult, capitalCost float64) {
	total := 0.0
	for _, p := range res.Forecast {
		total += p.Revenue
	}
	res.TotalRevenue = total
	if res.AvgUnitPrice > 0 {
		units := total / res.AvgUnitPrice
		res.GrossProfit = total - units*capitalCost
	} else {
		res.GrossProfit = 0
	}

	if len(res.Forecast) > 0 {
		first := res.Forecast[0].Revenue
		last := res.Forecast[len(res.Forecast)-1].Revenue
		if first != 0 {
			res.ChangePercent = (last - first) / first * 100
		}
	}
}

// deriveUnits converts revenue to unit-equivalent purchasing guidance:
// last historical month's unit sales, average forecast units per month
// and the gap to close. All zero when the average price is zero.
func deriveUnits(res *models.ForecastResult, h int) {
	if res.AvgUnitPrice <= 0 || h <= 0 {
		return
	}
	if len(res.History) > 0 {
		res.LastMonthUnits = int(math.Round(res.History[len(res.History)-1].Revenue / res.AvgUnitPrice))
	}
	avgRev := res.TotalRevenue / float64(h)
	res.AvgForecastUnits = int(avgRev / res.AvgUnitPrice)
	if gap := res.AvgForecastUnits - res.LastMonthUnits; gap > 0 {
		res.UnitGap = gap
	}
}

// classifyPeriods labels each forecast month against the forecast mean:
// 10% above is a peak, 10% below a trough, anything between stable.
func classifyPeriods(forecast []models.ForecastPoint) []models.PeriodAdvice {
	if len(forecast) == 0 {
		return nil
	}
	mean := 0.0
	for _, p := range forecast {
		mean += p.Revenue
	}
	mean /= float64(len(forecast))

	out := make([]models.PeriodAdvice, len(forecast))
	for i, p := range forecast {
		status, suggestion := "stable", "Keep the current purchasing plan."
		switch {
		case p.Revenue >= mean*1.1:
			status, suggestion = "peak", "Increase purchasing and push promotion."
		case p.Revenue <= mean*0.9:
			status, suggestion = "trough", "Reduce purchasing and run promotions to stimulate demand."
		}
		out[i] = models.PeriodAdvice{Month: p.Month, Revenue: p.Revenue, Status: status, Suggestion: suggestion}
	}
	return out
}

// marketingAdvice compares each forecast month with the historical mean
// and suggests a campaign posture.
func marketingAdvice(history, forecast []models.ForecastPoint) []models.PeriodAdvice {
	if len(forecast) == 0 {
		return nil
	}
	mean := 0.0
	if len(history) > 0 {
		for _, p := range history {
			mean += p.Revenue
		}
		mean /= float64(len(history))
	}

	out := make([]models.PeriodAdvice, len(forecast))
	for i, p := range forecast {
		deviation := p.Revenue - mean
		if deviation > 0 {
			out[i] = models.PeriodAdvice{
				Month: p.Month, Revenue: p.Revenue, Status: "above average",
				Suggestion: fmt.Sprintf("£%.2f above the historical mean: raise ad budget, run promotions, push remarketing.", deviation),
			}
		} else {
			out[i] = models.PeriodAdvice{
				Month: p.Month, Revenue: p.Revenue, Status: "below average",
				Suggestion: fmt.Sprintf("£%.2f below the historical mean: focus on retention, trim ad spend, keep the brand visible.", -deviation),
			}
		}
	}
	return out
}

// suggestions fits a degree-1 trend to the historical series and turns
// the slope into purchasing guidance. Skipped silently when fewer than 2
// points exist.
func suggestions(history []models.ForecastPoint, mape float64) []string {
	var out []string
	if len(history) >= 2 {
		xs := make([]float64, len(history))
		ys := make([]float64, len(history))
		for i, p := range history {
			xs[i] = float64(i)
			ys[i] = p.Revenue
		}
		_, slope := stat.LinearRegression(xs, ys, nil, false)
		switch {
		case slope > 0:
			out = append(out, "Revenue trend is rising - consider increasing the purchasing plan.")
		case slope < 0:
			out = append(out, "Revenue trend is falling - consider reducing purchases or pushing marketing.")
		default:
			out = append(out, "Revenue is stable - maintain the current purchasing level.")
		}
	}
	out = append(out,
		fmt.Sprintf("Use the MAPE (%.2f%%) to judge model accuracy.", mape),
		"Re-run the model as new data arrives to improve accuracy.",
	)
	return out
}

// mapePercent is the mean absolute percentage error between actuals and
// predictions, in percent. Zero actuals contribute via a small epsilon
// denominator rather than dividing by zero.
func mapePercent(actuals, preds []float64) float64 {
	n := len(actuals)
	if len(preds) < n {
		n = len(preds)
	}
	if n == 0 {
		return 0
	}
	const eps = 1e-10
	sum := 0.0
	for i := 0; i < n; i++ {
		den := math.Abs(actuals[i])
		if den < eps {
			den = eps
		}
		sum += math.Abs(actuals[i]-preds[i]) / den
	}
	return sum / float64(n) * 100
}
