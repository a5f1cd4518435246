package forecast

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/decisio/retail-dss/internal/models"
)

// additiveForecast fits a general additive model: a least-squares linear
// trend over the month index plus month-of-year seasonal indices
// (mean detrended residual per calendar month). Forecast = trend +
// seasonal component of the target month. Fewer than 2 points carry the
// last value forward.
func additiveForecast(hist []models.ForecastPoint, h int) []float64 {
	if h <= 0 {
		return nil
	}
	if len(hist) < 2 {
		return repeatLast(revenues(hist), h)
	}

	n := len(hist)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range hist {
		xs[i] = float64(i)
		ys[i] = p.Revenue
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	seasonalSum := make(map[time.Month]float64)
	seasonalCount := make(map[time.Month]int)
	for i, p := range hist {
		resid := p.Revenue - (alpha + beta*float64(i))
		seasonalSum[p.Month.Month()] += resid
		seasonalCount[p.Month.Month()]++
	}

	months := forecastMonths(hist[n-1].Month, h)
	out := make([]float64, h)
	for j, m := range months {
		seasonal := 0.0
		if c := seasonalCount[m.Month()]; c > 0 {
			seasonal = seasonalSum[m.Month()] / float64(c)
		}
		out[j] = alpha + beta*float64(n+j) + seasonal
	}
	return out
}
