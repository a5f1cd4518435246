package forecast

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// arimaForecast fits an ARIMA(1,1,1) model by conditional sum of squares
// and forecasts h steps ahead. The series is first-differenced, an
// ARMA(1,1) with intercept is fitted on the differences via Nelder-Mead,
// and forecasts are integrated back to levels. Series shorter than 3
// points carry the last value forward.
func arimaForecast(series []float64, h int) []float64 {
	if h <= 0 {
		return nil
	}
	if len(series) < 3 {
		return repeatLast(series, h)
	}

	d := difference(series)
	c, phi, theta := fitARMA11(d)
	e := arma11Residuals(d, c, phi, theta)

	prevD := d[len(d)-1]
	prevE := e[len(e)-1]
	level := series[len(series)-1]
	out := make([]float64, h)
	for i := 0; i < h; i++ {
		step := c + phi*prevD + theta*prevE
		level += step
		out[i] = level
		prevD, prevE = step, 0
	}
	return out
}

func difference(series []float64) []float64 {
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}

// fitARMA11 minimizes the conditional sum of squared residuals over
// (c, phi, theta). Coefficients outside the unit interval are penalized
// rather than hard-constrained, then clamped for the forecast recursion.
func fitARMA11(d []float64) (c, phi, theta float64) {
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			return arma11CSS(d, p[0], p[1], p[2])
		},
	}
	result, err := optimize.Minimize(problem, []float64{0, 0.1, 0.1}, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return 0, 0, 0
	}
	return result.X[0], clampCoef(result.X[1]), clampCoef(result.X[2])
}

func arma11CSS(d []float64, c, phi, theta float64) float64 {
	sum := 0.0
	prevD, prevE := 0.0, 0.0
	for _, v := range d {
		e := v - c - phi*prevD - theta*prevE
		sum += e * e
		prevD, prevE = v, e
	}
	// soft stationarity/invertibility penalty
	if a := math.Abs(phi); a > 0.99 {
		sum += 1e6 * (a - 0.99) * (a - 0.99)
	}
	if a := math.Abs(theta); a > 0.99 {
		sum += 1e6 * (a - 0.99) * (a - 0.99)
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return math.MaxFloat64
	}
	return sum
}

func arma11Residuals(d []float64, c, phi, theta float64) []float64 {
	out := make([]float64, len(d))
	prevD, prevE := 0.0, 0.0
	for i, v := range d {
		e := v - c - phi*prevD - theta*prevE
		out[i] = e
		prevD, prevE = v, e
	}
	return out
}

func clampCoef(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > 0.99 {
		return 0.99
	}
	if v < -0.99 {
		return -0.99
	}
	return v
}
