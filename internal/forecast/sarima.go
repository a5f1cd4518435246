package forecast

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// seasonalPeriod is the seasonal cycle length in months.
const seasonalPeriod = 12

// sarimaForecast fits a seasonal ARIMA(1,1,1)(1,1,1) with a 12-month
// period by conditional sum of squares. The series is differenced once
// regularly and once seasonally; an ARMA with regular and seasonal AR/MA
// terms is fitted on the result and forecasts are re-integrated. Series
// too short to difference seasonally fall back to the non-seasonal tier.
func sarimaForecast(series []float64, h int) []float64 {
	if h <= 0 {
		return nil
	}
	n := len(series)
	// need at least 3 doubly-differenced points to estimate anything
	if n < seasonalPeriod+4 {
		return arimaForecast(series, h)
	}

	// z_t = (1-B)(1-B^s) y_t, defined for t >= s+1
	z := make([]float64, n-seasonalPeriod-1)
	for t := seasonalPeriod + 1; t < n; t++ {
		z[t-seasonalPeriod-1] = series[t] - series[t-1] - series[t-seasonalPeriod] + series[t-seasonalPeriod-1]
	}

	params := fitSeasonalARMA(z)
	e := seasonalResiduals(z, params)

	// forecast the doubly-differenced series, future shocks at zero
	zExt := make([]float64, len(z), len(z)+h)
	copy(zExt, z)
	for j := 0; j < h; j++ {
		idx := len(zExt)
		v := params.c +
			params.phi*at(zExt, idx-1) +
			params.sphi*at(zExt, idx-seasonalPeriod) +
			params.theta*at(e, idx-1) +
			params.stheta*at(e, idx-seasonalPeriod)
		zExt = append(zExt, v)
	}

	// invert both differences: y_t = z_t + y_{t-1} + y_{t-s} - y_{t-s-1}
	yExt := make([]float64, n, n+h)
	copy(yExt, series)
	for j := 0; j < h; j++ {
		t := n + j
		y := zExt[len(z)+j] + yExt[t-1] + yExt[t-seasonalPeriod] - yExt[t-seasonalPeriod-1]
		yExt = append(yExt, y)
	}
	return yExt[n:]
}

type seasonalParams struct {
	c, phi, sphi, theta, stheta float64
}

func fitSeasonalARMA(z []float64) seasonalParams {
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			return seasonalCSS(z, seasonalParams{p[0], p[1], p[2], p[3], p[4]})
		},
	}
	result, err := optimize.Minimize(problem, []float64{0, 0.1, 0.1, 0.1, 0.1}, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return seasonalParams{}
	}
	return seasonalParams{
		c:      result.X[0],
		phi:    clampCoef(result.X[1]),
		sphi:   clampCoef(result.X[2]),
		theta:  clampCoef(result.X[3]),
		stheta: clampCoef(result.X[4]),
	}
}

func seasonalCSS(z []float64, p seasonalParams) float64 {
	e := make([]float64, len(z))
	sum := 0.0
	for t, v := range z {
		r := v - p.c -
			p.phi*at(z, t-1) -
			p.sphi*at(z, t-seasonalPeriod) -
			p.theta*at(e, t-1) -
			p.stheta*at(e, t-seasonalPeriod)
		e[t] = r
		sum += r * r
	}
	for _, coef := range []float64{p.phi, p.sphi, p.theta, p.stheta} {
		if a := math.Abs(coef); a > 0.99 {
			sum += 1e6 * (a - 0.99) * (a - 0.99)
		}
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return math.MaxFloat64
	}
	return sum
}

func seasonalResiduals(z []float64, p seasonalParams) []float64 {
	e := make([]float64, len(z))
	for t, v := range z {
		e[t] = v - p.c -
			p.phi*at(z, t-1) -
			p.sphi*at(z, t-seasonalPeriod) -
			p.theta*at(e, t-1) -
			p.stheta*at(e, t-seasonalPeriod)
	}
	return e
}

// at treats indices before the start of the series as zero shocks.
func at(s []float64, i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}
