package forecast

import (
	"github.com/decisio/retail-dss/internal/models"
)

// Model is one forecasting tier. Tiers form a closed set attempted in a
// fixed order of increasing complexity; string dispatch is deliberately
// avoided.
type Model int

const (
	// ModelARIMA is a non-seasonal autoregressive integrated
	// moving-average model with one AR term, one difference and one MA
	// term.
	ModelARIMA Model = iota
	// ModelSARIMA adds seasonal AR/MA terms and seasonal differencing
	// with a 12-month period.
	ModelSARIMA
	// ModelAdditive is a general additive model: linear trend plus
	// month-of-year seasonal indices.
	ModelAdditive
)

func (m Model) String() string {
	switch m {
	case ModelARIMA:
		return "ARIMA"
	case ModelSARIMA:
		return "SARIMA"
	case ModelAdditive:
		return "ADDITIVE"
	}
	return "UNKNOWN"
}

// tiers is the escalation order.
var tiers = []Model{ModelARIMA, ModelSARIMA, ModelAdditive}

// forecastWith fits tier m on hist and forecasts h months ahead.
func forecastWith(m Model, hist []models.ForecastPoint, h int) ([]float64, error) {
	switch m {
	case ModelARIMA:
		return arimaForecast(revenues(hist), h), nil
	case ModelSARIMA:
		return sarimaForecast(revenues(hist), h), nil
	case ModelAdditive:
		return additiveForecast(hist, h), nil
	}
	return nil, &models.UnknownModelError{Model: m.String()}
}

// repeatLast degrades gracefully when a series is too short to fit a
// model: the last observed value is carried forward.
func repeatLast(series []float64, h int) []float64 {
	last := 0.0
	if len(series) > 0 {
		last = series[len(series)-1]
	}
	out := make([]float64, h)
	for i := range out {
		out[i] = last
	}
	return out
}
