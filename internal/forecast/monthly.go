package forecast

import (
	"strings"
	"time"

	"github.com/decisio/retail-dss/internal/models"
)

// Preprocess filters the snapshot to rows with a valid date, positive
// quantity and price, and a description containing keyword, then buckets
// revenue into a contiguous monthly series (months without sales are
// zero-filled, as a resample would). Returns the series truncated to the
// most recent historyMonths, and the average unit price over the
// filtered set (total revenue / total quantity, 0 when no quantity).
func Preprocess(rows []models.Transaction, keyword string, historyMonths int) ([]models.ForecastPoint, float64, error) {
	if len(rows) == 0 {
		return nil, 0, &models.DataError{Reason: "no transactions in dataset"}
	}

	needle := strings.ToLower(keyword)
	totalQty := 0
	totalRevenue := 0.0
	byMonth := make(map[int]float64)
	minIdx, maxIdx := int(^uint(0)>>1), -1

	for _, t := range rows {
		if t.InvoiceDate.IsZero() || t.Quantity <= 0 || t.UnitPrice <= 0 {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		idx := monthIndex(t.InvoiceDate)
		byMonth[idx] += t.Revenue()
		totalQty += t.Quantity
		totalRevenue += t.Revenue()
		if idx < minIdx {
			minIdx = idx
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(byMonth) == 0 {
		return nil, 0, &models.EmptyResultError{Keyword: keyword}
	}

	avgPrice := 0.0
	if totalQty > 0 {
		avgPrice = totalRevenue / float64(totalQty)
	}

	series := make([]models.ForecastPoint, 0, maxIdx-minIdx+1)
	for idx := minIdx; idx <= maxIdx; idx++ {
		series = append(series, models.ForecastPoint{
			Month:   monthEndFromIndex(idx),
			Revenue: byMonth[idx],
		})
	}
	if historyMonths > 0 && len(series) > historyMonths {
		series = series[len(series)-historyMonths:]
	}
	return series, avgPrice, nil
}

// monthIndex maps a date to a linear month counter, so contiguous months
// differ by exactly 1.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func monthEndFromIndex(idx int) time.Time {
	year, month := idx/12, idx%12+1
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1)
}

// forecastMonths generates h consecutive month-end dates starting the
// month after last.
func forecastMonths(last time.Time, h int) []time.Time {
	out := make([]time.Time, h)
	idx := monthIndex(last)
	for i := 0; i < h; i++ {
		out[i] = monthEndFromIndex(idx + 1 + i)
	}
	return out
}

func revenues(points []models.ForecastPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Revenue
	}
	return out
}
