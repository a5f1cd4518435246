package optimize

import (
	"math"
	"sort"
	"strings"

	"github.com/decisio/retail-dss/internal/models"
)

const (
	// MarginRate is the fixed profit margin assumed per unit sold.
	MarginRate = 0.40
	// DiversifyShare caps how much of the budget any single product may
	// absorb, forcing spread across at least ~3 products when feasible.
	DiversifyShare = 0.40

	// cancelPrefix marks cancelled invoices in the retail log.
	cancelPrefix = "C"
)

// Preprocess aggregates per-product demand and price for products whose
// description contains keyword (case-insensitive). Cancelled invoices and
// non-positive quantities are excluded. Observed demand is assumed to
// span 12 months and is scaled to the requested horizon, rounded up so
// stock never falls short of the projection.
func Preprocess(rows []models.Transaction, keyword string, months int) ([]models.ProductDemand, error) {
	if len(rows) == 0 {
		return nil, &models.DataError{Reason: "no transactions in dataset"}
	}
	if months <= 0 {
		return nil, &models.DataError{Reason: "forecast horizon must be at least 1 month"}
	}

	type agg struct {
		qty      int
		priceSum float64
		rows     int
	}
	needle := strings.ToLower(keyword)
	byProduct := make(map[string]*agg)
	for _, t := range rows {
		if t.Description == "" || t.Quantity <= 0 {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(t.InvoiceID), cancelPrefix) {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		a, ok := byProduct[t.Description]
		if !ok {
			a = &agg{}
			byProduct[t.Description] = a
		}
		a.qty += t.Quantity
		a.priceSum += t.UnitPrice
		a.rows++
	}
	if len(byProduct) == 0 {
		return nil, &models.EmptyResultError{Keyword: keyword}
	}

	out := make([]models.ProductDemand, 0, len(byProduct))
	for desc, a := range byProduct {
		price := a.priceSum / float64(a.rows)
		out = append(out, models.ProductDemand{
			Description:   desc,
			Demand:        int(math.Ceil(float64(a.qty) / 12 * float64(months))),
			UnitPrice:     price,
			ProfitPerUnit: price * MarginRate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}
