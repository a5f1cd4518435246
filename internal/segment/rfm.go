package segment

import (
	"math"
	"sort"
	"time"

	"github.com/decisio/retail-dss/internal/models"
)

// BuildRFM extracts per-customer Recency/Frequency/Monetary features from
// the raw transaction snapshot. The reference date is the latest valid
// invoice date plus one day, so the most recent buyer has recency 1.
func BuildRFM(rows []models.Transaction) ([]models.RFMRecord, error) {
	if len(rows) == 0 {
		return nil, &models.DataError{Reason: "no transactions in dataset"}
	}

	type agg struct {
		last     time.Time
		invoices map[string]struct{}
		monetary float64
	}

	var refMax time.Time
	byCustomer := make(map[string]*agg)
	for _, t := range rows {
		if t.CustomerID == "" || t.InvoiceDate.IsZero() || t.Quantity <= 0 {
			continue
		}
		if t.InvoiceDate.After(refMax) {
			refMax = t.InvoiceDate
		}
		a, ok := byCustomer[t.CustomerID]
		if !ok {
			a = &agg{invoices: make(map[string]struct{})}
			byCustomer[t.CustomerID] = a
		}
		if t.InvoiceDate.After(a.last) {
			a.last = t.InvoiceDate
		}
		a.invoices[t.InvoiceID] = struct{}{}
		a.monetary += t.Revenue()
	}
	if len(byCustomer) == 0 {
		return nil, &models.DataError{Reason: "no valid rows after filtering (need customer id, parseable date, positive quantity)"}
	}

	refDate := refMax.AddDate(0, 0, 1)
	out := make([]models.RFMRecord, 0, len(byCustomer))
	for id, a := range byCustomer {
		freq := len(a.invoices)
		if freq <= 0 || a.monetary <= 0 {
			continue
		}
		out = append(out, models.RFMRecord{
			CustomerID:   id,
			LastPurchase: a.last,
			RecencyDays:  int(refDate.Sub(a.last).Hours() / 24),
			Frequency:    freq,
			Monetary:     a.monetary,
			AvgSpend:     round2(a.monetary / float64(freq)),
		})
	}
	if len(out) == 0 {
		return nil, &models.DataError{Reason: "no customers with positive frequency and monetary value"}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round1(f float64) float64 { return math.Round(f*10) / 10 }
