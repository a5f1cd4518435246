package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/decisio/retail-dss/internal/models"
	"github.com/decisio/retail-dss/internal/utils"
)

// HTTPClient is the minimal surface needed to fetch a transaction feed;
// tests substitute a stub or an httptest server client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// feedRow is the JSON shape of one transaction in an HTTP feed.
type feedRow struct {
	CustomerID  string  `json:"customer_id"`
	InvoiceID   string  `json:"invoice_id"`
	InvoiceDate string  `json:"invoice_date"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// FetchFeed downloads a JSON transaction feed with retry and exponential
// backoff. Rows with unparseable dates are skipped, matching the CSV
// loader's tolerance.
func FetchFeed(c HTTPClient, url string) ([]models.Transaction, error) {
	if url == "" {
		return nil, errors.New("empty feed url")
	}

	var raw []feedRow
	retry := utils.NewBackoff(100*time.Millisecond, 150*time.Millisecond, 2)
	err := retry.Do(func(int) error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("feed non-2xx: %d body=%s", resp.StatusCode, string(b))
		}
		raw = nil
		return json.NewDecoder(resp.Body).Decode(&raw)
	})
	if err != nil {
		return nil, err
	}

	rows := make([]models.Transaction, 0, len(raw))
	for _, r := range raw {
		date, ok := parseDate(r.InvoiceDate)
		if !ok {
			continue
		}
		rows = append(rows, models.Transaction{
			CustomerID:  r.CustomerID,
			InvoiceID:   r.InvoiceID,
			InvoiceDate: date,
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
		})
	}
	if len(rows) == 0 {
		return nil, &models.DataError{Reason: "transaction feed contained no usable rows"}
	}
	return rows, nil
}
