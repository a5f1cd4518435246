package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/decisio/retail-dss/internal/models"
)

// requiredColumns is the union of columns the three engines validate.
var requiredColumns = []string{
	"customer_id", "invoice_id", "invoice_date", "description", "quantity", "unit_price",
}

// headerAliases maps normalized header spellings to canonical column
// names, so both snake_case exports and the classic retail CSV headers
// (InvoiceNo, UnitPrice, ...) load without renaming.
var headerAliases = map[string]string{
	"customerid":  "customer_id",
	"invoiceid":   "invoice_id",
	"invoiceno":   "invoice_id",
	"invoicedate": "invoice_date",
	"description": "description",
	"quantity":    "quantity",
	"unitprice":   "unit_price",
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"1/2/2006 15:04",
	"01/02/2006 15:04",
	"1/2/2006",
}

// ParseCSV reads a header-mapped transaction table. Rows with an
// unparseable date, quantity or price are skipped and counted rather
// than failing the whole upload; missing required columns or a dataset
// with no usable rows fail with a DataError.
func ParseCSV(r io.Reader) ([]models.Transaction, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, &models.DataError{Reason: "cannot read CSV header: " + err.Error()}
	}
	cols := make(map[string]int)
	for i, h := range header {
		norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), "_", "")
		if name, ok := headerAliases[norm]; ok {
			cols[name] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, 0, &models.DataError{Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}

	var rows []models.Transaction
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		t, ok := parseRow(rec, cols)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, t)
	}
	if len(rows) == 0 {
		return nil, skipped, &models.DataError{Reason: "no parseable transaction rows in CSV"}
	}
	return rows, skipped, nil
}

func parseRow(rec []string, cols map[string]int) (models.Transaction, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, ok := parseDate(field("invoice_date"))
	if !ok {
		return models.Transaction{}, false
	}
	qty, err := parseQuantity(field("quantity"))
	if err != nil {
		return models.Transaction{}, false
	}
	price, err := strconv.ParseFloat(field("unit_price"), 64)
	if err != nil {
		return models.Transaction{}, false
	}

	return models.Transaction{
		CustomerID:  field("customer_id"),
		InvoiceID:   field("invoice_id"),
		InvoiceDate: date,
		Description: field("description"),
		Quantity:    qty,
		UnitPrice:   price,
	}, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseQuantity tolerates exports that write integer quantities with a
// decimal point (e.g. "6.0").
func parseQuantity(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integer quantity %q", s)
	}
	return int(f), nil
}
