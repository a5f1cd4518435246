package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/decisio/retail-dss/internal/models"
)

var tableNameRE = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// OpenMySQL opens a connection pool for the transaction table. DSNs in
// mysql:// or mariadb:// URL form are normalized to the driver format.
func OpenMySQL(dsn string) (*sql.DB, error) {
	normalized, err := toDriverDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func toDriverDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mysql://") && !strings.HasPrefix(dsn, "mariadb://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	user, pass := "", ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || dbName == "" {
		return "", fmt.Errorf("incomplete dsn: need user, host and database")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC", user, pass, u.Host, dbName), nil
}

// LoadMySQL reads the whole transaction table into memory as the
// session snapshot. Rows with NULL dates are skipped.
func LoadMySQL(ctx context.Context, db *sql.DB, table string) ([]models.Transaction, error) {
	if !tableNameRE.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	q := fmt.Sprintf(`SELECT customer_id, invoice_id, invoice_date, description, quantity, unit_price FROM %s`, table)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			t     models.Transaction
			date  sql.NullTime
			qty   sql.NullInt64
			price sql.NullFloat64
		)
		if err := rows.Scan(&t.CustomerID, &t.InvoiceID, &date, &t.Description, &qty, &price); err != nil {
			return nil, err
		}
		if !date.Valid {
			continue
		}
		t.InvoiceDate = date.Time
		t.Quantity = int(qty.Int64)
		t.UnitPrice = price.Float64
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &models.DataError{Reason: "transaction table " + table + " is empty"}
	}
	return out, nil
}
