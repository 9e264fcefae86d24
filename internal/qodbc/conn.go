package qodbc

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
)

// UnknownCompany is reported when the Company table cannot be read. The
// lookup is best-effort: the company name only feeds default filenames.
const UnknownCompany = "Unknown"

// Conn is one open connection to the ODBC driver, scoped to a single job.
type Conn struct {
	db *sql.DB
}

// Open connects to the named data source. The driver name matches the
// github.com/alexbrainman/odbc registration.
func Open(ctx context.Context, dsn string) (*Conn, error) {
	db, err := sql.Open("odbc", fmt.Sprintf("DSN=%s;", dsn))
	if err != nil {
		return nil, fmt.Errorf("open DSN %q: %w", dsn, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to DSN %q: %w", dsn, err)
	}

	return NewConn(db), nil
}

// NewConn wraps an already-open database handle. Tests use this to inject a
// mock driver.
func NewConn(db *sql.DB) *Conn {
	return &Conn{db: db}
}

// Close releases the underlying connection.
func (c *Conn) Close() error {
	return c.db.Close()
}

// Ping reports whether the connection is still alive.
func (c *Conn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Company returns the connected company's name with spaces replaced by
// underscores, or UnknownCompany if the lookup fails. Failure here is
// non-fatal: the name only feeds default filenames.
func (c *Conn) Company(ctx context.Context) string {
	var name string

	err := c.db.QueryRowContext(ctx, "SELECT CompanyName FROM Company").Scan(&name)
	if err != nil || name == "" {
		zerolog.Ctx(ctx).Debug().
			Err(err).
			Msg("company name lookup failed")

		return UnknownCompany
	}

	return strings.ReplaceAll(name, " ", "_")
}

// Fetch runs one SELECT and shapes the result into a table named after the
// entity. NULL cells are left absent from the row; an empty result is a
// table with zero rows.
func (c *Conn) Fetch(ctx context.Context, name, query string) (*domain.Table, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: columns: %w", name, err)
	}

	table := &domain.Table{Name: name, Columns: columns}

	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("fetch %s: scan: %w", name, err)
		}

		row := make(domain.Row, len(columns))
		for i, cell := range cells {
			if cell.Valid {
				row[columns[i]] = cell.String
			}
		}

		table.Rows = append(table.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}

	return table, nil
}

// Count returns the number of rows in a ledger table, optionally restricted
// to a date range on TxnDate.
func (c *Conn) Count(ctx context.Context, table string, dates DateRange) (int, error) {
	var count int

	if err := c.db.QueryRowContext(ctx, CountQuery(table, dates)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	return count, nil
}

// CountByColumn returns per-value row counts grouped on the given column,
// optionally restricted to values in the filter list.
func (c *Conn) CountByColumn(ctx context.Context, table, column string, values []string) (map[string]int, error) {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s", column, table)
	if len(values) > 0 {
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		query += fmt.Sprintf(" WHERE %s IN (%s)", column, strings.Join(quoted, ","))
	}
	query += fmt.Sprintf(" GROUP BY %s", column)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count %s by %s: %w", table, column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)

	for rows.Next() {
		var (
			value sql.NullString
			count int
		)
		if err := rows.Scan(&value, &count); err != nil {
			return nil, fmt.Errorf("count %s by %s: scan: %w", table, column, err)
		}

		counts[value.String] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count %s by %s: %w", table, column, err)
	}

	return counts, nil
}
