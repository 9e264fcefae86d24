// Package qodbc speaks the SQL-like protocol of the accounting
// application's ODBC driver: plain SELECT statements against named ledger
// tables, with optional inclusive date-range predicates.
package qodbc

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is a caller-supplied calendar-date filter. A zero From or To
// means that side of the range is unbounded and its predicate is omitted.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Clause renders the WHERE clause for the given date field using the
// driver's {d 'YYYY-MM-DD'} literal form, inclusive on both ends. It returns
// an empty string when no bound is set.
func (r DateRange) Clause(field string) string {
	var predicates []string

	if !r.From.IsZero() {
		predicates = append(predicates, fmt.Sprintf("%s >= {d '%s'}", field, r.From.Format(dateLayout)))
	}

	if !r.To.IsZero() {
		predicates = append(predicates, fmt.Sprintf("%s <= {d '%s'}", field, r.To.Format(dateLayout)))
	}

	if len(predicates) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(predicates, " AND ")
}

// SelectAll builds the query for one ledger table, filtered on TxnDate when
// a bound is set.
func SelectAll(table string, dates DateRange) string {
	return "SELECT * FROM " + table + dates.Clause("TxnDate")
}

// CountQuery builds the row-count query for one ledger table.
func CountQuery(table string, dates DateRange) string {
	return "SELECT COUNT(*) FROM " + table + dates.Clause("TxnDate")
}
