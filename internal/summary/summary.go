// Package summary produces migration readiness counts: how many records
// each ledger table holds in total and inside a chosen date range.
package summary

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/qodbc"
)

// Counter answers row-count queries against the ledger source. *qodbc.Conn
// satisfies it.
type Counter interface {
	Count(ctx context.Context, table string, dates qodbc.DateRange) (int, error)
	CountByColumn(ctx context.Context, table, column string, values []string) (map[string]int, error)
}

var _ Counter = (*qodbc.Conn)(nil)

// Options describes one summary run.
type Options struct {
	DSN   string
	Dates qodbc.DateRange
}

func (o Options) Validate(ctx context.Context) error {
	return validation.ValidateStructWithContext(ctx, &o,
		validation.Field(&o.DSN, validation.Required.Error("connection source name is required")),
		validation.Field(&o.Dates, validation.By(func(any) error {
			if !o.Dates.From.IsZero() && !o.Dates.To.IsZero() && o.Dates.To.Before(o.Dates.From) {
				return validation.NewError("validation_invalid_date_range", "to date must not precede from date")
			}

			return nil
		})),
	)
}

// TableCount is one transaction table's totals.
type TableCount struct {
	Label   string
	Table   string
	Total   int
	InRange int

	bank bool // contributes to the bank-lines rollup
}

// transactionTables fixes the reported tables and their order. Check,
// deposit, payment and credit-card tables roll up into the bank-lines total.
var transactionTables = []TableCount{
	{Label: "Invoice", Table: "Invoice"},
	{Label: "Bill", Table: "Bill"},
	{Label: "Credit Memo", Table: "CreditMemo"},
	{Label: "Sales Receipt", Table: "SalesReceipt"},
	{Label: "Journal Entry", Table: "JournalEntry"},
	{Label: "Item Receipt", Table: "ItemReceipt"},
	{Label: "Bill Credit", Table: "VendorCredit"},
	{Label: "Deposit", Table: "Deposit", bank: true},
	{Label: "Cheque", Table: "Check", bank: true},
	{Label: "Bill Payment", Table: "BillPaymentCheck", bank: true},
	{Label: "Receive Payment", Table: "ReceivePayment", bank: true},
	{Label: "Credit Card Credit", Table: "CreditCardCredit", bank: true},
	{Label: "Credit Card Charge", Table: "CreditCardCharge", bank: true},
	{Label: "Credit Card Charge Expense Line", Table: "CreditCardChargeExpenseLine", bank: true},
	{Label: "Transfer", Table: "Transfer", bank: true},
}

// accountTypes is the breakdown reported under the chart-of-accounts count.
var accountTypes = []domain.AccountType{
	domain.AccountTypeBank,
	domain.AccountTypeCreditCard,
	domain.AccountTypeAccountsPayable,
	domain.AccountTypeAccountsReceivable,
}

// Report holds every count for one run.
type Report struct {
	Dates qodbc.DateRange

	Accounts  int
	Employees int
	Classes   int
	Items     int

	AccountTypes map[domain.AccountType]int

	Transactions []TableCount

	TotalTxns        int
	TotalTxnsInRange int
}

// Build runs every count over one connection. Any failed count fails the
// run: partial summaries are worse than none for sizing a migration.
func Build(ctx context.Context, counter Counter, dates qodbc.DateRange) (*Report, error) {
	report := &Report{
		Dates:        dates,
		AccountTypes: make(map[domain.AccountType]int, len(accountTypes)),
	}

	var err error

	if report.Accounts, err = counter.Count(ctx, "Account", qodbc.DateRange{}); err != nil {
		return nil, err
	}

	typeNames := lo.Map(accountTypes, func(t domain.AccountType, _ int) string {
		return string(t)
	})

	byType, err := counter.CountByColumn(ctx, "Account", "AccountType", typeNames)
	if err != nil {
		return nil, err
	}
	for _, t := range accountTypes {
		report.AccountTypes[t] = byType[string(t)]
	}

	if report.Employees, err = counter.Count(ctx, "Employee", qodbc.DateRange{}); err != nil {
		return nil, err
	}

	if report.Classes, err = counter.Count(ctx, "Class", qodbc.DateRange{}); err != nil {
		return nil, err
	}

	if report.Items, err = counter.Count(ctx, "Item", qodbc.DateRange{}); err != nil {
		return nil, err
	}

	for _, entry := range transactionTables {
		tc := entry

		if tc.Total, err = counter.Count(ctx, tc.Table, qodbc.DateRange{}); err != nil {
			return nil, err
		}

		if tc.InRange, err = counter.Count(ctx, tc.Table, dates); err != nil {
			return nil, err
		}

		zerolog.Ctx(ctx).Debug().
			Str("summary.table", tc.Table).
			Int("row.total", tc.Total).
			Int("row.in_range", tc.InRange).
			Msg("counted table")

		report.Transactions = append(report.Transactions, tc)
	}

	if report.TotalTxns, err = counter.Count(ctx, "Transaction", qodbc.DateRange{}); err != nil {
		return nil, err
	}

	if report.TotalTxnsInRange, err = counter.Count(ctx, "Transaction", dates); err != nil {
		return nil, err
	}

	return report, nil
}

// TotalJournal is the journal-entry and item-receipt rollup.
func (r *Report) TotalJournal() (total, inRange int) {
	for _, tc := range r.Transactions {
		if tc.Table == "JournalEntry" || tc.Table == "ItemReceipt" {
			total += tc.Total
			inRange += tc.InRange
		}
	}

	return total, inRange
}

// BankLines is the rollup of the check, deposit, payment and credit-card
// tables.
func (r *Report) BankLines() (total, inRange int) {
	bank := lo.Filter(r.Transactions, func(tc TableCount, _ int) bool {
		return tc.bank
	})

	return lo.SumBy(bank, func(tc TableCount) int { return tc.Total }),
		lo.SumBy(bank, func(tc TableCount) int { return tc.InRange })
}

// Render formats the report as the plain-text summary shown to the user.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Lists ===\n")
	fmt.Fprintf(&b, "Chart of Accounts : %d\n", r.Accounts)
	fmt.Fprintf(&b, "  Bank Accounts : %d\n", r.AccountTypes[domain.AccountTypeBank])
	fmt.Fprintf(&b, "  Credit Card Accounts : %d\n", r.AccountTypes[domain.AccountTypeCreditCard])
	fmt.Fprintf(&b, "  Accounts Payable : %d\n", r.AccountTypes[domain.AccountTypeAccountsPayable])
	fmt.Fprintf(&b, "  Accounts Receivable : %d\n", r.AccountTypes[domain.AccountTypeAccountsReceivable])
	fmt.Fprintf(&b, "Employee : %d\n", r.Employees)
	fmt.Fprintf(&b, "Class : %d\n", r.Classes)
	fmt.Fprintf(&b, "Item : %d\n", r.Items)

	fmt.Fprintf(&b, "\n=== Transactions (%s) ===\n", r.rangeLabel())
	for _, tc := range r.Transactions {
		fmt.Fprintf(&b, "%s : %d (in range: %d)\n", tc.Label, tc.Total, tc.InRange)
	}

	journal, journalInRange := r.TotalJournal()
	fmt.Fprintf(&b, "Total Journal : %d (in range: %d)\n", journal, journalInRange)

	bank, bankInRange := r.BankLines()
	fmt.Fprintf(&b, "Bank Lines : %d (in range: %d)\n", bank, bankInRange)

	fmt.Fprintf(&b, "\nTotal Transactions : %d (in range: %d)\n", r.TotalTxns, r.TotalTxnsInRange)

	return b.String()
}

func (r *Report) rangeLabel() string {
	if r.Dates.IsZero() {
		return "no date filter"
	}

	const layout = "2006-01-02"

	from, to := "open", "open"
	if !r.Dates.From.IsZero() {
		from = r.Dates.From.Format(layout)
	}
	if !r.Dates.To.IsZero() {
		to = r.Dates.To.Format(layout)
	}

	return from + " to " + to
}
