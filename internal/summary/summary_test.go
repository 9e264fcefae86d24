package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/qodbc"
)

type stubCounter struct {
	totals   map[string]int
	inRange  map[string]int
	byType   map[string]int
	countErr map[string]error
}

func (s *stubCounter) Count(_ context.Context, table string, dates qodbc.DateRange) (int, error) {
	if err := s.countErr[table]; err != nil {
		return 0, err
	}

	if dates.IsZero() {
		return s.totals[table], nil
	}

	return s.inRange[table], nil
}

func (s *stubCounter) CountByColumn(context.Context, string, string, []string) (map[string]int, error) {
	return s.byType, nil
}

func testDates() qodbc.DateRange {
	return qodbc.DateRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("collects list and transaction counts", func(t *testing.T) {
		t.Parallel()

		counter := &stubCounter{
			totals: map[string]int{
				"Account":      42,
				"Employee":     3,
				"Class":        5,
				"Item":         90,
				"Invoice":      100,
				"JournalEntry": 20,
				"ItemReceipt":  4,
				"Transaction":  500,
			},
			inRange: map[string]int{
				"Invoice":      30,
				"JournalEntry": 6,
				"ItemReceipt":  1,
				"Transaction":  120,
			},
			byType: map[string]int{
				"Bank":       2,
				"CreditCard": 1,
			},
		}

		report, err := Build(context.Background(), counter, testDates())
		require.NoError(t, err)

		require.Equal(t, 42, report.Accounts)
		require.Equal(t, 3, report.Employees)
		require.Equal(t, 5, report.Classes)
		require.Equal(t, 90, report.Items)
		require.Equal(t, 2, report.AccountTypes[domain.AccountTypeBank])
		require.Equal(t, 0, report.AccountTypes[domain.AccountTypeAccountsPayable])
		require.Equal(t, 500, report.TotalTxns)
		require.Equal(t, 120, report.TotalTxnsInRange)

		require.Len(t, report.Transactions, 15)
		require.Equal(t, "Invoice", report.Transactions[0].Label)
		require.Equal(t, 100, report.Transactions[0].Total)
		require.Equal(t, 30, report.Transactions[0].InRange)
	})

	t.Run("journal rollup adds item receipts", func(t *testing.T) {
		t.Parallel()

		counter := &stubCounter{
			totals:  map[string]int{"JournalEntry": 20, "ItemReceipt": 4},
			inRange: map[string]int{"JournalEntry": 6, "ItemReceipt": 1},
		}

		report, err := Build(context.Background(), counter, testDates())
		require.NoError(t, err)

		total, inRange := report.TotalJournal()
		require.Equal(t, 24, total)
		require.Equal(t, 7, inRange)
	})

	t.Run("bank rollup sums the payment tables only", func(t *testing.T) {
		t.Parallel()

		counter := &stubCounter{
			totals: map[string]int{
				"Deposit":                     10,
				"Check":                       20,
				"BillPaymentCheck":            5,
				"ReceivePayment":              7,
				"CreditCardCredit":            1,
				"CreditCardCharge":            2,
				"CreditCardChargeExpenseLine": 3,
				"Transfer":                    4,
				"Invoice":                     999,
			},
			inRange: map[string]int{"Deposit": 6, "Check": 2},
		}

		report, err := Build(context.Background(), counter, testDates())
		require.NoError(t, err)

		total, inRange := report.BankLines()
		require.Equal(t, 52, total)
		require.Equal(t, 8, inRange)
	})

	t.Run("any failed count fails the run", func(t *testing.T) {
		t.Parallel()

		counter := &stubCounter{
			countErr: map[string]error{"CreditMemo": errors.New("no such table")},
		}

		_, err := Build(context.Background(), counter, testDates())
		require.ErrorContains(t, err, "no such table")
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	report := &Report{
		Dates:    testDates(),
		Accounts: 42,
		AccountTypes: map[domain.AccountType]int{
			domain.AccountTypeBank: 2,
		},
		Transactions: []TableCount{
			{Label: "Invoice", Table: "Invoice", Total: 100, InRange: 30},
			{Label: "Deposit", Table: "Deposit", Total: 10, InRange: 6, bank: true},
		},
		TotalTxns:        500,
		TotalTxnsInRange: 120,
	}

	text := report.Render()
	require.Contains(t, text, "Chart of Accounts : 42")
	require.Contains(t, text, "Bank Accounts : 2")
	require.Contains(t, text, "=== Transactions (2024-01-01 to 2024-06-30) ===")
	require.Contains(t, text, "Invoice : 100 (in range: 30)")
	require.Contains(t, text, "Bank Lines : 10 (in range: 6)")
	require.Contains(t, text, "Total Transactions : 500 (in range: 120)")
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	t.Run("requires a connection source", func(t *testing.T) {
		t.Parallel()

		err := Options{}.Validate(context.Background())
		require.ErrorContains(t, err, "connection source name is required")
	})

	t.Run("rejects a reversed range", func(t *testing.T) {
		t.Parallel()

		opts := Options{
			DSN: "QuickBooks Data",
			Dates: qodbc.DateRange{
				From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		}

		require.ErrorContains(t, opts.Validate(context.Background()), "to date must not precede from date")
	})

	t.Run("accepts an open-ended range", func(t *testing.T) {
		t.Parallel()

		opts := Options{
			DSN:   "QuickBooks Data",
			Dates: qodbc.DateRange{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		}

		require.NoError(t, opts.Validate(context.Background()))
	})
}
