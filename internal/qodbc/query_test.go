package qodbc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MMC-CONVERT2505/reckonex/internal/qodbc"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestSelectAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table string
		dates qodbc.DateRange
		want  string
	}{
		{
			name:  "no bounds omits the WHERE clause",
			table: "Account",
			want:  "SELECT * FROM Account",
		},
		{
			name:  "both bounds are inclusive",
			table: "Invoice",
			dates: qodbc.DateRange{From: date(t, "2024-01-01"), To: date(t, "2024-01-31")},
			want:  "SELECT * FROM Invoice WHERE TxnDate >= {d '2024-01-01'} AND TxnDate <= {d '2024-01-31'}",
		},
		{
			name:  "from only",
			table: "Bill",
			dates: qodbc.DateRange{From: date(t, "2024-01-01")},
			want:  "SELECT * FROM Bill WHERE TxnDate >= {d '2024-01-01'}",
		},
		{
			name:  "to only",
			table: "Bill",
			dates: qodbc.DateRange{To: date(t, "2024-06-30")},
			want:  "SELECT * FROM Bill WHERE TxnDate <= {d '2024-06-30'}",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, qodbc.SelectAll(tt.table, tt.dates))
		})
	}
}

func TestCountQuery(t *testing.T) {
	t.Parallel()

	require.Equal(t, "SELECT COUNT(*) FROM Transaction", qodbc.CountQuery("Transaction", qodbc.DateRange{}))
	require.Equal(t,
		"SELECT COUNT(*) FROM Invoice WHERE TxnDate >= {d '2024-01-01'} AND TxnDate <= {d '2024-01-31'}",
		qodbc.CountQuery("Invoice", qodbc.DateRange{From: date(t, "2024-01-01"), To: date(t, "2024-01-31")}),
	)
}

func TestDateRangeIsZero(t *testing.T) {
	t.Parallel()

	require.True(t, qodbc.DateRange{}.IsZero())
	require.False(t, qodbc.DateRange{From: date(t, "2024-01-01")}.IsZero())
}
