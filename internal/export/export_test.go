package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/qodbc"
)

type stubSource struct {
	company string
	tables  map[string]*domain.Table
	fetchEr map[string]error
	pingErr error

	queries map[string]string
	closed  bool
}

func (s *stubSource) Company(context.Context) string { return s.company }

func (s *stubSource) Fetch(_ context.Context, name, query string) (*domain.Table, error) {
	if s.queries == nil {
		s.queries = make(map[string]string)
	}
	s.queries[name] = query

	if err := s.fetchEr[name]; err != nil {
		return nil, err
	}

	if t, ok := s.tables[name]; ok {
		return t, nil
	}

	return &domain.Table{Name: name}, nil
}

func (s *stubSource) Ping(context.Context) error { return s.pingErr }

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

type capturedWrite struct {
	path   string
	tables []*domain.Table
}

func captureWriter(got *capturedWrite) WriteFunc {
	return func(path string, tables []*domain.Table) error {
		got.path = path
		got.tables = tables
		return nil
	}
}

func TestExporterOne(t *testing.T) {
	t.Parallel()

	t.Run("exports one entity to a derived path", func(t *testing.T) {
		t.Parallel()

		src := &stubSource{
			company: "Acme_Pty_Ltd",
			tables: map[string]*domain.Table{
				"Customers": {
					Name:    "Customers",
					Columns: []string{"Name"},
					Rows:    []domain.Row{{"Name": "Jo"}},
				},
			},
		}

		var got capturedWrite
		exporter := New(openStub(src), WithWriter(captureWriter(&got)))

		path, err := exporter.One(context.Background(), "customers", Options{DSN: "QuickBooks Data"})
		require.NoError(t, err)
		require.Equal(t, "Acme_Pty_Ltd_Customers.xlsx", path)
		require.Equal(t, path, got.path)
		require.Len(t, got.tables, 1)
		require.Equal(t, "Customers", got.tables[0].Name)
		require.True(t, src.closed)
	})

	t.Run("explicit out path wins over the derived name", func(t *testing.T) {
		t.Parallel()

		src := &stubSource{company: "Acme"}

		var got capturedWrite
		exporter := New(openStub(src), WithWriter(captureWriter(&got)))

		path, err := exporter.One(context.Background(), "Invoice", Options{
			DSN:     "QuickBooks Data",
			OutPath: "out/invoices.xlsx",
		})
		require.NoError(t, err)
		require.Equal(t, "out/invoices.xlsx", path)
	})

	t.Run("blank connection source fails before opening anything", func(t *testing.T) {
		t.Parallel()

		exporter := New(func(context.Context, string) (Source, error) {
			t.Fatal("open must not be called for invalid options")
			return nil, nil
		})

		_, err := exporter.One(context.Background(), "Invoice", Options{})
		require.ErrorContains(t, err, "connection source name is required")
	})

	t.Run("rejects a reversed date range", func(t *testing.T) {
		t.Parallel()

		exporter := New(func(context.Context, string) (Source, error) {
			t.Fatal("open must not be called for invalid options")
			return nil, nil
		})

		_, err := exporter.One(context.Background(), "Invoice", Options{
			DSN: "QuickBooks Data",
			Dates: qodbc.DateRange{
				From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		})
		require.ErrorContains(t, err, "to date must not precede from date")
	})

	t.Run("unknown entity is an error", func(t *testing.T) {
		t.Parallel()

		exporter := New(openStub(&stubSource{}))

		_, err := exporter.One(context.Background(), "Payroll", Options{DSN: "QuickBooks Data"})
		require.ErrorContains(t, err, `unknown entity "Payroll"`)
	})

	t.Run("date range is dropped for list entities", func(t *testing.T) {
		t.Parallel()

		src := &stubSource{company: "Acme"}
		exporter := New(openStub(src), WithWriter(captureWriter(&capturedWrite{})))

		dates := qodbc.DateRange{
			From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		}

		_, err := exporter.One(context.Background(), "ChartOfAccounts", Options{DSN: "QuickBooks Data", Dates: dates})
		require.NoError(t, err)
		require.NotContains(t, src.queries["ChartOfAccounts"], "WHERE")

		_, err = exporter.One(context.Background(), "Invoice", Options{DSN: "QuickBooks Data", Dates: dates})
		require.NoError(t, err)
		require.Contains(t, src.queries["Invoice"], "TxnDate >= {d '2024-01-01'}")
	})

	t.Run("fetch failure closes the source", func(t *testing.T) {
		t.Parallel()

		src := &stubSource{
			company: "Acme",
			fetchEr: map[string]error{"Invoice": errors.New("table gone")},
		}
		exporter := New(openStub(src))

		_, err := exporter.One(context.Background(), "Invoice", Options{DSN: "QuickBooks Data"})
		require.ErrorContains(t, err, "table gone")
		require.True(t, src.closed)
	})
}

func TestExporterAll(t *testing.T) {
	t.Parallel()

	t.Run("writes one sheet per entity in registry order", func(t *testing.T) {
		t.Parallel()

		src := &stubSource{company: "Acme"}

		var got capturedWrite
		exporter := New(openStub(src), WithWriter(captureWriter(&got)))

		path, err := exporter.All(context.Background(), Options{DSN: "QuickBooks Data"})
		require.NoError(t, err)
		require.Equal(t, "Acme_AllData.xlsx", path)

		want := AllData()
		require.Len(t, got.tables, len(want))
		for i, entity := range want {
			require.Equal(t, entity.Kind, got.tables[i].Name)
		}
	})

	t.Run("single fetch failure yields an empty sheet", func(t *testing.T) {
		t.Parallel()

		src := &stubSource{
			company: "Acme",
			fetchEr: map[string]error{"Class": errors.New("no such table")},
			tables: map[string]*domain.Table{
				"Item": {
					Name:    "Item",
					Columns: []string{"Name"},
					Rows:    []domain.Row{{"Name": "Widget"}},
				},
			},
		}

		var got capturedWrite
		exporter := New(openStub(src), WithWriter(captureWriter(&got)))

		_, err := exporter.All(context.Background(), Options{DSN: "QuickBooks Data"})
		require.NoError(t, err)

		byName := make(map[string]*domain.Table, len(got.tables))
		for _, table := range got.tables {
			byName[table.Name] = table
		}

		require.True(t, byName["Class"].Empty())
		require.Len(t, byName["Item"].Rows, 1)
	})

	t.Run("dead connection fails the whole batch", func(t *testing.T) {
		t.Parallel()

		src := &stubSource{
			company: "Acme",
			fetchEr: map[string]error{"Class": errors.New("connection reset")},
			pingErr: errors.New("driver closed"),
		}

		exporter := New(openStub(src), WithWriter(func(string, []*domain.Table) error {
			t.Fatal("write must not be called when the batch fails")
			return nil
		}))

		_, err := exporter.All(context.Background(), Options{DSN: "QuickBooks Data"})
		require.ErrorContains(t, err, "connection lost fetching Class")
		require.True(t, src.closed)
	})

	t.Run("blank connection source fails before opening anything", func(t *testing.T) {
		t.Parallel()

		exporter := New(func(context.Context, string) (Source, error) {
			t.Fatal("open must not be called for invalid options")
			return nil, nil
		})

		_, err := exporter.All(context.Background(), Options{})
		require.ErrorContains(t, err, "connection source name is required")
	})
}

func TestEntityRegistry(t *testing.T) {
	t.Parallel()

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()

		entity, ok := Lookup("chartofaccounts")
		require.True(t, ok)
		require.Equal(t, "Account", entity.Table)
	})

	t.Run("all-data set keeps registry order", func(t *testing.T) {
		t.Parallel()

		var prev int = -1
		for _, entity := range AllData() {
			idx := indexOf(t, entity.Kind)
			require.Greater(t, idx, prev)
			prev = idx
		}
	})

	t.Run("list entities are never date filtered", func(t *testing.T) {
		t.Parallel()

		for _, kind := range []string{"ChartOfAccounts", "Class", "Item", "Customers", "Suppliers"} {
			entity, ok := Lookup(kind)
			require.True(t, ok)
			require.False(t, entity.DateFiltered, kind)
		}
	})
}

func TestSDKTables(t *testing.T) {
	t.Parallel()

	t.Run("accounts table leaves missing numbers NULL", func(t *testing.T) {
		t.Parallel()

		table := AccountsTable([]*domain.Account{
			{ListID: "80-1", Name: "Cheque", Type: domain.AccountTypeBank, Number: "1000"},
			{ListID: "80-2", Name: "Consulting", Type: "Income"},
		})

		require.Equal(t, []string{"Name", "AccountType", "AccountNumber", "ListID"}, table.Columns)

		number, ok := table.Cell(0, "AccountNumber")
		require.True(t, ok)
		require.Equal(t, "1000", number)

		_, ok = table.Cell(1, "AccountNumber")
		require.False(t, ok)
	})

	t.Run("invoices table carries the transaction fields", func(t *testing.T) {
		t.Parallel()

		table := InvoicesTable([]*domain.Invoice{
			{
				TxnID:            "1A2B-100",
				RefNumber:        "INV-42",
				CustomerName:     "Jo Bloggs",
				TxnDate:          "2024-03-01",
				BalanceRemaining: "150.00",
			},
		})

		require.Equal(t, []string{"TxnID", "RefNumber", "Customer", "TxnDate", "BalanceRemaining"}, table.Columns)

		customer, ok := table.Cell(0, "Customer")
		require.True(t, ok)
		require.Equal(t, "Jo Bloggs", customer)
	})
}

func openStub(src *stubSource) OpenFunc {
	return func(context.Context, string) (Source, error) {
		return src, nil
	}
}

func indexOf(t *testing.T, kind string) int {
	t.Helper()

	for i, entity := range All() {
		if entity.Kind == kind {
			return i
		}
	}

	t.Fatalf("entity %s not registered", kind)
	return -1
}
