// Package export drives one export job: open a connection to the ledger
// source, fetch the selected entity tables, and write a spreadsheet
// workbook.
package export

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/qodbc"
	"github.com/MMC-CONVERT2505/reckonex/internal/workbook"
)

// Source is one open connection to the ledger source for the duration of a
// job. *qodbc.Conn satisfies it.
type Source interface {
	Company(ctx context.Context) string
	Fetch(ctx context.Context, name, query string) (*domain.Table, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ Source = (*qodbc.Conn)(nil)

// OpenFunc opens a Source for the named connection source.
type OpenFunc func(ctx context.Context, dsn string) (Source, error)

// OpenODBC is the production OpenFunc.
func OpenODBC(ctx context.Context, dsn string) (Source, error) {
	return qodbc.Open(ctx, dsn)
}

// WriteFunc persists tables to a workbook at path.
type WriteFunc func(path string, tables []*domain.Table) error

// Options describes one export job.
type Options struct {
	DSN     string
	Dates   qodbc.DateRange
	OutPath string // empty derives {company}_{kind}.xlsx
}

// Validate rejects user-input errors before any connection is opened. A
// blank connection source is the caller's mistake, not a system fault.
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

type Exporter struct {
	open  OpenFunc
	write WriteFunc
}

type Option func(*Exporter)

// WithWriter replaces the workbook writer, for tests.
func WithWriter(write WriteFunc) Option {
	return func(e *Exporter) {
		e.write = write
	}
}

func New(open OpenFunc, opts ...Option) *Exporter {
	e := &Exporter{
		open:  open,
		write: workbook.Write,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		opt(e)
	}

	return e
}

// One exports a single entity to its own workbook and returns the written
// path.
func (e *Exporter) One(ctx context.Context, kind string, opts Options) (string, error) {
	if err := opts.Validate(ctx); err != nil {
		return "", fmt.Errorf("invalid options: %w", err)
	}

	entity, ok := Lookup(kind)
	if !ok {
		return "", fmt.Errorf("unknown entity %q", kind)
	}

	ctx = jobLogger(ctx, entity.Kind)

	src, err := e.open(ctx, opts.DSN)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer src.Close()

	path := opts.OutPath
	if path == "" {
		path = fmt.Sprintf("%s_%s.xlsx", src.Company(ctx), entity.Kind)
	}

	table, err := e.fetch(ctx, src, entity, opts.Dates)
	if err != nil {
		return "", err
	}

	if err := e.write(path, []*domain.Table{table}); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("export.path", path).
		Int("row.total", len(table.Rows)).
		Msg("export complete")

	return path, nil
}

// All exports the full entity set over one shared connection, one sheet per
// entity. A single entity's fetch failure yields an empty sheet and the
// batch continues, unless the connection itself has died, which fails the
// whole batch.
func (e *Exporter) All(ctx context.Context, opts Options) (string, error) {
	if err := opts.Validate(ctx); err != nil {
		return "", fmt.Errorf("invalid options: %w", err)
	}

	ctx = jobLogger(ctx, "AllData")

	src, err := e.open(ctx, opts.DSN)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer src.Close()

	path := opts.OutPath
	if path == "" {
		path = fmt.Sprintf("%s_AllData.xlsx", src.Company(ctx))
	}

	var tables []*domain.Table

	for _, entity := range AllData() {
		table, err := e.fetch(ctx, src, entity, opts.Dates)
		if err != nil {
			if pingErr := src.Ping(ctx); pingErr != nil {
				return "", fmt.Errorf("connection lost fetching %s: %w", entity.Kind, err)
			}

			zerolog.Ctx(ctx).Error().
				Err(err).
				Str("export.entity", entity.Kind).
				Msg("entity fetch failed, writing empty sheet")

			table = &domain.Table{Name: entity.Kind}
		}

		tables = append(tables, table)
	}

	if err := e.write(path, tables); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("export.path", path).
		Int("sheet.total", len(tables)).
		Msg("export complete")

	return path, nil
}

func (e *Exporter) fetch(ctx context.Context, src Source, entity Entity, dates qodbc.DateRange) (*domain.Table, error) {
	if !entity.DateFiltered {
		dates = qodbc.DateRange{}
	}

	table, err := src.Fetch(ctx, entity.Kind, qodbc.SelectAll(entity.Table, dates))
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("export.entity", entity.Kind).
		Int("row.total", len(table.Rows)).
		Msg("fetched entity")

	return table, nil
}

func jobLogger(ctx context.Context, kind string) context.Context {
	logger := zerolog.Ctx(ctx).With().
		Str("job.id", uuid.NewString()).
		Str("export.kind", kind).
		Logger()

	return logger.WithContext(ctx)
}
