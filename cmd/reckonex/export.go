package reckonex

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MMC-CONVERT2505/reckonex/internal/export"
	"github.com/MMC-CONVERT2505/reckonex/internal/qodbc"
)

const (
	dateFormat = "2006-01-02"
	defaultDSN = "QuickBooks Data"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger tables to a spreadsheet",
	Long:  "Export ledger tables from the accounting application's ODBC driver into a spreadsheet workbook, optionally restricted to a transaction date range.",
}

type exportFlags struct {
	DSN     string
	FromStr string
	ToStr   string
	Out     string
}

func addExportFlags(cmd *cobra.Command, opts *exportFlags) {
	cmd.Flags().StringVar(&opts.DSN, "dsn", defaultDSN, "ODBC data source name")
	cmd.Flags().StringVar(&opts.FromStr, "from", "", "Start of the transaction date range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.ToStr, "to", "", "End of the transaction date range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output path (default {company}_{entity}.xlsx)")
}

func newExportCommand(entity export.Entity) *cobra.Command {
	opts := &exportFlags{}

	cmd := &cobra.Command{
		Use:   strings.ToLower(entity.Kind),
		Short: "Export " + entity.Kind,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts, entity.Kind)
		},
	}

	addExportFlags(cmd, opts)

	return cmd
}

func newExportAllCommand() *cobra.Command {
	opts := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Export the full entity set, one sheet per entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts, "")
		},
	}

	addExportFlags(cmd, opts)

	return cmd
}

func runExport(cmd *cobra.Command, opts *exportFlags, kind string) error {
	dates, err := parseDateRange(opts.FromStr, opts.ToStr)
	if err != nil {
		return err
	}

	exporter := export.New(export.OpenODBC)
	exportOpts := export.Options{
		DSN:     opts.DSN,
		Dates:   dates,
		OutPath: opts.Out,
	}

	var path string
	if kind == "" {
		path, err = exporter.All(cmd.Context(), exportOpts)
	} else {
		path, err = exporter.One(cmd.Context(), kind, exportOpts)
	}
	if err != nil {
		return err
	}

	cmd.Println(path)

	return nil
}

func parseDateRange(fromStr, toStr string) (qodbc.DateRange, error) {
	var dates qodbc.DateRange

	if fromStr != "" {
		from, err := time.Parse(dateFormat, fromStr)
		if err != nil {
			return qodbc.DateRange{}, fmt.Errorf("invalid from date: %w", err)
		}
		dates.From = from
	}

	if toStr != "" {
		to, err := time.Parse(dateFormat, toStr)
		if err != nil {
			return qodbc.DateRange{}, fmt.Errorf("invalid to date: %w", err)
		}
		dates.To = to
	}

	return dates, nil
}
