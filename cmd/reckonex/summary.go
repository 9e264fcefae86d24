package reckonex

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MMC-CONVERT2505/reckonex/internal/qodbc"
	"github.com/MMC-CONVERT2505/reckonex/internal/summary"
)

var summaryFlags exportFlags

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print migration summary counts per ledger table",
	Long:  "Count the records in each ledger table, in total and inside the given transaction date range, and print a migration summary.",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFlags.DSN, "dsn", defaultDSN, "ODBC data source name")
	summaryCmd.Flags().StringVar(&summaryFlags.FromStr, "from", "", "Start of the transaction date range (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&summaryFlags.ToStr, "to", "", "End of the transaction date range (YYYY-MM-DD)")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dates, err := parseDateRange(summaryFlags.FromStr, summaryFlags.ToStr)
	if err != nil {
		return err
	}

	opts := summary.Options{DSN: summaryFlags.DSN, Dates: dates}
	if err := opts.Validate(ctx); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	conn, err := qodbc.Open(ctx, opts.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	report, err := summary.Build(ctx, conn, opts.Dates)
	if err != nil {
		return err
	}

	cmd.Print(report.Render())

	return nil
}
