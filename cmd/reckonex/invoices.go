package reckonex

import (
	"github.com/spf13/cobra"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/export"
	"github.com/MMC-CONVERT2505/reckonex/internal/qbxml"
	"github.com/MMC-CONVERT2505/reckonex/internal/workbook"
)

var invoicesFlags struct {
	AppName string
	Max     int
	Out     string
}

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Fetch recent invoices over an SDK session",
	Args:  cobra.NoArgs,
	RunE:  runInvoices,
}

func init() {
	invoicesCmd.Flags().StringVar(&invoicesFlags.AppName, "app-name", qbxml.DefaultAppName, "Application name shown in the company file's integrated applications list")
	invoicesCmd.Flags().IntVar(&invoicesFlags.Max, "max", 20, "Maximum number of invoices to fetch")
	invoicesCmd.Flags().StringVar(&invoicesFlags.Out, "out", "", "Write the invoices to a workbook at this path")
}

func runInvoices(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rp, err := qbxml.NewRequestProcessor()
	if err != nil {
		return err
	}

	session, err := qbxml.NewSession(ctx, rp, invoicesFlags.AppName)
	if err != nil {
		return err
	}
	defer session.Close()

	invoices, err := session.Invoices(ctx, invoicesFlags.Max)
	if err != nil {
		return err
	}

	cmd.Printf("%d invoices\n", len(invoices))
	for _, invoice := range invoices {
		cmd.Printf("  %s %s %s %s\n", invoice.RefNumber, invoice.TxnDate, invoice.CustomerName, invoice.BalanceRemaining)
	}

	if invoicesFlags.Out == "" {
		return nil
	}

	return workbook.Write(invoicesFlags.Out, []*domain.Table{export.InvoicesTable(invoices)})
}
