package reckonex

import (
	"github.com/spf13/cobra"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/export"
	"github.com/MMC-CONVERT2505/reckonex/internal/qbxml"
	"github.com/MMC-CONVERT2505/reckonex/internal/workbook"
)

// listSample caps how many account names the command prints.
const listSample = 20

var coaFlags struct {
	AppName string
	Out     string
}

var coaCmd = &cobra.Command{
	Use:   "coa",
	Short: "Fetch the chart of accounts over an SDK session",
	Args:  cobra.NoArgs,
	RunE:  runCOA,
}

func init() {
	coaCmd.Flags().StringVar(&coaFlags.AppName, "app-name", qbxml.DefaultAppName, "Application name shown in the company file's integrated applications list")
	coaCmd.Flags().StringVar(&coaFlags.Out, "out", "", "Write the accounts to a workbook at this path")
}

func runCOA(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rp, err := qbxml.NewRequestProcessor()
	if err != nil {
		return err
	}

	session, err := qbxml.NewSession(ctx, rp, coaFlags.AppName)
	if err != nil {
		return err
	}
	defer session.Close()

	accounts, err := session.Accounts(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("%d accounts\n", len(accounts))
	for i, account := range accounts {
		if i == listSample {
			cmd.Printf("... and %d more\n", len(accounts)-listSample)
			break
		}

		cmd.Printf("  %s (%s)\n", account.Name, account.Type)
	}

	if coaFlags.Out == "" {
		return nil
	}

	return workbook.Write(coaFlags.Out, []*domain.Table{export.AccountsTable(accounts)})
}
