package reckonex

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/MMC-CONVERT2505/reckonex/internal/numbering"
	"github.com/MMC-CONVERT2505/reckonex/internal/qbxml"
)

var renumberFlags struct {
	AppName string
	Delay   time.Duration
}

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Assign account numbers to unnumbered accounts",
	Long:  "Assign sequential account numbers to chart-of-accounts entries that have none, over an SDK session against the currently open company file.",
	Args:  cobra.NoArgs,
	RunE:  runRenumber,
}

func init() {
	renumberCmd.Flags().StringVar(&renumberFlags.AppName, "app-name", qbxml.DefaultAppName, "Application name shown in the company file's integrated applications list")
	renumberCmd.Flags().DurationVar(&renumberFlags.Delay, "delay", 50*time.Millisecond, "Pause between account updates")
}

func runRenumber(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rp, err := qbxml.NewRequestProcessor()
	if err != nil {
		return err
	}

	session, err := qbxml.NewSession(ctx, rp, renumberFlags.AppName)
	if err != nil {
		return err
	}
	defer session.Close()

	engine := numbering.New(session, numbering.WithDelay(renumberFlags.Delay))

	updated, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("updated %d accounts\n", updated)

	return nil
}
