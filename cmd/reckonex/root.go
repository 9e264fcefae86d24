package reckonex

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MMC-CONVERT2505/reckonex/internal/export"
)

var (
	BuildShortSHA = `(missing)`

	RootCmd = &cobra.Command{
		Use:               "reckonex",
		Short:             "Reckon Accounts data toolkit",
		Long:              `Export, renumber and summarise Reckon Accounts ledger data via its ODBC and SDK interfaces.`,
		PersistentPreRunE: setupLogger,
	}
)

func init() {
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
	RootCmd.CompletionOptions.DisableDefaultCmd = true
	RootCmd.SetOut(os.Stderr)

	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(renumberCmd)
	RootCmd.AddCommand(coaCmd)
	RootCmd.AddCommand(invoicesCmd)
	RootCmd.AddCommand(summaryCmd)
	RootCmd.AddCommand(flattenCmd)

	for _, entity := range export.All() {
		exportCmd.AddCommand(newExportCommand(entity))
	}

	exportCmd.AddCommand(newExportAllCommand())
}

func Main(ctx context.Context, args []string, output io.Writer) error {
	RootCmd.SetOut(output)
	RootCmd.SetArgs(args[1:])

	return RootCmd.ExecuteContext(ctx)
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	writer := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.RFC3339
		w.PartsExclude = []string{"time", "level"}
	})

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Str("build.sha", BuildShortSHA).
		Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	return nil
}
