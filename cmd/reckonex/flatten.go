package reckonex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
	"github.com/MMC-CONVERT2505/reckonex/internal/flatten"
	"github.com/MMC-CONVERT2505/reckonex/internal/workbook"
)

var flattenFlags struct {
	Out string
}

var flattenCmd = &cobra.Command{
	Use:   "flatten <file>",
	Short: "Convert a JSON or NDJSON file to a spreadsheet",
	Long:  "Parse a JSON or NDJSON export, flatten nested objects into dotted column names, and write the rows as a workbook or CSV.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlatten,
}

func init() {
	flattenCmd.Flags().StringVar(&flattenFlags.Out, "out", "", "Output path; a .csv extension writes CSV instead of a workbook (default input name with .xlsx)")
}

func runFlatten(cmd *cobra.Command, args []string) error {
	input := args[0]

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	rows, err := flatten.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	table := flatten.Table(name, rows)
	if table.Empty() {
		return fmt.Errorf("no tabular data in %s", input)
	}

	out := flattenFlags.Out
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".xlsx"
	}

	if strings.EqualFold(filepath.Ext(out), ".csv") {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		if err := workbook.WriteCSV(f, table); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	} else if err := workbook.Write(out, []*domain.Table{table}); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	cmd.Println(out)

	return nil
}
