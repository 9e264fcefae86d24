// Package workbook writes fetched tables to a spreadsheet workbook, one
// sheet per table.
package workbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/MMC-CONVERT2505/reckonex/internal/domain"
)

// columnPad widens each auto-sized column a little beyond its longest value.
const columnPad = 2

// ErrNoTables is returned when there is nothing to write.
var ErrNoTables = errors.New("no tables to write")

// Write saves the tables to an xlsx workbook at path. Sheets appear in the
// given order and every column is sized to the longer of its header and its
// longest stringified cell, plus a small pad.
func Write(path string, tables []*domain.Table) error {
	if len(tables) == 0 {
		return ErrNoTables
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		sheet := table.Name

		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, table); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet string, table *domain.Table) error {
	if len(table.Columns) == 0 {
		return nil
	}

	header := make([]any, len(table.Columns))
	for i, column := range table.Columns {
		header[i] = column
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range table.Rows {
		cells := make([]any, len(table.Columns))
		for c, column := range table.Columns {
			if v, ok := row[column]; ok {
				cells[c] = v
			}
		}

		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, start, &cells); err != nil {
			return err
		}
	}

	return sizeColumns(f, sheet, table)
}

func sizeColumns(f *excelize.File, sheet string, table *domain.Table) error {
	for c, column := range table.Columns {
		width := utf8.RuneCountInString(column)
		for _, row := range table.Rows {
			if v, ok := row[column]; ok && utf8.RuneCountInString(v) > width {
				width = utf8.RuneCountInString(v)
			}
		}

		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(sheet, name, name, float64(width+columnPad)); err != nil {
			return err
		}
	}

	return nil
}

// WriteCSV writes a single table as CSV. NULL cells become empty fields.
func WriteCSV(w io.Writer, table *domain.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Columns); err != nil {
		return err
	}

	record := make([]string, len(table.Columns))

	for _, row := range table.Rows {
		for i, column := range table.Columns {
			record[i] = row[column]
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
