package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/tabscan/model"
)

// SheetName returns the worksheet name used for a table.
func SheetName(t model.ExtractedTable) string {
	return fmt.Sprintf("P%d-T%d", t.Page, t.Sequence)
}

// WriteXLSX writes each table to its own worksheet. An empty result
// produces a workbook with a single empty "Tables" sheet.
func WriteXLSX(w io.Writer, result *model.DocumentResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if result.Len() == 0 {
		if err := f.SetSheetName(defaultSheet, "Tables"); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	}

	for i, t := range result.Tables {
		sheet := SheetName(t)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sheet, r+1, err)
			}
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
