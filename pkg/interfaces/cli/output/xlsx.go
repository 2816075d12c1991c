package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/shopdesk/pkg/application/dto"
)

const defaultSheet = "Sheet1"

// generateXLSXOutput writes a workbook with one sheet per table
func generateXLSXOutput(report *dto.ShopReport, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, t := range buildTables(report) {
		if err := writeSheet(f, t); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", t.Title, err)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	filename := filepath.Join(config.OutputDir, "shop_report.xlsx")
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

func writeSheet(f *excelize.File, t table) error {
	if _, err := f.NewSheet(t.Title); err != nil {
		return err
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Title, "A1", &header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(t.Title, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
