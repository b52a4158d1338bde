package pricing

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var historyColumns = []string{"observed_at", "material_code", "supplier_id", "spot_price", "quantity_available", "source"}

// WriteHistoryCSV streams a price history as CSV.
func WriteHistoryCSV(w io.Writer, history *PriceHistory) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(historyColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, obs := range history.Observations {
		qty := ""
		if obs.QuantityAvailable != nil {
			qty = obs.QuantityAvailable.String()
		}
		record := []string{
			obs.ObservedAt.Format("2006-01-02T15:04:05Z07:00"),
			history.MaterialCode,
			obs.SupplierID.String(),
			obs.SpotPrice.String(),
			qty,
			obs.Source,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteHistoryXLSX writes a price history as a styled Excel workbook.
func WriteHistoryXLSX(w io.Writer, history *PriceHistory) error {
	file := excelize.NewFile()
	sheetName := "Price History"
	file.SetSheetName("Sheet1", sheetName)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range historyColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(sheetName, cell, col)
		file.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, obs := range history.Observations {
		row := rowIdx + 2
		values := []interface{}{
			obs.ObservedAt.Format("2006-01-02 15:04:05"),
			history.MaterialCode,
			obs.SupplierID.String(),
			obs.SpotPrice.InexactFloat64(),
			nil,
			obs.Source,
		}
		if obs.QuantityAvailable != nil {
			values[4] = obs.QuantityAvailable.InexactFloat64()
		}
		for colIdx, val := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			file.SetCellValue(sheetName, cell, val)
		}
	}

	// Summary block below the data
	summaryRow := len(history.Observations) + 3
	summary := [][]interface{}{
		{"min_price", history.MinPrice.InexactFloat64()},
		{"max_price", history.MaxPrice.InexactFloat64()},
		{"avg_price", history.AvgPrice.InexactFloat64()},
	}
	for i, pair := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		file.SetCellValue(sheetName, keyCell, pair[0])
		file.SetCellValue(sheetName, valCell, pair[1])
	}

	return file.Write(w)
}
