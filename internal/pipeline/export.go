package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pedidos/internal"
	"pedidos/internal/config"
	"pedidos/internal/logging"
)

type Column struct {
	Key   string
	Label string
}

var columnValues = map[string]func(internal.OrderItem) any{
	"customer":     func(i internal.OrderItem) any { return i.CustomerText() },
	"deliveryDate": func(i internal.OrderItem) any { return i.DeliveryDateText() },
	"barCode":      func(i internal.OrderItem) any { return i.BarCodeText() },
	"material":     func(i internal.OrderItem) any { return i.MaterialText() },
	"diameter":     func(i internal.OrderItem) any { return i.DiameterText() },
	"length":       func(i internal.OrderItem) any { return i.LengthText() },
	"weight":       func(i internal.OrderItem) any { return i.Weight },
	"sourceFile":   func(i internal.OrderItem) any { return i.SourceFile },
}

// SelectColumns keeps the canonical column order. Keys that are not
// canonical are dropped, canonical keys not selected are omitted.
func SelectColumns(keys []string, labels map[string]string) []Column {
	selected := map[string]bool{}
	for _, k := range keys {
		selected[k] = true
	}

	out := make([]Column, 0, len(config.DefaultColumns))
	for _, key := range config.DefaultColumns {
		if !selected[key] {
			continue
		}
		label := labels[key]
		if label == "" {
			label = config.DefaultLabels[key]
		}
		out = append(out, Column{Key: key, Label: label})
	}
	return out
}

func DefaultColumns() []Column {
	return SelectColumns(config.DefaultColumns, config.DefaultLabels)
}

// ExportOrderItems writes one sheet with a header row and one row per item.
// With no items nothing is written and 0 is returned.
func ExportOrderItems(items []internal.OrderItem, outputPath string, columns []Column, log *slog.Logger) (int, error) {
	log = logging.OrDiscard(log)
	if len(items) == 0 {
		log.Warn("no data extracted, nothing to export", "output", outputPath)
		return 0, nil
	}
	if len(columns) == 0 {
		columns = DefaultColumns()
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, c := range columns {
		if err := setCell(f, sheet, i+1, 1, c.Label); err != nil {
			return 0, err
		}
	}

	for r, item := range items {
		for i, c := range columns {
			if err := setCell(f, sheet, i+1, r+2, columnValues[c.Key](item)); err != nil {
				return 0, fmt.Errorf("%s line %d: %w", item.SourceFile, item.LineNo, err)
			}
		}
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	if err := f.SaveAs(outputPath); err != nil {
		return 0, err
	}
	log.Info("spreadsheet written", "output", outputPath, "rows", len(items))
	return len(items), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
