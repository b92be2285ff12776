package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

func extractSpreadsheet(_ context.Context, path string) (Insights, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Insights{}, nil
	}

	var keywords []string
	for _, sheet := range sheets {
		if name := strings.TrimSpace(sheet); name != "" {
			keywords = append(keywords, name)
		}
	}

	rows, err := f.Rows(sheets[0])
	if err == nil {
		defer func() { _ = rows.Close() }()
		if rows.Next() {
			header, err := rows.Columns()
			if err == nil {
				keywords = append(keywords, cleanCells(header)...)
			}
		}
	}

	if len(keywords) == 0 {
		return Insights{}, nil
	}

	return Insights{
		Keywords:   keywords,
		Caption:    sheets[0],
		Confidence: 0.7,
	}, nil
}

func extractCSV(_ context.Context, path string) (Insights, error) {
	f, err := os.Open(path)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Insights{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	keywords := cleanCells(header)
	if len(keywords) == 0 {
		return Insights{}, nil
	}

	return Insights{Keywords: keywords, Confidence: 0.7}, nil
}

func cleanCells(cells []string) []string {
	var out []string
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		out = append(out, cell)
	}

	return out
}
