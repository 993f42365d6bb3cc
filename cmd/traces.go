package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadTraceCSV reads a numeric trace from a CSV file. Cells are flattened in
// row-major order, blank cells are skipped, and a single leading header row
// of non-numeric labels is tolerated.
func ReadTraceCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trace file %s: %w", path, err)
	}

	values := make([]float64, 0, len(records))
	for i, record := range records {
		for _, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				if i == 0 {
					// Header row.
					break
				}
				return nil, fmt.Errorf("trace file %s row %d: non-numeric cell %q", path, i+1, cell)
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("trace file %s holds no numeric values", path)
	}
	return values, nil
}
