package perf

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadBenchmark reads a benchmark daily-return series from a CSV file.
// Accepted shapes: a single return column, or date,return with the
// return in the last column. A header row is skipped if the last column
// does not parse as a number.
func LoadBenchmark(path string) ([]float64, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []float64
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(row[len(row)-1], 64)
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("benchmark row %d: bad return %q: %w", i+1, row[len(row)-1], err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("benchmark file %s contains no returns", path)
	}
	return out, nil
}
