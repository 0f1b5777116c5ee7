package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var header = []string{"status", "ticker", "price", "timestamp", "position_type"}

// CSV is a file-backed ledger. Rows are flushed on every append so the
// log survives a mid-run failure.
type CSV struct {
	w    *csv.Writer
	f    *os.File
	path string
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &CSV{w: w, f: f, path: path}, nil
}

func (j *CSV) Append(r Record) error {
	err := j.w.Write([]string{
		r.Status,
		r.Ticker,
		fprice(r.Price),
		r.Time.Format(time.RFC3339),
		r.PositionType,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Records() ([]Record, error) {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return nil, err
	}

	f, err := os.Open(j.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

// ReadCSV parses a ledger written by CSV.Append (or OpenCSV a prior run).
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == "status" {
			continue
		}
		if len(row) != 5 {
			return nil, fmt.Errorf("ledger row %d: want 5 fields, got %d", i+1, len(row))
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: bad price %q: %w", i+1, row[2], err)
		}
		ts, err := time.Parse(time.RFC3339, row[3])
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: bad timestamp %q: %w", i+1, row[3], err)
		}
		out = append(out, Record{
			Status:       row[0],
			Ticker:       row[1],
			Price:        price,
			Time:         ts,
			PositionType: row[4],
		})
	}
	return out, nil
}

// LoadCSV reads a complete ledger file from disk.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func fprice(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
