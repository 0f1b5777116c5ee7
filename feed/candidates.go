package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Candidate is one pre-filtered, pre-ranked ticker for a trading day,
// with the indicator values carried along for stop sizing.
type Candidate struct {
	Ticker    string
	ATR14     float64
	RelVolume float64
}

// Candidates is the per-day ordered ticker universe. File order within a
// day is preserved: the scanner already ranked it.
type Candidates struct {
	byDate map[string][]Candidate
	dates  []string
}

// LoadCandidates reads the candidates CSV. date and ticker columns are
// required; ATR_14 and Relative_Volume are carried when present.
func LoadCandidates(path string) (*Candidates, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidates: %w", err)
	}
	defer fh.Close()
	return ReadCandidates(fh)
}

// ReadCandidates parses candidate rows from r.
func ReadCandidates(r io.Reader) (*Candidates, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read candidates header: %w", err)
	}
	col := make(map[string]int, len(head))
	for i, name := range head {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "ticker"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("candidates: missing required column %q", required)
		}
	}

	c := &Candidates{byDate: make(map[string][]Candidate)}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		date := strings.TrimSpace(row[col["date"]])
		ticker := strings.TrimSpace(row[col["ticker"]])
		if date == "" || ticker == "" {
			return nil, fmt.Errorf("candidates line %d: empty date or ticker", line)
		}
		// Tolerate a full timestamp in the date column.
		if len(date) > 10 {
			date = date[:10]
		}

		if _, ok := c.byDate[date]; !ok {
			c.dates = append(c.dates, date)
		}
		c.byDate[date] = append(c.byDate[date], Candidate{
			Ticker:    ticker,
			ATR14:     optFloatAt(row, col, "atr_14"),
			RelVolume: optFloatAt(row, col, "relative_volume"),
		})
	}

	sort.Strings(c.dates)
	return c, nil
}

// Dates returns every trading date in ascending order.
func (c *Candidates) Dates() []string { return c.dates }

// For returns the day's candidates in ranked order.
func (c *Candidates) For(date string) []Candidate { return c.byDate[date] }

func optFloatAt(row []string, col map[string]int, name string) float64 {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0
	}
	return v
}
