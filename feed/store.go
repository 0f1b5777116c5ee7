package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/orb/market"
)

// Store serves deduplicated, time-ordered minute bars per ticker.
type Store interface {
	Bars(ticker string) (*market.Series, error)
}

// CSVStore reads one <ticker>_1_min_data.csv (or <ticker>.csv) per
// ticker from a directory. Series are normalized once at load: sorted
// by timestamp with duplicates dropped keep-first, so every later
// lookup is single-valued.
type CSVStore struct {
	dir   string
	loc   *time.Location
	log   zerolog.Logger
	cache map[string]*market.Series
}

func NewCSVStore(dir string, loc *time.Location, log zerolog.Logger) *CSVStore {
	return &CSVStore{
		dir:   dir,
		loc:   loc,
		log:   log.With().Str("component", "store").Logger(),
		cache: make(map[string]*market.Series),
	}
}

func (s *CSVStore) Bars(ticker string) (*market.Series, error) {
	if cached, ok := s.cache[ticker]; ok {
		return cached, nil
	}

	path := filepath.Join(s.dir, ticker+"_1_min_data.csv")
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(s.dir, ticker+".csv")
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bars for %s: %w", ticker, err)
	}
	defer fh.Close()

	series, err := ReadBars(fh, ticker, s.loc)
	if err != nil {
		return nil, fmt.Errorf("bars for %s: %w", ticker, err)
	}

	if dropped := series.Normalize(); dropped > 0 {
		s.log.Warn().Str("ticker", ticker).Int("duplicates", dropped).
			Msg("dropped duplicate timestamps (keep-first)")
	}

	s.cache[ticker] = series
	return series, nil
}

// ReadBars parses a bar CSV. The header must carry timestamp, open,
// high, low, close and volume columns; their absence is a schema error
// and fatal to the caller. Indicator columns are read when present.
func ReadBars(r io.Reader, ticker string, loc *time.Location) (*market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(head))
	for i, name := range head {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"timestamp", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	series := &market.Series{Ticker: ticker}
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

		ts, err := parseTime(row[col["timestamp"]], loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		bar := market.Bar{Time: ts}
		for _, fld := range []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open}, {"high", &bar.High}, {"low", &bar.Low},
			{"close", &bar.Close}, {"volume", &bar.Volume},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col[fld.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s %q: %w", line, fld.name, row[col[fld.name]], err)
			}
			*fld.dst = v
		}

		// Optional precomputed indicator columns.
		bar.ATR14 = optFloat(row, col, "atr_14")
		bar.AvgVolume = optFloat(row, col, "avg_volume_14d")
		bar.RelVolume = optFloat(row, col, "relative_volume")

		series.Bars = append(series.Bars, bar)
	}
	return series, nil
}

func optFloat(row []string, col map[string]int, name string) float64 {
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

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
