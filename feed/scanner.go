package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/orb/market"
)

// ScanThresholds are the liquidity/volatility filters a bar must pass
// during the opening-range window for its ticker to qualify that day.
type ScanThresholds struct {
	MinOpenPrice float64
	MinAvgVolume float64
	MinATR       float64
	MinRelVolume float64
	TopN         int
}

// Scanner builds the daily candidate universe from enriched bars:
// tickers passing the thresholds in the opening-range window, ranked by
// relative volume, top N per day.
type Scanner struct {
	Store       Store
	Loc         *time.Location
	WindowStart market.Clock
	WindowEnd   market.Clock
	Thresholds  ScanThresholds
	Log         zerolog.Logger
}

type pick struct {
	date      string
	ticker    string
	atr       float64
	relVolume float64
}

// Scan evaluates the tickers and returns candidate rows ordered by date
// then descending relative volume.
func (s *Scanner) Scan(tickers []string) ([][]string, error) {
	log := s.Log.With().Str("component", "scanner").Logger()

	var picks []pick
	for _, ticker := range tickers {
		series, err := s.Store.Bars(ticker)
		if err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("skipping ticker")
			continue
		}
		picks = append(picks, s.scanSeries(series)...)
	}

	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].date != picks[j].date {
			return picks[i].date < picks[j].date
		}
		return picks[i].relVolume > picks[j].relVolume
	})

	rows := [][]string{{"date", "ticker", "ATR_14", "Relative_Volume"}}
	perDay := 0
	for i, p := range picks {
		if i == 0 || p.date != picks[i-1].date {
			perDay = 0
		}
		if s.Thresholds.TopN > 0 && perDay >= s.Thresholds.TopN {
			continue
		}
		perDay++
		rows = append(rows, []string{
			p.date, p.ticker,
			strconv.FormatFloat(p.atr, 'f', -1, 64),
			strconv.FormatFloat(p.relVolume, 'f', -1, 64),
		})
	}
	return rows, nil
}

// scanSeries walks one ticker's bars and keeps the first qualifying bar
// of each day's opening-range window.
func (s *Scanner) scanSeries(series *market.Series) []pick {
	t := s.Thresholds
	var out []pick
	seen := ""

	for _, b := range series.Bars {
		date := b.Time.In(s.Loc).Format("2006-01-02")
		if date == seen {
			continue
		}

		from := s.WindowStart.On(b.Time, s.Loc)
		to := s.WindowEnd.On(b.Time, s.Loc)
		if b.Time.Before(from) || b.Time.After(to) {
			continue
		}
		if b.Open < t.MinOpenPrice || b.AvgVolume < t.MinAvgVolume ||
			b.ATR14 < t.MinATR || b.RelVolume < t.MinRelVolume {
			continue
		}

		seen = date
		out = append(out, pick{date: date, ticker: series.Ticker, atr: b.ATR14, relVolume: b.RelVolume})
	}
	return out
}

// WriteCSV writes scanner output rows.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes scanner output to a file.
func SaveCSV(path string, rows [][]string) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fh.Close()
	return WriteCSV(fh, rows)
}
