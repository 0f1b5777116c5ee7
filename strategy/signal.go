package strategy

import (
	"time"

	"github.com/rustyeddy/orb/market"
)

// Direction is the day's bias for one ticker.
type Direction string

const (
	Long    Direction = "long"
	Short   Direction = "short"
	NoTrade Direction = "no_trade"
)

// OpeningRangeResult is the classifier's verdict for one ticker/day.
type OpeningRangeResult struct {
	Ticker    string
	Date      string
	Direction Direction
	// ExtremePrice is min(open, close) over the window for long days,
	// max(open, close) for short days, 0 for no-trade.
	ExtremePrice float64
}

// Classifier turns the opening-range window into a direction. Both
// thresholds are tunables: the strict variant requires every bar green
// (or red), the majority variant 4 of 5.
type Classifier struct {
	PositiveHigh int
	PositiveLow  int
}

// Classify inspects the bars inside [from, to]. A window entirely absent
// from the series yields NoTrade plus a recoverable MissingDataError so
// the ticker can be skipped for the day.
func (c Classifier) Classify(s *market.Series, date string, from, to time.Time) (OpeningRangeResult, error) {
	res := OpeningRangeResult{Ticker: s.Ticker, Date: date, Direction: NoTrade}

	window := s.Between(from, to)
	if len(window) == 0 {
		return res, &market.MissingDataError{Ticker: s.Ticker, From: from, To: to}
	}

	positive := 0
	for _, b := range window {
		if b.Green() {
			positive++
		}
	}

	switch {
	case positive >= c.PositiveHigh:
		res.Direction = Long
		res.ExtremePrice = windowMin(window)
	case positive <= c.PositiveLow:
		res.Direction = Short
		res.ExtremePrice = windowMax(window)
	}
	return res, nil
}

func windowMin(bars []market.Bar) float64 {
	m := bars[0].Open
	for _, b := range bars {
		if b.Open < m {
			m = b.Open
		}
		if b.Close < m {
			m = b.Close
		}
	}
	return m
}

func windowMax(bars []market.Bar) float64 {
	m := bars[0].Open
	for _, b := range bars {
		if b.Open > m {
			m = b.Open
		}
		if b.Close > m {
			m = b.Close
		}
	}
	return m
}
