package market

import (
	"fmt"
	"sort"
	"time"
)

// Series is one ticker's bars, ascending by timestamp after Normalize.
type Series struct {
	Ticker string
	Bars   []Bar
}

// MissingDataError reports a window or timestamp absent from the store.
// It is recoverable: the ticker is skipped for the day and the run goes on.
type MissingDataError struct {
	Ticker string
	From   time.Time
	To     time.Time
}

func (e *MissingDataError) Error() string {
	if e.From.Equal(e.To) {
		return fmt.Sprintf("%s: no bar at %s", e.Ticker, e.From.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s: no bars in %s..%s", e.Ticker,
		e.From.Format(time.RFC3339), e.To.Format(time.RFC3339))
}

// Normalize sorts the bars by timestamp and drops duplicate timestamps,
// keeping the first occurrence. It returns the number of duplicates
// removed. Every lookup on the series assumes this has run once at
// ingestion, so an ambiguous multi-valued read can never happen later.
func (s *Series) Normalize() int {
	sort.SliceStable(s.Bars, func(i, j int) bool {
		return s.Bars[i].Time.Before(s.Bars[j].Time)
	})

	dropped := 0
	out := s.Bars[:0]
	for _, b := range s.Bars {
		if len(out) > 0 && b.Time.Equal(out[len(out)-1].Time) {
			dropped++
			continue
		}
		out = append(out, b)
	}
	s.Bars = out
	return dropped
}

// Between returns bars with from <= t <= to.
func (s *Series) Between(from, to time.Time) []Bar {
	lo := sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Time.Before(from)
	})
	hi := sort.Search(len(s.Bars), func(i int) bool {
		return s.Bars[i].Time.After(to)
	})
	return s.Bars[lo:hi]
}

// After returns bars with t > after and t <= until.
func (s *Series) After(after, until time.Time) []Bar {
	lo := sort.Search(len(s.Bars), func(i int) bool {
		return s.Bars[i].Time.After(after)
	})
	hi := sort.Search(len(s.Bars), func(i int) bool {
		return s.Bars[i].Time.After(until)
	})
	return s.Bars[lo:hi]
}

// At returns the bar at exactly t.
func (s *Series) At(t time.Time) (Bar, error) {
	i := sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Time.Before(t)
	})
	if i < len(s.Bars) && s.Bars[i].Time.Equal(t) {
		return s.Bars[i], nil
	}
	return Bar{}, &MissingDataError{Ticker: s.Ticker, From: t, To: t}
}
