package journal

import (
	"fmt"
	"sort"
	"time"
)

// Pair is a matched open/close for one ticker on one session date.
type Pair struct {
	Ticker       string
	Date         string
	PositionType string
	Open         Record
	Close        Record
}

// IntegrityError reports ledger rows that cannot be paired: a close
// without an open, an open without a close, mismatched legs, or a close
// that does not strictly follow its open. The rows involved are excluded
// from accounting, never silently paired.
type IntegrityError struct {
	Ticker string
	Date   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity: %s %s: %s", e.Date, e.Ticker, e.Reason)
}

type tickerDay struct {
	opens  []Record
	closes []Record
	seq    int // appearance order within the ledger
}

// MatchPairs groups records by session date (via dateKey) and ticker and
// pairs each open with its close. Pairs come back ordered by date, then
// by ledger appearance, so identical input always yields identical
// output. Unpairable rows are reported, not dropped silently.
func MatchPairs(records []Record, dateKey func(time.Time) string) ([]Pair, []*IntegrityError) {
	type key struct{ date, ticker string }

	groups := make(map[key]*tickerDay)
	var order []key

	for i, r := range records {
		k := key{date: dateKey(r.Time), ticker: r.Ticker}
		g, ok := groups[k]
		if !ok {
			g = &tickerDay{seq: i}
			groups[k] = g
			order = append(order, k)
		}
		switch r.Status {
		case StatusOpen:
			g.opens = append(g.opens, r)
		case StatusClose:
			g.closes = append(g.closes, r)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].date != order[j].date {
			return order[i].date < order[j].date
		}
		return groups[order[i]].seq < groups[order[j]].seq
	})

	var (
		pairs []Pair
		errs  []*IntegrityError
	)

	for _, k := range order {
		g := groups[k]

		if len(g.opens) == 0 {
			errs = append(errs, &IntegrityError{Ticker: k.ticker, Date: k.date,
				Reason: fmt.Sprintf("%d close record(s) with no open", len(g.closes))})
			continue
		}
		if len(g.closes) == 0 {
			errs = append(errs, &IntegrityError{Ticker: k.ticker, Date: k.date,
				Reason: fmt.Sprintf("%d open record(s) with no close", len(g.opens))})
			continue
		}
		if len(g.opens) > 1 || len(g.closes) > 1 {
			errs = append(errs, &IntegrityError{Ticker: k.ticker, Date: k.date,
				Reason: fmt.Sprintf("extra records (%d opens, %d closes); pairing the first of each",
					len(g.opens), len(g.closes))})
		}

		open, cls := g.opens[0], g.closes[0]

		if !cls.Time.After(open.Time) {
			errs = append(errs, &IntegrityError{Ticker: k.ticker, Date: k.date,
				Reason: "close does not strictly follow open"})
			continue
		}
		if open.PositionType != cls.PositionType {
			errs = append(errs, &IntegrityError{Ticker: k.ticker, Date: k.date,
				Reason: fmt.Sprintf("legs disagree on position type (%q vs %q)",
					open.PositionType, cls.PositionType)})
			continue
		}

		pairs = append(pairs, Pair{
			Ticker:       k.ticker,
			Date:         k.date,
			PositionType: open.PositionType,
			Open:         open,
			Close:        cls,
		})
	}

	return pairs, errs
}
