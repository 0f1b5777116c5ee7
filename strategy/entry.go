package strategy

import (
	"time"

	"github.com/rustyeddy/orb/market"
)

// Entry is a confirmed entry point.
type Entry struct {
	Time  time.Time
	Price float64
	// Reference is the close of the first bar after the opening range,
	// the baseline the confirmation move is measured from.
	Reference float64
}

// EntryTrigger waits for the price to confirm the opening-range bias by
// ConfirmationPct before entering. A day with no qualifying bar is a
// valid no-entry outcome, not an error.
type EntryTrigger struct {
	ConfirmationPct float64
}

// Scan walks bars chronologically. The bars must be the ticker's bars
// strictly after the opening-range window, up to session end.
func (t EntryTrigger) Scan(bars []market.Bar, dir Direction) (Entry, bool) {
	if len(bars) == 0 || dir == NoTrade {
		return Entry{}, false
	}

	ref := bars[0].Close
	for _, b := range bars {
		switch dir {
		case Long:
			if b.Close <= ref*(1-t.ConfirmationPct) {
				return Entry{Time: b.Time, Price: b.Close, Reference: ref}, true
			}
		case Short:
			if b.Close >= ref*(1+t.ConfirmationPct) {
				return Entry{Time: b.Time, Price: b.Close, Reference: ref}, true
			}
		}
	}
	return Entry{}, false
}
