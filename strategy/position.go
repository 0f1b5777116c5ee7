package strategy

import (
	"fmt"
	"time"
)

// Status is a position's lifecycle state. Transitions run
// pending -> open -> closed exactly once each, in that order.
type Status string

const (
	Pending Status = "pending"
	Opened  Status = "open"
	Closed  Status = "closed"
)

// Position is one ticker's trade for one day.
type Position struct {
	Ticker    string
	Date      string
	Direction Direction

	EntryTime  time.Time
	EntryPrice float64
	StopLoss   float64

	ExitTime   time.Time
	ExitPrice  float64
	ExitReason string

	Status Status
}

// NewPosition creates a pending position for the classified direction.
func NewPosition(ticker, date string, dir Direction) *Position {
	return &Position{Ticker: ticker, Date: date, Direction: dir, Status: Pending}
}

// Open records the confirmed entry. The stop is computed here once and
// never re-derived for the life of the trade.
func (p *Position) Open(e Entry, stopLoss float64) error {
	if p.Status != Pending {
		return fmt.Errorf("position %s/%s: open from state %q", p.Ticker, p.Date, p.Status)
	}
	p.EntryTime = e.Time
	p.EntryPrice = e.Price
	p.StopLoss = stopLoss
	p.Status = Opened
	return nil
}

// Close records the exit. A position closes exactly once.
func (p *Position) Close(t time.Time, price float64, reason string) error {
	if p.Status != Opened {
		return fmt.Errorf("position %s/%s: close from state %q", p.Ticker, p.Date, p.Status)
	}
	if !t.After(p.EntryTime) {
		return fmt.Errorf("position %s/%s: close time %s not after entry %s",
			p.Ticker, p.Date, t, p.EntryTime)
	}
	p.ExitTime = t
	p.ExitPrice = price
	p.ExitReason = reason
	p.Status = Closed
	return nil
}
