package journal

import "time"

// Status of a ledger row.
const (
	StatusOpen  = "open"
	StatusClose = "close"
)

// Record is one append-only ledger row, written immediately at each
// position transition. Field order in persisted form is
// (status, ticker, price, timestamp, position_type).
type Record struct {
	Status       string
	Ticker       string
	Price        float64
	Time         time.Time
	PositionType string
}

// Ledger is an append-only trade log. There is deliberately no update
// or delete operation.
type Ledger interface {
	Append(Record) error
	Records() ([]Record, error)
	Close() error
}
