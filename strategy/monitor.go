package strategy

import (
	"time"

	"github.com/rustyeddy/orb/config"
	"github.com/rustyeddy/orb/market"
)

// Exit reasons recorded on close.
const (
	ReasonStopLoss   = "StopLoss"
	ReasonSessionEnd = "SessionEnd"
)

// Exit is the monitor's close decision.
type Exit struct {
	Time   time.Time
	Price  float64
	Reason string
}

// Monitor watches an open position for a stop-loss breach and otherwise
// force-closes it on the session-end bar.
type Monitor struct {
	StopPct  float64
	StopMode config.StopMode
	MaxATR   float64

	// Interval coarsens the breach scan to keep-last closes per bucket.
	// Zero checks every bar.
	Interval time.Duration
}

// StopLoss derives the fixed stop price from the entry. In ATR mode the
// stop distance scales with the entry bar's ATR_14, capped at MaxATR.
func (m Monitor) StopLoss(entryPrice, atr float64, dir Direction) float64 {
	pct := m.StopPct
	if m.StopMode == config.StopATR {
		if atr > m.MaxATR {
			atr = m.MaxATR
		}
		pct = m.StopPct * atr
	}

	if dir == Short {
		return entryPrice * (1 + pct)
	}
	return entryPrice * (1 - pct)
}

// Run scans bars after entry for a strict stop breach. If none breaches,
// it force-closes on the exact session-end bar; a missing session-end
// bar is a data-completeness error and no exit is fabricated.
func (m Monitor) Run(p *Position, bars []market.Bar, s *market.Series, sessionEnd time.Time) (Exit, error) {
	scan := bars
	if m.Interval > 0 {
		scan = resampleLast(bars, m.Interval)
	}

	for _, b := range scan {
		if breached(p.Direction, b.Close, p.StopLoss) {
			return Exit{Time: b.Time, Price: b.Close, Reason: ReasonStopLoss}, nil
		}
	}

	last, err := s.At(sessionEnd)
	if err != nil {
		return Exit{}, err
	}
	return Exit{Time: last.Time, Price: last.Close, Reason: ReasonSessionEnd}, nil
}

func breached(dir Direction, price, stop float64) bool {
	if dir == Short {
		return price > stop
	}
	return price < stop
}

// resampleLast keeps the last bar of each interval bucket, preserving
// that bar's actual timestamp and close.
func resampleLast(bars []market.Bar, interval time.Duration) []market.Bar {
	if len(bars) == 0 {
		return bars
	}

	var out []market.Bar
	bucket := bars[0].Time.Truncate(interval)
	for i, b := range bars {
		bk := b.Time.Truncate(interval)
		if i == 0 {
			bucket = bk
			out = append(out, b)
			continue
		}
		if bk.Equal(bucket) {
			out[len(out)-1] = b
			continue
		}
		bucket = bk
		out = append(out, b)
	}
	return out
}
