package portfolio

import (
	"time"

	"github.com/rustyeddy/orb/journal"
)

// Costs models the per-trade frictions: a per-share commission charged
// on both legs, and a borrow fee on shorts as a fraction of allocated
// capital. Some variants run without the borrow fee, so it is a switch.
type Costs struct {
	CommissionPerShare float64
	BorrowRate         float64
	BorrowFeeEnabled   bool
}

// Options configures the accounting fold.
type Options struct {
	StartingCapital float64
	Costs           Costs

	// RefreshAllocations recomputes each trade's allocation from the
	// running capital instead of holding the day-start split fixed.
	// The reference behavior holds it fixed for the whole day.
	RefreshAllocations bool
}

// TradeOutcome is the realized result of one matched open/close pair.
type TradeOutcome struct {
	Ticker       string
	PositionType string
	EntryTime    time.Time
	ExitTime     time.Time
	EntryPrice   float64
	ExitPrice    float64

	CapitalAllocated float64
	Shares           float64
	Commission       float64
	BorrowFee        float64

	ProfitLoss   float64
	PctReturn    float64
	CapitalAfter float64
}

// DayResult is one day of the fold.
type DayResult struct {
	Date             string
	TickersTraded    int
	CapitalBefore    float64
	CapitalPerTicker float64
	Return           float64
	CapitalAfter     float64
}

// Summary is the full accounting output: the per-trade detail ledger,
// the day series, and the capital trajectory (starting capital followed
// by each day's closing capital).
type Summary struct {
	Outcomes     []TradeOutcome
	Days         []DayResult
	DailyReturns []float64
	CapitalCurve []float64
	FinalCapital float64
}

// Settle folds matched pairs into capital day by day. Days are processed
// strictly in order, each starting from the previous day's closing
// capital; capital moves only when a trade closes.
func Settle(pairs []journal.Pair, opt Options) Summary {
	sum := Summary{
		CapitalCurve: []float64{opt.StartingCapital},
		FinalCapital: opt.StartingCapital,
	}

	capital := opt.StartingCapital

	for start := 0; start < len(pairs); {
		end := start
		for end < len(pairs) && pairs[end].Date == pairs[start].Date {
			end++
		}
		day := pairs[start:end]

		n := len(day)
		perTicker := 0.0
		if n > 0 {
			perTicker = capital / float64(n)
		}

		dr := DayResult{
			Date:             day[0].Date,
			TickersTraded:    n,
			CapitalBefore:    capital,
			CapitalPerTicker: perTicker,
		}

		for _, p := range day {
			alloc := perTicker
			if opt.RefreshAllocations {
				alloc = capital / float64(n)
			}

			out := settleTrade(p, alloc, opt.Costs)

			capital += out.ProfitLoss
			out.CapitalAfter = capital

			if alloc > 0 {
				dr.Return += out.ProfitLoss / alloc
			}
			sum.Outcomes = append(sum.Outcomes, out)
		}

		dr.CapitalAfter = capital
		sum.Days = append(sum.Days, dr)
		sum.DailyReturns = append(sum.DailyReturns, dr.Return)
		sum.CapitalCurve = append(sum.CapitalCurve, capital)

		start = end
	}

	sum.FinalCapital = capital
	return sum
}

func settleTrade(p journal.Pair, alloc float64, c Costs) TradeOutcome {
	out := TradeOutcome{
		Ticker:           p.Ticker,
		PositionType:     p.PositionType,
		EntryTime:        p.Open.Time,
		ExitTime:         p.Close.Time,
		EntryPrice:       p.Open.Price,
		ExitPrice:        p.Close.Price,
		CapitalAllocated: alloc,
	}

	if p.Open.Price > 0 {
		out.Shares = alloc / p.Open.Price
	}
	out.Commission = c.CommissionPerShare * out.Shares
	if c.BorrowFeeEnabled && p.PositionType == "short" {
		out.BorrowFee = c.BorrowRate * alloc
	}

	move := p.Close.Price - p.Open.Price
	if p.PositionType == "short" {
		move = -move
	}
	out.ProfitLoss = move*out.Shares - 2*out.Commission - out.BorrowFee

	if alloc > 0 {
		out.PctReturn = out.ProfitLoss / alloc * 100
	}
	return out
}
