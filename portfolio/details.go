package portfolio

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var detailsHeader = []string{
	"ticker", "position_type", "entry_time", "exit_time",
	"entry_price", "exit_price", "capital_allocated", "shares_traded",
	"profit/loss", "% of profit/loss", "updated_capital",
}

// WriteDetails writes one row per realized trade in the detail format.
func WriteDetails(w io.Writer, outcomes []TradeOutcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailsHeader); err != nil {
		return err
	}
	for _, o := range outcomes {
		err := cw.Write([]string{
			o.Ticker,
			o.PositionType,
			o.EntryTime.Format(time.RFC3339),
			o.ExitTime.Format(time.RFC3339),
			f(o.EntryPrice),
			f(o.ExitPrice),
			f(o.CapitalAllocated),
			f(o.Shares),
			f(o.ProfitLoss),
			f(o.PctReturn),
			f(o.CapitalAfter),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveDetails writes the detail ledger to a file.
func SaveDetails(path string, outcomes []TradeOutcome) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return WriteDetails(fh, outcomes)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
