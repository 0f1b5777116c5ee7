package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/orb/journal"
	"github.com/rustyeddy/orb/perf"
	"github.com/rustyeddy/orb/portfolio"
)

// Result is the reduced output of one backtest run.
type Result struct {
	RunID   string
	Created time.Time

	Summary portfolio.Summary
	Metrics perf.Metrics
	// MetricsNote carries a degenerate-metric condition (short series,
	// zero volatility) when one applied.
	MetricsNote string

	IntegrityErrors []*journal.IntegrityError
	TickersSkipped  int
}

// Print writes a human-readable summary of the run.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Opening-Range Breakout Backtest")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Run ID:         %s\n", r.RunID)
	fmt.Fprintf(w, "Created:        %s\n", r.Created.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trading Activity")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Days Traded:    %d\n", len(r.Summary.Days))
	fmt.Fprintf(w, "Trades:         %d\n", len(r.Summary.Outcomes))
	if r.TickersSkipped > 0 {
		fmt.Fprintf(w, "Tickers Skipped: %d\n", r.TickersSkipped)
	}
	if len(r.IntegrityErrors) > 0 {
		fmt.Fprintf(w, "Ledger Issues:  %d (excluded from accounting)\n", len(r.IntegrityErrors))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Final Capital:  %.2f\n", r.Metrics.FinalCapital)
	fmt.Fprintf(w, "Total Return:   %.2f%%\n", r.Metrics.TotalReturnPct)
	fmt.Fprintf(w, "Volatility:     %.6f\n", r.Metrics.Volatility)
	fmt.Fprintf(w, "Sharpe Ratio:   %.4f\n", r.Metrics.SharpeRatio)
	fmt.Fprintf(w, "Max Drawdown:   %.2f%%\n", r.Metrics.MaxDrawdown*100)

	if r.Metrics.BenchmarkUsed {
		fmt.Fprintf(w, "Alpha:          %.6f\n", r.Metrics.Alpha)
		fmt.Fprintf(w, "Beta:           %.4f\n", r.Metrics.Beta)
	} else {
		fmt.Fprintln(w, "Alpha/Beta:     n/a (no benchmark series)")
	}

	if r.MetricsNote != "" {
		fmt.Fprintf(w, "Note:           %s\n", r.MetricsNote)
	}
	fmt.Fprintln(w)
}
