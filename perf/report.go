package perf

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

var summaryHeader = []string{
	"Alpha", "Beta", "Sharpe Ratio", "Max Drawdown",
	"Volatility", "Total Return (%)", "Final Capital",
}

// WriteSummary writes the single summary row. Alpha and Beta stay blank
// when no benchmark was supplied rather than reading as zero.
func WriteSummary(w io.Writer, m Metrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}

	alpha, beta := "", ""
	if m.BenchmarkUsed {
		alpha = f(m.Alpha)
		beta = f(m.Beta)
	}

	err := cw.Write([]string{
		alpha,
		beta,
		f(m.SharpeRatio),
		f(m.MaxDrawdown),
		f(m.Volatility),
		f(m.TotalReturnPct),
		f(m.FinalCapital),
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// SaveSummary writes the summary row to a file.
func SaveSummary(path string, m Metrics) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return WriteSummary(fh, m)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
