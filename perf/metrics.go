package perf

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Degenerate-series conditions. They are explicit results: the analyzer
// never lets a NaN or an infinity out.
var (
	ErrInsufficientData = errors.New("perf: need at least 2 daily returns for volatility")
	ErrZeroVolatility   = errors.New("perf: sharpe undefined, volatility is zero")
)

// Metrics is the summary risk/return reduction of a run.
type Metrics struct {
	FinalCapital   float64
	TotalReturnPct float64
	Volatility     float64
	SharpeRatio    float64
	// MaxDrawdown is the worst peak-to-trough decline of the capital
	// curve, as a fraction of the peak.
	MaxDrawdown float64

	// Alpha and Beta are only meaningful when BenchmarkUsed is set;
	// without a benchmark series they are unsupported, not zero.
	Alpha         float64
	Beta          float64
	BenchmarkUsed bool
}

// Inputs to the analyzer.
type Inputs struct {
	DailyReturns    []float64
	CapitalCurve    []float64
	StartingCapital float64
	FinalCapital    float64
	RiskFreeRate    float64
	// Benchmark is an optional daily-return series aligned with
	// DailyReturns, enabling alpha/beta.
	Benchmark []float64
}

// Analyze reduces the daily return series and capital trajectory into
// summary metrics. On a degenerate series it returns what it could
// compute alongside the condition.
func Analyze(in Inputs) (Metrics, error) {
	m := Metrics{FinalCapital: in.FinalCapital}

	if in.StartingCapital > 0 {
		m.TotalReturnPct = (in.FinalCapital - in.StartingCapital) / in.StartingCapital * 100
	}
	m.MaxDrawdown = MaxDrawdown(in.CapitalCurve)

	if len(in.DailyReturns) < 2 {
		return m, ErrInsufficientData
	}

	m.Volatility = stat.PopStdDev(in.DailyReturns, nil)

	if len(in.Benchmark) > 0 {
		if len(in.Benchmark) != len(in.DailyReturns) {
			return m, fmt.Errorf("perf: benchmark length %d does not match return series length %d",
				len(in.Benchmark), len(in.DailyReturns))
		}
		varB := stat.Variance(in.Benchmark, nil)
		if varB == 0 {
			return m, fmt.Errorf("perf: beta undefined, benchmark variance is zero")
		}
		m.Beta = stat.Covariance(in.DailyReturns, in.Benchmark, nil) / varB
		m.Alpha = stat.Mean(in.DailyReturns, nil) - m.Beta*stat.Mean(in.Benchmark, nil)
		m.BenchmarkUsed = true
	}

	if m.Volatility == 0 {
		return m, ErrZeroVolatility
	}
	m.SharpeRatio = (stat.Mean(in.DailyReturns, nil) - in.RiskFreeRate) / m.Volatility

	return m, nil
}

// MaxDrawdown returns the worst peak-to-trough decline of the curve as
// a fraction of the peak, 0 for a non-decreasing or empty curve.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0]
	worst := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
