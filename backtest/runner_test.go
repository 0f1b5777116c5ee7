package backtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/orb/config"
	"github.com/rustyeddy/orb/feed"
	"github.com/rustyeddy/orb/journal"
	"github.com/rustyeddy/orb/market"
	"github.com/rustyeddy/orb/perf"
	"github.com/rustyeddy/orb/strategy"
)

type memStore map[string]*market.Series

func (m memStore) Bars(ticker string) (*market.Series, error) {
	s, ok := m[ticker]
	if !ok {
		return nil, fmt.Errorf("no bars for %s", ticker)
	}
	return s, nil
}

func nyLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

// windowBars builds the 09:30-09:35 opening range, green or red.
func testWindowBars(loc *time.Location, green bool, level float64) []market.Bar {
	var bars []market.Bar
	for m := 30; m <= 35; m++ {
		open, close := level*1.01, level
		if green {
			open, close = level*0.99, level
		}
		bars = append(bars, market.Bar{
			Time:  time.Date(2024, 1, 2, 9, m, 0, 0, loc),
			Open:  open,
			High:  level * 1.02,
			Low:   level * 0.98,
			Close: close,
		})
	}
	return bars
}

func at(loc *time.Location, hour, min int, close float64) market.Bar {
	return market.Bar{
		Time: time.Date(2024, 1, 2, hour, min, 0, 0, loc),
		Open: close, High: close, Low: close, Close: close,
	}
}

// testStore models one trading day:
//   - AAA classifies long, confirms at 99.7 and rides to the 15:55 close
//   - BBB classifies short, confirms at 50.2 and breaches its stop
//   - CCC classifies long and confirms, but has no session-end bar
func testStore(loc *time.Location) memStore {
	aaa := &market.Series{Ticker: "AAA", Bars: append(testWindowBars(loc, true, 100),
		at(loc, 9, 36, 100),  // reference
		at(loc, 9, 37, 99.7), // entry (<= 99.75)
		at(loc, 9, 38, 100),
		at(loc, 15, 55, 101), // session end
	)}

	bbb := &market.Series{Ticker: "BBB", Bars: append(testWindowBars(loc, false, 50),
		at(loc, 9, 36, 50),   // reference
		at(loc, 9, 37, 50.2), // entry (>= 50.125)
		at(loc, 9, 38, 50.6), // above stop 50.5765
		at(loc, 15, 55, 50),
	)}

	ccc := &market.Series{Ticker: "CCC", Bars: append(testWindowBars(loc, true, 100),
		at(loc, 9, 36, 100),
		at(loc, 9, 37, 99.7),
		at(loc, 9, 38, 100),
		// no 15:55 bar
	)}

	return memStore{"AAA": aaa, "BBB": bbb, "CCC": ccc}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Costs = config.CostsConfig{}
	cfg.Strategy.MonitoringInterval = ""
	return cfg
}

func newTestRunner(t *testing.T, candidatesCSV string) (*Runner, journal.Ledger) {
	t.Helper()

	loc := nyLoc(t)
	ledger, err := journal.NewCSV(filepath.Join(t.TempDir(), "ledger.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	cands, err := feed.LoadCandidates(writeTempCSV(t, candidatesCSV))
	require.NoError(t, err)

	return &Runner{
		Cfg:        testConfig(),
		Store:      testStore(loc),
		Candidates: cands,
		Ledger:     ledger,
		Log:        zerolog.Nop(),
	}, ledger
}

func writeTempCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidates.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const dayCandidates = "date,ticker\n2024-01-02,AAA\n2024-01-02,BBB\n2024-01-02,CCC\n"

func TestRunnerEndToEnd(t *testing.T) {
	t.Parallel()

	r, ledger := newTestRunner(t, dayCandidates)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	// ledger: AAA open/close, BBB open/close, CCC dangling open
	records, err := ledger.Records()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, journal.StatusOpen, records[0].Status)
	assert.Equal(t, "AAA", records[0].Ticker)
	assert.InDelta(t, 99.7, records[0].Price, 1e-12)
	assert.Equal(t, journal.StatusClose, records[1].Status)
	assert.InDelta(t, 101.0, records[1].Price, 1e-12)
	assert.Equal(t, "BBB", records[2].Ticker)
	assert.Equal(t, string(strategy.Short), records[2].PositionType)
	// BBB stopped out on the 09:38 bar
	assert.InDelta(t, 50.6, records[3].Price, 1e-12)
	assert.Equal(t, "CCC", records[4].Ticker)
	assert.Equal(t, journal.StatusOpen, records[4].Status)

	// the dangling CCC open is excluded and surfaced
	require.Len(t, result.IntegrityErrors, 1)
	assert.Equal(t, "CCC", result.IntegrityErrors[0].Ticker)
	assert.Zero(t, result.TickersSkipped)

	// two settled trades, 50000 allocated to each
	require.Len(t, result.Summary.Outcomes, 2)
	aaa, bbb := result.Summary.Outcomes[0], result.Summary.Outcomes[1]

	assert.Equal(t, "AAA", aaa.Ticker)
	assert.InDelta(t, 50000.0/99.7*1.3, aaa.ProfitLoss, 1e-6)
	assert.Equal(t, "BBB", bbb.Ticker)
	assert.InDelta(t, -50000.0/50.2*0.4, bbb.ProfitLoss, 1e-6)

	want := 100000 + 50000.0/99.7*1.3 - 50000.0/50.2*0.4
	assert.InDelta(t, want, result.Summary.FinalCapital, 1e-6)

	// one trading day cannot produce volatility: reported, not fatal
	assert.Equal(t, perf.ErrInsufficientData.Error(), result.MetricsNote)
	assert.NotEmpty(t, result.RunID)
}

func TestRunnerDeterministic(t *testing.T) {
	t.Parallel()

	r1, _ := newTestRunner(t, dayCandidates)
	r2, _ := newTestRunner(t, dayCandidates)

	first, err := r1.Run(context.Background())
	require.NoError(t, err)
	second, err := r2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Metrics, second.Metrics)
}

func TestRunnerNoTradeDay(t *testing.T) {
	t.Parallel()

	loc := nyLoc(t)
	// a split window classifies neither long nor short
	mixed := testWindowBars(loc, true, 100)
	for i := 0; i < 3; i++ {
		mixed[i].Open, mixed[i].Close = mixed[i].Close, mixed[i].Open
	}
	store := memStore{"AAA": {Ticker: "AAA", Bars: mixed}}

	ledger, err := journal.NewCSV(filepath.Join(t.TempDir(), "ledger.csv"))
	require.NoError(t, err)
	defer ledger.Close()

	cands, err := feed.LoadCandidates(writeTempCSV(t, "date,ticker\n2024-01-02,AAA\n"))
	require.NoError(t, err)

	r := &Runner{Cfg: testConfig(), Store: store, Candidates: cands, Ledger: ledger, Log: zerolog.Nop()}
	result, err := r.Run(context.Background())
	require.NoError(t, err)

	records, err := ledger.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, result.Summary.Outcomes)
	assert.Zero(t, result.TickersSkipped)
}

func TestRunnerMissingBarsSkipsTicker(t *testing.T) {
	t.Parallel()

	r, _ := newTestRunner(t, "date,ticker\n2024-01-02,NOPE\n")

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.TickersSkipped)
}

func TestRunnerHonorsContext(t *testing.T) {
	t.Parallel()

	r, _ := newTestRunner(t, dayCandidates)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
