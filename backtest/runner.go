package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/orb/config"
	"github.com/rustyeddy/orb/feed"
	"github.com/rustyeddy/orb/journal"
	"github.com/rustyeddy/orb/market"
	"github.com/rustyeddy/orb/perf"
	"github.com/rustyeddy/orb/portfolio"
	"github.com/rustyeddy/orb/strategy"
)

// Runner drives the full backtest: per day, per candidate, classify ->
// confirm entry -> monitor to exit, appending ledger records as the
// transitions happen; then fold the ledger into capital and metrics.
//
// Days run strictly in order because each day's capital depends on the
// previous day's. A ticker failing inside a day is skipped; a failing
// day does not abort the run.
type Runner struct {
	Cfg        *config.Config
	Store      feed.Store
	Candidates *feed.Candidates
	Ledger     journal.Ledger
	Benchmark  []float64
	Log        zerolog.Logger
}

// Run executes the backtest and reduces the ledger to a Result.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := r.Log.With().Str("component", "runner").Logger()

	session, err := newSession(r.Cfg)
	if err != nil {
		return nil, err
	}
	rangeStart, err := market.ParseClock(r.Cfg.Strategy.OpeningRangeStart)
	if err != nil {
		return nil, err
	}
	rangeEnd, err := market.ParseClock(r.Cfg.Strategy.OpeningRangeEnd)
	if err != nil {
		return nil, err
	}
	interval, err := r.Cfg.Strategy.MonitorEvery()
	if err != nil {
		return nil, err
	}

	classifier := strategy.Classifier{
		PositiveHigh: r.Cfg.Strategy.PositiveHigh,
		PositiveLow:  r.Cfg.Strategy.PositiveLow,
	}
	trigger := strategy.EntryTrigger{ConfirmationPct: r.Cfg.Strategy.ConfirmationPct}
	monitor := strategy.Monitor{
		StopPct:  r.Cfg.Strategy.StopPct,
		StopMode: r.Cfg.Strategy.StopMode,
		MaxATR:   r.Cfg.Strategy.MaxATR,
		Interval: interval,
	}

	result := &Result{
		RunID:   ulid.Make().String(),
		Created: time.Now().UTC(),
	}

	for _, dateStr := range r.Candidates.Dates() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		date, err := time.ParseInLocation("2006-01-02", dateStr, session.Location())
		if err != nil {
			log.Error().Str("date", dateStr).Err(err).Msg("bad candidate date, skipping day")
			continue
		}

		day := tradingDay{
			date:       dateStr,
			rangeStart: rangeStart.On(date, session.Location()),
			rangeEnd:   rangeEnd.On(date, session.Location()),
			sessionEnd: session.End(date),
		}

		for _, cand := range r.Candidates.For(dateStr) {
			if err := r.evalTicker(day, cand, classifier, trigger, monitor, log); err != nil {
				log.Warn().Str("date", dateStr).Str("ticker", cand.Ticker).
					Err(err).Msg("ticker skipped")
				result.TickersSkipped++
			}
		}
	}

	return r.settle(result, session, log)
}

type tradingDay struct {
	date       string
	rangeStart time.Time
	rangeEnd   time.Time
	sessionEnd time.Time
}

func (r *Runner) evalTicker(day tradingDay, cand feed.Candidate,
	classifier strategy.Classifier, trigger strategy.EntryTrigger,
	monitor strategy.Monitor, log zerolog.Logger) error {

	series, err := r.Store.Bars(cand.Ticker)
	if err != nil {
		return err
	}

	signal, err := classifier.Classify(series, day.date, day.rangeStart, day.rangeEnd)
	if err != nil {
		var missing *market.MissingDataError
		if errors.As(err, &missing) {
			return err // recoverable: no window data, skip the day
		}
		return err
	}
	if signal.Direction == strategy.NoTrade {
		return nil
	}

	entryBars := series.After(day.rangeEnd, day.sessionEnd)
	entry, ok := trigger.Scan(entryBars, signal.Direction)
	if !ok {
		return nil // no confirmation before session end: a valid no-entry
	}

	atr := cand.ATR14
	if atr == 0 {
		if bar, err := series.At(entry.Time); err == nil {
			atr = bar.ATR14
		}
	}

	pos := strategy.NewPosition(cand.Ticker, day.date, signal.Direction)
	if err := pos.Open(entry, monitor.StopLoss(entry.Price, atr, signal.Direction)); err != nil {
		return err
	}
	if err := r.Ledger.Append(journal.Record{
		Status:       journal.StatusOpen,
		Ticker:       pos.Ticker,
		Price:        pos.EntryPrice,
		Time:         pos.EntryTime,
		PositionType: string(pos.Direction),
	}); err != nil {
		return fmt.Errorf("append open record: %w", err)
	}

	exit, err := monitor.Run(pos, series.After(entry.Time, day.sessionEnd), series, day.sessionEnd)
	if err != nil {
		// Session-end bar missing: the close side is excluded rather
		// than fabricated. The pairing pass surfaces the dangling open.
		log.Error().Str("ticker", pos.Ticker).Str("date", day.date).Err(err).
			Msg("no session-end bar; close record excluded")
		return nil
	}

	if err := pos.Close(exit.Time, exit.Price, exit.Reason); err != nil {
		return err
	}
	return r.Ledger.Append(journal.Record{
		Status:       journal.StatusClose,
		Ticker:       pos.Ticker,
		Price:        pos.ExitPrice,
		Time:         pos.ExitTime,
		PositionType: string(pos.Direction),
	})
}

// settle reduces the ledger: match pairs, fold capital, compute metrics.
func (r *Runner) settle(result *Result, session *market.Session, log zerolog.Logger) (*Result, error) {
	records, err := r.Ledger.Records()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	pairs, integrity := journal.MatchPairs(records, session.DateKey)
	for _, ie := range integrity {
		log.Warn().Str("date", ie.Date).Str("ticker", ie.Ticker).Msg(ie.Error())
	}
	result.IntegrityErrors = integrity

	result.Summary = portfolio.Settle(pairs, portfolio.Options{
		StartingCapital: r.Cfg.Account.StartingCapital,
		Costs: portfolio.Costs{
			CommissionPerShare: r.Cfg.Costs.CommissionPerShare,
			BorrowRate:         r.Cfg.Costs.BorrowRate,
			BorrowFeeEnabled:   r.Cfg.Costs.BorrowFeeEnabled,
		},
		RefreshAllocations: r.Cfg.Account.RefreshAllocations,
	})

	metrics, err := perf.Analyze(perf.Inputs{
		DailyReturns:    result.Summary.DailyReturns,
		CapitalCurve:    result.Summary.CapitalCurve,
		StartingCapital: r.Cfg.Account.StartingCapital,
		FinalCapital:    result.Summary.FinalCapital,
		RiskFreeRate:    r.Cfg.Account.RiskFreeRate,
		Benchmark:       r.Benchmark,
	})
	if err != nil {
		// Degenerate series (too short, zero volatility) is a reported
		// condition, not a run failure.
		log.Warn().Err(err).Msg("metrics incomplete")
		result.MetricsNote = err.Error()
	}
	result.Metrics = metrics

	return result, nil
}

func newSession(cfg *config.Config) (*market.Session, error) {
	closeAt, err := market.ParseClock(cfg.Session.Close)
	if err != nil {
		return nil, err
	}
	halfCloseAt, err := market.ParseClock(cfg.Session.HalfDayClose)
	if err != nil {
		return nil, err
	}
	return market.NewSession(cfg.Session.Timezone, closeAt, halfCloseAt, cfg.Session.HalfDays)
}
