package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/orb/config"
	"github.com/rustyeddy/orb/journal"
	"github.com/rustyeddy/orb/market"
	"github.com/rustyeddy/orb/perf"
	"github.com/rustyeddy/orb/portfolio"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Recompute accounting and metrics from an existing ledger",
	Long: `Report replays an existing trade-log CSV through the portfolio
accountant and performance analyzer without re-running the strategy.
Useful for trying different cost or capital settings on the same fills.`,
	RunE: runReport,
}

var (
	reportConfigPath string
	reportLedger     string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportConfigPath, "config", "c", "orb.yaml", "path to config file")
	reportCmd.Flags().StringVarP(&reportLedger, "ledger", "l", "", "trade-log CSV (defaults to journal.ledger_file)")
}

func runReport(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.LoadFromFile(reportConfigPath)
	if err != nil {
		return err
	}

	path := reportLedger
	if path == "" {
		path = cfg.Journal.LedgerFile
	}

	records, err := journal.LoadCSV(path)
	if err != nil {
		return err
	}

	closeAt, err := market.ParseClock(cfg.Session.Close)
	if err != nil {
		return err
	}
	halfCloseAt, err := market.ParseClock(cfg.Session.HalfDayClose)
	if err != nil {
		return err
	}
	session, err := market.NewSession(cfg.Session.Timezone, closeAt, halfCloseAt, cfg.Session.HalfDays)
	if err != nil {
		return err
	}

	pairs, integrity := journal.MatchPairs(records, session.DateKey)
	for _, ie := range integrity {
		log.Warn().Msg(ie.Error())
	}

	summary := portfolio.Settle(pairs, portfolio.Options{
		StartingCapital: cfg.Account.StartingCapital,
		Costs: portfolio.Costs{
			CommissionPerShare: cfg.Costs.CommissionPerShare,
			BorrowRate:         cfg.Costs.BorrowRate,
			BorrowFeeEnabled:   cfg.Costs.BorrowFeeEnabled,
		},
		RefreshAllocations: cfg.Account.RefreshAllocations,
	})

	var benchmark []float64
	if cfg.Data.BenchmarkFile != "" {
		benchmark, err = perf.LoadBenchmark(cfg.Data.BenchmarkFile)
		if err != nil {
			return err
		}
	}

	metrics, err := perf.Analyze(perf.Inputs{
		DailyReturns:    summary.DailyReturns,
		CapitalCurve:    summary.CapitalCurve,
		StartingCapital: cfg.Account.StartingCapital,
		FinalCapital:    summary.FinalCapital,
		RiskFreeRate:    cfg.Account.RiskFreeRate,
		Benchmark:       benchmark,
	})
	if err != nil {
		log.Warn().Err(err).Msg("metrics incomplete")
	}

	if cfg.Journal.DetailsFile != "" {
		if err := portfolio.SaveDetails(cfg.Journal.DetailsFile, summary.Outcomes); err != nil {
			return err
		}
	}
	if cfg.Journal.MetricsFile != "" {
		if err := perf.SaveSummary(cfg.Journal.MetricsFile, metrics); err != nil {
			return err
		}
	}

	return perf.WriteSummary(os.Stdout, metrics)
}
