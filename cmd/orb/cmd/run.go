package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/orb/backtest"
	"github.com/rustyeddy/orb/config"
	"github.com/rustyeddy/orb/feed"
	"github.com/rustyeddy/orb/journal"
	"github.com/rustyeddy/orb/perf"
	"github.com/rustyeddy/orb/portfolio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full opening-range breakout backtest",
	Long: `Run executes the backtest described by the config file: for every
trading day in the candidates file, classify the opening range, wait for
the confirmation move, monitor the stop, and force-close at session end;
then fold the ledger into capital and risk metrics.

Example:
  orb run -c orb.yaml --preset strict`,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runPreset     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "orb.yaml", "path to config file")
	runCmd.Flags().StringVar(&runPreset, "preset", "", "strategy preset (strict, majority)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}
	if runPreset != "" {
		if err := cfg.Preset(runPreset); err != nil {
			return err
		}
	}

	loc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		return fmt.Errorf("session timezone: %w", err)
	}

	candidates, err := feed.LoadCandidates(cfg.Data.CandidatesFile)
	if err != nil {
		return err
	}

	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer ledger.Close()

	var benchmark []float64
	if cfg.Data.BenchmarkFile != "" {
		benchmark, err = perf.LoadBenchmark(cfg.Data.BenchmarkFile)
		if err != nil {
			return err
		}
	}

	runner := &backtest.Runner{
		Cfg:        cfg,
		Store:      feed.NewCSVStore(cfg.Data.BarsDir, loc, log),
		Candidates: candidates,
		Ledger:     ledger,
		Benchmark:  benchmark,
		Log:        log,
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	if cfg.Journal.DetailsFile != "" {
		if err := portfolio.SaveDetails(cfg.Journal.DetailsFile, result.Summary.Outcomes); err != nil {
			return err
		}
	}
	if cfg.Journal.MetricsFile != "" {
		if err := perf.SaveSummary(cfg.Journal.MetricsFile, result.Metrics); err != nil {
			return err
		}
	}

	result.Print(os.Stdout)
	return nil
}

func openLedger(cfg *config.Config) (journal.Ledger, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.NewCSV(cfg.Journal.LedgerFile)
	}
}
