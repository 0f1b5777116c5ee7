package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/orb/config"
	"github.com/rustyeddy/orb/feed"
	"github.com/rustyeddy/orb/indicators"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Precompute indicator columns on raw minute bars",
	Long: `Enrich reads raw minute-bar CSVs, attaches ATR_14, rolling average
volume and relative volume, and writes the enriched files the scanner
and backtest read. Runs once per dataset.`,
	RunE: runEnrich,
}

var (
	enrichConfigPath string
	enrichIn         string
	enrichOut        string
	enrichATRPeriod  int
	enrichAvgDays    int
)

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().StringVarP(&enrichConfigPath, "config", "c", "orb.yaml", "path to config file")
	enrichCmd.Flags().StringVarP(&enrichIn, "in", "i", "historical_data", "raw bars directory")
	enrichCmd.Flags().StringVarP(&enrichOut, "out", "o", "processed_data", "enriched bars directory")
	enrichCmd.Flags().IntVar(&enrichATRPeriod, "atr-period", 14, "ATR period in bars")
	enrichCmd.Flags().IntVar(&enrichAvgDays, "avg-days", 14, "average-volume window in trading days")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.LoadFromFile(enrichConfigPath)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		return fmt.Errorf("session timezone: %w", err)
	}

	if err := os.MkdirAll(enrichOut, 0755); err != nil {
		return err
	}

	tickers, err := listTickers(enrichIn)
	if err != nil {
		return err
	}

	store := feed.NewCSVStore(enrichIn, loc, log)
	icfg := indicators.Config{
		ATRPeriod: enrichATRPeriod,
		// 390 minute bars per regular session.
		AvgVolumeBars: enrichAvgDays * 390,
	}

	for _, ticker := range tickers {
		series, err := store.Bars(ticker)
		if err != nil {
			log.Warn().Str("ticker", ticker).Err(err).Msg("skipping ticker")
			continue
		}
		if err := indicators.Enrich(series, icfg); err != nil {
			return fmt.Errorf("enrich %s: %w", ticker, err)
		}
		out := filepath.Join(enrichOut, ticker+".csv")
		if err := feed.SaveBars(out, series); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		log.Debug().Str("ticker", ticker).Int("bars", len(series.Bars)).Msg("enriched")
	}

	log.Info().Int("tickers", len(tickers)).Str("out", enrichOut).Msg("enrichment complete")
	return nil
}
