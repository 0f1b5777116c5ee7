package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/orb/config"
	"github.com/rustyeddy/orb/feed"
	"github.com/rustyeddy/orb/market"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan enriched bars for daily trade candidates",
	Long: `Scan filters every ticker in the bars directory by open price,
average volume, ATR and relative volume over the opening-range window,
ranks qualifiers by relative volume, and writes the top N per day to the
candidates CSV the backtest consumes.`,
	RunE: runScan,
}

var (
	scanConfigPath   string
	scanOut          string
	scanMinOpen      float64
	scanMinAvgVolume float64
	scanMinATR       float64
	scanMinRelVolume float64
	scanTopN         int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanConfigPath, "config", "c", "orb.yaml", "path to config file")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "top_daily_stocks.csv", "output candidates CSV")
	scanCmd.Flags().Float64Var(&scanMinOpen, "min-open", 5.0, "minimum open price")
	scanCmd.Flags().Float64Var(&scanMinAvgVolume, "min-avg-volume", 10_000, "minimum rolling average volume")
	scanCmd.Flags().Float64Var(&scanMinATR, "min-atr", 0.5, "minimum ATR_14")
	scanCmd.Flags().Float64Var(&scanMinRelVolume, "min-rel-volume", 2.0, "minimum relative volume")
	scanCmd.Flags().IntVar(&scanTopN, "top", 20, "max candidates per day")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.LoadFromFile(scanConfigPath)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		return fmt.Errorf("session timezone: %w", err)
	}
	windowStart, err := market.ParseClock(cfg.Strategy.OpeningRangeStart)
	if err != nil {
		return err
	}
	windowEnd, err := market.ParseClock(cfg.Strategy.OpeningRangeEnd)
	if err != nil {
		return err
	}

	tickers, err := listTickers(cfg.Data.BarsDir)
	if err != nil {
		return err
	}
	log.Info().Int("tickers", len(tickers)).Str("dir", cfg.Data.BarsDir).Msg("scanning universe")

	scanner := &feed.Scanner{
		Store:       feed.NewCSVStore(cfg.Data.BarsDir, loc, log),
		Loc:         loc,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Thresholds: feed.ScanThresholds{
			MinOpenPrice: scanMinOpen,
			MinAvgVolume: scanMinAvgVolume,
			MinATR:       scanMinATR,
			MinRelVolume: scanMinRelVolume,
			TopN:         scanTopN,
		},
		Log: log,
	}

	rows, err := scanner.Scan(tickers)
	if err != nil {
		return err
	}
	if err := feed.SaveCSV(scanOut, rows); err != nil {
		return err
	}

	log.Info().Int("candidates", len(rows)-1).Str("out", scanOut).Msg("scan complete")
	return nil
}

// listTickers derives ticker names from the bar files in dir.
func listTickers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tickers []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		name = strings.TrimSuffix(name, filepath.Ext(name))
		name = strings.TrimSuffix(name, "_1_min_data")
		tickers = append(tickers, name)
	}
	sort.Strings(tickers)
	return tickers, nil
}
