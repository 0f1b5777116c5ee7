package cmd

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orb",
	Short: "Opening-range breakout backtester",
	Long: `orb backtests an intraday opening-range breakout strategy over
historical minute bars.

It provides tools for:
  - Enriching raw minute bars with ATR and volume indicators
  - Scanning the universe for daily trade candidates
  - Running the full breakout backtest with ledger output
  - Recomputing portfolio accounting and risk metrics from a ledger`,
}

var verbose bool

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; flags and config files win.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
