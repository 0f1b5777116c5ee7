// Package indicators precomputes the indicator columns the strategy and
// scanner read: ATR_14, a rolling average volume, and relative volume.
// This runs offline, once per dataset; the trading code never derives
// indicators on the fly.
package indicators

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/rustyeddy/orb/market"
)

// Config for the enrichment pass.
type Config struct {
	ATRPeriod int
	// AvgVolumeBars is the rolling window for average volume, in bars.
	// 14 trading days of minute bars is 14 * 390.
	AvgVolumeBars int
}

// DefaultConfig matches the reference dataset.
func DefaultConfig() Config {
	return Config{ATRPeriod: 14, AvgVolumeBars: 14 * 390}
}

// Enrich fills the ATR14, AvgVolume and RelVolume fields of every bar in
// place. Bars inside the warmup window keep zero values.
func Enrich(s *market.Series, cfg Config) error {
	if cfg.ATRPeriod <= 0 || cfg.AvgVolumeBars <= 0 {
		return fmt.Errorf("indicators: periods must be positive")
	}
	n := len(s.Bars)
	if n == 0 {
		return nil
	}

	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range s.Bars {
		high[i], low[i], closes[i], volume[i] = b.High, b.Low, b.Close, b.Volume
	}

	if n > cfg.ATRPeriod {
		atr := talib.Atr(high, low, closes, cfg.ATRPeriod)
		for i := range s.Bars {
			s.Bars[i].ATR14 = atr[i]
		}
	}

	if n >= cfg.AvgVolumeBars {
		avg := talib.Sma(volume, cfg.AvgVolumeBars)
		for i := range s.Bars {
			s.Bars[i].AvgVolume = avg[i]
			if avg[i] > 0 {
				s.Bars[i].RelVolume = volume[i] / avg[i]
			}
		}
	}

	return nil
}
