package config

import "fmt"

// Preset applies a named strategy variant on top of the current config.
// The historical variants of this strategy differed only in thresholds
// and windows, so each one is data, not a separate code path.
func (c *Config) Preset(name string) error {
	switch name {
	case "strict":
		// Unanimous opening range over 09:30-09:35, 1-minute exit checks
		// coarsened to 5 minutes.
		c.Strategy.OpeningRangeStart = "09:30"
		c.Strategy.OpeningRangeEnd = "09:35"
		c.Strategy.PositiveHigh = 5
		c.Strategy.PositiveLow = 1
		c.Strategy.MonitoringInterval = "5m"

	case "majority":
		// 4-of-5 over 09:31-09:35, every-bar exit checks.
		c.Strategy.OpeningRangeStart = "09:31"
		c.Strategy.OpeningRangeEnd = "09:35"
		c.Strategy.PositiveHigh = 4
		c.Strategy.PositiveLow = 1
		c.Strategy.MonitoringInterval = ""

	default:
		return fmt.Errorf("unknown preset %q (supported: strict, majority)", name)
	}
	return nil
}
