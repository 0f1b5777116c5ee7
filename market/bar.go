package market

import "time"

// Bar is a single minute-resolution OHLCV bar. Indicator fields are
// attached by the offline enrichment pass and are zero until then.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	ATR14     float64
	AvgVolume float64
	RelVolume float64
}

// Green reports whether the bar closed above its open.
func (b Bar) Green() bool {
	return b.Close > b.Open
}
