package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/orb/market"
)

func closesAt(start time.Time, closes ...float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Time: start.Add(time.Duration(i) * time.Minute), Close: c}
	}
	return bars
}

func TestEntryTriggerLong(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 2, 9, 36, 0, 0, time.UTC)
	trigger := EntryTrigger{ConfirmationPct: 0.0025}

	// reference 100; long fires at first close <= 99.75
	bars := closesAt(start, 100, 99.9, 99.76, 99.74, 99.0)

	entry, ok := trigger.Scan(bars, Long)
	require.True(t, ok)
	assert.InDelta(t, 99.74, entry.Price, 1e-12)
	assert.Equal(t, start.Add(3*time.Minute), entry.Time)
	assert.InDelta(t, 100.0, entry.Reference, 1e-12)
}

func TestEntryTriggerShort(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 2, 9, 36, 0, 0, time.UTC)
	trigger := EntryTrigger{ConfirmationPct: 0.0025}

	// reference 100; short fires at first close >= 100.25
	bars := closesAt(start, 100, 100.1, 100.26, 101)

	entry, ok := trigger.Scan(bars, Short)
	require.True(t, ok)
	assert.InDelta(t, 100.26, entry.Price, 1e-12)
	assert.Equal(t, start.Add(2*time.Minute), entry.Time)
}

func TestEntryTriggerNoEntry(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 2, 9, 36, 0, 0, time.UTC)
	trigger := EntryTrigger{ConfirmationPct: 0.0025}

	// never dips far enough for a long entry: a valid no-entry day
	bars := closesAt(start, 100, 99.8, 99.9, 100.2)

	_, ok := trigger.Scan(bars, Long)
	assert.False(t, ok)

	_, ok = trigger.Scan(nil, Long)
	assert.False(t, ok)

	_, ok = trigger.Scan(bars, NoTrade)
	assert.False(t, ok)
}
