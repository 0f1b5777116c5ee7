package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcDateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

func rec(status, ticker string, day, hour int, ptype string) Record {
	return Record{
		Status:       status,
		Ticker:       ticker,
		Price:        100,
		Time:         time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC),
		PositionType: ptype,
	}
}

func TestMatchPairs(t *testing.T) {
	t.Parallel()

	records := []Record{
		rec(StatusOpen, "BBB", 2, 14, "short"),
		rec(StatusOpen, "AAA", 2, 15, "long"),
		rec(StatusClose, "BBB", 2, 16, "short"),
		rec(StatusClose, "AAA", 2, 20, "long"),
		rec(StatusOpen, "AAA", 3, 14, "long"),
		rec(StatusClose, "AAA", 3, 20, "long"),
	}

	pairs, errs := MatchPairs(records, utcDateKey)
	require.Empty(t, errs)
	require.Len(t, pairs, 3)

	// date ascending, then ledger appearance within the day
	assert.Equal(t, "BBB", pairs[0].Ticker)
	assert.Equal(t, "2024-01-02", pairs[0].Date)
	assert.Equal(t, "AAA", pairs[1].Ticker)
	assert.Equal(t, "2024-01-02", pairs[1].Date)
	assert.Equal(t, "2024-01-03", pairs[2].Date)

	assert.Equal(t, StatusOpen, pairs[0].Open.Status)
	assert.Equal(t, StatusClose, pairs[0].Close.Status)
}

func TestMatchPairsIntegrity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		records   []Record
		wantPairs int
		wantErrs  int
	}{
		{
			"close without open",
			[]Record{rec(StatusClose, "AAA", 2, 16, "long")},
			0, 1,
		},
		{
			"open without close",
			[]Record{rec(StatusOpen, "AAA", 2, 14, "long")},
			0, 1,
		},
		{
			"extra close still pairs the first",
			[]Record{
				rec(StatusOpen, "AAA", 2, 14, "long"),
				rec(StatusClose, "AAA", 2, 16, "long"),
				rec(StatusClose, "AAA", 2, 17, "long"),
			},
			1, 1,
		},
		{
			"close not after open",
			[]Record{
				rec(StatusOpen, "AAA", 2, 14, "long"),
				rec(StatusClose, "AAA", 2, 14, "long"),
			},
			0, 1,
		},
		{
			"legs disagree on position type",
			[]Record{
				rec(StatusOpen, "AAA", 2, 14, "long"),
				rec(StatusClose, "AAA", 2, 16, "short"),
			},
			0, 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pairs, errs := MatchPairs(tt.records, utcDateKey)
			assert.Len(t, pairs, tt.wantPairs)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestMatchPairsSameTickerDifferentDays(t *testing.T) {
	t.Parallel()

	// an open on day 2 never pairs with a close on day 3
	records := []Record{
		rec(StatusOpen, "AAA", 2, 14, "long"),
		rec(StatusClose, "AAA", 3, 20, "long"),
	}

	pairs, errs := MatchPairs(records, utcDateKey)
	assert.Empty(t, pairs)
	assert.Len(t, errs, 2)
}

func TestMatchPairsDeterministic(t *testing.T) {
	t.Parallel()

	records := []Record{
		rec(StatusOpen, "CCC", 2, 14, "long"),
		rec(StatusOpen, "AAA", 2, 14, "long"),
		rec(StatusOpen, "BBB", 2, 14, "long"),
		rec(StatusClose, "CCC", 2, 20, "long"),
		rec(StatusClose, "AAA", 2, 20, "long"),
		rec(StatusClose, "BBB", 2, 20, "long"),
	}

	first, _ := MatchPairs(records, utcDateKey)
	for i := 0; i < 5; i++ {
		again, _ := MatchPairs(records, utcDateKey)
		require.Equal(t, first, again)
	}
	assert.Equal(t, "CCC", first[0].Ticker)
	assert.Equal(t, "AAA", first[1].Ticker)
	assert.Equal(t, "BBB", first[2].Ticker)
}
