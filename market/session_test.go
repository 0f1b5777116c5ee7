package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()

	closeAt, err := ParseClock("15:55")
	require.NoError(t, err)
	halfAt, err := ParseClock("12:55")
	require.NoError(t, err)

	s, err := NewSession("America/New_York", closeAt, halfAt, []string{"2023-11-24"})
	require.NoError(t, err)
	return s
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"09:30", Clock{9, 30}, false},
		{"15:55", Clock{15, 55}, false},
		{"25:00", Clock{}, true},
		{"nine", Clock{}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionEndHonorsHalfDays(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	full := time.Date(2023, 11, 22, 0, 0, 0, 0, s.Location())
	end := s.End(full)
	assert.Equal(t, 15, end.Hour())
	assert.Equal(t, 55, end.Minute())
	assert.False(t, s.IsHalfDay(full))

	half := time.Date(2023, 11, 24, 0, 0, 0, 0, s.Location())
	end = s.End(half)
	assert.Equal(t, 12, end.Hour())
	assert.Equal(t, 55, end.Minute())
	assert.True(t, s.IsHalfDay(half))
}

func TestDateKeyUsesSessionTimezone(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)

	// 01:00 UTC on Jan 3 is still Jan 2 evening in New York.
	utc := time.Date(2024, 1, 3, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-02", s.DateKey(utc))
}

func TestNewSessionRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewSession("Not/AZone", Clock{15, 55}, Clock{12, 55}, nil)
	assert.Error(t, err)

	_, err = NewSession("America/New_York", Clock{15, 55}, Clock{12, 55}, []string{"July 3rd"})
	assert.Error(t, err)
}
