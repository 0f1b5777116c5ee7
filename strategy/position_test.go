package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionLifecycle(t *testing.T) {
	t.Parallel()

	entryAt := time.Date(2024, 1, 2, 9, 40, 0, 0, time.UTC)
	p := NewPosition("AAA", "2024-01-02", Long)
	assert.Equal(t, Pending, p.Status)

	// closing before opening is a state violation
	err := p.Close(entryAt.Add(time.Minute), 101, ReasonSessionEnd)
	assert.Error(t, err)

	require.NoError(t, p.Open(Entry{Time: entryAt, Price: 100}, 99.25))
	assert.Equal(t, Opened, p.Status)
	assert.InDelta(t, 99.25, p.StopLoss, 1e-12)

	// double open
	err = p.Open(Entry{Time: entryAt, Price: 100}, 99.25)
	assert.Error(t, err)

	require.NoError(t, p.Close(entryAt.Add(time.Minute), 101, ReasonSessionEnd))
	assert.Equal(t, Closed, p.Status)
	assert.Equal(t, ReasonSessionEnd, p.ExitReason)

	// double close
	err = p.Close(entryAt.Add(2*time.Minute), 102, ReasonSessionEnd)
	assert.Error(t, err)
}

func TestPositionCloseMustFollowEntry(t *testing.T) {
	t.Parallel()

	entryAt := time.Date(2024, 1, 2, 9, 40, 0, 0, time.UTC)
	p := NewPosition("AAA", "2024-01-02", Short)
	require.NoError(t, p.Open(Entry{Time: entryAt, Price: 50}, 50.5))

	err := p.Close(entryAt, 50.1, ReasonStopLoss)
	assert.Error(t, err)
	assert.Equal(t, Opened, p.Status)
}
