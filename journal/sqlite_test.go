package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)

	for _, r := range testRecords {
		require.NoError(t, j.Append(r))
	}

	got, err := j.Records()
	require.NoError(t, err)
	assert.Equal(t, testRecords, got)
	require.NoError(t, j.Close())
}

func TestSQLitePreservesAppendOrderAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(testRecords[0]))
	require.NoError(t, j.Close())

	j, err = NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.Append(testRecords[1]))

	got, err := j.Records()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, testRecords[0], got[0])
	assert.Equal(t, testRecords[1], got[1])
}
