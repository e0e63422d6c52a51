package vaultindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportSealedRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init([]byte("sync-passphrase-1234")))
	_, err := s.AddNote("Remote Note", "synced from elsewhere")
	require.NoError(t, err)

	raw, version, err := s.ExportSealed()
	require.NoError(t, err)
	assert.Greater(t, version, int64(0))

	require.NoError(t, s.ImportSealed(raw))

	summaries, err := s.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Remote Note", summaries[0].Title)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.NotNil(t, stats.LastSync)
}
