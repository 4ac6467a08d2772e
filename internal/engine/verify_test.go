package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/zerocopy/internal/event"
	"github.com/bamsammich/zerocopy/internal/stats"
)

func TestVerifyFileMatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("same bytes"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("same bytes"), 0644))

	events := make(chan event.Event, 4)
	collector := stats.NewCollector()

	result, err := VerifyFile(src, dst, events, collector)
	require.NoError(t, err)
	assert.True(t, result.Match())
	assert.Equal(t, int64(1), collector.Snapshot().Verified)

	assert.Equal(t, event.VerifyStarted, (<-events).Type)
	assert.Equal(t, event.VerifyOK, (<-events).Type)
}

func TestVerifyFileMismatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("original"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("corrupted"), 0644))

	collector := stats.NewCollector()
	result, err := VerifyFile(src, dst, nil, collector)
	require.ErrorIs(t, err, ErrVerifyFailed)
	assert.False(t, result.Match())
	assert.NotEqual(t, result.SrcHash, result.DstHash)
	assert.Equal(t, int64(1), collector.Snapshot().VerifyFailed)
}

func TestVerifyFileMissingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0644))

	result, err := VerifyFile(src, filepath.Join(dir, "missing"), nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVerifyFailed)
	assert.NotEmpty(t, result.SrcHash)
	assert.Empty(t, result.DstHash)
}
