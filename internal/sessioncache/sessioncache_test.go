package sessioncache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/slasshy/slasshy/internal/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, ".session"), time.Minute)

	key, err := primitives.RandomBytes(32)
	require.NoError(t, err)

	require.NoError(t, c.Put(key))
	assert.True(t, c.HasActive())

	got, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestGetMissingReturnsNoSession(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, ".session"), time.Minute)

	_, err := c.Get()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpiredSessionCleared(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, ".session"), 20*time.Millisecond)

	key, err := primitives.RandomBytes(32)
	require.NoError(t, err)
	require.NoError(t, c.Put(key))

	time.Sleep(60 * time.Millisecond)
	_, err = c.Get()
	assert.ErrorIs(t, err, ErrExpired)
	assert.False(t, c.HasActive())
}

func TestClearRemovesFile(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, ".session"), time.Minute)

	key, err := primitives.RandomBytes(32)
	require.NoError(t, err)
	require.NoError(t, c.Put(key))
	require.NoError(t, c.Clear())

	_, err = c.Get()
	assert.ErrorIs(t, err, ErrNoSession)
}
