package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "png", cfg.PreferredCarrier)
	assert.GreaterOrEqual(t, cfg.KDF.MemoryCost, uint32(64*1024))
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.DecoyRatio = 3
	require.NoError(t, cfg.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.DecoyRatio)
}

func TestValidateRejectsBadCarrier(t *testing.T) {
	cfg := Default()
	cfg.PreferredCarrier = "gif"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := Default()
	cfg.AutoLockTimeoutMs = -1
	assert.Error(t, cfg.Validate())
}
