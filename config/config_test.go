package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/bondmarket/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "storage:\n  dsn: \":memory:\"\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, uint64(500), cfg.Market.ProtocolFeeBps)
	assert.Equal(t, uint64(500), cfg.Market.SubjectFeeBps)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Market.Vault)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_DSN", "override.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "override.db", cfg.Storage.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_FeePolicy(t *testing.T) {
	path := writeConfig(t, "market:\n  protocol_fee_bps: 250\n  subject_fee_bps: 9800\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, err = cfg.FeePolicy()
	assert.Error(t, err, "250+9800 bps supera la base")
}

func TestConfig_Addresses(t *testing.T) {
	cfg := config.Default()
	assert.NotEqual(t, cfg.VaultAddress(), cfg.FeeDestinationAddress())
}
