package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/zerocopy/internal/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("ZEROCOPY_CONFIG", "")

	configDir := filepath.Join(dir, "zerocopy")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ZEROCOPY_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.BWLimit)
	assert.Nil(t, cfg.Serve.Listen)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
verify = true
bwlimit = "100MB"
chunk = "8M"
log = "/tmp/zerocopy.json"

[serve]
listen = ":9000"
header = "HTTP/1.0 200 OK\r\n\r\n"
trailer = "--end--"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.Verify)
	assert.True(t, *cfg.Defaults.Verify)

	require.NotNil(t, cfg.Defaults.BWLimit)
	assert.Equal(t, "100MB", *cfg.Defaults.BWLimit)

	require.NotNil(t, cfg.Defaults.Chunk)
	assert.Equal(t, "8M", *cfg.Defaults.Chunk)

	require.NotNil(t, cfg.Defaults.Log)
	assert.Equal(t, "/tmp/zerocopy.json", *cfg.Defaults.Log)

	require.NotNil(t, cfg.Serve.Listen)
	assert.Equal(t, ":9000", *cfg.Serve.Listen)

	require.NotNil(t, cfg.Serve.Header)
	assert.Equal(t, "HTTP/1.0 200 OK\r\n\r\n", *cfg.Serve.Header)

	require.NotNil(t, cfg.Serve.Trailer)
	assert.Equal(t, "--end--", *cfg.Serve.Trailer)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[serve]
listen = "127.0.0.1:7070"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	// Defaults section entirely absent.
	assert.Nil(t, cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.Chunk)

	require.NotNil(t, cfg.Serve.Listen)
	assert.Equal(t, "127.0.0.1:7070", *cfg.Serve.Listen)
	assert.Nil(t, cfg.Serve.Header)
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, "invalid [[[")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[defaults]\nverify = false\n"), 0o644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Defaults.Verify)
	assert.False(t, *cfg.Defaults.Verify)
}

func TestPath(t *testing.T) {
	t.Setenv("ZEROCOPY_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/zerocopy/config.toml", config.Path())

	t.Setenv("ZEROCOPY_CONFIG", "/etc/zerocopy.toml")
	assert.Equal(t, "/etc/zerocopy.toml", config.Path())
}
