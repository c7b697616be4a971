package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigOverlaysDefinedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
home = "gemini://example.org/"
max_redirects = 10
connect_timeout_seconds = 5
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "gemini://example.org/", cfg.Home)
	require.Equal(t, 10, cfg.MaxRedirects)
	require.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	// Untouched keys keep their defaults.
	require.Equal(t, defaultConfig().Insecure, cfg.Insecure)
	require.Equal(t, defaultConfig().LogFile, cfg.LogFile)
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("home = ["), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
}
