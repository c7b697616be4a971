package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/knowfox/comet/browser"
	"github.com/knowfox/comet/gemini"
)

// Config is the resolved runtime configuration: built-in defaults,
// overlaid by the config file, overlaid by flags.
type Config struct {
	Home           string
	Insecure       bool
	MaxRedirects   int
	ConnectTimeout time.Duration
	LogFile        string
}

func defaultConfig() Config {
	return Config{
		Home:           "gemini://geminiprotocol.net/",
		Insecure:       true,
		MaxRedirects:   browser.DefaultMaxRedirects,
		ConnectTimeout: gemini.DefaultTimeout,
	}
}

// comet config.toml key mapping.
type fileConfig struct {
	Home                  string `toml:"home"`
	Insecure              bool   `toml:"insecure"`
	MaxRedirects          int    `toml:"max_redirects"`
	ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds"`
	LogFile               string `toml:"log_file"`
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "comet", "config.toml")
	}
	return ""
}

// loadConfig overlays the TOML file at path onto the defaults. A
// missing file is not an error: the defaults stand.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("home") {
		cfg.Home = strings.TrimSpace(raw.Home)
	}
	if meta.IsDefined("insecure") {
		cfg.Insecure = raw.Insecure
	}
	if meta.IsDefined("max_redirects") {
		cfg.MaxRedirects = raw.MaxRedirects
	}
	if meta.IsDefined("connect_timeout_seconds") {
		cfg.ConnectTimeout = time.Duration(raw.ConnectTimeoutSeconds) * time.Second
	}
	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}
	return cfg, nil
}
