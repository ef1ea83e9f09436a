// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Network != "mainnet" || cfg.LogLevel != "info" || cfg.LogEncoding != "json" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.TokenTimeout != 30*time.Second {
		t.Errorf("TokenTimeout = %v, want 30s", cfg.TokenTimeout)
	}
	if cfg.TokenURL != "" || cfg.MetricsAddr != "" || cfg.LogFile != "" {
		t.Errorf("optional fields should default to empty: %+v", cfg)
	}
	if filepath.Base(cfg.DataDir) != ".nftstake" {
		t.Errorf("DataDir = %q, want a .nftstake directory", cfg.DataDir)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}

	want := filepath.Join("/var/lib/stake", "config.yaml")
	if got := ConfigPath("/var/lib/stake"); got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	want := Config{
		DataDir:      "/srv/nftstake",
		Network:      "local",
		TokenURL:     "http://localhost:1317",
		TokenTimeout: 5 * time.Second,
		MetricsAddr:  ":9100",
		LogLevel:     "debug",
		LogEncoding:  "console",
		LogFile:      "/srv/nftstake/stake.log",
	}

	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if !strings.Contains(string(data), "token_timeout: 5s") {
		t.Errorf("durations should be written in Go syntax, got:\n%s", data)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != want {
		t.Errorf("loaded %+v, saved %+v", got, want)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `# node settings
network: testnet
token_url: https://lcd.testnet.example.com
token_timeout: 2s
not_a_field: ignored
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" || cfg.TokenURL != "https://lcd.testnet.example.com" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.TokenTimeout != 2*time.Second {
		t.Errorf("TokenTimeout = %v, want 2s", cfg.TokenTimeout)
	}
	if cfg.LogLevel != "info" || cfg.LogEncoding != "json" {
		t.Errorf("absent keys lost their defaults: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file: got %v, want ErrConfigNotFound", err)
	}

	bad := writeFile(t, "config.yaml", "network: [unterminated\n")
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidConfigFile) {
		t.Errorf("broken YAML: got %v, want ErrInvalidConfigFile", err)
	}

	badDuration := writeFile(t, "config.yaml", "token_timeout: soon\n")
	if _, err := LoadConfig(badDuration); !errors.Is(err, ErrInvalidConfigFile) {
		t.Errorf("bad duration: got %v, want ErrInvalidConfigFile", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		desc    string
		edit    func(*Config)
		wantErr error // nil means valid
	}{
		{"testnet", func(c *Config) { c.Network = "testnet" }, nil},
		{"local", func(c *Config) { c.Network = "local" }, nil},
		{"upper-case level", func(c *Config) { c.LogLevel = "WARN" }, nil},
		{"error level", func(c *Config) { c.LogLevel = "error" }, nil},
		{"https endpoint", func(c *Config) { c.TokenURL = "https://lcd.example.com:443" }, nil},
		{"metrics on all interfaces", func(c *Config) { c.MetricsAddr = ":9100" }, nil},

		{"no datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"unknown network", func(c *Config) { c.Network = "regtest" }, ErrInvalidNetwork},
		{"unknown level", func(c *Config) { c.LogLevel = "trace" }, ErrInvalidLogLevel},
		{"unknown encoding", func(c *Config) { c.LogEncoding = "logfmt" }, ErrInvalidLogEncoding},
		{"endpoint scheme", func(c *Config) { c.TokenURL = "grpc://lcd.example.com" }, ErrInvalidTokenURL},
		{"endpoint without host", func(c *Config) { c.TokenURL = "http://" }, ErrInvalidTokenURL},
		{"negative timeout", func(c *Config) { c.TokenTimeout = -time.Second }, ErrInvalidTokenTimeout},
		{"metrics without port", func(c *Config) { c.MetricsAddr = "localhost" }, ErrInvalidMetricsAddr},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.edit(&cfg)
			err := ValidateConfig(cfg)
			switch {
			case tc.wantErr == nil && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tc.wantErr != nil && !errors.Is(err, tc.wantErr):
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
