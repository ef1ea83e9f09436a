// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration of a staking ledger node.
type Config struct {
	DataDir      string        `yaml:"datadir"`
	Network      string        `yaml:"network"`
	TokenURL     string        `yaml:"token_url"`     // smart-query endpoint of the NFT chain
	TokenTimeout time.Duration `yaml:"token_timeout"` // per-query timeout
	MetricsAddr  string        `yaml:"metrics_addr"`  // empty disables the metrics listener
	LogLevel     string        `yaml:"log_level"`
	LogEncoding  string        `yaml:"log_encoding"`
	LogFile      string        `yaml:"log_file"` // empty logs to stdout
}

// DefaultDataDir returns ~/.nftstake, or ./.nftstake when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nftstake"
	}
	return filepath.Join(home, ".nftstake")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		Network:      "mainnet",
		TokenTimeout: 30 * time.Second,
		LogLevel:     "info",
		LogEncoding:  "json",
	}
}

// ConfigPath returns the configuration file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
// Keys absent from the file keep their defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
