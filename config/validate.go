// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

var (
	networks     = []string{"mainnet", "testnet", "local"}
	logLevels    = []string{"debug", "info", "warn", "error"}
	logEncodings = []string{"json", "console"}
)

// ValidateConfig reports the first invalid field of cfg, or nil.
func ValidateConfig(cfg Config) error {
	switch {
	case cfg.DataDir == "":
		return ErrEmptyDataDir
	case !oneOf(cfg.Network, networks):
		return fmt.Errorf("%w: %q", ErrInvalidNetwork, cfg.Network)
	case !oneOf(strings.ToLower(cfg.LogLevel), logLevels):
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	case !oneOf(cfg.LogEncoding, logEncodings):
		return fmt.Errorf("%w: %q", ErrInvalidLogEncoding, cfg.LogEncoding)
	case cfg.TokenTimeout < 0:
		return fmt.Errorf("%w: %s", ErrInvalidTokenTimeout, cfg.TokenTimeout)
	}

	if cfg.TokenURL != "" {
		u, err := url.Parse(cfg.TokenURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTokenURL, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidTokenURL, cfg.TokenURL)
		}
	}

	// Empty disables the metrics listener.
	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidMetricsAddr, err)
		}
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
