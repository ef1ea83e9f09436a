package tokensvc

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds a single smart query.
const DefaultTimeout = 30 * time.Second

// Config holds the connection parameters for the chain's smart-query endpoint.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// NetworkPresets contains default endpoints for known networks.
// Public networks are intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]Config{
	"local": {URL: "http://localhost:1317"},
}

// ResolveConfig merges endpoint configuration from three sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (STAKE_TOKEN_URL, STAKE_TOKEN_TIMEOUT)
//  3. Network presets (lowest priority, local only)
func ResolveConfig(flags *Config, env map[string]string, network string) (*Config, error) {
	result := Config{Timeout: DefaultTimeout}

	if preset, ok := NetworkPresets[network]; ok {
		result.URL = preset.URL
	}

	if env != nil {
		if v, ok := env["STAKE_TOKEN_URL"]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env["STAKE_TOKEN_TIMEOUT"]; ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("tokensvc: STAKE_TOKEN_TIMEOUT: %w", err)
			}
			result.Timeout = d
		}
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.Timeout > 0 {
			result.Timeout = flags.Timeout
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s requires an explicit URL (set --token-url or STAKE_TOKEN_URL)",
			ErrNotConfigured, network)
	}
	return &result, nil
}
