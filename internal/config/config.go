// Package config provides configuration loading and management for
// promptsmith.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Dir is the per-project directory holding config and local state.
const Dir = ".promptsmith"

// DefaultFile is the config file path relative to the working directory.
var DefaultFile = filepath.Join(Dir, "config.json")

// Config is the root configuration.
type Config struct {
	DefaultProvider string                    `json:"default_provider"  mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `json:"providers"         mapstructure:"providers"`
	Compare         CompareConfig             `json:"compare,omitempty" mapstructure:"compare"`
}

// ProviderConfig describes one named generation provider.
type ProviderConfig struct {
	Type           string `json:"type"                      mapstructure:"type"`
	Model          string `json:"model"                     mapstructure:"model"`
	BaseURL        string `json:"base_url,omitempty"        mapstructure:"base_url"`
	APIKey         string `json:"api_key,omitempty"         mapstructure:"api_key"`
	APIKeyEnv      string `json:"api_key_env,omitempty"     mapstructure:"api_key_env"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
}

// Timeout returns the configured request timeout.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// CompareConfig names the two providers used by side-by-side comparison.
type CompareConfig struct {
	A string `json:"a,omitempty" mapstructure:"a"`
	B string `json:"b,omitempty" mapstructure:"b"`
}

// Provider resolves a named provider, falling back to the default provider
// when name is empty.
func (c Config) Provider(name string) (string, ProviderConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	if name == "" {
		return "", ProviderConfig{}, fmt.Errorf("no provider requested and default_provider is not set")
	}
	p, ok := c.Providers[name]
	if !ok {
		names := make([]string, 0, len(c.Providers))
		for n := range c.Providers {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", ProviderConfig{}, fmt.Errorf("unknown provider %q (configured: %v)", name, names)
	}
	return name, p, nil
}

// ComparePair resolves the two compare providers, honoring flag overrides.
func (c Config) ComparePair(overrideA, overrideB string) (a, b string, err error) {
	a = overrideA
	if a == "" {
		a = c.Compare.A
	}
	b = overrideB
	if b == "" {
		b = c.Compare.B
	}
	if a == "" || b == "" {
		return "", "", fmt.Errorf("compare needs two providers (set compare.a/compare.b or pass --provider-a/--provider-b)")
	}
	return a, b, nil
}

// Default returns the starter configuration written by `promptsmith config init`.
func Default() Config {
	return Config{
		DefaultProvider: "openai",
		Providers: map[string]ProviderConfig{
			"openai": {
				Type:  "openai",
				Model: "gpt-5-mini",
			},
			"gemini": {
				Type:  "gemini",
				Model: "gemini-2.5-flash",
			},
		},
		Compare: CompareConfig{A: "openai", B: "gemini"},
	}
}

// WriteDefault writes the starter configuration to path, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
