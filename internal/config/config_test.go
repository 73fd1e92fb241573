package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestProviderFallsBackToDefault(t *testing.T) {
	t.Parallel()

	cfg := Config{
		DefaultProvider: "openai",
		Providers: map[string]ProviderConfig{
			"openai": {Type: "openai", Model: "gpt-5-mini"},
		},
	}

	name, p, err := cfg.Provider("")
	if err != nil {
		t.Fatalf("Provider returned error: %v", err)
	}
	if name != "openai" || p.Model != "gpt-5-mini" {
		t.Fatalf("provider = %q %+v", name, p)
	}
}

func TestProviderUnknownNameListsConfigured(t *testing.T) {
	t.Parallel()

	cfg := Config{Providers: map[string]ProviderConfig{"openai": {Type: "openai", Model: "m"}}}
	_, _, err := cfg.Provider("bogus")
	if err == nil {
		t.Fatal("Provider returned nil error, want error")
	}
	if !strings.Contains(err.Error(), "openai") {
		t.Fatalf("error %q should list configured providers", err.Error())
	}
}

func TestComparePairFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	cfg := Config{Compare: CompareConfig{A: "openai", B: "gemini"}}
	a, b, err := cfg.ComparePair("", "local")
	if err != nil {
		t.Fatalf("ComparePair returned error: %v", err)
	}
	if a != "openai" || b != "local" {
		t.Fatalf("pair = %q/%q", a, b)
	}

	_, _, err = Config{}.ComparePair("", "")
	if err == nil {
		t.Fatal("ComparePair with no providers returned nil error, want error")
	}
}

func TestValidateSettingsAcceptsDefaultConfig(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"default_provider": "openai",
		"providers": map[string]any{
			"openai": map[string]any{"type": "openai", "model": "gpt-5-mini"},
		},
		"compare": map[string]any{"a": "openai", "b": "gemini"},
	}
	if err := ValidateSettings(settings); err != nil {
		t.Fatalf("ValidateSettings returned error: %v", err)
	}
}

func TestValidateSettingsRejectsUnknownProviderType(t *testing.T) {
	t.Parallel()

	settings := map[string]any{
		"providers": map[string]any{
			"weird": map[string]any{"type": "smoke-signals", "model": "m"},
		},
	}
	err := ValidateSettings(settings)
	if err == nil {
		t.Fatal("ValidateSettings returned nil error, want error")
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault returned error: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("second WriteDefault returned nil error, want error")
	}
}
