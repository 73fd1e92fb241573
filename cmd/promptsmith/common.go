package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/promptsmith/promptsmith/internal/config"
	"github.com/promptsmith/promptsmith/internal/llm"
	"github.com/promptsmith/promptsmith/internal/prompt"
	"github.com/promptsmith/promptsmith/internal/store"
)

func openDB() (*store.Store, func(), error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, func() {}, err
	}
	stateDir := filepath.Join(workDir, config.Dir)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, func() {}, err
	}
	db, err := store.Open(filepath.Join(stateDir, "promptsmith.db"))
	if err != nil {
		return nil, func() {}, err
	}
	return store.NewStore(db), func() { _ = db.Close() }, nil
}

func loadConfig() (config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("read config (run `promptsmith config init`?): %w", err)
	}
	if err := config.ValidateSettings(viper.AllSettings()); err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func buildGenerator(ctx context.Context, cfg config.Config, providerName string) (string, llm.Generator, error) {
	name, p, err := cfg.Provider(providerName)
	if err != nil {
		return "", nil, err
	}
	gen, err := llm.New(ctx, llm.Config{
		Provider:  p.Type,
		Model:     p.Model,
		BaseURL:   p.BaseURL,
		APIKey:    p.APIKey,
		APIKeyEnv: p.APIKeyEnv,
		Timeout:   p.Timeout(),
	}, nil)
	if err != nil {
		return "", nil, fmt.Errorf("provider %q: %w", name, err)
	}
	return name, gen, nil
}

// parseVarFlags converts repeated --var name=value flags into a scope.
func parseVarFlags(pairs []string) (prompt.Scope, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	scope := prompt.Scope{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, want name=value", pair)
		}
		scope[name] = value
	}
	return scope, nil
}

// buildScope layers variable sources: chain file defaults, then the named
// scenario, then --var flags, later sources winning.
func buildScope(ctx context.Context, s *store.Store, fileVars prompt.Scope, scenarioName string, varFlags []string) (prompt.Scope, error) {
	scope := prompt.Scope{}.Merged(fileVars)
	if scenarioName != "" {
		sc, err := s.GetScenario(ctx, scenarioName)
		if err != nil {
			return nil, err
		}
		scope = scope.Merged(sc.Vars)
	}
	flagVars, err := parseVarFlags(varFlags)
	if err != nil {
		return nil, err
	}
	return scope.Merged(flagVars), nil
}
