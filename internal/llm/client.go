// Package llm provides generation clients for the prompt workbench: a
// streaming text capability used by single runs and chains, and a structured
// JSON capability used by refinement.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Generator is the capability surface the workbench depends on.
//
// Stream must invoke onChunk with incremental text in source order, return
// only once the stream is exhausted, and stop invoking onChunk after a
// failure. GenerateStructured performs one non-streaming call whose
// instructions demand a JSON document and returns the raw output text.
type Generator interface {
	Stream(ctx context.Context, promptText string, onChunk func(string)) error
	GenerateStructured(ctx context.Context, instructions, input string) (string, error)
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const defaultTimeout = 120 * time.Second

// Config selects and configures a provider client.
type Config struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKey    string
	APIKeyEnv string
	Timeout   time.Duration
}

// New builds a Generator for the configured provider.
func New(ctx context.Context, cfg Config, httpClient *http.Client) (Generator, error) {
	switch strings.TrimSpace(cfg.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg, httpClient)
	case ProviderGemini:
		return NewGemini(ctx, cfg, httpClient)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
