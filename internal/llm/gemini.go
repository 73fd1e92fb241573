package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiKeyEnv = "GEMINI_API_KEY"

// Gemini wraps the Gemini API for streaming and structured calls.
type Gemini struct {
	model  string
	client *genai.Client
}

// NewGemini constructs a Gemini-backed generator.
func NewGemini(ctx context.Context, cfg Config, httpClient *http.Client) (*Gemini, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envKey := strings.TrimSpace(cfg.APIKeyEnv)
		if envKey == "" {
			envKey = defaultGeminiKeyEnv
		}
		apiKey = strings.TrimSpace(os.Getenv(envKey))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required (set api_key or api_key_env)")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	clientCfg.HTTPClient = httpClient
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{model: model, client: client}, nil
}

// Stream executes one streaming generateContent request, forwarding text
// chunks to onChunk as they arrive.
func (c *Gemini) Stream(ctx context.Context, promptText string, onChunk func(string)) error {
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, genai.Text(promptText), nil) {
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if text := resp.Text(); text != "" {
			onChunk(text)
		}
	}
	return nil
}

// GenerateStructured executes a single JSON-mode generateContent request.
func (c *Gemini) GenerateStructured(ctx context.Context, instructions, input string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(input), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	output := strings.TrimSpace(resp.Text())
	if output == "" {
		return "", fmt.Errorf("gemini response did not contain output text")
	}
	return output, nil
}
