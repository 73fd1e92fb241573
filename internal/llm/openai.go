package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIKeyEnv  = "OPENAI_API_KEY"
)

// OpenAI wraps the OpenAI Responses API for streaming and structured calls.
type OpenAI struct {
	model  string
	client openai.Client
}

// NewOpenAI constructs an OpenAI-backed generator.
func NewOpenAI(cfg Config, httpClient *http.Client) (*OpenAI, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("openai model is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		envKey := strings.TrimSpace(cfg.APIKeyEnv)
		if envKey == "" {
			envKey = defaultOpenAIKeyEnv
		}
		apiKey = strings.TrimSpace(os.Getenv(envKey))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required (set api_key or api_key_env)")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(timeout),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAI{
		model:  model,
		client: openai.NewClient(opts...),
	}, nil
}

// Stream executes one streaming Responses API request, forwarding output
// text deltas to onChunk as they arrive.
func (c *OpenAI) Stream(ctx context.Context, promptText string, onChunk func(string)) error {
	stream := c.client.Responses.NewStreaming(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(promptText),
		},
	})
	defer func() { _ = stream.Close() }()

	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "response.output_text.delta":
			if event.Delta.OfString != "" {
				onChunk(event.Delta.OfString)
			}
		case "response.failed":
			return fmt.Errorf("openai response failed: %s", event.Response.Error.Message)
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}
	return nil
}

// GenerateStructured executes a single non-streaming Responses API request.
func (c *OpenAI) GenerateStructured(ctx context.Context, instructions, input string) (string, error) {
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(input),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai responses.create: %w", err)
	}
	if msg := strings.TrimSpace(resp.Error.Message); msg != "" {
		return "", fmt.Errorf("openai response failed: %s", msg)
	}

	output := strings.TrimSpace(resp.OutputText())
	if output == "" {
		return "", fmt.Errorf("openai response did not contain output text")
	}
	return output, nil
}
