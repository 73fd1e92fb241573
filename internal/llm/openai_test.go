package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestOpenAIStreamForwardsDeltasInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("path = %q, want /responses", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		if req["stream"] != true {
			t.Errorf("stream = %v, want true", req["stream"])
		}

		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`{"type":"response.output_text.delta","delta":"Bees "}`,
			`{"type":"response.output_text.delta","delta":"are "}`,
			`{"type":"response.output_text.delta","delta":"great."}`,
			`{"type":"response.completed","response":{}}`,
		}
		for _, ev := range events {
			_, _ = io.WriteString(w, "data: "+ev+"\n\n")
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAI(Config{
		Model:   "gpt-5",
		BaseURL: srv.URL,
		APIKey:  "test-api-key",
	}, srv.Client())
	if err != nil {
		t.Fatalf("NewOpenAI returned error: %v", err)
	}

	var got []string
	if err := client.Stream(context.Background(), "Summarize bees", func(chunk string) {
		got = append(got, chunk)
	}); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if strings.Join(got, "") != "Bees are great." {
		t.Fatalf("chunks = %v, want ordered delta text", got)
	}
}

func TestOpenAIStreamSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded"}}`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAI(Config{
		Model:   "gpt-5",
		BaseURL: srv.URL,
		APIKey:  "test-api-key",
	}, srv.Client())
	if err != nil {
		t.Fatalf("NewOpenAI returned error: %v", err)
	}

	calls := 0
	err = client.Stream(context.Background(), "hello", func(string) { calls++ })
	if err == nil {
		t.Fatal("Stream returned nil error, want error")
	}
	if calls != 0 {
		t.Fatalf("onChunk called %d times after failure, want 0", calls)
	}
}

func TestOpenAIGenerateStructuredParsesOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"error": {"code": "", "message": ""},
			"output": [
				{
					"type": "message",
					"role": "assistant",
					"content": [
						{"type": "output_text", "text": "{\"score\":5}", "annotations": []}
					]
				}
			]
		}`)
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAI(Config{
		Model:   "gpt-5",
		BaseURL: srv.URL,
		APIKey:  "test-api-key",
	}, srv.Client())
	if err != nil {
		t.Fatalf("NewOpenAI returned error: %v", err)
	}

	out, err := client.GenerateStructured(context.Background(), "Output only JSON.", "critique this")
	if err != nil {
		t.Fatalf("GenerateStructured returned error: %v", err)
	}
	if out != `{"score":5}` {
		t.Fatalf("output = %q, want %q", out, `{"score":5}`)
	}
}

func TestNewOpenAIRequiresAPIKey(t *testing.T) {
	const envKey = "PROMPTSMITH_OPENAI_MISSING_KEY"
	if err := os.Unsetenv(envKey); err != nil {
		t.Fatalf("unset env: %v", err)
	}

	_, err := NewOpenAI(Config{
		Model:     "gpt-5",
		BaseURL:   "http://127.0.0.1",
		APIKeyEnv: envKey,
	}, nil)
	if err == nil {
		t.Fatal("NewOpenAI returned nil error, want error")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "martian", Model: "x", APIKey: "k"}, nil)
	if err == nil {
		t.Fatal("New returned nil error, want error")
	}
	if !strings.Contains(err.Error(), "martian") {
		t.Fatalf("error = %q, want provider name", err.Error())
	}
}

func TestNewGeminiRequiresModelAndKey(t *testing.T) {
	_, err := NewGemini(context.Background(), Config{APIKey: "k"}, nil)
	if err == nil {
		t.Fatal("NewGemini without model returned nil error, want error")
	}

	const envKey = "PROMPTSMITH_GEMINI_MISSING_KEY"
	if err := os.Unsetenv(envKey); err != nil {
		t.Fatalf("unset env: %v", err)
	}
	_, err = NewGemini(context.Background(), Config{Model: "gemini-2.5-flash", APIKeyEnv: envKey}, nil)
	if err == nil {
		t.Fatal("NewGemini without key returned nil error, want error")
	}
}
