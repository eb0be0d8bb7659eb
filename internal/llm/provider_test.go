package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/veritaskit/veritas/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "sk-test"}, "openai", false},
		{"anthropic", Config{Provider: "anthropic", APIKey: "sk-ant-test"}, "anthropic", false},
		{"claude alias", Config{Provider: "claude", APIKey: "sk-ant-test"}, "anthropic", false},
		{"ollama", Config{Provider: "ollama"}, "ollama", false},
		{"case insensitive", Config{Provider: "OpenAI", APIKey: "sk-test"}, "openai", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"anthropic without key", Config{Provider: "anthropic"}, "", true},
		{"unknown", Config{Provider: "delphi-oracle"}, "", true},
		{"empty", Config{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestAnthropicGenerate(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		fmt.Fprint(w, `{"id": "msg_1", "type": "message", "role": "assistant",
			"content": [{"type": "text", "text": "  The verdict is clear.  "}],
			"model": "claude-3-5-sonnet-20241022", "stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 8}}`)
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), GenerateRequest{
		System: "be brief",
		Prompt: "what is the verdict?",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotKey != "sk-ant-test" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotVersion == "" {
		t.Error("anthropic-version header missing")
	}
	if !strings.Contains(gotBody, "what is the verdict?") {
		t.Error("prompt missing from request body")
	}
	if !strings.Contains(gotBody, "be brief") {
		t.Error("system prompt missing from request body")
	}

	if resp.Text != "The verdict is clear." {
		t.Errorf("text = %q (must be trimmed)", resp.Text)
	}
	if resp.TokensUsed != 20 {
		t.Errorf("tokens = %d, want 20", resp.TokensUsed)
	}
}

func TestAnthropicGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type": "error", "error": {"type": "invalid_request_error", "message": "bad model"}}`)
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider(Config{APIKey: "k", BaseURL: server.URL})
	_, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "bad model") {
		t.Errorf("err = %v, want API message surfaced", err)
	}
}

func TestOllamaGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"model": "llama3.2", "created_at": "now", "response": "locally generated",
			"done": true, "prompt_eval_count": 5, "eval_count": 3}`)
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), GenerateRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "locally generated" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.TokensUsed != 8 {
		t.Errorf("tokens = %d, want 8", resp.TokensUsed)
	}
}

func TestOllamaGenerateRequiresModel(t *testing.T) {
	p, _ := NewOllamaProvider(Config{})
	if _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("missing model must error")
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		APIKey:    "sk-test",
		Timeout:   15,
		MaxTokens: 500,
	})

	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 15 || cfg.MaxTokens != 500 {
		t.Errorf("cfg = %+v", cfg)
	}
}
