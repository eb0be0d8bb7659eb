package llm

import (
	"context"

	"github.com/veritaskit/veritas/internal/model"
)

// Provider defines the interface for language-model backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces text from a system prompt and a user prompt
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for text generation
type GenerateRequest struct {
	// System is the system prompt framing the role
	System string

	// Prompt is the user-turn content
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling (0 = provider default of 0.3)
	Temperature float64
}

// GenerateResponse contains the provider's output
type GenerateResponse struct {
	// Text is the generated content
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Model:     "",
		Timeout:   10,
		MaxTokens: 1000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}
