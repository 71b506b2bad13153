package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
)

// Settings configures a single provider instance.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ParseProvider normalizes a provider name; empty selects Gemini.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini", "google", "":
		return ProviderGemini, nil
	case "openai":
		return ProviderOpenAI, nil
	case "claude", "anthropic":
		return ProviderClaude, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s (supported: gemini, openai, claude)", name)
	}
}

// APIKeyEnv is the environment variable holding the provider's credential.
func APIKeyEnv(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderClaude:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// ModelEnv is the environment variable overriding the provider's model.
func ModelEnv(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_MODEL"
	case ProviderClaude:
		return "CLAUDE_MODEL"
	default:
		return "GEMINI_MODEL"
	}
}

// Factory creates LLM instances based on provider
type Factory struct{}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM creates a VisionLLM for provider. A missing or placeholder key
// yields an error wrapping ErrMissingCredential.
func (f *Factory) CreateLLM(ctx context.Context, provider Provider, s Settings) (VisionLLM, error) {
	if IsPlaceholder(s.APIKey) {
		return nil, fmt.Errorf("%s: %w", APIKeyEnv(provider), ErrMissingCredential)
	}

	switch provider {
	case ProviderGemini:
		return NewGemini(ctx, s.APIKey, s.Model, s.BaseURL)

	case ProviderOpenAI:
		o := NewOpenAI(s.APIKey)
		if s.Model != "" {
			o = NewOpenAIWithModel(s.APIKey, s.Model)
		}
		if s.BaseURL != "" {
			o.baseURL = strings.TrimRight(s.BaseURL, "/")
		}
		return o, nil

	case ProviderClaude:
		c := NewClaude(s.APIKey)
		if s.Model != "" {
			c = NewClaudeWithModel(s.APIKey, s.Model)
		}
		if s.BaseURL != "" {
			c.baseURL = strings.TrimRight(s.BaseURL, "/")
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateFromEnv creates an LLM instance from environment variables
func (f *Factory) CreateFromEnv(ctx context.Context, providerOverride, modelOverride string) (VisionLLM, error) {
	name := providerOverride
	if name == "" {
		name = os.Getenv("LLM_PROVIDER")
	}
	provider, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}

	model := modelOverride
	if model == "" {
		model = os.Getenv(ModelEnv(provider))
	}

	return f.CreateLLM(ctx, provider, Settings{
		APIKey: os.Getenv(APIKeyEnv(provider)),
		Model:  model,
	})
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI, ProviderClaude}
}
