package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Provider identifies the backing generative API.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ErrEmptyResponse is returned when the provider answered 2xx without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Config selects a provider and model and carries the per-request generation knobs.
type Config struct {
	Provider        Provider
	Model           string
	APIKey          string
	BaseURL         string
	Temperature     float32
	MaxOutputTokens int32
	HTTPClient      *http.Client
}

// TextGenerator sends a single prompt and returns the raw text answer.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Factory builds a generator for a config. Services take one so tests can swap providers out.
type Factory func(ctx context.Context, cfg Config) (TextGenerator, error)

// StatusError is a non-2xx HTTP answer from a provider.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// New builds the generator for cfg.Provider.
func New(ctx context.Context, cfg Config) (TextGenerator, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s api key is required", cfg.Provider)
	}
	switch cfg.Provider {
	case ProviderGemini:
		return newGemini(ctx, cfg)
	case ProviderOpenAI, ProviderAnthropic:
		return newChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: gemini, openai, anthropic)", cfg.Provider)
	}
}

// ValidateProvider checks if the given provider string is supported.
func ValidateProvider(p string) (Provider, error) {
	switch Provider(p) {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return Provider(p), nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", p)
	}
}
