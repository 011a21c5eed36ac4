package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const defaultClaudeMaxTokens = 1024

// chatModelGenerator adapts an eino chat model to a single-prompt generator.
type chatModelGenerator struct {
	provider Provider
	model    model.BaseChatModel
}

func newChatModel(ctx context.Context, cfg Config) (TextGenerator, error) {
	var (
		cm  model.BaseChatModel
		err error
	)
	temperature := cfg.Temperature

	switch cfg.Provider {
	case ProviderOpenAI:
		oc := &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     strings.TrimSpace(cfg.BaseURL),
			Temperature: &temperature,
		}
		if cfg.MaxOutputTokens > 0 {
			maxTokens := int(cfg.MaxOutputTokens)
			oc.MaxTokens = &maxTokens
		}
		cm, err = openai.NewChatModel(ctx, oc)
	case ProviderAnthropic:
		maxTokens := defaultClaudeMaxTokens
		if cfg.MaxOutputTokens > 0 {
			maxTokens = int(cfg.MaxOutputTokens)
		}
		cc := &claude.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   maxTokens,
			Temperature: &temperature,
		}
		if base := strings.TrimSpace(cfg.BaseURL); base != "" {
			cc.BaseURL = &base
		}
		cm, err = claude.NewChatModel(ctx, cc)
	default:
		return nil, fmt.Errorf("unsupported chat model provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s chat model: %w", cfg.Provider, err)
	}
	return &chatModelGenerator{provider: cfg.Provider, model: cm}, nil
}

func (g *chatModelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", g.provider, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(msg.Content), nil
}
