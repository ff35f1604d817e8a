// Package ai builds the optional language model service from user
// settings. When no provider is configured the factory returns nil and
// the synthesizer falls back to deterministic composition.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/meridian-labs/yarra/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/meridian-labs/yarra/internal/adapters/driven/llm/ollama"
	openaillm "github.com/meridian-labs/yarra/internal/adapters/driven/llm/openai"
	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for connectivity validation.
const pingTimeout = 5 * time.Second

// Config selects and configures the LLM provider.
type Config struct {
	// Provider is the configured provider. Empty means none.
	Provider domain.AIProvider

	// Model overrides the provider's default model when set.
	Model string

	// APIKey authenticates against cloud providers.
	APIKey string

	// BaseURL overrides the provider's default endpoint when set.
	BaseURL string
}

// IsConfigured reports whether a provider has been selected.
func (c Config) IsConfigured() bool {
	return c.Provider != ""
}

// CreateLLMService builds the LLM adapter for the configured provider.
// Returns nil, nil when no provider is configured.
func CreateLLMService(cfg Config) (driven.LLMService, error) {
	if !cfg.IsConfigured() {
		return nil, nil
	}

	switch cfg.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// CreateAndValidateLLMService creates the LLM service and validates
// connectivity. Returns the service if reachable, or an error wrapping
// domain.ErrLLMUnavailable so the caller can fall back to deterministic
// composition.
func CreateAndValidateLLMService(cfg Config) (driven.LLMService, error) {
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'yarra settings provider' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: %s unreachable (%w). Run 'yarra settings provider' to fix",
			domain.ErrLLMUnavailable, cfg.Provider, err)
	}

	return svc, nil
}
