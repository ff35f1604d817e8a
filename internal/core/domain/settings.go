package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies a language model service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// Orchestration defaults.
const (
	DefaultRelevanceThreshold = 0.0
	DefaultPerCallTimeout     = 15 * time.Second
	DefaultMaxConcurrency     = 0 // unbounded over the routed set
)

// Settings is the configuration surface consumed by the core, supplied
// once at process start. No recognised option changes behaviour
// mid-process except through the registry's atomic replace.
type Settings struct {
	// RelevanceThreshold is the minimum routing score for a handler to
	// be dispatched. Zero means any match counts.
	RelevanceThreshold float64

	// PerCallTimeout bounds each handler invocation.
	PerCallTimeout time.Duration

	// MaxConcurrency bounds concurrent handler invocations. Zero means
	// unbounded up to the number of routed handlers.
	MaxConcurrency int

	// Query is the safe query gateway policy.
	Query QueryPolicy

	// Provider selects the language model service, if any.
	Provider AIProvider

	// Scheduler configures periodic background collection.
	Scheduler SchedulerConfig
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		RelevanceThreshold: DefaultRelevanceThreshold,
		PerCallTimeout:     DefaultPerCallTimeout,
		MaxConcurrency:     DefaultMaxConcurrency,
		Query:              DefaultQueryPolicy(),
		Scheduler:          DefaultSchedulerConfig(),
	}
}

// Validate checks the settings for internally inconsistent values.
func (s Settings) Validate() error {
	if s.RelevanceThreshold < 0 || s.RelevanceThreshold > 1 {
		return fmt.Errorf("%w: relevance threshold %v outside [0,1]", ErrInvalidInput, s.RelevanceThreshold)
	}
	if s.PerCallTimeout <= 0 {
		return fmt.Errorf("%w: per-call timeout must be positive", ErrInvalidInput)
	}
	if s.MaxConcurrency < 0 {
		return fmt.Errorf("%w: max concurrency must not be negative", ErrInvalidInput)
	}
	if s.Query.MaxRows <= 0 {
		return fmt.Errorf("%w: query row cap must be positive", ErrInvalidInput)
	}
	if s.Query.Timeout <= 0 {
		return fmt.Errorf("%w: query timeout must be positive", ErrInvalidInput)
	}
	if s.Provider != "" && !s.Provider.IsValid() {
		return fmt.Errorf("%w: unknown AI provider %q", ErrInvalidInput, s.Provider)
	}
	return nil
}
