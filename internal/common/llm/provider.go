// Package llm wraps the chat-completion APIs used for design analysis.
package llm

import (
	"context"

	"figma-to-fsd/internal/common/config"
	apperrors "figma-to-fsd/internal/common/errors"
)

// Provider turns a system and user prompt into the raw model answer.
type Provider interface {
	Name() string
	// Ready reports LLM_NOT_CONFIGURED when the provider cannot be called.
	Ready() error
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// NewProvider builds the provider selected by cfg.Provider. A missing API key
// yields a provider whose Ready and Complete fail with LLM_NOT_CONFIGURED.
func NewProvider(cfg config.LLMConfig) Provider {
	if cfg.APIKey == "" {
		return &unconfigured{name: cfg.Provider}
	}
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	default:
		return NewOpenAIProvider(cfg)
	}
}

type unconfigured struct {
	name string
}

func (u *unconfigured) Name() string {
	return u.name
}

func (u *unconfigured) Ready() error {
	return apperrors.NewLLMNotConfiguredError(u.name)
}

func (u *unconfigured) Complete(ctx context.Context, system, prompt string) (string, error) {
	return "", u.Ready()
}
