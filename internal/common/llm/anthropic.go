package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"figma-to-fsd/internal/common/config"
	apperrors "figma-to-fsd/internal/common/errors"
)

// AnthropicProvider uses the Messages API. It has no JSON mode, so the
// system prompt alone asks for a JSON object.
type AnthropicProvider struct {
	client *anthropic.Client
	config config.LLMConfig
}

func NewAnthropicProvider(cfg config.LLMConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.GetDuration(cfg.Timeout)))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{client: &client, config: cfg}
}

func (p *AnthropicProvider) Name() string {
	return config.ProviderAnthropic
}

func (p *AnthropicProvider) Ready() error {
	return nil
}

func (p *AnthropicProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(p.config.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = anthropic.Float(p.config.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", apperrors.NewServiceError(config.ProviderAnthropic, apiErr.StatusCode, apiErr.Error())
		}
		return "", apperrors.NewExternalServiceError(config.ProviderAnthropic, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", apperrors.NewAICompletionEmptyError(p.Name())
	}
	return sb.String(), nil
}
