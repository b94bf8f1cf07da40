package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"figma-to-fsd/internal/common/config"
	apperrors "figma-to-fsd/internal/common/errors"
)

// OpenAIProvider requests JSON-object chat completions.
type OpenAIProvider struct {
	client *openai.Client
	config config.LLMConfig
}

func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
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

	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client, config: cfg}
}

func (p *OpenAIProvider) Name() string {
	return config.ProviderOpenAI
}

func (p *OpenAIProvider) Ready() error {
	return nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(p.config.MaxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = openai.Float(p.config.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapOpenAIError(ctx, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperrors.NewAICompletionEmptyError(p.Name())
	}
	return resp.Choices[0].Message.Content, nil
}

func wrapOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apperrors.NewServiceError(config.ProviderOpenAI, apiErr.StatusCode, apiErr.Error())
	}
	return apperrors.NewExternalServiceError(config.ProviderOpenAI, err)
}
