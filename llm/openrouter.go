package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterBackend talks to OpenRouter's OpenAI-compatible chat
// completions endpoint.
type OpenRouterBackend struct {
	client *openai.Client
	model  string
}

func NewOpenRouterBackend(model, apiKey string) (*OpenRouterBackend, error) {
	if apiKey == "" {
		return nil, errors.New("OpenRouter API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	return &OpenRouterBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (b *OpenRouterBackend) Name() string { return "OpenRouter" }
func (b *OpenRouterBackend) Remote() bool { return true }

func (b *OpenRouterBackend) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserPrompt,
			},
		},
		Temperature: req.Temperature,
		TopP:        0.9,
		MaxTokens:   req.MaxTokens,
	})

	apiErr := &openai.APIError{}
	if errors.As(err, &apiErr) {
		return "", &BackendError{Provider: "OpenRouter", StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	if err != nil {
		return "", fmt.Errorf("error sending request to OpenRouter: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenRouter")
	}
	return resp.Choices[0].Message.Content, nil
}
