package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// OllamaBackend runs generation against a local Ollama server. It is the
// fallback when no API credentials are configured.
type OllamaBackend struct {
	client *ollama.Client
	model  string
}

func NewOllamaBackend(host, model string) (*OllamaBackend, error) {
	if model == "" {
		return nil, errors.New("local model name is required")
	}
	if host == "" {
		client, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("error creating ollama client: %w", err)
		}
		return &OllamaBackend{client: client, model: model}, nil
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	return &OllamaBackend{
		client: ollama.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

func (b *OllamaBackend) Name() string { return "Ollama" }
func (b *OllamaBackend) Remote() bool { return false }

func (b *OllamaBackend) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	stream := false
	var sb strings.Builder

	genReq := &ollama.GenerateRequest{
		Model:  b.model,
		System: req.SystemPrompt,
		Prompt: req.UserPrompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
			"top_p":       0.9,
			"num_predict": req.MaxTokens,
		},
	}

	err := b.client.Generate(ctx, genReq, func(resp ollama.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// Server unreachable: the runtime is not installed or not running.
			return "", fmt.Errorf("%w: %v", ErrMissingRuntime, err)
		}
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	return sb.String(), nil
}
