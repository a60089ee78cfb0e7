package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var geminiURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

type GeminiRequest struct {
	Contents         []GeminiContent `json:"contents"`
	GenerationConfig GeminiGenConfig `json:"generationConfig"`
}

type GeminiContent struct {
	Role  string       `json:"role"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiGenConfig struct {
	Temperature     float32 `json:"temperature"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []GeminiPart `json:"parts"`
			Role  string       `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

type GeminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiBackend talks to the Gemini generateContent endpoint. Gemini has
// no separate system role on this API surface, so the system prompt is
// folded into the single user turn.
type GeminiBackend struct {
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewGeminiBackend(model, apiKey string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	return &GeminiBackend{
		model:  model,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (b *GeminiBackend) Name() string { return "Gemini" }
func (b *GeminiBackend) Remote() bool { return true }

func (b *GeminiBackend) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	payload := GeminiRequest{
		Contents: []GeminiContent{
			{
				Role: "user",
				Parts: []GeminiPart{
					{Text: fmt.Sprintf("System:\n%s\n\nUser:\n%s", req.SystemPrompt, req.UserPrompt)},
				},
			},
		},
		GenerationConfig: GeminiGenConfig{
			Temperature:     req.Temperature,
			TopP:            0.9,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf(geminiURL, b.model, b.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp GeminiErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return "", &BackendError{Provider: "Gemini", StatusCode: resp.StatusCode, Err: fmt.Errorf("unparseable error response")}
		}
		return "", &BackendError{
			Provider:   "Gemini",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", errResp.Error.Status, errResp.Error.Message),
		}
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}
