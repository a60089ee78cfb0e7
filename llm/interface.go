package llm

import "context"

// GenerationRequest is one immutable model invocation: a system prompt,
// a user prompt, and sampling parameters.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Backend is a concrete model-serving mechanism behind a uniform
// invocation contract. Remote backends are retried on transient
// failures; local ones are not.
type Backend interface {
	Name() string
	Remote() bool
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Notifier receives human-readable progress messages. Implementations
// may panic; callers swallow that and continue.
type Notifier func(msg string)
