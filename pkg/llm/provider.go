package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend.
// A provider that additionally supports incremental delivery implements
// StreamingProvider; callers discover that capability via type assertion and
// treat its absence as a fallback condition, not an error.
type LLMProvider interface {
	// Name identifies the provider in logs and fallback traces
	Name() string

	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// StreamingProvider is the optional incremental-delivery capability.
type StreamingProvider interface {
	LLMProvider

	// ChatStream opens an incremental completion. The returned stream is
	// finite and must be closed by the caller.
	ChatStream(ctx context.Context, history []Message, options ...Option) (Stream, error)
}
