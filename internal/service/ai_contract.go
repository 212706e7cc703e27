package service

import (
	"context"

	"mindcare-chat-be/pkg/ai/fallback"
	"mindcare-chat-be/pkg/llm"
)

// ReplySource produces assistant replies. The production implementation is
// the fallback engine; tests substitute deterministic sources, including
// ones whose stream carries a Fragment error.
type ReplySource interface {
	Generate(ctx context.Context, history []llm.Message, language string, maxTokens int) string
	Stream(ctx context.Context, history []llm.Message, language string, maxTokens int) <-chan fallback.Fragment
}

// Summarizer produces structured summaries over a conversation history.
type Summarizer interface {
	Summarize(ctx context.Context, history []llm.Message, summaryType, language string) (*fallback.SummaryRecord, error)
}
