package fallback

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/locale"
	"mindcare-chat-be/pkg/utils"
)

const (
	defaultAttemptTimeout = 30 * time.Second
	defaultMaxTokens      = 600
	maxFragmentRunes      = 48
)

// Fragment is one incremental piece of a streamed reply. Restart tells the
// consumer that every delta received so far belongs to a dead attempt and
// must be discarded; the reply restarts from scratch on the next provider.
// The engine itself never populates Err; it exists so sources stubbed in for
// the engine can surface a mid-stream failure to the turn coordinator.
type Fragment struct {
	Delta   string
	Restart bool
	Err     error
}

// Engine generates, streams and summarizes text by walking an ordered list
// of remote providers and degrading to deterministic locale-aware heuristics.
// The provider order is re-evaluated on every call: no sticky selection, no
// health tracking. Remote calls are assumed stateless and cheap to retry.
type Engine struct {
	providers      []llm.LLMProvider
	logger         logger.ILogger
	attemptTimeout time.Duration
}

type EngineOption func(*Engine)

// WithAttemptTimeout bounds each single provider attempt.
func WithAttemptTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.attemptTimeout = d
		}
	}
}

func NewEngine(providers []llm.LLMProvider, log logger.ILogger, opts ...EngineOption) *Engine {
	e := &Engine{
		providers:      providers,
		logger:         log,
		attemptTimeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// languageDirective is prepended as a system turn so every provider answers
// in the resolved locale regardless of its own default.
func languageDirective(loc string) llm.Message {
	content := "You are a warm, supportive mental-wellness companion. Reply in English. Keep answers grounded and concrete; never diagnose."
	if locale.IsChinese(loc) {
		content = "你是一位温暖、专业的心理支持伙伴。请使用简体中文回复。回答要具体、接地气，不要做出医学诊断。"
	}
	return llm.Message{Role: "system", Content: content}
}

func lastUserContent(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return history[i].Content
		}
	}
	return ""
}

// Generate produces a reply, trying every provider in order and falling back
// to the locale heuristic. It never fails and never returns empty text.
func (e *Engine) Generate(ctx context.Context, history []llm.Message, language string, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	augmented := append([]llm.Message{languageDirective(language)}, history...)

	for _, p := range e.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		text, err := p.Chat(attemptCtx, augmented, llm.WithMaxTokens(maxTokens))
		cancel()

		if err != nil {
			e.logger.Warn("fallback", "provider generate failed, advancing chain", map[string]interface{}{
				"provider": p.Name(),
				"error":    err.Error(),
			})
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
		e.logger.Warn("fallback", "provider returned empty text, advancing chain", map[string]interface{}{
			"provider": p.Name(),
		})
	}

	return locale.HeuristicReply(language, lastUserContent(history))
}

// Stream produces a finite, non-restartable sequence of reply fragments.
// Streaming-capable providers are tried first; a mid-stream failure retries
// the whole call against the next provider from scratch, never stitching
// partial results. When no provider streams, the Generate result is chunked
// at sentence boundaries so consumers always see incremental output.
func (e *Engine) Stream(ctx context.Context, history []llm.Message, language string, maxTokens int) <-chan Fragment {
	out := make(chan Fragment)

	go func() {
		defer close(out)

		augmented := append([]llm.Message{languageDirective(language)}, history...)
		for _, p := range e.providers {
			sp, ok := p.(llm.StreamingProvider)
			if !ok {
				continue
			}
			if e.streamAttempt(ctx, sp, augmented, maxTokens, out) {
				return
			}
			if ctx.Err() != nil {
				return
			}
		}

		// No provider streamed; chunk the non-streaming result.
		text := e.Generate(ctx, history, language, maxTokens)
		for _, frag := range utils.SplitFragments(text, maxFragmentRunes) {
			select {
			case out <- Fragment{Delta: frag}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// streamAttempt drains one provider's stream into out. Returns true when the
// stream completed cleanly; false means the attempt is discarded and the
// caller advances the chain.
func (e *Engine) streamAttempt(ctx context.Context, sp llm.StreamingProvider, history []llm.Message, maxTokens int, out chan<- Fragment) bool {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	stream, err := sp.ChatStream(attemptCtx, history, llm.WithMaxTokens(maxTokens))
	if err != nil {
		e.logger.Warn("fallback", "provider stream open failed, advancing chain", map[string]interface{}{
			"provider": sp.Name(),
			"error":    err.Error(),
		})
		return false
	}
	defer stream.Close()

	emitted := false
	for {
		delta, recvErr := stream.Recv()
		if recvErr != nil {
			if isEOF(recvErr) {
				return emitted
			}
			e.logger.Warn("fallback", "provider stream died mid-way, retrying next from scratch", map[string]interface{}{
				"provider": sp.Name(),
				"emitted":  emitted,
				"error":    recvErr.Error(),
			})
			if emitted {
				// The dead attempt's deltas are already out; tell the
				// consumer to drop them before the retry starts over.
				select {
				case out <- Fragment{Restart: true}:
				case <-ctx.Done():
				}
			}
			return false
		}
		if delta == "" {
			continue
		}
		select {
		case out <- Fragment{Delta: delta}:
			emitted = true
		case <-ctx.Done():
			return true // caller went away; nothing left to produce
		}
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
