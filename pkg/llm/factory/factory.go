package factory

import (
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/llm/huggingface"
	"mindcare-chat-be/pkg/llm/ollama"
	"mindcare-chat-be/pkg/llm/openai"
)

// ChainEntry describes one provider slot in the fallback order.
type ChainEntry struct {
	Type    string // "openai", "ollama", "huggingface"
	APIKey  string
	BaseURL string
	Model   string
}

// NewProviderChain builds the ordered provider list from configuration.
// Entries without the credentials their type requires are skipped, so the
// presence of a key/endpoint toggles whether that provider is attempted.
// An empty chain is valid: callers degrade to their heuristic fallbacks.
func NewProviderChain(entries []ChainEntry) []llm.LLMProvider {
	providers := make([]llm.LLMProvider, 0, len(entries))
	for _, e := range entries {
		switch e.Type {
		case "openai":
			if e.APIKey == "" {
				continue
			}
			providers = append(providers, openai.NewOpenAIProvider(e.APIKey, e.BaseURL, e.Model))
		case "ollama":
			if e.Model == "" {
				continue
			}
			providers = append(providers, ollama.NewOllamaProvider(e.BaseURL, e.Model))
		case "huggingface":
			if e.APIKey == "" {
				continue
			}
			providers = append(providers, huggingface.NewHuggingFaceProvider(e.APIKey, e.BaseURL, e.Model))
		}
	}
	return providers
}
