package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"mindcare-chat-be/internal/pkg/apperr"
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/locale"
	"mindcare-chat-be/pkg/utils"
)

// Summary types. The parsed field set differs per type.
const (
	SummaryDaily  = "daily"
	SummaryWeekly = "weekly"
	SummaryMemory = "memory"
)

// SummaryRecord is the structured output of Summarize. Only the fields of
// the requested type are populated.
type SummaryRecord struct {
	Type string `json:"type"`

	// daily
	Title     string `json:"title,omitempty"`
	Spotlight string `json:"spotlight,omitempty"`
	Summary   string `json:"summary,omitempty"`

	// weekly
	Themes      []string `json:"themes,omitempty"`
	Highlights  string   `json:"highlights,omitempty"`
	ActionItems []string `json:"action_items,omitempty"`
	RiskLevel   string   `json:"risk_level,omitempty"`

	// memory
	Keywords []string `json:"keywords,omitempty"`
}

// Summarize builds a type- and language-specific instruction, tries the
// provider chain, and parses the response against the strict per-type
// contract. On parse failure or full exhaustion it falls back to a
// keyword-frequency heuristic over the user turns. The only hard failure is
// an empty history, where neither path is applicable.
func (e *Engine) Summarize(ctx context.Context, history []llm.Message, summaryType, language string) (*SummaryRecord, error) {
	userTurns := collectUserTurns(history)
	if len(userTurns) == 0 {
		return nil, apperr.New(apperr.CodeProviderExhausted, "cannot summarize an empty history")
	}

	instruction := summaryInstruction(summaryType, language)
	prompt := append([]llm.Message{}, history...)
	prompt = append(prompt, llm.Message{Role: "user", Content: instruction})

	for _, p := range e.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		raw, err := p.Chat(attemptCtx, prompt, llm.WithMaxTokens(defaultMaxTokens))
		cancel()

		if err != nil {
			e.logger.Warn("fallback", "provider summarize failed, advancing chain", map[string]interface{}{
				"provider": p.Name(),
				"type":     summaryType,
				"error":    err.Error(),
			})
			continue
		}

		record, parseErr := parseSummary(raw, summaryType)
		if parseErr != nil {
			e.logger.Warn("fallback", "summary response failed contract parse, advancing chain", map[string]interface{}{
				"provider": p.Name(),
				"type":     summaryType,
				"error":    parseErr.Error(),
			})
			continue
		}
		return record, nil
	}

	return e.heuristicSummary(userTurns, summaryType, language), nil
}

func collectUserTurns(history []llm.Message) []string {
	var turns []string
	for _, m := range history {
		if m.Role == "user" && !utils.IsBlank(m.Content) {
			turns = append(turns, m.Content)
		}
	}
	return turns
}

func summaryInstruction(summaryType, language string) string {
	lang := "English"
	if locale.IsChinese(language) {
		lang = "Simplified Chinese"
	}

	switch summaryType {
	case SummaryWeekly:
		return fmt.Sprintf(
			"Review the conversation above and respond in %s with ONLY a JSON object of the shape "+
				`{"themes":["..."],"highlights":"...","action_items":["..."],"risk_level":"low|medium|high"}. `+
				"Themes are the recurring emotional topics; risk_level reflects how urgently the user may need professional help.", lang)
	case SummaryMemory:
		return fmt.Sprintf(
			"Extract the user's durable, cross-session concerns from the conversation above. Respond in %s with ONLY a JSON object "+
				`{"keywords":["..."],"summary":"one sentence"}. Keywords are short concern labels, summary is a single sentence.`, lang)
	default: // daily
		return fmt.Sprintf(
			"Summarize today's conversation above. Respond in %s with ONLY a JSON object "+
				`{"title":"...","spotlight":"...","summary":"..."}. Title is short, spotlight is the single most important moment.`, lang)
	}
}

// stripCodeFence removes a wrapping ```json ... ``` (or bare ```) fence that
// models habitually add around JSON.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", ...)
		firstLine := strings.TrimSpace(trimmed[:idx])
		if len(firstLine) <= 8 {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// parseSummary enforces the per-type structural contract.
func parseSummary(raw, summaryType string) (*SummaryRecord, error) {
	cleaned := stripCodeFence(raw)

	var record SummaryRecord
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	record.Type = summaryType

	switch summaryType {
	case SummaryWeekly:
		if len(record.Themes) == 0 || record.Highlights == "" {
			return nil, fmt.Errorf("weekly summary missing themes/highlights")
		}
		switch record.RiskLevel {
		case "low", "medium", "high":
		default:
			return nil, fmt.Errorf("weekly summary has invalid risk_level %q", record.RiskLevel)
		}
		record.Title, record.Spotlight, record.Summary, record.Keywords = "", "", "", nil
	case SummaryMemory:
		if len(record.Keywords) == 0 || record.Summary == "" {
			return nil, fmt.Errorf("memory summary missing keywords/summary")
		}
		record.Title, record.Spotlight = "", ""
		record.Themes, record.ActionItems, record.Highlights, record.RiskLevel = nil, nil, "", ""
	default: // daily
		if record.Title == "" || record.Summary == "" {
			return nil, fmt.Errorf("daily summary missing title/summary")
		}
		record.Themes, record.ActionItems, record.Keywords = nil, nil, nil
		record.Highlights, record.RiskLevel = "", ""
	}

	return &record, nil
}

// heuristicSummary counts locale concern keywords across the user turns and
// maps them to themes. Deterministic, so repeated exhaustion produces the
// same record.
func (e *Engine) heuristicSummary(userTurns []string, summaryType, language string) *SummaryRecord {
	themeHits := make(map[string]int)
	var keywords []string
	seenKeyword := make(map[string]bool)

	themeMap := locale.ThemeKeywords(language)
	for _, turn := range userTurns {
		lower := strings.ToLower(turn)
		for kw, theme := range themeMap {
			if strings.Contains(lower, kw) {
				themeHits[theme]++
				if !seenKeyword[kw] {
					seenKeyword[kw] = true
					keywords = append(keywords, kw)
				}
			}
		}
	}

	themes := rankThemes(themeHits)
	latest := utils.TruncateRunes(userTurns[len(userTurns)-1], 80)
	zh := locale.IsChinese(language)

	record := &SummaryRecord{Type: summaryType}
	switch summaryType {
	case SummaryWeekly:
		record.Themes = themes
		if len(record.Themes) == 0 {
			if zh {
				record.Themes = []string{"日常交流"}
			} else {
				record.Themes = []string{"general check-in"}
			}
		}
		if zh {
			record.Highlights = fmt.Sprintf("本周共记录了 %d 条用户消息，主要围绕:%s。", len(userTurns), strings.Join(record.Themes, "、"))
			record.ActionItems = []string{"保持规律作息", "持续记录情绪变化"}
		} else {
			record.Highlights = fmt.Sprintf("Captured %d user messages this week, mostly around %s.", len(userTurns), strings.Join(record.Themes, ", "))
			record.ActionItems = []string{"keep a steady daily routine", "keep noting mood changes"}
		}
		record.RiskLevel = "low"
		if len(themeHits) >= 3 {
			record.RiskLevel = "medium"
		}
	case SummaryMemory:
		record.Keywords = keywords
		if zh {
			record.Summary = fmt.Sprintf("用户近期多次提到:%s。最近的原话:%s", strings.Join(themes, "、"), latest)
		} else {
			record.Summary = fmt.Sprintf("The user has repeatedly mentioned %s. Most recent words: %s", strings.Join(themes, ", "), latest)
		}
		if len(themes) == 0 {
			record.Summary = latest
		}
	default: // daily
		if len(themes) > 0 {
			record.Title = themes[0]
		} else if zh {
			record.Title = "今日交流"
		} else {
			record.Title = "Today's conversation"
		}
		record.Spotlight = latest
		if zh {
			record.Summary = fmt.Sprintf("今天共有 %d 条消息,关注点:%s。", len(userTurns), record.Title)
		} else {
			record.Summary = fmt.Sprintf("%d messages today, centered on %s.", len(userTurns), record.Title)
		}
	}

	return record
}

func rankThemes(hits map[string]int) []string {
	themes := make([]string, 0, len(hits))
	for theme := range hits {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool {
		if hits[themes[i]] != hits[themes[j]] {
			return hits[themes[i]] > hits[themes[j]]
		}
		return themes[i] < themes[j]
	})
	if len(themes) > 4 {
		themes = themes[:4]
	}
	return themes
}
