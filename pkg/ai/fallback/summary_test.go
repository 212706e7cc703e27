package fallback

import (
	"context"
	"errors"
	"testing"

	"mindcare-chat-be/internal/pkg/apperr"
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/locale"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmptyHistory(t *testing.T) {
	e := newTestEngine(&fakeProvider{name: "any", reply: "{}"})

	record, err := e.Summarize(context.Background(), nil, SummaryDaily, locale.EnUS)
	assert.Nil(t, record)
	assert.True(t, apperr.HasCode(err, apperr.CodeProviderExhausted))

	// Assistant-only history counts as empty too.
	record, err = e.Summarize(context.Background(), []llm.Message{{Role: "assistant", Content: "hello"}}, SummaryDaily, locale.EnUS)
	assert.Nil(t, record)
	assert.Error(t, err)
}

func TestSummarizeParsesProviderJSON(t *testing.T) {
	history := userHistory("I have not slept well all week")

	t.Run("daily with code fence", func(t *testing.T) {
		provider := &fakeProvider{name: "ok", reply: "```json\n{\"title\":\"Rough week\",\"spotlight\":\"sleepless nights\",\"summary\":\"The user struggled with sleep.\"}\n```"}

		e := newTestEngine(provider)
		got, err := e.Summarize(context.Background(), history, SummaryDaily, locale.EnUS)
		assert.NoError(t, err)
		assert.Equal(t, SummaryDaily, got.Type)
		assert.Equal(t, "Rough week", got.Title)
		assert.Equal(t, "sleepless nights", got.Spotlight)
		assert.Empty(t, got.Themes)
	})

	t.Run("weekly enforces risk level", func(t *testing.T) {
		invalid := &fakeProvider{name: "invalid", reply: `{"themes":["sleep"],"highlights":"rough","action_items":[],"risk_level":"catastrophic"}`}
		valid := &fakeProvider{name: "valid", reply: `{"themes":["sleep"],"highlights":"rough week","action_items":["rest"],"risk_level":"medium"}`}

		e := newTestEngine(invalid, valid)
		got, err := e.Summarize(context.Background(), history, SummaryWeekly, locale.EnUS)
		assert.NoError(t, err)
		assert.Equal(t, "medium", got.RiskLevel)
		assert.Equal(t, []string{"sleep"}, got.Themes)
		assert.Equal(t, 1, invalid.calls)
		assert.Equal(t, 1, valid.calls)
	})

	t.Run("memory requires keywords and summary", func(t *testing.T) {
		provider := &fakeProvider{name: "ok", reply: `{"keywords":["insomnia"],"summary":"Ongoing sleep trouble."}`}

		e := newTestEngine(provider)
		got, err := e.Summarize(context.Background(), history, SummaryMemory, locale.EnUS)
		assert.NoError(t, err)
		assert.Equal(t, []string{"insomnia"}, got.Keywords)
		assert.Equal(t, "Ongoing sleep trouble.", got.Summary)
	})
}

func TestSummarizeHeuristicFallback(t *testing.T) {
	broken := &fakeProvider{name: "broken", err: errors.New("down")}
	history := []llm.Message{
		{Role: "user", Content: "我最近一直失眠"},
		{Role: "assistant", Content: "听起来很辛苦"},
		{Role: "user", Content: "而且工作压力特别大，总是焦虑"},
	}

	t.Run("deterministic on repeated exhaustion", func(t *testing.T) {
		e := newTestEngine(broken)
		first, err := e.Summarize(context.Background(), history, SummaryWeekly, locale.ZhCN)
		assert.NoError(t, err)
		second, err := e.Summarize(context.Background(), history, SummaryWeekly, locale.ZhCN)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("weekly carries ranked themes and a risk level", func(t *testing.T) {
		e := newTestEngine(broken)
		got, err := e.Summarize(context.Background(), history, SummaryWeekly, locale.ZhCN)
		assert.NoError(t, err)
		assert.Contains(t, got.Themes, "睡眠困扰")
		assert.Contains(t, []string{"low", "medium", "high"}, got.RiskLevel)
		assert.NotEmpty(t, got.Highlights)
	})

	t.Run("memory keeps matched keywords", func(t *testing.T) {
		e := newTestEngine(broken)
		got, err := e.Summarize(context.Background(), history, SummaryMemory, locale.ZhCN)
		assert.NoError(t, err)
		assert.Contains(t, got.Keywords, "失眠")
		assert.NotEmpty(t, got.Summary)
	})

	t.Run("daily without matched themes still has a title", func(t *testing.T) {
		e := newTestEngine(broken)
		got, err := e.Summarize(context.Background(), userHistory("今天吃了火锅"), SummaryDaily, locale.ZhCN)
		assert.NoError(t, err)
		assert.NotEmpty(t, got.Title)
		assert.NotEmpty(t, got.Summary)
	})
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

func TestParseSummaryContract(t *testing.T) {
	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := parseSummary("not json at all", SummaryDaily)
		assert.Error(t, err)
	})

	t.Run("rejects daily without title", func(t *testing.T) {
		_, err := parseSummary(`{"summary":"something"}`, SummaryDaily)
		assert.Error(t, err)
	})

	t.Run("clears cross-type fields", func(t *testing.T) {
		record, err := parseSummary(`{"title":"t","summary":"s","keywords":["stray"],"risk_level":"high"}`, SummaryDaily)
		assert.NoError(t, err)
		assert.Empty(t, record.Keywords)
		assert.Empty(t, record.RiskLevel)
	})
}
