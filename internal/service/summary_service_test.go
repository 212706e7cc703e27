package service

import (
	"context"
	"testing"
	"time"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/apperr"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/pkg/ai/fallback"
	"mindcare-chat-be/pkg/locale"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func seedSummarySession(t *testing.T, sessions *fakeSessionRepo, messages *fakeMessageRepo, userId uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		State:     entity.SessionStateActive,
		Locale:    locale.ZhCN,
		StartedAt: time.Now(),
	}
	assert.NoError(t, sessions.Create(ctx, session))

	for i, turn := range []struct {
		role    string
		content string
	}{
		{entity.RoleUser, "我最近一直失眠"},
		{entity.RoleAssistant, "听起来很辛苦"},
		{entity.RoleUser, "工作压力也很大"},
	} {
		assert.NoError(t, messages.Create(ctx, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: session.Id,
			Role:          turn.role,
			Content:       turn.content,
			SequenceIndex: i,
			Locale:        locale.ZhCN,
		}))
	}
	return session.Id
}

func TestGenerateDaily(t *testing.T) {
	userId := uuid.New()
	sessions := newFakeSessionRepo()
	messages := &fakeMessageRepo{}
	sessionId := seedSummarySession(t, sessions, messages, userId)

	summarizer := &stubSummarizer{record: &fallback.SummaryRecord{
		Type:      fallback.SummaryDaily,
		Title:     "睡眠困扰",
		Spotlight: "工作压力也很大",
		Summary:   "今天主要讨论了睡眠与压力。",
	}}
	ss := NewSummaryService(sessions, messages, summarizer, logger.NopLogger{})

	resp, err := ss.GenerateDaily(context.Background(), userId, sessionId)
	assert.NoError(t, err)
	assert.Equal(t, sessionId, resp.ChatSessionId)
	assert.Equal(t, "睡眠困扰", resp.Title)
	assert.Equal(t, "今天主要讨论了睡眠与压力。", resp.Summary)
}

func TestGenerateWeekly(t *testing.T) {
	userId := uuid.New()
	sessions := newFakeSessionRepo()
	messages := &fakeMessageRepo{}
	sessionId := seedSummarySession(t, sessions, messages, userId)

	summarizer := &stubSummarizer{record: &fallback.SummaryRecord{
		Type:       fallback.SummaryWeekly,
		Themes:     []string{"睡眠困扰", "压力负荷"},
		Highlights: "本周围绕睡眠与压力。",
		RiskLevel:  "low",
	}}
	ss := NewSummaryService(sessions, messages, summarizer, logger.NopLogger{})

	resp, err := ss.GenerateWeekly(context.Background(), userId, sessionId)
	assert.NoError(t, err)
	assert.Equal(t, []string{"睡眠困扰", "压力负荷"}, resp.Themes)
	assert.Equal(t, []string{"本周围绕睡眠与压力。"}, resp.Highlights)
	assert.Equal(t, "low", resp.RiskLevel)
}

func TestSummaryOwnership(t *testing.T) {
	userId := uuid.New()
	sessions := newFakeSessionRepo()
	messages := &fakeMessageRepo{}
	sessionId := seedSummarySession(t, sessions, messages, userId)

	ss := NewSummaryService(sessions, messages, &stubSummarizer{}, logger.NopLogger{})

	_, err := ss.GenerateDaily(context.Background(), uuid.New(), sessionId)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionNotFound))

	_, err = ss.GenerateWeekly(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionNotFound))
}
