package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/pkg/ai/fallback"
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/locale"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeMemoryRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entity.MemoryRecord
	upserts int
	findErr error
}

func newFakeMemoryRepo() *fakeMemoryRepo {
	return &fakeMemoryRepo{records: make(map[uuid.UUID]*entity.MemoryRecord)}
}

func (r *fakeMemoryRepo) FindBySessionId(ctx context.Context, sessionId uuid.UUID) (*entity.MemoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.records[sessionId], nil
}

func (r *fakeMemoryRepo) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.MemoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*entity.MemoryRecord
	for _, rec := range r.records {
		if rec.UserId == userId {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeMemoryRepo) Upsert(ctx context.Context, record *entity.MemoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.records[record.ChatSessionId] = record
	return nil
}

type stubSummarizer struct {
	record *fallback.SummaryRecord
	err    error
}

func (s *stubSummarizer) Summarize(ctx context.Context, history []llm.Message, summaryType, language string) (*fallback.SummaryRecord, error) {
	return s.record, s.err
}

func captureMsg(sessionId, userId uuid.UUID, content string) dto.CaptureMemoryMessage {
	return dto.CaptureMemoryMessage{
		ChatSessionId: sessionId,
		UserId:        userId,
		Locale:        locale.ZhCN,
		Content:       content,
	}
}

func TestCaptureFromMessage(t *testing.T) {
	ctx := context.Background()
	sessionId := uuid.New()
	userId := uuid.New()

	t.Run("no concern writes nothing", func(t *testing.T) {
		repo := newFakeMemoryRepo()
		ms := NewMemoryService(repo, &fakeMessageRepo{}, &stubSummarizer{err: errors.New("unused")}, logger.NopLogger{})

		record, err := ms.CaptureFromMessage(ctx, captureMsg(sessionId, userId, "今天天气不错"))
		assert.NoError(t, err)
		assert.Nil(t, record)
		assert.Zero(t, repo.upserts)
	})

	t.Run("concern creates a record", func(t *testing.T) {
		repo := newFakeMemoryRepo()
		summarizer := &stubSummarizer{record: &fallback.SummaryRecord{Type: fallback.SummaryMemory, Summary: "用户持续受失眠困扰。", Keywords: []string{"失眠"}}}
		ms := NewMemoryService(repo, &fakeMessageRepo{}, summarizer, logger.NopLogger{})

		record, err := ms.CaptureFromMessage(ctx, captureMsg(sessionId, userId, "我又失眠了"))
		assert.NoError(t, err)
		assert.NotNil(t, record)
		assert.Equal(t, []string{"失眠"}, record.Keywords)
		assert.Equal(t, "用户持续受失眠困扰。", record.Summary)
		assert.Equal(t, 1, repo.upserts)
		assert.WithinDuration(t, time.Now(), record.LastMessageAt, time.Minute)
	})

	t.Run("re-capture unions keywords on the same record", func(t *testing.T) {
		repo := newFakeMemoryRepo()
		summarizer := &stubSummarizer{record: &fallback.SummaryRecord{Summary: "summary"}}
		ms := NewMemoryService(repo, &fakeMessageRepo{}, summarizer, logger.NopLogger{})

		first, err := ms.CaptureFromMessage(ctx, captureMsg(sessionId, userId, "我最近失眠"))
		assert.NoError(t, err)

		second, err := ms.CaptureFromMessage(ctx, captureMsg(sessionId, userId, "除了失眠我还很焦虑"))
		assert.NoError(t, err)

		assert.Equal(t, first.Id, second.Id)
		assert.Equal(t, []string{"失眠", "焦虑"}, second.Keywords)
		assert.Len(t, repo.records, 1)
	})

	t.Run("concern voiced earlier in the session is still captured", func(t *testing.T) {
		repo := newFakeMemoryRepo()
		messages := &fakeMessageRepo{}
		assert.NoError(t, messages.Create(ctx, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Role:          entity.RoleUser,
			Content:       "我一直失眠",
			SequenceIndex: 0,
			Locale:        locale.ZhCN,
		}))
		summarizer := &stubSummarizer{record: &fallback.SummaryRecord{Summary: "summary"}}
		ms := NewMemoryService(repo, messages, summarizer, logger.NopLogger{})

		// The triggering utterance carries no concern keyword on its own.
		record, err := ms.CaptureFromMessage(ctx, captureMsg(sessionId, userId, "后来也没有好转"))
		assert.NoError(t, err)
		assert.NotNil(t, record)
		assert.Equal(t, []string{"失眠"}, record.Keywords)
		assert.Equal(t, 1, repo.upserts)
	})

	t.Run("summarizer failure degrades to the truncated utterance", func(t *testing.T) {
		repo := newFakeMemoryRepo()
		ms := NewMemoryService(repo, &fakeMessageRepo{}, &stubSummarizer{err: errors.New("all providers down")}, logger.NopLogger{})

		record, err := ms.CaptureFromMessage(ctx, captureMsg(sessionId, userId, "我压力好大"))
		assert.NoError(t, err)
		assert.Equal(t, "我压力好大", record.Summary)
	})
}

func TestRecallHint(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()

	t.Run("empty history yields no hint", func(t *testing.T) {
		ms := NewMemoryService(newFakeMemoryRepo(), &fakeMessageRepo{}, &stubSummarizer{}, logger.NopLogger{})
		assert.Empty(t, ms.RecallHint(ctx, userId, locale.ZhCN))
	})

	t.Run("renders deduplicated keywords", func(t *testing.T) {
		repo := newFakeMemoryRepo()
		repo.records[uuid.New()] = &entity.MemoryRecord{
			Id:     uuid.New(),
			UserId: userId, ChatSessionId: uuid.New(),
			Keywords: []string{"失眠", "焦虑"},
		}
		ms := NewMemoryService(repo, &fakeMessageRepo{}, &stubSummarizer{}, logger.NopLogger{})

		hint := ms.RecallHint(ctx, userId, locale.ZhCN)
		assert.Contains(t, hint, "失眠")
		assert.Contains(t, hint, "焦虑")
	})

	t.Run("lookup failure stays silent", func(t *testing.T) {
		repo := newFakeMemoryRepo()
		repo.findErr = errors.New("db down")
		ms := NewMemoryService(repo, &fakeMessageRepo{}, &stubSummarizer{}, logger.NopLogger{})
		assert.Empty(t, ms.RecallHint(ctx, userId, locale.ZhCN))
	})
}

func TestGetForUser(t *testing.T) {
	userId := uuid.New()
	repo := newFakeMemoryRepo()
	sessionId := uuid.New()
	repo.records[sessionId] = &entity.MemoryRecord{
		Id:     uuid.New(),
		UserId: userId, ChatSessionId: sessionId,
		Keywords: []string{"压力"},
		Summary:  "工作压力议题",
	}

	ms := NewMemoryService(repo, &fakeMessageRepo{}, &stubSummarizer{}, logger.NopLogger{})
	records, err := ms.GetForUser(context.Background(), userId)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, sessionId, records[0].ChatSessionId)
	assert.Equal(t, "工作压力议题", records[0].Summary)
}
