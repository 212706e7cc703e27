package service

import (
	"context"
	"strings"
	"time"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/contract"
	"mindcare-chat-be/internal/repository/specification"
	"mindcare-chat-be/pkg/ai/fallback"
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/locale"
	"mindcare-chat-be/pkg/utils"

	"github.com/google/uuid"
)

// captureWindow bounds how much session history feeds one memory summary.
const captureWindow = 20

type IMemoryService interface {
	// CaptureFromMessage inspects the triggering utterance plus the recent
	// user turns of the session for durable concern keywords. When none
	// match it writes nothing and returns nil.
	CaptureFromMessage(ctx context.Context, msg dto.CaptureMemoryMessage) (*entity.MemoryRecord, error)

	GetForUser(ctx context.Context, userId uuid.UUID) ([]*dto.MemoryRecordResponse, error)

	// RecallHint renders the user's known long-term concerns as a single
	// context line for the reply prompt, or "" when nothing is on file.
	RecallHint(ctx context.Context, userId uuid.UUID, loc string) string
}

type memoryService struct {
	memoryRepo  contract.MemoryRecordRepository
	messageRepo contract.ChatMessageRepository
	summarizer  Summarizer
	logger      logger.ILogger
}

func NewMemoryService(
	memoryRepo contract.MemoryRecordRepository,
	messageRepo contract.ChatMessageRepository,
	summarizer Summarizer,
	log logger.ILogger,
) IMemoryService {
	return &memoryService{
		memoryRepo:  memoryRepo,
		messageRepo: messageRepo,
		summarizer:  summarizer,
		logger:      log,
	}
}

func (ms *memoryService) CaptureFromMessage(ctx context.Context, msg dto.CaptureMemoryMessage) (*entity.MemoryRecord, error) {
	history := ms.recentHistory(ctx, msg.ChatSessionId)

	// Concerns are matched over the bounded window of user turns, not just
	// the triggering utterance, so a concern voiced earlier in the session
	// still gets captured.
	scan := []string{msg.Content}
	for _, m := range history {
		if m.Role == entity.RoleUser {
			scan = append(scan, m.Content)
		}
	}
	matched := locale.MatchConcerns(msg.Locale, strings.Join(scan, "\n"))
	if len(matched) == 0 {
		return nil, nil
	}

	record, err := ms.memoryRepo.FindBySessionId(ctx, msg.ChatSessionId)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &entity.MemoryRecord{
			Id:            uuid.New(),
			UserId:        msg.UserId,
			ChatSessionId: msg.ChatSessionId,
			CreatedAt:     time.Now(),
		}
	}

	record.MergeKeywords(matched)
	record.Summary = ms.buildSummary(ctx, msg, history)
	record.LastMessageAt = time.Now()

	if err := ms.memoryRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// buildSummary asks the summarizer for a one-line memory summary over the
// recent session window, degrading to the truncated utterance itself.
func (ms *memoryService) buildSummary(ctx context.Context, msg dto.CaptureMemoryMessage, history []llm.Message) string {
	if len(history) == 0 {
		history = []llm.Message{{Role: "user", Content: msg.Content}}
	}

	record, err := ms.summarizer.Summarize(ctx, history, fallback.SummaryMemory, msg.Locale)
	if err != nil || record == nil || utils.IsBlank(record.Summary) {
		if err != nil {
			ms.logger.Warn("MemoryService", "Summarizer failed, using truncated utterance", map[string]interface{}{
				"session_id": msg.ChatSessionId,
				"error":      err.Error(),
			})
		}
		return utils.TruncateRunes(msg.Content, 120)
	}
	return record.Summary
}

func (ms *memoryService) recentHistory(ctx context.Context, sessionId uuid.UUID) []llm.Message {
	messages, err := ms.messageRepo.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence_index", Desc: true},
		specification.Pagination{Limit: captureWindow},
	)
	if err != nil {
		ms.logger.Warn("MemoryService", "Failed to load capture window", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	// Newest-first from the query; replay oldest-first for the prompt.
	history := make([]llm.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	return history
}

func (ms *memoryService) GetForUser(ctx context.Context, userId uuid.UUID) ([]*dto.MemoryRecordResponse, error) {
	records, err := ms.memoryRepo.FindAllByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.MemoryRecordResponse, len(records))
	for i, r := range records {
		out[i] = &dto.MemoryRecordResponse{
			Id:            r.Id,
			ChatSessionId: r.ChatSessionId,
			Keywords:      r.Keywords,
			Summary:       r.Summary,
			LastMessageAt: r.LastMessageAt,
		}
	}
	return out, nil
}

func (ms *memoryService) RecallHint(ctx context.Context, userId uuid.UUID, loc string) string {
	records, err := ms.memoryRepo.FindAllByUserId(ctx, userId)
	if err != nil {
		ms.logger.Warn("MemoryService", "Failed to load memory records for recall", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		return ""
	}

	var keywords []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, kw := range r.Keywords {
			if !seen[kw] {
				seen[kw] = true
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) >= 6 {
			break
		}
	}
	if len(keywords) == 0 {
		return ""
	}

	if locale.IsChinese(loc) {
		return "用户长期关注的议题:" + strings.Join(keywords, "、")
	}
	return "Long-term concerns this user has mentioned before: " + strings.Join(keywords, ", ")
}
