package service

import (
	"context"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/apperr"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/contract"
	"mindcare-chat-be/internal/repository/specification"
	"mindcare-chat-be/pkg/ai/fallback"
	"mindcare-chat-be/pkg/llm"

	"github.com/google/uuid"
)

// summaryWindow bounds how much history feeds one summary prompt.
const summaryWindow = 200

type ISummaryService interface {
	GenerateDaily(ctx context.Context, userId, sessionId uuid.UUID) (*dto.DailySummaryResponse, error)
	GenerateWeekly(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WeeklySummaryResponse, error)
}

type summaryService struct {
	sessionRepo contract.ChatSessionRepository
	messageRepo contract.ChatMessageRepository
	summarizer  Summarizer
	logger      logger.ILogger
}

func NewSummaryService(
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	summarizer Summarizer,
	log logger.ILogger,
) ISummaryService {
	return &summaryService{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		summarizer:  summarizer,
		logger:      log,
	}
}

func (ss *summaryService) GenerateDaily(ctx context.Context, userId, sessionId uuid.UUID) (*dto.DailySummaryResponse, error) {
	session, history, err := ss.loadSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	record, err := ss.summarizer.Summarize(ctx, history, fallback.SummaryDaily, session.Locale)
	if err != nil {
		return nil, err
	}

	return &dto.DailySummaryResponse{
		ChatSessionId: sessionId,
		Title:         record.Title,
		Spotlight:     record.Spotlight,
		Summary:       record.Summary,
	}, nil
}

func (ss *summaryService) GenerateWeekly(ctx context.Context, userId, sessionId uuid.UUID) (*dto.WeeklySummaryResponse, error) {
	session, history, err := ss.loadSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	record, err := ss.summarizer.Summarize(ctx, history, fallback.SummaryWeekly, session.Locale)
	if err != nil {
		return nil, err
	}

	highlights := []string{}
	if record.Highlights != "" {
		highlights = append(highlights, record.Highlights)
	}

	return &dto.WeeklySummaryResponse{
		ChatSessionId: sessionId,
		Themes:        record.Themes,
		Highlights:    highlights,
		ActionItems:   record.ActionItems,
		RiskLevel:     record.RiskLevel,
	}, nil
}

func (ss *summaryService) loadSession(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, []llm.Message, error) {
	session, err := ss.sessionRepo.FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeInternal, "failed to load session", err)
	}
	if session == nil {
		return nil, nil, apperr.New(apperr.CodeSessionNotFound, "chat session not found")
	}

	messages, err := ss.messageRepo.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence_index", Desc: false},
		specification.Pagination{Limit: summaryWindow},
	)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeInternal, "failed to load messages", err)
	}

	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	return session, history, nil
}
