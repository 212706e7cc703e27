package mapper

import (
	"time"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:          s.Id,
		UserId:      s.UserId,
		TherapistId: s.TherapistId,
		State:       s.State,
		Locale:      s.Locale,
		StartedAt:   s.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	out := &model.ChatSession{
		Id:          s.Id,
		UserId:      s.UserId,
		TherapistId: s.TherapistId,
		State:       s.State,
		Locale:      s.Locale,
		CreatedAt:   s.StartedAt,
	}
	if s.UpdatedAt != nil {
		out.UpdatedAt = *s.UpdatedAt
	}
	return out
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		SequenceIndex: msg.SequenceIndex,
		Locale:        msg.Locale,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		SequenceIndex: msg.SequenceIndex,
		Locale:        msg.Locale,
		CreatedAt:     msg.CreatedAt,
	}
}
