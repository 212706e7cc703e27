package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
	Message       string     `json:"message" validate:"required"`
	Locale        string     `json:"locale,omitempty"`
	TherapistId   *uuid.UUID `json:"therapist_id,omitempty"`
}

type SendChatResponseChat struct {
	Id            uuid.UUID `json:"id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	SequenceIndex int       `json:"sequence_index"`
	CreatedAt     time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId   uuid.UUID                 `json:"chat_session_id"`
	Locale          string                    `json:"locale"`
	Sent            *SendChatResponseChat     `json:"sent"`
	Reply           *SendChatResponseChat     `json:"reply"`
	Recommendations []TherapistRecommendation `json:"recommendations,omitempty"`
}

// Stream event types, in the order a client may observe them. A stream
// opens with exactly one session_established, carries zero or more token
// events, and ends with exactly one of complete or error.
const (
	EventSessionEstablished = "session_established"
	EventToken              = "token"
	EventComplete           = "complete"
	EventError              = "error"
)

type StreamEvent struct {
	Event           string                    `json:"event"`
	ChatSessionId   *uuid.UUID                `json:"chat_session_id,omitempty"`
	Locale          string                    `json:"locale,omitempty"`
	Delta           string                    `json:"delta,omitempty"`
	SequenceIndex   *int                      `json:"sequence_index,omitempty"`
	Content         string                    `json:"content,omitempty"`
	Code            string                    `json:"code,omitempty"`
	Message         string                    `json:"message,omitempty"`
	Recommendations []TherapistRecommendation `json:"recommendations,omitempty"`
}

type GetSessionResponse struct {
	Id          uuid.UUID  `json:"id"`
	TherapistId *uuid.UUID `json:"therapist_id,omitempty"`
	State       string     `json:"state"`
	Locale      string     `json:"locale"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type GetChatHistoryResponse struct {
	Id            uuid.UUID `json:"id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	SequenceIndex int       `json:"sequence_index"`
	Locale        string    `json:"locale"`
	CreatedAt     time.Time `json:"created_at"`
}
