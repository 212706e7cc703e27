package dto

import (
	"time"

	"github.com/google/uuid"
)

// CaptureMemoryMessage is the async capture request published after a turn
// completes.
type CaptureMemoryMessage struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	UserId        uuid.UUID `json:"user_id"`
	Locale        string    `json:"locale"`
	Content       string    `json:"content"`
}

type MemoryRecordResponse struct {
	Id            uuid.UUID `json:"id"`
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Keywords      []string  `json:"keywords"`
	Summary       string    `json:"summary"`
	LastMessageAt time.Time `json:"last_message_at"`
}
