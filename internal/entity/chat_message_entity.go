package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one persisted conversation turn half. SequenceIndex is
// assigned by the turn coordinator, strictly increasing per session, never
// reused; a message is immutable once persisted.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	SequenceIndex int
	Locale        string
	CreatedAt     time.Time
}
