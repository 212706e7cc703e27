package model

import (
	"time"

	"github.com/google/uuid"
)

// The (session, sequence) unique index is what enforces "never reused":
// a duplicate assignment fails the insert instead of silently reordering.
type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_sequence"`
	SequenceIndex int       `gorm:"not null;uniqueIndex:idx_session_sequence"`
	Role          string    `gorm:"type:varchar(16);not null"`
	Content       string    `gorm:"type:text;not null"`
	Locale        string    `gorm:"type:varchar(8)"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
