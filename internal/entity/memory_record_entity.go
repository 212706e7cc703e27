package entity

import (
	"time"

	"github.com/google/uuid"
)

// MemoryRecord is a durable, cross-session summary of a recurring user
// concern. At most one record exists per session: re-capture unions the
// keyword set and overwrites summary and last activity.
type MemoryRecord struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	ChatSessionId uuid.UUID
	Keywords      []string
	Summary       string
	LastMessageAt time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// MergeKeywords unions incoming keywords into the record, preserving order
// of first appearance.
func (m *MemoryRecord) MergeKeywords(incoming []string) {
	seen := make(map[string]bool, len(m.Keywords))
	for _, kw := range m.Keywords {
		seen[kw] = true
	}
	for _, kw := range incoming {
		if !seen[kw] {
			seen[kw] = true
			m.Keywords = append(m.Keywords, kw)
		}
	}
}
