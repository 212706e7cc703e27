package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract every bus event implements.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeTurnCompleted  = "TURN_COMPLETED"
	TypeSessionOpened  = "SESSION_OPENED"
	TypeMemoryCaptured = "MEMORY_CAPTURED"
)

// NewTurnCompleted describes one finished chat turn: the user message and
// the assistant reply have both been committed.
func NewTurnCompleted(sessionId, userId uuid.UUID, locale string, userSeq, assistantSeq int) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_id":         sessionId.String(),
			"user_id":            userId.String(),
			"locale":             locale,
			"user_sequence":      userSeq,
			"assistant_sequence": assistantSeq,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionOpened(sessionId, userId uuid.UUID, locale string) Event {
	return BaseEvent{
		Type: TypeSessionOpened,
		Data: map[string]interface{}{
			"session_id": sessionId.String(),
			"user_id":    userId.String(),
			"locale":     locale,
		},
		OccurredAt: time.Now(),
	}
}

func NewMemoryCaptured(sessionId, userId uuid.UUID, keywords []string) Event {
	return BaseEvent{
		Type: TypeMemoryCaptured,
		Data: map[string]interface{}{
			"session_id": sessionId.String(),
			"user_id":    userId.String(),
			"keywords":   keywords,
		},
		OccurredAt: time.Now(),
	}
}
