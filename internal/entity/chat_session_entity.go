package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session states
const (
	SessionStateActive = "active"
	SessionStateClosed = "closed"
)

type ChatSession struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	TherapistId *uuid.UUID
	State       string
	Locale      string
	StartedAt   time.Time
	UpdatedAt   *time.Time
}
