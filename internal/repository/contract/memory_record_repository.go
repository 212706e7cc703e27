package contract

import (
	"context"

	"mindcare-chat-be/internal/entity"

	"github.com/google/uuid"
)

type MemoryRecordRepository interface {
	FindBySessionId(ctx context.Context, sessionId uuid.UUID) (*entity.MemoryRecord, error)
	FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.MemoryRecord, error)

	// Upsert creates the session's record or overwrites it; the session id
	// is the unique key.
	Upsert(ctx context.Context, record *entity.MemoryRecord) error
}
