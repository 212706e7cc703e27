package contract

import (
	"context"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// MaxSequenceIndex returns the highest sequence index persisted for the
	// session, or -1 when the session has no messages yet.
	MaxSequenceIndex(ctx context.Context, sessionId uuid.UUID) (int, error)
}
