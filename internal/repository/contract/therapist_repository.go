package contract

import (
	"context"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/repository/specification"
)

type TherapistRepository interface {
	CreateBulk(ctx context.Context, therapists []*entity.Therapist) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Therapist, error)
	Count(ctx context.Context) (int64, error)
}
