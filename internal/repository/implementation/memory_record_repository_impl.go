package implementation

import (
	"context"
	"errors"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/mapper"
	"mindcare-chat-be/internal/model"
	"mindcare-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemoryRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryMapper
}

func NewMemoryRecordRepository(db *gorm.DB) contract.MemoryRecordRepository {
	return &MemoryRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryMapper(),
	}
}

func (r *MemoryRecordRepositoryImpl) FindBySessionId(ctx context.Context, sessionId uuid.UUID) (*entity.MemoryRecord, error) {
	var m model.MemoryRecord
	err := r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MemoryRecordRepositoryImpl) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.MemoryRecord, error) {
	var models []*model.MemoryRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("last_message_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]*entity.MemoryRecord, len(models))
	for i, m := range models {
		records[i] = r.mapper.ToEntity(m)
	}
	return records, nil
}

func (r *MemoryRecordRepositoryImpl) Upsert(ctx context.Context, record *entity.MemoryRecord) error {
	m := r.mapper.ToModel(record)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"keywords", "summary", "last_message_at", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}
