package implementation

import (
	"context"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/mapper"
	"mindcare-chat-be/internal/model"
	"mindcare-chat-be/internal/repository/contract"
	"mindcare-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type TherapistRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TherapistMapper
}

func NewTherapistRepository(db *gorm.DB) contract.TherapistRepository {
	return &TherapistRepositoryImpl{
		db:     db,
		mapper: mapper.NewTherapistMapper(),
	}
}

func (r *TherapistRepositoryImpl) CreateBulk(ctx context.Context, therapists []*entity.Therapist) error {
	if len(therapists) == 0 {
		return nil
	}
	models := make([]*model.Therapist, len(therapists))
	for i, t := range therapists {
		models[i] = r.mapper.ToModel(t)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *TherapistRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Therapist, error) {
	var models []*model.Therapist
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Therapist, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *TherapistRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Therapist{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
