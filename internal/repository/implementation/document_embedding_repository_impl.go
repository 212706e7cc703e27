package implementation

import (
	"context"

	"mindcare-chat-be/internal/model"
	"mindcare-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentEmbeddingRepository(db *gorm.DB) contract.DocumentEmbeddingRepository {
	return &DocumentEmbeddingRepositoryImpl{db: db}
}

func (r *DocumentEmbeddingRepositoryImpl) FindAllByKind(ctx context.Context, kind string) ([]contract.PersistedEmbedding, error) {
	var models []*model.DocumentEmbedding
	err := r.db.WithContext(ctx).Where("document_kind = ?", kind).Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]contract.PersistedEmbedding, len(models))
	for i, m := range models {
		out[i] = contract.PersistedEmbedding{
			RefId:  m.RefId,
			Values: m.EmbeddingValue.Slice(),
		}
	}
	return out, nil
}

func (r *DocumentEmbeddingRepositoryImpl) Save(ctx context.Context, kind, refId, document string, values []float32) error {
	m := &model.DocumentEmbedding{
		Id:             uuid.New(),
		DocumentKind:   kind,
		RefId:          refId,
		Document:       document,
		EmbeddingValue: pgvector.NewVector(values),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_kind"}, {Name: "ref_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "embedding_value", "updated_at"}),
	}).Create(m).Error
}
