package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// DocumentEmbedding is the persistent warm cache for knowledge-entry and
// therapist document vectors. The in-process memo caches hydrate from it at
// startup so embeddings survive restarts; writes are best-effort.
type DocumentEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentKind   string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_kind_ref"` // "knowledge" | "therapist"
	RefId          string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_kind_ref"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(256)"` // local deterministic embedder dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}
