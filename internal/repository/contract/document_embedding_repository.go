package contract

import "context"

// PersistedEmbedding is one row of the warm embedding cache.
type PersistedEmbedding struct {
	RefId  string
	Values []float32
}

// DocumentEmbeddingRepository is the persistent warm cache behind the
// in-process embedding memos. All operations are best-effort for callers:
// a failure only costs recomputation.
type DocumentEmbeddingRepository interface {
	FindAllByKind(ctx context.Context, kind string) ([]PersistedEmbedding, error)
	Save(ctx context.Context, kind, refId, document string, values []float32) error
}
