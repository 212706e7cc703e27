package service

import (
	"context"
	"sync"
	"testing"

	"mindcare-chat-be/internal/dataset"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/contract"
	"mindcare-chat-be/pkg/embedding"
	"mindcare-chat-be/pkg/locale"

	"github.com/stretchr/testify/assert"
)

// countingProvider wraps a real embedder and counts calls per task type.
type countingProvider struct {
	inner embedding.EmbeddingProvider

	mu    sync.Mutex
	calls map[string]int
}

func newCountingProvider() *countingProvider {
	return &countingProvider{inner: embedding.NewLocalProvider(), calls: make(map[string]int)}
}

func (p *countingProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	p.mu.Lock()
	p.calls[taskType]++
	p.mu.Unlock()
	return p.inner.Generate(text, taskType)
}

func (p *countingProvider) count(taskType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[taskType]
}

// orthogonalProvider embeds queries and documents on disjoint axes, so every
// cosine similarity is exactly zero.
type orthogonalProvider struct{}

func (orthogonalProvider) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	values := make([]float32, embedding.LocalDimensions)
	if taskType == "retrieval_query" {
		values[0] = 1
	} else {
		values[1] = 1
	}
	resp := &embedding.EmbeddingResponse{}
	resp.Embedding.Values = values
	return resp, nil
}

type fakeEmbedRepo struct {
	mu    sync.Mutex
	rows  map[string][]contract.PersistedEmbedding
	saves int
}

func newFakeEmbedRepo() *fakeEmbedRepo {
	return &fakeEmbedRepo{rows: make(map[string][]contract.PersistedEmbedding)}
}

func (r *fakeEmbedRepo) FindAllByKind(ctx context.Context, kind string) ([]contract.PersistedEmbedding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[kind], nil
}

func (r *fakeEmbedRepo) Save(ctx context.Context, kind, refId, document string, values []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[kind] = append(r.rows[kind], contract.PersistedEmbedding{RefId: refId, Values: values})
	r.saves++
	return nil
}

func TestKnowledgeSearchKeywordFallback(t *testing.T) {
	ks := NewKnowledgeService(dataset.KnowledgeEntries(), nil, nil, logger.NopLogger{})
	ctx := context.Background()

	t.Run("chinese sleep query matches across the locale chain", func(t *testing.T) {
		hits, err := ks.Search(ctx, "我最近总是失眠睡不着", locale.ZhCN, 3)
		assert.NoError(t, err)
		assert.Len(t, hits, 3)

		assert.Equal(t, "kb-zh-sleep-hygiene", hits[0].Id)
		for i := range hits {
			assert.Greater(t, hits[i].Score, float32(0))
			if i > 0 {
				assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
			}
		}

		// The runner-up scores are tied; the exact-locale entry must outrank
		// the fallback-tier one.
		assert.Equal(t, "kb-zh-sleep-racing-mind", hits[1].Id)
		assert.Equal(t, "kb-tw-sleep-routine", hits[2].Id)
		assert.Equal(t, hits[1].Score, hits[2].Score)
	})

	t.Run("english query stays in english entries", func(t *testing.T) {
		hits, err := ks.Search(ctx, "my insomnia is back", locale.EnUS, 5)
		assert.NoError(t, err)
		assert.Len(t, hits, 1)
		assert.Equal(t, "kb-en-sleep-hygiene", hits[0].Id)
	})

	t.Run("no overlap yields no hits", func(t *testing.T) {
		hits, err := ks.Search(ctx, "今天吃了火锅", locale.ZhCN, 5)
		assert.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		hits, err := ks.Search(ctx, "失眠 睡眠 担忧 作息", locale.ZhCN, 2)
		assert.NoError(t, err)
		assert.LessOrEqual(t, len(hits), 2)
	})
}

func TestKnowledgeSearchEmbeddingPath(t *testing.T) {
	provider := newCountingProvider()
	entries := dataset.KnowledgeEntries()
	ks := NewKnowledgeService(entries, provider, nil, logger.NopLogger{})
	ctx := context.Background()

	first, err := ks.Search(ctx, "长期失眠怎么办", locale.ZhCN, 5)
	assert.NoError(t, err)
	assert.NotEmpty(t, first)
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}

	// Entry embeddings are memoized: a second search embeds only the query.
	docsAfterFirst := provider.count("retrieval_document")
	_, err = ks.Search(ctx, "长期失眠怎么办", locale.ZhCN, 5)
	assert.NoError(t, err)
	assert.Equal(t, docsAfterFirst, provider.count("retrieval_document"))
	assert.Equal(t, 2, provider.count("retrieval_query"))
}

func TestKnowledgeSearchKeywordRescue(t *testing.T) {
	// Every cosine score is zero, so the embedding pass yields nothing and
	// the keyword pass must take over.
	ks := NewKnowledgeService(dataset.KnowledgeEntries(), orthogonalProvider{}, nil, logger.NopLogger{})

	hits, err := ks.Search(context.Background(), "失眠", locale.ZhCN, 3)
	assert.NoError(t, err)
	assert.Len(t, hits, 3)
	assert.Equal(t, "kb-zh-sleep-hygiene", hits[0].Id)
	assert.Equal(t, "kb-zh-sleep-racing-mind", hits[1].Id)
	assert.Equal(t, "kb-tw-sleep-routine", hits[2].Id)
	for _, h := range hits {
		assert.InDelta(t, 0.2, h.Score, 1e-5)
	}
}

func TestKnowledgeGuidanceFor(t *testing.T) {
	ks := NewKnowledgeService(dataset.KnowledgeEntries(), nil, nil, logger.NopLogger{})
	ctx := context.Background()

	assert.NotEmpty(t, ks.GuidanceFor(ctx, "我又失眠了", locale.ZhCN))
	assert.Nil(t, ks.GuidanceFor(ctx, "今天吃了火锅", locale.ZhCN))
}

func TestKnowledgeHydrate(t *testing.T) {
	provider := newCountingProvider()
	embedRepo := newFakeEmbedRepo()
	entries := dataset.KnowledgeEntries()

	// Pre-populate the warm cache with every entry's embedding.
	local := embedding.NewLocalProvider()
	for _, e := range entries {
		resp, err := local.Generate(e.Document(), "retrieval_document")
		assert.NoError(t, err)
		assert.NoError(t, embedRepo.Save(context.Background(), "knowledge", e.Id, e.Document(), resp.Embedding.Values))
	}
	embedRepo.saves = 0

	ks := NewKnowledgeService(entries, provider, embedRepo, logger.NopLogger{})
	ks.Hydrate(context.Background())

	// Everything was restored from the cache; nothing was recomputed or
	// written back.
	assert.Zero(t, provider.count("retrieval_document"))
	assert.Zero(t, embedRepo.saves)

	// Unknown cached ids are ignored.
	assert.NoError(t, embedRepo.Save(context.Background(), "knowledge", "kb-gone", "stale", []float32{1}))
	ks.Hydrate(context.Background())
	assert.Zero(t, provider.count("retrieval_document"))
}
