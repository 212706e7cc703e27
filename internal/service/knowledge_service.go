package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/contract"
	"mindcare-chat-be/pkg/embedding"
	"mindcare-chat-be/pkg/locale"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20

	kindKnowledge = "knowledge"
	kindTherapist = "therapist"
)

type IKnowledgeService interface {
	// Search ranks curated guidance entries against a free-text query,
	// walking the locale fallback chain. Results carry positive scores only,
	// sorted descending.
	Search(ctx context.Context, query, loc string, limit int) ([]dto.KnowledgeHit, error)

	// GuidanceFor returns the guidance lines of the single best match for an
	// utterance, or nil. Best effort: it never fails.
	GuidanceFor(ctx context.Context, utterance, loc string) []string

	// Hydrate restores memoized embeddings from the warm cache and computes
	// the missing ones. Safe to call more than once.
	Hydrate(ctx context.Context)
}

type knowledgeService struct {
	entries   []entity.KnowledgeEntry
	provider  embedding.EmbeddingProvider
	embedRepo contract.DocumentEmbeddingRepository
	logger    logger.ILogger

	// memo is append-only: an entry's embedding never changes because the
	// dataset is immutable at runtime.
	mu   sync.Mutex
	memo map[string][]float32
}

func NewKnowledgeService(
	entries []entity.KnowledgeEntry,
	provider embedding.EmbeddingProvider,
	embedRepo contract.DocumentEmbeddingRepository,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		entries:   entries,
		provider:  provider,
		embedRepo: embedRepo,
		logger:    log,
		memo:      make(map[string][]float32),
	}
}

func (ks *knowledgeService) Search(ctx context.Context, query, loc string, limit int) ([]dto.KnowledgeHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	queryVec := ks.queryEmbedding(query)
	entries := ks.entriesForLocale(loc)

	hits := ks.rank(ctx, queryVec, query, entries)
	if len(hits) == 0 && queryVec != nil {
		// The embedding pass found no positive similarity; rescore on
		// keyword overlap so a lexical match still surfaces.
		hits = ks.rank(ctx, nil, query, entries)
	}

	// Stable sort on score alone: equal scores keep the tier-merge order,
	// closest locale tier first.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (ks *knowledgeService) rank(ctx context.Context, queryVec []float32, query string, entries []entity.KnowledgeEntry) []dto.KnowledgeHit {
	var hits []dto.KnowledgeHit
	for _, e := range entries {
		score := ks.scoreEntry(ctx, queryVec, query, e)
		if score <= 0 {
			continue
		}
		hits = append(hits, dto.KnowledgeHit{
			Id:       e.Id,
			Locale:   e.Locale,
			Title:    e.Title,
			Summary:  e.Summary,
			Guidance: e.Guidance,
			Score:    score,
		})
	}
	return hits
}

func (ks *knowledgeService) GuidanceFor(ctx context.Context, utterance, loc string) []string {
	hits, err := ks.Search(ctx, utterance, loc, 1)
	if err != nil || len(hits) == 0 {
		return nil
	}
	return hits[0].Guidance
}

// entriesForLocale merges the entries of every tier in the fallback chain,
// deduplicated by id, closest tier first.
func (ks *knowledgeService) entriesForLocale(loc string) []entity.KnowledgeEntry {
	var merged []entity.KnowledgeEntry
	seen := make(map[string]bool)
	for _, tier := range locale.FallbackChain(loc) {
		for _, e := range ks.entries {
			if e.Locale == tier && !seen[e.Id] {
				seen[e.Id] = true
				merged = append(merged, e)
			}
		}
	}
	return merged
}

func (ks *knowledgeService) queryEmbedding(query string) []float32 {
	if ks.provider == nil {
		return nil
	}
	resp, err := ks.provider.Generate(query, "retrieval_query")
	if err != nil || resp == nil || len(resp.Embedding.Values) == 0 {
		if err != nil {
			ks.logger.Warn("KnowledgeService", "Query embedding failed, falling back to keyword scoring", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	}
	return resp.Embedding.Values
}

// scoreEntry prefers cosine similarity and degrades to keyword overlap when
// either side has no usable embedding.
func (ks *knowledgeService) scoreEntry(ctx context.Context, queryVec []float32, query string, e entity.KnowledgeEntry) float32 {
	if queryVec != nil {
		if vec, ok := ks.embeddingFor(ctx, e); ok {
			return embedding.Cosine(queryVec, vec)
		}
	}
	return keywordOverlapScore(query, e.Keywords, e.Tags)
}

func (ks *knowledgeService) embeddingFor(ctx context.Context, e entity.KnowledgeEntry) ([]float32, bool) {
	ks.mu.Lock()
	vec, ok := ks.memo[e.Id]
	ks.mu.Unlock()
	if ok {
		return vec, true
	}

	resp, err := ks.provider.Generate(e.Document(), "retrieval_document")
	if err != nil || resp == nil || len(resp.Embedding.Values) == 0 {
		if err != nil {
			ks.logger.Warn("KnowledgeService", "Entry embedding failed", map[string]interface{}{
				"entry_id": e.Id,
				"error":    err.Error(),
			})
		}
		return nil, false
	}
	vec = resp.Embedding.Values

	ks.mu.Lock()
	ks.memo[e.Id] = vec
	ks.mu.Unlock()

	if ks.embedRepo != nil {
		if err := ks.embedRepo.Save(ctx, kindKnowledge, e.Id, e.Document(), vec); err != nil {
			ks.logger.Warn("KnowledgeService", "Failed to persist embedding to warm cache", map[string]interface{}{
				"entry_id": e.Id,
				"error":    err.Error(),
			})
		}
	}
	return vec, true
}

func (ks *knowledgeService) Hydrate(ctx context.Context) {
	if ks.embedRepo != nil {
		persisted, err := ks.embedRepo.FindAllByKind(ctx, kindKnowledge)
		if err != nil {
			ks.logger.Warn("KnowledgeService", "Warm cache load failed", map[string]interface{}{"error": err.Error()})
		} else {
			known := make(map[string]bool, len(ks.entries))
			for _, e := range ks.entries {
				known[e.Id] = true
			}
			ks.mu.Lock()
			for _, p := range persisted {
				if known[p.RefId] && len(p.Values) > 0 {
					ks.memo[p.RefId] = p.Values
				}
			}
			ks.mu.Unlock()
		}
	}

	if ks.provider == nil {
		return
	}
	for _, e := range ks.entries {
		ks.embeddingFor(ctx, e)
	}
}

// keywordOverlapScore rewards each entry keyword present in the query with
// 0.2 and each tag with 0.1, capped at 1.0.
func keywordOverlapScore(query string, keywords, tags []string) float32 {
	lower := strings.ToLower(query)
	var score float32
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			score += 0.2
		}
	}
	for _, tag := range tags {
		if tag != "" && strings.Contains(lower, strings.ToLower(tag)) {
			score += 0.1
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
