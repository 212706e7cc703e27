package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"mindcare-chat-be/internal/dataset"
	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/contract"
	"mindcare-chat-be/pkg/embedding"
	"mindcare-chat-be/pkg/locale"
)

const (
	defaultRecommendLimit = 3
	maxRecommendLimit     = 10
)

type IRecommendationService interface {
	// Recommend ranks therapists against a stated concern. Results carry
	// positive scores only, sorted descending.
	Recommend(ctx context.Context, concern, loc string, limit int) ([]dto.TherapistRecommendation, error)
}

type recommendationService struct {
	therapistRepo contract.TherapistRepository
	provider      embedding.EmbeddingProvider
	embedRepo     contract.DocumentEmbeddingRepository
	logger        logger.ILogger

	mu   sync.Mutex
	memo map[string][]float32
}

func NewRecommendationService(
	therapistRepo contract.TherapistRepository,
	provider embedding.EmbeddingProvider,
	embedRepo contract.DocumentEmbeddingRepository,
	log logger.ILogger,
) IRecommendationService {
	return &recommendationService{
		therapistRepo: therapistRepo,
		provider:      provider,
		embedRepo:     embedRepo,
		logger:        log,
		memo:          make(map[string][]float32),
	}
}

func (rs *recommendationService) Recommend(ctx context.Context, concern, loc string, limit int) ([]dto.TherapistRecommendation, error) {
	if limit <= 0 {
		limit = defaultRecommendLimit
	}
	if limit > maxRecommendLimit {
		limit = maxRecommendLimit
	}

	therapists := rs.loadTherapists(ctx)
	concernVec := rs.concernEmbedding(concern)

	recs := rs.rank(ctx, concernVec, concern, loc, therapists)
	if len(recs) == 0 && concernVec != nil {
		// The embedding pass found no positive similarity; rescore on
		// specialty overlap so a lexical match still surfaces.
		recs = rs.rank(ctx, nil, concern, loc, therapists)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Name < recs[j].Name
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (rs *recommendationService) rank(ctx context.Context, concernVec []float32, concern, loc string, therapists []*entity.Therapist) []dto.TherapistRecommendation {
	var recs []dto.TherapistRecommendation
	for _, t := range therapists {
		score, matched := rs.scoreTherapist(ctx, concernVec, concern, loc, t)
		if score <= 0 {
			continue
		}
		recs = append(recs, dto.TherapistRecommendation{
			Id:              t.Id,
			Name:            t.Name,
			Title:           t.Title,
			Specialties:     t.Specialties,
			Languages:       t.Languages,
			Score:           score,
			Reason:          recommendReason(loc, matched, t),
			MatchedKeywords: matched,
		})
	}
	return recs
}

// loadTherapists prefers the database directory and falls back to the seed
// dataset when the database is empty or unreachable.
func (rs *recommendationService) loadTherapists(ctx context.Context) []*entity.Therapist {
	if rs.therapistRepo != nil {
		therapists, err := rs.therapistRepo.FindAll(ctx)
		if err != nil {
			rs.logger.Warn("RecommendationService", "Therapist lookup failed, using seed directory", map[string]interface{}{
				"error": err.Error(),
			})
		} else if len(therapists) > 0 {
			return therapists
		}
	}
	return dataset.DefaultTherapists()
}

func (rs *recommendationService) concernEmbedding(concern string) []float32 {
	if rs.provider == nil {
		return nil
	}
	resp, err := rs.provider.Generate(concern, "retrieval_query")
	if err != nil || resp == nil || len(resp.Embedding.Values) == 0 {
		if err != nil {
			rs.logger.Warn("RecommendationService", "Concern embedding failed, falling back to specialty matching", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil
	}
	return resp.Embedding.Values
}

func (rs *recommendationService) scoreTherapist(ctx context.Context, concernVec []float32, concern, loc string, t *entity.Therapist) (float32, []string) {
	if concernVec != nil {
		if vec, ok := rs.profileEmbedding(ctx, t); ok {
			return embedding.Cosine(concernVec, vec), nil
		}
	}
	return specialtyMatchScore(concern, loc, t)
}

func (rs *recommendationService) profileEmbedding(ctx context.Context, t *entity.Therapist) ([]float32, bool) {
	key := t.Id.String()

	rs.mu.Lock()
	vec, ok := rs.memo[key]
	rs.mu.Unlock()
	if ok {
		return vec, true
	}

	resp, err := rs.provider.Generate(t.ProfileDocument(), "retrieval_document")
	if err != nil || resp == nil || len(resp.Embedding.Values) == 0 {
		if err != nil {
			rs.logger.Warn("RecommendationService", "Profile embedding failed", map[string]interface{}{
				"therapist_id": key,
				"error":        err.Error(),
			})
		}
		return nil, false
	}
	vec = resp.Embedding.Values

	rs.mu.Lock()
	rs.memo[key] = vec
	rs.mu.Unlock()

	if rs.embedRepo != nil {
		if err := rs.embedRepo.Save(ctx, kindTherapist, key, t.ProfileDocument(), vec); err != nil {
			rs.logger.Warn("RecommendationService", "Failed to persist embedding to warm cache", map[string]interface{}{
				"therapist_id": key,
				"error":        err.Error(),
			})
		}
	}
	return vec, true
}

// specialtyMatchScore needs at least one specialty overlap to score at all;
// each overlapping specialty is worth 0.2, a locale-compatible language adds
// another 0.2, capped at 1.0. Returns the specialties that overlapped.
func specialtyMatchScore(concern, loc string, t *entity.Therapist) (float32, []string) {
	lowerConcern := strings.ToLower(concern)

	var score float32
	var matched []string
	for _, s := range t.Specialties {
		lowerSpec := strings.ToLower(s)
		if lowerSpec == "" {
			continue
		}
		if strings.Contains(lowerSpec, lowerConcern) || strings.Contains(lowerConcern, lowerSpec) {
			score += 0.2
			matched = append(matched, s)
		}
	}
	if score == 0 {
		return 0, nil
	}

	for _, tier := range locale.FallbackChain(loc) {
		for _, lang := range t.Languages {
			if lang == tier {
				score += 0.2
				if score > 1.0 {
					score = 1.0
				}
				return score, matched
			}
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, matched
}

// recommendReason templates a short human-readable reason: the overlapping
// keywords when the lexical pass matched, the leading specialties otherwise.
func recommendReason(loc string, matched []string, t *entity.Therapist) string {
	leading := t.Specialties
	if len(leading) > 2 {
		leading = leading[:2]
	}
	if locale.IsChinese(loc) {
		if len(matched) > 0 {
			return "匹配你提到的:" + strings.Join(matched, "、")
		}
		return "擅长" + strings.Join(leading, "、")
	}
	if len(matched) > 0 {
		return "Matches what you mentioned: " + strings.Join(matched, ", ")
	}
	return "Specializes in " + strings.Join(leading, ", ")
}
