package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/specification"
	"mindcare-chat-be/pkg/embedding"
	"mindcare-chat-be/pkg/locale"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeTherapistRepo struct {
	therapists []*entity.Therapist
	findErr    error
}

func (r *fakeTherapistRepo) CreateBulk(ctx context.Context, therapists []*entity.Therapist) error {
	r.therapists = append(r.therapists, therapists...)
	return nil
}

func (r *fakeTherapistRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Therapist, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.therapists, nil
}

func (r *fakeTherapistRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.therapists)), nil
}

func TestRecommendSpecialtyMatching(t *testing.T) {
	rs := NewRecommendationService(nil, nil, nil, logger.NopLogger{})
	ctx := context.Background()

	t.Run("anxiety concern in chinese", func(t *testing.T) {
		recs, err := rs.Recommend(ctx, "焦虑", locale.ZhCN, 3)
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Equal(t, "林婉清", recs[0].Name)
		assert.Contains(t, recs[0].Specialties, "焦虑管理")
		// One specialty overlap plus the language bonus.
		assert.InDelta(t, 0.4, recs[0].Score, 1e-5)
		assert.Equal(t, []string{"焦虑管理"}, recs[0].MatchedKeywords)
		assert.Equal(t, "匹配你提到的:焦虑管理", recs[0].Reason)
	})

	t.Run("anxiety concern in english", func(t *testing.T) {
		recs, err := rs.Recommend(ctx, "anxiety", locale.EnUS, 3)
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Equal(t, "Sarah Whitfield", recs[0].Name)
		assert.Equal(t, []string{"anxiety"}, recs[0].MatchedKeywords)
		assert.Equal(t, "Matches what you mentioned: anxiety", recs[0].Reason)
	})

	t.Run("stress concern in english", func(t *testing.T) {
		recs, err := rs.Recommend(ctx, "stress", locale.EnUS, 3)
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Equal(t, "David Okafor", recs[0].Name)
		assert.Equal(t, []string{"workplace stress"}, recs[0].MatchedKeywords)
	})

	t.Run("no specialty overlap means no recommendation", func(t *testing.T) {
		recs, err := rs.Recommend(ctx, "quantum computing", locale.EnUS, 3)
		assert.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestRecommendPrefersDatabaseDirectory(t *testing.T) {
	ctx := context.Background()
	custom := &entity.Therapist{
		Id:          uuid.New(),
		Name:        "自定义咨询师",
		Specialties: []string{"焦虑疏导"},
		Languages:   []string{locale.ZhCN},
		CreatedAt:   time.Now(),
	}

	t.Run("uses repository entries when present", func(t *testing.T) {
		repo := &fakeTherapistRepo{therapists: []*entity.Therapist{custom}}
		rs := NewRecommendationService(repo, nil, nil, logger.NopLogger{})

		recs, err := rs.Recommend(ctx, "焦虑", locale.ZhCN, 3)
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Equal(t, "自定义咨询师", recs[0].Name)
	})

	t.Run("falls back to the seed directory on lookup failure", func(t *testing.T) {
		repo := &fakeTherapistRepo{findErr: errors.New("db down")}
		rs := NewRecommendationService(repo, nil, nil, logger.NopLogger{})

		recs, err := rs.Recommend(ctx, "焦虑", locale.ZhCN, 3)
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Equal(t, "林婉清", recs[0].Name)
	})

	t.Run("falls back when the directory is empty", func(t *testing.T) {
		rs := NewRecommendationService(&fakeTherapistRepo{}, nil, nil, logger.NopLogger{})

		recs, err := rs.Recommend(ctx, "anxiety", locale.EnUS, 3)
		assert.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.Equal(t, "Sarah Whitfield", recs[0].Name)
	})
}

func TestRecommendEmbeddingPath(t *testing.T) {
	rs := NewRecommendationService(nil, embedding.NewLocalProvider(), nil, logger.NopLogger{})

	recs, err := rs.Recommend(context.Background(), "失眠 睡不着 睡眠节律", locale.ZhCN, 3)
	assert.NoError(t, err)
	assert.NotEmpty(t, recs)
	assert.Equal(t, "陈思远", recs[0].Name)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}

	// Similarity-ranked results have no lexical overlap to cite; the reason
	// falls back to the leading specialties.
	assert.Empty(t, recs[0].MatchedKeywords)
	assert.Equal(t, "擅长睡眠障碍、失眠认知行为治疗", recs[0].Reason)
}

func TestRecommendKeywordRescue(t *testing.T) {
	// Every cosine score is zero, so the embedding pass yields nothing and
	// the specialty-overlap pass must take over.
	rs := NewRecommendationService(nil, orthogonalProvider{}, nil, logger.NopLogger{})

	recs, err := rs.Recommend(context.Background(), "焦虑", locale.ZhCN, 3)
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "林婉清", recs[0].Name)
	assert.InDelta(t, 0.4, recs[0].Score, 1e-5)
	assert.Equal(t, []string{"焦虑管理"}, recs[0].MatchedKeywords)
}
