package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/apperr"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/memory"
	"mindcare-chat-be/internal/repository/specification"
	"mindcare-chat-be/pkg/ai/fallback"
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/locale"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	return r.Create(ctx, session)
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var byId *uuid.UUID
	var owner *uuid.UUID
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			id := sp.ID
			byId = &id
		case specification.UserOwnedBy:
			id := sp.UserID
			owner = &id
		}
	}
	if byId == nil {
		return nil, nil
	}
	session, ok := r.sessions[*byId]
	if !ok || (owner != nil && session.UserId != *owner) {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var owner *uuid.UUID
	for _, s := range specs {
		if sp, ok := s.(specification.UserOwnedBy); ok {
			id := sp.UserID
			owner = &id
		}
	}
	var out []*entity.ChatSession
	for _, session := range r.sessions {
		if owner == nil || session.UserId == *owner {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sessionId *uuid.UUID
	desc := false
	limit := 0
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByChatSessionID:
			id := sp.ChatSessionID
			sessionId = &id
		case specification.OrderBy:
			desc = sp.Desc
		case specification.Pagination:
			limit = sp.Limit
		}
	}

	var out []*entity.ChatMessage
	for _, m := range r.messages {
		if sessionId == nil || m.ChatSessionId == *sessionId {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].SequenceIndex > out[j].SequenceIndex
		}
		return out[i].SequenceIndex < out[j].SequenceIndex
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	msgs, _ := r.FindAll(ctx, specs...)
	return int64(len(msgs)), nil
}

func (r *fakeMessageRepo) MaxSequenceIndex(ctx context.Context, sessionId uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	max := -1
	for _, m := range r.messages {
		if m.ChatSessionId == sessionId && m.SequenceIndex > max {
			max = m.SequenceIndex
		}
	}
	return max, nil
}

// stubReplySource returns a fixed reply; Stream replays fragments when set
// and otherwise delivers the reply as a single delta.
type stubReplySource struct {
	reply     string
	fragments []fallback.Fragment
}

func (s *stubReplySource) Generate(ctx context.Context, history []llm.Message, language string, maxTokens int) string {
	return s.reply
}

func (s *stubReplySource) Stream(ctx context.Context, history []llm.Message, language string, maxTokens int) <-chan fallback.Fragment {
	out := make(chan fallback.Fragment)
	go func() {
		defer close(out)
		fragments := s.fragments
		if fragments == nil {
			fragments = []fallback.Fragment{{Delta: s.reply}}
		}
		for _, frag := range fragments {
			select {
			case out <- frag:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// stubRecommender hands back a fixed candidate list or a fixed error.
type stubRecommender struct {
	recs []dto.TherapistRecommendation
	err  error
}

func (s *stubRecommender) Recommend(ctx context.Context, concern, loc string, limit int) ([]dto.TherapistRecommendation, error) {
	return s.recs, s.err
}

type chatFixture struct {
	service    IChatService
	sessions   *fakeSessionRepo
	messages   *fakeMessageRepo
	turnStates *memory.TurnStateRepository
}

func newChatFixture(src ReplySource, tokenBudget int) *chatFixture {
	return newRecommendingFixture(src, nil, tokenBudget)
}

func newRecommendingFixture(src ReplySource, recommender IRecommendationService, tokenBudget int) *chatFixture {
	f := &chatFixture{
		sessions:   newFakeSessionRepo(),
		messages:   &fakeMessageRepo{},
		turnStates: memory.NewTurnStateRepository(),
	}
	f.service = NewChatService(f.sessions, f.messages, f.turnStates, src, nil, nil, recommender, nil, nil, nil, logger.NopLogger{}, tokenBudget, locale.EnUS)
	return f
}

func TestSendChat(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()

	t.Run("first turn creates a session and assigns sequences 0 and 1", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "I hear you."}, 0)

		resp, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "I cannot sleep"})
		assert.NoError(t, err)
		assert.Equal(t, 0, resp.Sent.SequenceIndex)
		assert.Equal(t, 1, resp.Reply.SequenceIndex)
		assert.Equal(t, "I hear you.", resp.Reply.Content)
		assert.Equal(t, locale.EnUS, resp.Locale)
		assert.Len(t, f.sessions.sessions, 1)

		// The turn slot is released once the turn commits.
		_, held := f.turnStates.Get(resp.ChatSessionId)
		assert.False(t, held)
	})

	t.Run("follow-up turn continues the sequence", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "ok"}, 0)

		first, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "hello there"})
		assert.NoError(t, err)

		second, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{
			ChatSessionId: &first.ChatSessionId,
			Message:       "still here",
		})
		assert.NoError(t, err)
		assert.Equal(t, first.ChatSessionId, second.ChatSessionId)
		assert.Equal(t, 2, second.Sent.SequenceIndex)
		assert.Equal(t, 3, second.Reply.SequenceIndex)
		assert.Len(t, f.sessions.sessions, 1)
	})

	t.Run("script detection overrides the locale hint", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "收到"}, 0)

		resp, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "我睡不着", Locale: locale.EnUS})
		assert.NoError(t, err)
		assert.Equal(t, locale.ZhCN, resp.Locale)
		assert.Equal(t, locale.ZhCN, f.sessions.sessions[resp.ChatSessionId].Locale)
	})
}

func TestSendChatRejections(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()

	t.Run("blank message", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "unused"}, 0)
		_, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "   "})
		assert.True(t, apperr.HasCode(err, apperr.CodeValidationFailed))
		assert.Empty(t, f.messages.messages)
	})

	t.Run("message over the token budget", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "unused"}, 5)
		_, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "这是一条远远超过预算的中文消息"})
		assert.True(t, apperr.HasCode(err, apperr.CodeTokenQuotaExceeded))
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "unused"}, 0)
		missing := uuid.New()
		_, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{ChatSessionId: &missing, Message: "hello"})
		assert.True(t, apperr.HasCode(err, apperr.CodeSessionNotFound))
	})

	t.Run("session owned by someone else", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "unused"}, 0)
		other := &entity.ChatSession{Id: uuid.New(), UserId: uuid.New(), State: entity.SessionStateActive, Locale: locale.EnUS}
		assert.NoError(t, f.sessions.Create(ctx, other))

		_, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{ChatSessionId: &other.Id, Message: "hello"})
		assert.True(t, apperr.HasCode(err, apperr.CodeSessionNotFound))
	})

	t.Run("turn already in flight", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "unused"}, 0)
		session := &entity.ChatSession{Id: uuid.New(), UserId: userId, State: entity.SessionStateActive, Locale: locale.EnUS}
		assert.NoError(t, f.sessions.Create(ctx, session))
		assert.True(t, f.turnStates.Begin(session.Id, -1))

		_, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{ChatSessionId: &session.Id, Message: "hello"})
		assert.True(t, apperr.HasCode(err, apperr.CodeValidationFailed))
	})
}

func collectEvents(events <-chan dto.StreamEvent) []dto.StreamEvent {
	var out []dto.StreamEvent
	for event := range events {
		out = append(out, event)
	}
	return out
}

func TestStreamChat(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()

	t.Run("event ordering on a clean turn", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{fragments: []fallback.Fragment{{Delta: "It "}, {Delta: "helps."}}}, 0)

		events, err := f.service.StreamChat(ctx, userId, &dto.SendChatRequest{Message: "I feel anxious"})
		assert.NoError(t, err)
		got := collectEvents(events)

		assert.Len(t, got, 4)
		assert.Equal(t, dto.EventSessionEstablished, got[0].Event)
		assert.NotNil(t, got[0].ChatSessionId)
		assert.Equal(t, locale.EnUS, got[0].Locale)
		assert.Equal(t, dto.EventToken, got[1].Event)
		assert.Equal(t, "It ", got[1].Delta)
		assert.Equal(t, dto.EventToken, got[2].Event)
		assert.Equal(t, dto.EventComplete, got[3].Event)
		assert.Equal(t, "It helps.", got[3].Content)
		assert.NotNil(t, got[3].SequenceIndex)
		assert.Equal(t, 1, *got[3].SequenceIndex)

		// Both halves of the turn were committed.
		persisted, err := f.messages.FindAll(ctx)
		assert.NoError(t, err)
		assert.Len(t, persisted, 2)
		assert.Equal(t, entity.RoleUser, persisted[0].Role)
		assert.Equal(t, entity.RoleAssistant, persisted[1].Role)
		assert.Equal(t, "It helps.", persisted[1].Content)
	})

	t.Run("fragment error becomes a single terminal error event", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{fragments: []fallback.Fragment{
			{Err: apperr.New(apperr.CodeProviderExhausted, "all providers failed")},
		}}, 0)

		events, err := f.service.StreamChat(ctx, userId, &dto.SendChatRequest{Message: "hello"})
		assert.NoError(t, err)
		got := collectEvents(events)

		assert.Len(t, got, 2)
		assert.Equal(t, dto.EventSessionEstablished, got[0].Event)
		assert.Equal(t, dto.EventError, got[1].Event)
		assert.Equal(t, apperr.CodeProviderExhausted, got[1].Code)

		// The user half was committed before the stream failed; no assistant
		// message exists.
		persisted, err := f.messages.FindAll(ctx)
		assert.NoError(t, err)
		assert.Len(t, persisted, 1)
		assert.Equal(t, entity.RoleUser, persisted[0].Role)
	})

	t.Run("restart marker drops the dead attempt's prefix", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{fragments: []fallback.Fragment{
			{Delta: "WRONG-PREFIX "},
			{Restart: true},
			{Delta: "the real "},
			{Delta: "reply."},
		}}, 0)

		events, err := f.service.StreamChat(ctx, userId, &dto.SendChatRequest{Message: "hello"})
		assert.NoError(t, err)
		got := collectEvents(events)

		last := got[len(got)-1]
		assert.Equal(t, dto.EventComplete, last.Event)
		assert.Equal(t, "the real reply.", last.Content)

		persisted, err := f.messages.FindAll(ctx)
		assert.NoError(t, err)
		assert.Len(t, persisted, 2)
		assert.Equal(t, "the real reply.", persisted[1].Content)
	})

	t.Run("blank streamed reply falls back to the generic reply", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{fragments: []fallback.Fragment{{Delta: "   "}}}, 0)

		events, err := f.service.StreamChat(ctx, userId, &dto.SendChatRequest{Message: "hello"})
		assert.NoError(t, err)
		got := collectEvents(events)

		last := got[len(got)-1]
		assert.Equal(t, dto.EventComplete, last.Event)
		assert.Equal(t, locale.GenericReply(locale.EnUS), last.Content)
	})

	t.Run("pre-flight failures are errors, not events", func(t *testing.T) {
		f := newChatFixture(&stubReplySource{reply: "unused"}, 0)

		events, err := f.service.StreamChat(ctx, userId, &dto.SendChatRequest{Message: ""})
		assert.Nil(t, events)
		assert.True(t, apperr.HasCode(err, apperr.CodeValidationFailed))
	})
}

func TestChatTurnRecommendations(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()
	candidates := []dto.TherapistRecommendation{{
		Id:              uuid.New(),
		Name:            "Sarah Whitfield",
		Title:           "Clinical Psychologist",
		Specialties:     []string{"anxiety", "panic disorder"},
		Languages:       []string{locale.EnUS},
		Score:           0.4,
		Reason:          "Matches what you mentioned: anxiety",
		MatchedKeywords: []string{"anxiety"},
	}}

	t.Run("turn response carries therapist candidates", func(t *testing.T) {
		f := newRecommendingFixture(&stubReplySource{reply: "I hear you."}, &stubRecommender{recs: candidates}, 0)

		resp, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "anxiety keeps me up"})
		assert.NoError(t, err)
		assert.Equal(t, candidates, resp.Recommendations)
	})

	t.Run("complete event carries therapist candidates", func(t *testing.T) {
		f := newRecommendingFixture(&stubReplySource{reply: "I hear you."}, &stubRecommender{recs: candidates}, 0)

		events, err := f.service.StreamChat(ctx, userId, &dto.SendChatRequest{Message: "anxiety keeps me up"})
		assert.NoError(t, err)
		got := collectEvents(events)

		last := got[len(got)-1]
		assert.Equal(t, dto.EventComplete, last.Event)
		assert.Equal(t, candidates, last.Recommendations)
	})

	t.Run("recommender failure never fails the turn", func(t *testing.T) {
		f := newRecommendingFixture(&stubReplySource{reply: "I hear you."}, &stubRecommender{err: assert.AnError}, 0)

		resp, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "anxiety keeps me up"})
		assert.NoError(t, err)
		assert.Empty(t, resp.Recommendations)
		assert.Equal(t, "I hear you.", resp.Reply.Content)
	})
}

func TestGetChatHistory(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()
	f := newChatFixture(&stubReplySource{reply: "first reply"}, 0)

	resp, err := f.service.SendChat(ctx, userId, &dto.SendChatRequest{Message: "hello"})
	assert.NoError(t, err)

	t.Run("returns the session transcript in order", func(t *testing.T) {
		history, err := f.service.GetChatHistory(ctx, userId, resp.ChatSessionId)
		assert.NoError(t, err)
		assert.Len(t, history, 2)
		assert.Equal(t, 0, history[0].SequenceIndex)
		assert.Equal(t, entity.RoleUser, history[0].Role)
		assert.Equal(t, 1, history[1].SequenceIndex)
		assert.Equal(t, "first reply", history[1].Content)
	})

	t.Run("denies other users", func(t *testing.T) {
		_, err := f.service.GetChatHistory(ctx, uuid.New(), resp.ChatSessionId)
		assert.True(t, apperr.HasCode(err, apperr.CodeSessionNotFound))
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Zero(t, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("abcd"))
	assert.Equal(t, 2, estimateTokens("你好"))
	assert.Equal(t, 3, estimateTokens("你好ab"))
	// Whitespace is free.
	assert.Equal(t, 2, estimateTokens("a b c d   e f g h"))
}
