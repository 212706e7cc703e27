package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TurnState tracks an in-flight turn for a session so a second turn
// cannot interleave sequence numbers with one still streaming.
type TurnState struct {
	SessionId    uuid.UUID
	StartedAt    time.Time
	LastSequence int
}

type TurnStateRepository struct {
	cache *cache.Cache
}

func NewTurnStateRepository() *TurnStateRepository {
	// Turns that never finish (crashed stream consumers) expire after
	// 5 minutes; expired entries are purged every minute.
	c := cache.New(5*time.Minute, 1*time.Minute)
	return &TurnStateRepository{cache: c}
}

func (r *TurnStateRepository) Begin(sessionId uuid.UUID, lastSequence int) bool {
	state := &TurnState{
		SessionId:    sessionId,
		StartedAt:    time.Now(),
		LastSequence: lastSequence,
	}
	return r.cache.Add(sessionId.String(), state, cache.DefaultExpiration) == nil
}

func (r *TurnStateRepository) Get(sessionId uuid.UUID) (*TurnState, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(*TurnState), true
	}
	return nil, false
}

func (r *TurnStateRepository) End(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}
