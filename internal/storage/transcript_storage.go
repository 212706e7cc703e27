package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const transcriptTTL = 24 * time.Hour

// TranscriptStorage keeps a rolling copy of each session transcript in
// Redis so the hot path never has to rebuild it from Postgres. Every
// operation is best effort: failures are logged and swallowed because
// Postgres remains the source of truth.
type TranscriptStorage struct {
	rdb    *redis.Client
	logger logger.ILogger
}

func NewTranscriptStorage(rdb *redis.Client, log logger.ILogger) *TranscriptStorage {
	return &TranscriptStorage{rdb: rdb, logger: log}
}

type transcriptEntry struct {
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	SequenceIndex int       `json:"sequence_index"`
	CreatedAt     time.Time `json:"created_at"`
}

func transcriptKey(sessionId uuid.UUID) string {
	return fmt.Sprintf("transcript:%s", sessionId)
}

func (s *TranscriptStorage) PersistMessage(ctx context.Context, message *entity.ChatMessage) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(transcriptEntry{
		Role:          message.Role,
		Content:       message.Content,
		SequenceIndex: message.SequenceIndex,
		CreatedAt:     message.CreatedAt,
	})
	if err != nil {
		s.logger.Warn("TranscriptStorage", "Failed to encode transcript entry", map[string]interface{}{"error": err.Error()})
		return
	}

	key := transcriptKey(message.ChatSessionId)
	pipe := s.rdb.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, transcriptTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("TranscriptStorage", "Failed to persist transcript entry", map[string]interface{}{
			"session_id": message.ChatSessionId,
			"error":      err.Error(),
		})
	}
}

// PersistTranscript replaces the cached transcript wholesale. Used after
// a turn completes so the cache reflects the committed message order.
func (s *TranscriptStorage) PersistTranscript(ctx context.Context, sessionId uuid.UUID, messages []*entity.ChatMessage) {
	if s.rdb == nil {
		return
	}

	key := transcriptKey(sessionId)
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, key)
	for _, message := range messages {
		payload, err := json.Marshal(transcriptEntry{
			Role:          message.Role,
			Content:       message.Content,
			SequenceIndex: message.SequenceIndex,
			CreatedAt:     message.CreatedAt,
		})
		if err != nil {
			continue
		}
		pipe.RPush(ctx, key, payload)
	}
	pipe.Expire(ctx, key, transcriptTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("TranscriptStorage", "Failed to persist transcript snapshot", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// FetchTranscript returns the cached transcript, or nil when the cache
// is cold or unreachable.
func (s *TranscriptStorage) FetchTranscript(ctx context.Context, sessionId uuid.UUID) []*entity.ChatMessage {
	if s.rdb == nil {
		return nil
	}

	raw, err := s.rdb.LRange(ctx, transcriptKey(sessionId), 0, -1).Result()
	if err != nil {
		s.logger.Warn("TranscriptStorage", "Failed to fetch transcript", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	messages := make([]*entity.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var e transcriptEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil
		}
		messages = append(messages, &entity.ChatMessage{
			ChatSessionId: sessionId,
			Role:          e.Role,
			Content:       e.Content,
			SequenceIndex: e.SequenceIndex,
			CreatedAt:     e.CreatedAt,
		})
	}
	return messages
}
