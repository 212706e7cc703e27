package mapper

import (
	"encoding/json"
	"time"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/model"

	"gorm.io/datatypes"
)

type MemoryMapper struct{}

func NewMemoryMapper() *MemoryMapper {
	return &MemoryMapper{}
}

func (m *MemoryMapper) ToEntity(rec *model.MemoryRecord) *entity.MemoryRecord {
	if rec == nil {
		return nil
	}

	var keywords []string
	if len(rec.Keywords) > 0 {
		// A malformed column yields an empty keyword set, not a failure
		_ = json.Unmarshal(rec.Keywords, &keywords)
	}

	var updatedAt *time.Time
	if !rec.UpdatedAt.IsZero() {
		t := rec.UpdatedAt
		updatedAt = &t
	}

	return &entity.MemoryRecord{
		Id:            rec.Id,
		UserId:        rec.UserId,
		ChatSessionId: rec.ChatSessionId,
		Keywords:      keywords,
		Summary:       rec.Summary,
		LastMessageAt: rec.LastMessageAt,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *MemoryMapper) ToModel(rec *entity.MemoryRecord) *model.MemoryRecord {
	if rec == nil {
		return nil
	}

	keywordsJSON, _ := json.Marshal(rec.Keywords)

	out := &model.MemoryRecord{
		Id:            rec.Id,
		UserId:        rec.UserId,
		ChatSessionId: rec.ChatSessionId,
		Keywords:      datatypes.JSON(keywordsJSON),
		Summary:       rec.Summary,
		LastMessageAt: rec.LastMessageAt,
		CreatedAt:     rec.CreatedAt,
	}
	if rec.UpdatedAt != nil {
		out.UpdatedAt = *rec.UpdatedAt
	}
	return out
}
