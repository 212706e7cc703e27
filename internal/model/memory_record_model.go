package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MemoryRecord struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Keywords      datatypes.JSON `gorm:"type:jsonb"`
	Summary       string         `gorm:"type:text"`
	LastMessageAt time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (MemoryRecord) TableName() string {
	return "memory_records"
}
