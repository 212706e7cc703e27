package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Therapist struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name        string         `gorm:"type:varchar(128);not null"`
	Title       string         `gorm:"type:varchar(128)"`
	Specialties datatypes.JSON `gorm:"type:jsonb"`
	Languages   datatypes.JSON `gorm:"type:jsonb"`
	Biography   string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (Therapist) TableName() string {
	return "therapists"
}
