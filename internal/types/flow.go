package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Flow is an authored, independently activatable directed graph over clips
// of a source video. An inactive flow rejects all resume/next/event calls.
type Flow struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"video_id"`
	Video       *Video         `gorm:"constraint:OnDelete:CASCADE;foreignKey:VideoID;references:ID" json:"video,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description,omitempty"`
	IsActive    bool           `gorm:"column:is_active;not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Flow) TableName() string { return "flows" }
