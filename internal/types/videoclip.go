package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoClip is a bounded sub-interval of a parent Video.
type VideoClip struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"video_id"`
	Video       *Video         `gorm:"constraint:OnDelete:CASCADE;foreignKey:VideoID;references:ID" json:"video,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description,omitempty"`
	StartTime   float64        `gorm:"column:start_time;not null;default:0" json:"start_time"`
	EndTime     float64        `gorm:"column:end_time;not null;default:0" json:"end_time"`
	Duration    float64        `gorm:"not null;default:0" json:"duration"`
	CTAText     string         `gorm:"column:cta_text" json:"cta_text,omitempty"`
	CTAURL      string         `gorm:"column:cta_url" json:"cta_url,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (VideoClip) TableName() string { return "video_clips" }
