package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Video struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	VideoURL     string         `gorm:"column:video_url;not null" json:"video_url"`
	ThumbnailURL string         `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	Duration     float64        `gorm:"not null;default:0" json:"duration"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Video) TableName() string { return "videos" }
