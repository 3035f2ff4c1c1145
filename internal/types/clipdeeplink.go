package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClipDeeplink optionally overrides the playback start offset for a node,
// independent of the clip's raw start_time. The override lives under the
// "jump_to_seconds" key of Metadata.
type ClipDeeplink struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	NodeID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"node_id"`
	Node      *FlowNode      `gorm:"constraint:OnDelete:CASCADE;foreignKey:NodeID;references:ID" json:"node,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (ClipDeeplink) TableName() string { return "clip_deeplinks" }
