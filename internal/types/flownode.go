package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	NodeTypeStart    = "start"
	NodeTypeStandard = "standard"
)

// FlowNode wraps exactly one clip inside a flow. SequenceHint is only a
// tie-break when picking a default start node.
type FlowNode struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FlowID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"flow_id"`
	Flow         *Flow      `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlowID;references:ID" json:"flow,omitempty"`
	ClipID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"clip_id"`
	Clip         *VideoClip `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClipID;references:ID" json:"clip,omitempty"`
	NodeType     string     `gorm:"column:node_type;not null;default:'standard';index" json:"node_type"`
	SequenceHint int        `gorm:"column:sequence_hint;not null;default:0" json:"sequence_hint"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (FlowNode) TableName() string { return "flow_nodes" }
