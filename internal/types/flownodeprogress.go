package types

import (
	"time"

	"github.com/google/uuid"
)

// FlowNodeProgress is a (user, flow, node) visitation fact. Existence
// matters, not count; the edge selector uses the set to exclude repeats.
type FlowNodeProgress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_flow_node,unique" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FlowID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_flow_node,unique" json:"flow_id"`
	Flow      *Flow     `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlowID;references:ID" json:"flow,omitempty"`
	NodeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_flow_node,unique" json:"node_id"`
	Node      *FlowNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:NodeID;references:ID" json:"node,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (FlowNodeProgress) TableName() string { return "flow_node_progress" }
