package types

import (
	"time"

	"github.com/google/uuid"
)

// FlowSession is one user's continuous traversal attempt of one flow.
// Sessions are never deleted by the engine; retention is external.
type FlowSession struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FlowID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"flow_id"`
	Flow         *Flow      `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlowID;references:ID" json:"flow,omitempty"`
	EntryNodeID  *uuid.UUID `gorm:"type:uuid" json:"entry_node_id,omitempty"`
	LastNodeID   *uuid.UUID `gorm:"type:uuid" json:"last_node_id,omitempty"`
	SessionStart time.Time  `gorm:"column:session_start;not null" json:"session_start"`
	LastActiveAt time.Time  `gorm:"column:last_active_at;not null" json:"last_active_at"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (FlowSession) TableName() string { return "flow_sessions" }
