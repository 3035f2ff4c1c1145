package types

import (
	"time"

	"github.com/google/uuid"
)

// FlowProgress maps (user, flow) to the user's active session so resumption
// survives process restarts. Last writer wins on the pointer.
type FlowProgress struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_flow,unique" json:"user_id"`
	User          *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FlowID        uuid.UUID    `gorm:"type:uuid;not null;index:idx_user_flow,unique" json:"flow_id"`
	Flow          *Flow        `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlowID;references:ID" json:"flow,omitempty"`
	LastSessionID *uuid.UUID   `gorm:"type:uuid" json:"last_session_id,omitempty"`
	LastSession   *FlowSession `gorm:"constraint:OnDelete:SET NULL;foreignKey:LastSessionID;references:ID" json:"last_session,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (FlowProgress) TableName() string { return "flow_progress" }
