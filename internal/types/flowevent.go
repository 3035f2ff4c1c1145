package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventTypeView           = "view"
	EventTypeSwipeUp        = "swipe_up"
	EventTypeSwipeDown      = "swipe_down"
	EventTypeSwipeLeft      = "swipe_left"
	EventTypeSwipeRight     = "swipe_right"
	EventTypeCTAClick       = "cta_click"
	EventTypeFullVideoClick = "full_video_click"
	EventTypeLike           = "like"
	EventTypeComment        = "comment"
	EventTypeShare          = "share"
	EventTypePause          = "pause"
	EventTypeResume         = "resume"
	EventTypeSeek           = "seek"
	EventTypeQualityChange  = "quality_change"
	EventTypeExit           = "exit"
)

var flowEventTypes = map[string]bool{
	EventTypeView:           true,
	EventTypeSwipeUp:        true,
	EventTypeSwipeDown:      true,
	EventTypeSwipeLeft:      true,
	EventTypeSwipeRight:     true,
	EventTypeCTAClick:       true,
	EventTypeFullVideoClick: true,
	EventTypeLike:           true,
	EventTypeComment:        true,
	EventTypeShare:          true,
	EventTypePause:          true,
	EventTypeResume:         true,
	EventTypeSeek:           true,
	EventTypeQualityChange:  true,
	EventTypeExit:           true,
}

func IsFlowEventType(t string) bool { return flowEventTypes[t] }

// FlowEvent is an immutable client-reported playback fact. ClientEventID is
// the idempotency key: the same id stored twice is a duplicate, not a new
// event.
type FlowEvent struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClientEventID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"client_event_id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FlowID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"flow_id"`
	Flow          *Flow          `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlowID;references:ID" json:"flow,omitempty"`
	SessionID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	Session       *FlowSession   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	NodeID        *uuid.UUID     `gorm:"type:uuid;index" json:"node_id,omitempty"`
	Node          *FlowNode      `gorm:"constraint:OnDelete:SET NULL;foreignKey:NodeID;references:ID" json:"node,omitempty"`
	EventType     string         `gorm:"column:event_type;not null;index" json:"event_type"`
	WatchSeconds  int            `gorm:"column:watch_seconds;not null;default:0" json:"watch_seconds"`
	Completed     bool           `gorm:"not null;default:false" json:"completed"`
	OccurredAt    time.Time      `gorm:"column:occurred_at;not null" json:"occurred_at"`
	EventData     datatypes.JSON `gorm:"type:jsonb;column:event_data" json:"event_data"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (FlowEvent) TableName() string { return "flow_events" }
