package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	EdgeTypeContinue = "continue"
	EdgeTypeExplore  = "explore"
	EdgeTypeRecap    = "recap"
)

// EdgeTypePriority orders edge types for auto-mode ranking: the primary
// narrative path beats lateral branches, which beat backward recap links.
func EdgeTypePriority(edgeType string) int {
	switch edgeType {
	case EdgeTypeContinue:
		return 1
	case EdgeTypeExplore:
		return 2
	case EdgeTypeRecap:
		return 3
	default:
		return 4
	}
}

// FlowEdge is a directed, weighted, typed connection between two nodes of
// the same flow.
type FlowEdge struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlowID     uuid.UUID `gorm:"type:uuid;not null;index" json:"flow_id"`
	Flow       *Flow     `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlowID;references:ID" json:"flow,omitempty"`
	FromNodeID uuid.UUID `gorm:"type:uuid;not null;index" json:"from_node_id"`
	FromNode   *FlowNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:FromNodeID;references:ID" json:"from_node,omitempty"`
	ToNodeID   uuid.UUID `gorm:"type:uuid;not null;index" json:"to_node_id"`
	ToNode     *FlowNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:ToNodeID;references:ID" json:"to_node,omitempty"`
	EdgeType   string    `gorm:"column:edge_type;not null;index" json:"edge_type"`
	Weight     float64   `gorm:"not null;default:0" json:"weight"`
	Label      string    `json:"label,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (FlowEdge) TableName() string { return "flow_edges" }
