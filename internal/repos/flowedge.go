package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type FlowEdgeRepo interface {
	GetOutgoing(ctx context.Context, tx *gorm.DB, flowID, fromNodeID uuid.UUID, edgeTypes []string) ([]*types.FlowEdge, error)
}

type flowEdgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowEdgeRepo(db *gorm.DB, baseLog *logger.Logger) FlowEdgeRepo {
	repoLog := baseLog.With("repo", "FlowEdgeRepo")
	return &flowEdgeRepo{db: db, log: repoLog}
}

// GetOutgoing loads the outgoing edges of a node whose type is in edgeTypes,
// with destination node, clip and video preloaded. Ranking happens in the
// service; the query order is only a stable base.
func (r *flowEdgeRepo) GetOutgoing(ctx context.Context, tx *gorm.DB, flowID, fromNodeID uuid.UUID, edgeTypes []string) ([]*types.FlowEdge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FlowEdge
	if flowID == uuid.Nil || fromNodeID == uuid.Nil || len(edgeTypes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("ToNode").
		Preload("ToNode.Clip").
		Preload("ToNode.Clip.Video").
		Where("flow_id = ? AND from_node_id = ? AND edge_type IN ?", flowID, fromNodeID, edgeTypes).
		Order("weight DESC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
