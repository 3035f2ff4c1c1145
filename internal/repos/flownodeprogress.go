package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type FlowNodeProgressRepo interface {
	GetVisitedNodeIDs(ctx context.Context, tx *gorm.DB, userID, flowID uuid.UUID) ([]uuid.UUID, error)
	MarkVisited(ctx context.Context, tx *gorm.DB, userID, flowID uuid.UUID, nodeIDs []uuid.UUID) error
}

type flowNodeProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowNodeProgressRepo(db *gorm.DB, baseLog *logger.Logger) FlowNodeProgressRepo {
	repoLog := baseLog.With("repo", "FlowNodeProgressRepo")
	return &flowNodeProgressRepo{db: db, log: repoLog}
}

func (r *flowNodeProgressRepo) GetVisitedNodeIDs(ctx context.Context, tx *gorm.DB, userID, flowID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if userID == uuid.Nil || flowID == uuid.Nil {
		return ids, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.FlowNodeProgress{}).
		Where("user_id = ? AND flow_id = ?", userID, flowID).
		Pluck("node_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// MarkVisited records visitation facts. The set is keyed unique on
// (user_id, flow_id, node_id); repeats are dropped on conflict, existence is
// all that matters.
func (r *flowNodeProgressRepo) MarkVisited(ctx context.Context, tx *gorm.DB, userID, flowID uuid.UUID, nodeIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || flowID == uuid.Nil || len(nodeIDs) == 0 {
		return nil
	}

	rows := make([]*types.FlowNodeProgress, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		if nodeID == uuid.Nil {
			continue
		}
		rows = append(rows, &types.FlowNodeProgress{
			ID:     uuid.New(),
			UserID: userID,
			FlowID: flowID,
			NodeID: nodeID,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "flow_id"}, {Name: "node_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error; err != nil {
		return err
	}
	return nil
}
