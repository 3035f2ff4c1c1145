package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type FlowNodeRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FlowNode, error)
	GetByIDAndFlow(ctx context.Context, tx *gorm.DB, id, flowID uuid.UUID) (*types.FlowNode, error)
	GetStartNode(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) (*types.FlowNode, error)
	GetFirstNode(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) (*types.FlowNode, error)
	GetIDsByFlow(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) ([]uuid.UUID, error)
	CountByFlow(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) (int64, error)
}

type flowNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowNodeRepo(db *gorm.DB, baseLog *logger.Logger) FlowNodeRepo {
	repoLog := baseLog.With("repo", "FlowNodeRepo")
	return &flowNodeRepo{db: db, log: repoLog}
}

func (r *flowNodeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FlowNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.FlowNode
	err := transaction.WithContext(ctx).
		Preload("Clip").
		Preload("Clip.Video").
		Where("id = ?", id).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *flowNodeRepo) GetByIDAndFlow(ctx context.Context, tx *gorm.DB, id, flowID uuid.UUID) (*types.FlowNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || flowID == uuid.Nil {
		return nil, nil
	}

	var result types.FlowNode
	err := transaction.WithContext(ctx).
		Where("id = ? AND flow_id = ?", id, flowID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetStartNode returns the start-flagged node with the lowest sequence hint,
// id ascending on ties so repeated calls pick the same node.
func (r *flowNodeRepo) GetStartNode(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) (*types.FlowNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.FlowNode
	err := transaction.WithContext(ctx).
		Where("flow_id = ? AND node_type = ?", flowID, types.NodeTypeStart).
		Order("sequence_hint ASC").
		Order("id ASC").
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFirstNode is the fallback when no start node exists: the globally
// lowest-sequence-hint node in the flow.
func (r *flowNodeRepo) GetFirstNode(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) (*types.FlowNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.FlowNode
	err := transaction.WithContext(ctx).
		Where("flow_id = ?", flowID).
		Order("sequence_hint ASC").
		Order("id ASC").
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *flowNodeRepo) GetIDsByFlow(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if flowID == uuid.Nil {
		return ids, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.FlowNode{}).
		Where("flow_id = ?", flowID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *flowNodeRepo) CountByFlow(ctx context.Context, tx *gorm.DB, flowID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.FlowNode{}).
		Where("flow_id = ?", flowID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
