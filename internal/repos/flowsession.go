package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type FlowSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.FlowSession) (*types.FlowSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FlowSession, error)
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.FlowSession, error)
	GetByIDAndFlow(ctx context.Context, tx *gorm.DB, id, flowID uuid.UUID) (*types.FlowSession, error)
	Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, lastNodeID *uuid.UUID, at time.Time) error
}

type flowSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowSessionRepo(db *gorm.DB, baseLog *logger.Logger) FlowSessionRepo {
	repoLog := baseLog.With("repo", "FlowSessionRepo")
	return &flowSessionRepo{db: db, log: repoLog}
}

func (r *flowSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.FlowSession) (*types.FlowSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if session == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *flowSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FlowSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.FlowSession
	err := transaction.WithContext(ctx).
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

func (r *flowSessionRepo) GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.FlowSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}

	var result types.FlowSession
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *flowSessionRepo) GetByIDAndFlow(ctx context.Context, tx *gorm.DB, id, flowID uuid.UUID) (*types.FlowSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil || flowID == uuid.Nil {
		return nil, nil
	}

	var result types.FlowSession
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

// Touch bumps last_active_at and, when lastNodeID is non-nil, moves the
// session's last node pointer.
func (r *flowSessionRepo) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, lastNodeID *uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil
	}

	updates := map[string]interface{}{
		"last_active_at": at,
		"updated_at":     at,
	}
	if lastNodeID != nil {
		updates["last_node_id"] = *lastNodeID
	}

	if err := transaction.WithContext(ctx).
		Model(&types.FlowSession{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}
