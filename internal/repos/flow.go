package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type FlowRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flow, error)
	GetActiveByVideoID(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*types.Flow, error)
}

type flowRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowRepo(db *gorm.DB, baseLog *logger.Logger) FlowRepo {
	repoLog := baseLog.With("repo", "FlowRepo")
	return &flowRepo{db: db, log: repoLog}
}

func (r *flowRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.Flow
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

func (r *flowRepo) GetActiveByVideoID(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*types.Flow, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if videoID == uuid.Nil {
		return nil, nil
	}

	var result types.Flow
	err := transaction.WithContext(ctx).
		Where("video_id = ? AND is_active = ?", videoID, true).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
