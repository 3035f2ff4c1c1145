package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type ClipDeeplinkRepo interface {
	GetByNodeID(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (*types.ClipDeeplink, error)
}

type clipDeeplinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClipDeeplinkRepo(db *gorm.DB, baseLog *logger.Logger) ClipDeeplinkRepo {
	repoLog := baseLog.With("repo", "ClipDeeplinkRepo")
	return &clipDeeplinkRepo{db: db, log: repoLog}
}

func (r *clipDeeplinkRepo) GetByNodeID(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (*types.ClipDeeplink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if nodeID == uuid.Nil {
		return nil, nil
	}

	var result types.ClipDeeplink
	err := transaction.WithContext(ctx).
		Where("node_id = ?", nodeID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
