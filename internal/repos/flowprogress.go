package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type FlowProgressRepo interface {
	GetByUserAndFlow(ctx context.Context, tx *gorm.DB, userID, flowID uuid.UUID) (*types.FlowProgress, error)
	UpsertPointer(ctx context.Context, tx *gorm.DB, userID, flowID, sessionID uuid.UUID) error
}

type flowProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowProgressRepo(db *gorm.DB, baseLog *logger.Logger) FlowProgressRepo {
	repoLog := baseLog.With("repo", "FlowProgressRepo")
	return &flowProgressRepo{db: db, log: repoLog}
}

func (r *flowProgressRepo) GetByUserAndFlow(ctx context.Context, tx *gorm.DB, userID, flowID uuid.UUID) (*types.FlowProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || flowID == uuid.Nil {
		return nil, nil
	}

	var result types.FlowProgress
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND flow_id = ?", userID, flowID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpsertPointer makes sessionID the user's active session for the flow.
// Unique on (user_id, flow_id); concurrent writers race last-writer-wins on
// the pointer, which is the documented behavior.
func (r *flowProgressRepo) UpsertPointer(ctx context.Context, tx *gorm.DB, userID, flowID, sessionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || flowID == uuid.Nil || sessionID == uuid.Nil {
		return nil
	}

	row := &types.FlowProgress{
		ID:            uuid.New(),
		UserID:        userID,
		FlowID:        flowID,
		LastSessionID: &sessionID,
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND flow_id = ?", userID, flowID).
		Assign(map[string]interface{}{"last_session_id": sessionID}).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
