package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type FlowEventRepo interface {
	InsertIgnoreDuplicates(ctx context.Context, tx *gorm.DB, events []*types.FlowEvent) (int64, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.FlowEvent, error)
	CountByClientEventIDs(ctx context.Context, tx *gorm.DB, clientEventIDs []uuid.UUID) (int64, error)
}

type flowEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowEventRepo(db *gorm.DB, baseLog *logger.Logger) FlowEventRepo {
	repoLog := baseLog.With("repo", "FlowEventRepo")
	return &flowEventRepo{db: db, log: repoLog}
}

// InsertIgnoreDuplicates writes events keyed by client_event_id, dropping
// rows whose idempotency id is already stored. Returns the number of newly
// inserted rows, so retried batches report only what actually applied.
func (r *flowEventRepo) InsertIgnoreDuplicates(ctx context.Context, tx *gorm.DB, events []*types.FlowEvent) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(events) == 0 {
		return 0, nil
	}

	result := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_event_id"}},
			DoNothing: true,
		}).
		Create(&events)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *flowEventRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.FlowEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FlowEvent
	if sessionID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flowEventRepo) CountByClientEventIDs(ctx context.Context, tx *gorm.DB, clientEventIDs []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(clientEventIDs) == 0 {
		return 0, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.FlowEvent{}).
		Where("client_event_id IN ?", clientEventIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
