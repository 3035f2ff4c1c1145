package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/apierr"
	redisclient "github.com/kestrelmedia/clipflow-backend/internal/clients/redis"
	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/repos"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

const (
	MinEventBatchSize = 1
	MaxEventBatchSize = 50
)

// FlowEventInput is one client-reported event before normalization.
type FlowEventInput struct {
	ClientEventID uuid.UUID              `json:"client_event_id"`
	NodeID        *uuid.UUID             `json:"node_id,omitempty"`
	EventType     string                 `json:"event_type"`
	WatchSeconds  int                    `json:"watch_seconds"`
	Completed     bool                   `json:"completed"`
	OccurredAt    *time.Time             `json:"occurred_at,omitempty"`
	EventData     map[string]interface{} `json:"event_data,omitempty"`
}

// EventsResult reports the batch outcome, including partial failure: a
// processed count below the batch size with per-event errors is still an
// accepted batch.
type EventsResult struct {
	Success        bool     `json:"success"`
	ProcessedCount int      `json:"processed_count"`
	Errors         []string `json:"errors"`
}

type FlowEventsService interface {
	Apply(ctx context.Context, userID, flowID, sessionID uuid.UUID, events []FlowEventInput) (*EventsResult, *apierr.Error)
}

type flowEventsService struct {
	db               *gorm.DB
	log              *logger.Logger
	sessionRepo      repos.FlowSessionRepo
	nodeRepo         repos.FlowNodeRepo
	eventRepo        repos.FlowEventRepo
	nodeProgressRepo repos.FlowNodeProgressRepo
	progressRepo     repos.FlowProgressRepo
	cache            redisclient.ProgressCache
}

func NewFlowEventsService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.FlowSessionRepo,
	nodeRepo repos.FlowNodeRepo,
	eventRepo repos.FlowEventRepo,
	nodeProgressRepo repos.FlowNodeProgressRepo,
	progressRepo repos.FlowProgressRepo,
	cache redisclient.ProgressCache,
) FlowEventsService {
	serviceLog := log.With("service", "FlowEventsService")
	return &flowEventsService{
		db:               db,
		log:              serviceLog,
		sessionRepo:      sessionRepo,
		nodeRepo:         nodeRepo,
		eventRepo:        eventRepo,
		nodeProgressRepo: nodeProgressRepo,
		progressRepo:     progressRepo,
		cache:            cache,
	}
}

// Apply validates a batch, authorizes it against the session owner, then
// applies it in one transaction: insert events keyed by client_event_id
// (duplicates are dropped, never double-counted), bump the session, mark
// node visitations and repoint the user's active session.
func (s *flowEventsService) Apply(ctx context.Context, userID, flowID, sessionID uuid.UUID, events []FlowEventInput) (*EventsResult, *apierr.Error) {
	if len(events) < MinEventBatchSize {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("at least one event is required"))
	}
	if len(events) > MaxEventBatchSize {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("maximum %d events allowed per batch", MaxEventBatchSize))
	}
	for i, event := range events {
		if event.ClientEventID == uuid.Nil {
			return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("event %d: invalid client_event_id", i))
		}
		if !types.IsFlowEventType(event.EventType) {
			return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("event %d: unknown event_type %q", i, event.EventType))
		}
		if event.WatchSeconds < 0 {
			return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("event %d: watch_seconds must be non-negative", i))
		}
	}

	session, err := s.sessionRepo.GetByIDAndFlow(ctx, nil, sessionID, flowID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to verify session"))
	}
	if session == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeSessionNotFound, fmt.Errorf("session does not exist or does not belong to flow"))
	}
	if session.UserID != userID {
		return nil, apierr.New(http.StatusForbidden, apierr.CodeUnauthorized, fmt.Errorf("session does not belong to current user"))
	}

	flowNodeIDs, err := s.nodeRepo.GetIDsByFlow(ctx, nil, flowID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch flow nodes"))
	}
	nodeSet := toIDSet(flowNodeIDs)

	now := time.Now().UTC()
	rows := make([]*types.FlowEvent, 0, len(events))
	var perEventErrors []string
	var lastNodeID *uuid.UUID
	var visitedNodes []uuid.UUID
	seenNodes := map[uuid.UUID]bool{}

	for _, event := range events {
		if event.NodeID != nil && !nodeSet[*event.NodeID] {
			perEventErrors = append(perEventErrors, fmt.Sprintf("event %s: node %s does not belong to flow", event.ClientEventID, *event.NodeID))
			continue
		}

		occurredAt := now
		if event.OccurredAt != nil {
			occurredAt = event.OccurredAt.UTC()
		}

		var eventData datatypes.JSON
		if event.EventData != nil {
			raw, mErr := json.Marshal(event.EventData)
			if mErr != nil {
				perEventErrors = append(perEventErrors, fmt.Sprintf("event %s: invalid event_data", event.ClientEventID))
				continue
			}
			eventData = datatypes.JSON(raw)
		}

		rows = append(rows, &types.FlowEvent{
			ID:            uuid.New(),
			ClientEventID: event.ClientEventID,
			UserID:        userID,
			FlowID:        flowID,
			SessionID:     sessionID,
			NodeID:        event.NodeID,
			EventType:     event.EventType,
			WatchSeconds:  event.WatchSeconds,
			Completed:     event.Completed,
			OccurredAt:    occurredAt,
			EventData:     eventData,
		})

		if event.NodeID != nil {
			id := *event.NodeID
			lastNodeID = &id
			if !seenNodes[id] {
				seenNodes[id] = true
				visitedNodes = append(visitedNodes, id)
			}
		}
	}

	if len(rows) == 0 {
		s.log.Warn("event batch had no applicable events", "session_id", sessionID, "errors", len(perEventErrors))
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeEventProcessing, fmt.Errorf("failed to process any events"))
	}

	var processed int64
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var iErr error
		processed, iErr = s.eventRepo.InsertIgnoreDuplicates(ctx, tx, rows)
		if iErr != nil {
			return iErr
		}
		if tErr := s.sessionRepo.Touch(ctx, tx, sessionID, lastNodeID, now); tErr != nil {
			return tErr
		}
		if vErr := s.nodeProgressRepo.MarkVisited(ctx, tx, userID, flowID, visitedNodes); vErr != nil {
			return vErr
		}
		if pErr := s.progressRepo.UpsertPointer(ctx, tx, userID, flowID, sessionID); pErr != nil {
			return pErr
		}
		return nil
	})
	if txErr != nil {
		s.log.Error("event apply transaction failed", "session_id", sessionID, "error", txErr)
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeEventProcessing, fmt.Errorf("failed to process events"))
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID, flowID)
	}

	if perEventErrors == nil {
		perEventErrors = []string{}
	}
	return &EventsResult{
		Success:        true,
		ProcessedCount: int(processed),
		Errors:         perEventErrors,
	}, nil
}
