package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/apierr"
	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/repos"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

// ResumeResult is the full response of a resume call, fresh start or not.
type ResumeResult struct {
	FlowID        uuid.UUID  `json:"flow_id"`
	NodeID        uuid.UUID  `json:"node_id"`
	ClipID        uuid.UUID  `json:"clip_id"`
	VideoID       uuid.UUID  `json:"video_id"`
	JumpToSeconds float64    `json:"jump_to_seconds"`
	ClipData      ClipData   `json:"clip_data"`
	VideoData     VideoData  `json:"video_data"`
	IsResume      bool       `json:"is_resume"`
	SessionID     *uuid.UUID `json:"session_id"`
}

type FlowResumeService interface {
	Resume(ctx context.Context, userID, flowID uuid.UUID) (*ResumeResult, *apierr.Error)
}

type flowResumeService struct {
	db           *gorm.DB
	log          *logger.Logger
	flowRepo     repos.FlowRepo
	nodeRepo     repos.FlowNodeRepo
	sessionRepo  repos.FlowSessionRepo
	progressRepo repos.FlowProgressRepo
	deeplinkRepo repos.ClipDeeplinkRepo
}

func NewFlowResumeService(
	db *gorm.DB,
	log *logger.Logger,
	flowRepo repos.FlowRepo,
	nodeRepo repos.FlowNodeRepo,
	sessionRepo repos.FlowSessionRepo,
	progressRepo repos.FlowProgressRepo,
	deeplinkRepo repos.ClipDeeplinkRepo,
) FlowResumeService {
	serviceLog := log.With("service", "FlowResumeService")
	return &flowResumeService{
		db:           db,
		log:          serviceLog,
		flowRepo:     flowRepo,
		nodeRepo:     nodeRepo,
		sessionRepo:  sessionRepo,
		progressRepo: progressRepo,
		deeplinkRepo: deeplinkRepo,
	}
}

// Resume picks the user's entry point into a flow: the last node of their
// active session when one exists, otherwise the flow's start node, creating
// a fresh session for the latter. Existing sessions are never mutated here.
func (s *flowResumeService) Resume(ctx context.Context, userID, flowID uuid.UUID) (*ResumeResult, *apierr.Error) {
	flow, err := s.flowRepo.GetByID(ctx, nil, flowID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch flow"))
	}
	if flow == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeFlowNotFound, fmt.Errorf("flow does not exist"))
	}
	if !flow.IsActive {
		return nil, apierr.New(http.StatusForbidden, apierr.CodeFlowInactive, fmt.Errorf("flow is not active"))
	}

	var targetNodeID uuid.UUID
	var sessionID *uuid.UUID
	isResume := false

	progress, err := s.progressRepo.GetByUserAndFlow(ctx, nil, userID, flowID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch flow progress"))
	}
	if progress != nil && progress.LastSessionID != nil {
		session, err := s.sessionRepo.GetByIDAndUser(ctx, nil, *progress.LastSessionID, userID)
		if err != nil {
			return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch session"))
		}
		if session != nil && session.LastNodeID != nil {
			targetNodeID = *session.LastNodeID
			sid := session.ID
			sessionID = &sid
			isResume = true
		}
	}

	if targetNodeID == uuid.Nil {
		entryNode, err := s.nodeRepo.GetStartNode(ctx, nil, flowID)
		if err != nil {
			return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch entry node"))
		}
		if entryNode == nil {
			entryNode, err = s.nodeRepo.GetFirstNode(ctx, nil, flowID)
			if err != nil {
				return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch entry node"))
			}
		}
		if entryNode == nil {
			return nil, apierr.New(http.StatusNotFound, apierr.CodeNoNodes, fmt.Errorf("flow has no nodes"))
		}
		targetNodeID = entryNode.ID

		now := time.Now().UTC()
		session := &types.FlowSession{
			ID:           uuid.New(),
			UserID:       userID,
			FlowID:       flowID,
			EntryNodeID:  &targetNodeID,
			LastNodeID:   &targetNodeID,
			SessionStart: now,
			LastActiveAt: now,
		}
		if _, err := s.sessionRepo.Create(ctx, nil, session); err != nil {
			s.log.Error("session create failed", "flow_id", flowID, "error", err)
			return nil, apierr.New(http.StatusInternalServerError, apierr.CodeSessionCreate, fmt.Errorf("failed to create session"))
		}
		if err := s.progressRepo.UpsertPointer(ctx, nil, userID, flowID, session.ID); err != nil {
			return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to update flow progress"))
		}
		sid := session.ID
		sessionID = &sid
	}

	node, err := s.nodeRepo.GetByID(ctx, nil, targetNodeID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch node"))
	}
	if node == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNodeNotFound, fmt.Errorf("target node not found"))
	}

	deeplink, err := s.deeplinkRepo.GetByNodeID(ctx, nil, node.ID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch deeplink"))
	}

	pb, pbErr := buildPlayback(node, deeplink)
	if pbErr != nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNodeNotFound, fmt.Errorf("target node not found"))
	}

	return &ResumeResult{
		FlowID:        flowID,
		NodeID:        node.ID,
		ClipID:        pb.Clip.ID,
		VideoID:       pb.Video.ID,
		JumpToSeconds: pb.JumpToSeconds,
		ClipData:      pb.ClipData,
		VideoData:     pb.VideoData,
		IsResume:      isResume,
		SessionID:     sessionID,
	}, nil
}
