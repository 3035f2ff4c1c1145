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
)

type FlowInfo struct {
	ID          uuid.UUID `json:"id"`
	VideoID     uuid.UUID `json:"video_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	TotalNodes  int64     `json:"total_nodes"`
	CreatedAt   time.Time `json:"created_at"`
}

type FlowInfoService interface {
	GetFlowForVideo(ctx context.Context, videoID uuid.UUID) (*FlowInfo, *apierr.Error)
}

type flowInfoService struct {
	db       *gorm.DB
	log      *logger.Logger
	flowRepo repos.FlowRepo
	nodeRepo repos.FlowNodeRepo
}

func NewFlowInfoService(db *gorm.DB, log *logger.Logger, flowRepo repos.FlowRepo, nodeRepo repos.FlowNodeRepo) FlowInfoService {
	serviceLog := log.With("service", "FlowInfoService")
	return &flowInfoService{db: db, log: serviceLog, flowRepo: flowRepo, nodeRepo: nodeRepo}
}

func (s *flowInfoService) GetFlowForVideo(ctx context.Context, videoID uuid.UUID) (*FlowInfo, *apierr.Error) {
	flow, err := s.flowRepo.GetActiveByVideoID(ctx, nil, videoID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch flow"))
	}
	if flow == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeFlowNotFound, fmt.Errorf("no active flow for video"))
	}

	count, err := s.nodeRepo.CountByFlow(ctx, nil, flow.ID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to count nodes"))
	}

	return &FlowInfo{
		ID:          flow.ID,
		VideoID:     flow.VideoID,
		Title:       flow.Title,
		Description: flow.Description,
		IsActive:    flow.IsActive,
		TotalNodes:  count,
		CreatedAt:   flow.CreatedAt,
	}, nil
}
