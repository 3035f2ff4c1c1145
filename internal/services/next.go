package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/apierr"
	redisclient "github.com/kestrelmedia/clipflow-backend/internal/clients/redis"
	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/repos"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

const (
	ModeContinueOnly = "continue-only"
	ModeExploreOnly  = "explore-only"
	ModeAuto         = "auto"
)

const (
	ReasonNoOutgoingEdges = "No outgoing edges from current node"
	ReasonAllViewed       = "All reachable nodes have been viewed"
)

// NextNode describes the selected candidate plus the edge that led to it.
type NextNode struct {
	NodeID        uuid.UUID `json:"node_id"`
	ClipID        uuid.UUID `json:"clip_id"`
	VideoID       uuid.UUID `json:"video_id"`
	EdgeType      string    `json:"edge_type"`
	Weight        float64   `json:"weight"`
	Label         string    `json:"label"`
	JumpToSeconds float64   `json:"jump_to_seconds"`
	ClipData      ClipData  `json:"clip_data"`
	VideoData     VideoData `json:"video_data"`
}

// NextResult carries either the next node or the reason no node qualified.
// A nil NextNode with a reason is a valid outcome, not an error.
type NextResult struct {
	NextNode *NextNode `json:"next_node"`
	Reason   string    `json:"reason,omitempty"`
}

type FlowNextService interface {
	Next(ctx context.Context, userID, flowID, currentNodeID uuid.UUID, mode string) (*NextResult, *apierr.Error)
}

type flowNextService struct {
	db               *gorm.DB
	log              *logger.Logger
	nodeRepo         repos.FlowNodeRepo
	edgeRepo         repos.FlowEdgeRepo
	nodeProgressRepo repos.FlowNodeProgressRepo
	deeplinkRepo     repos.ClipDeeplinkRepo
	cache            redisclient.ProgressCache
}

func NewFlowNextService(
	db *gorm.DB,
	log *logger.Logger,
	nodeRepo repos.FlowNodeRepo,
	edgeRepo repos.FlowEdgeRepo,
	nodeProgressRepo repos.FlowNodeProgressRepo,
	deeplinkRepo repos.ClipDeeplinkRepo,
	cache redisclient.ProgressCache,
) FlowNextService {
	serviceLog := log.With("service", "FlowNextService")
	return &flowNextService{
		db:               db,
		log:              serviceLog,
		nodeRepo:         nodeRepo,
		edgeRepo:         edgeRepo,
		nodeProgressRepo: nodeProgressRepo,
		deeplinkRepo:     deeplinkRepo,
		cache:            cache,
	}
}

func allowedEdgeTypes(mode string) []string {
	switch mode {
	case ModeContinueOnly:
		return []string{types.EdgeTypeContinue}
	case ModeExploreOnly:
		return []string{types.EdgeTypeExplore}
	default:
		return []string{types.EdgeTypeContinue, types.EdgeTypeExplore, types.EdgeTypeRecap}
	}
}

// Next ranks the current node's outgoing edges and returns the best
// unvisited destination. Pure read: it never marks the returned node as
// visited, that happens through event ingestion.
func (s *flowNextService) Next(ctx context.Context, userID, flowID, currentNodeID uuid.UUID, mode string) (*NextResult, *apierr.Error) {
	if mode == "" {
		mode = ModeAuto
	}
	if mode != ModeContinueOnly && mode != ModeExploreOnly && mode != ModeAuto {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid mode %q", mode))
	}

	currentNode, err := s.nodeRepo.GetByIDAndFlow(ctx, nil, currentNodeID, flowID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch node"))
	}
	if currentNode == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNodeNotFound, fmt.Errorf("current node not found or does not belong to flow"))
	}

	visited, aerr := s.visitedSet(ctx, userID, flowID)
	if aerr != nil {
		return nil, aerr
	}

	edges, err := s.edgeRepo.GetOutgoing(ctx, nil, flowID, currentNodeID, allowedEdgeTypes(mode))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch edges"))
	}
	if len(edges) == 0 {
		return &NextResult{NextNode: nil, Reason: ReasonNoOutgoingEdges}, nil
	}

	candidates := make([]*types.FlowEdge, 0, len(edges))
	for _, edge := range edges {
		if visited[edge.ToNodeID] {
			continue
		}
		candidates = append(candidates, edge)
	}
	if len(candidates) == 0 {
		return &NextResult{NextNode: nil, Reason: ReasonAllViewed}, nil
	}

	rankEdges(candidates, mode)
	best := candidates[0]

	deeplink, err := s.deeplinkRepo.GetByNodeID(ctx, nil, best.ToNodeID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch deeplink"))
	}

	pb, pbErr := buildPlayback(best.ToNode, deeplink)
	if pbErr != nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNodeNotFound, fmt.Errorf("destination node not found"))
	}

	return &NextResult{
		NextNode: &NextNode{
			NodeID:        pb.Node.ID,
			ClipID:        pb.Clip.ID,
			VideoID:       pb.Video.ID,
			EdgeType:      best.EdgeType,
			Weight:        best.Weight,
			Label:         best.Label,
			JumpToSeconds: pb.JumpToSeconds,
			ClipData:      pb.ClipData,
			VideoData:     pb.VideoData,
		},
	}, nil
}

// rankEdges orders candidates by edge-type priority (auto mode only), then
// weight descending, then destination node id and edge id ascending. The id
// tie-breaks make selection reproducible for identical inputs.
func rankEdges(edges []*types.FlowEdge, mode string) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if mode == ModeAuto {
			pa, pb := types.EdgeTypePriority(a.EdgeType), types.EdgeTypePriority(b.EdgeType)
			if pa != pb {
				return pa < pb
			}
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.ToNodeID != b.ToNodeID {
			return a.ToNodeID.String() < b.ToNodeID.String()
		}
		return a.ID.String() < b.ID.String()
	})
}

func (s *flowNextService) visitedSet(ctx context.Context, userID, flowID uuid.UUID) (map[uuid.UUID]bool, *apierr.Error) {
	if s.cache != nil {
		if ids, ok := s.cache.GetVisited(ctx, userID, flowID); ok {
			return toIDSet(ids), nil
		}
	}

	ids, err := s.nodeProgressRepo.GetVisitedNodeIDs(ctx, nil, userID, flowID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeDatabase, fmt.Errorf("failed to fetch progress"))
	}
	if s.cache != nil {
		s.cache.SetVisited(ctx, userID, flowID, ids)
	}
	return toIDSet(ids), nil
}

func toIDSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
