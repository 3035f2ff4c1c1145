package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kestrelmedia/clipflow-backend/internal/apierr"
	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/requestdata"
	"github.com/kestrelmedia/clipflow-backend/internal/services"
)

type FlowHandler struct {
	log           *logger.Logger
	resumeService services.FlowResumeService
	nextService   services.FlowNextService
	eventsService services.FlowEventsService
	infoService   services.FlowInfoService
}

func NewFlowHandler(
	log *logger.Logger,
	resumeService services.FlowResumeService,
	nextService services.FlowNextService,
	eventsService services.FlowEventsService,
	infoService services.FlowInfoService,
) *FlowHandler {
	return &FlowHandler{
		log:           log.With("handler", "FlowHandler"),
		resumeService: resumeService,
		nextService:   nextService,
		eventsService: eventsService,
		infoService:   infoService,
	}
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// POST /api/flow/resume
// { flow_id }
func (h *FlowHandler) Resume(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("missing or invalid token"))
		return
	}

	var req struct {
		FlowID string `json:"flow_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}
	flowID, err := uuid.Parse(req.FlowID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid flow_id format"))
		return
	}

	result, aerr := h.resumeService.Resume(c.Request.Context(), userID, flowID)
	if aerr != nil {
		RespondAPIError(c, aerr)
		return
	}
	RespondOK(c, result)
}

// POST /api/flow/next
// { flow_id, current_node_id, mode? }
func (h *FlowHandler) Next(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("missing or invalid token"))
		return
	}

	var req struct {
		FlowID        string `json:"flow_id"`
		CurrentNodeID string `json:"current_node_id"`
		Mode          string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}
	flowID, err := uuid.Parse(req.FlowID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid flow_id format"))
		return
	}
	currentNodeID, err := uuid.Parse(req.CurrentNodeID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid current_node_id format"))
		return
	}
	if req.Mode != "" && req.Mode != services.ModeContinueOnly && req.Mode != services.ModeExploreOnly && req.Mode != services.ModeAuto {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid mode"))
		return
	}

	result, aerr := h.nextService.Next(c.Request.Context(), userID, flowID, currentNodeID, req.Mode)
	if aerr != nil {
		RespondAPIError(c, aerr)
		return
	}
	RespondOK(c, result)
}

type flowEventRequest struct {
	ClientEventID string                 `json:"client_event_id"`
	NodeID        string                 `json:"node_id"`
	EventType     string                 `json:"event_type"`
	WatchSeconds  int                    `json:"watch_seconds"`
	Completed     bool                   `json:"completed"`
	OccurredAt    string                 `json:"occurred_at"`
	EventData     map[string]interface{} `json:"event_data"`
}

// POST /api/flow/events
// { flow_id, session_id, events[1..50] }
func (h *FlowHandler) Events(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, fmt.Errorf("missing or invalid token"))
		return
	}

	var req struct {
		FlowID    string             `json:"flow_id"`
		SessionID string             `json:"session_id"`
		Events    []flowEventRequest `json:"events"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid request body"))
		return
	}
	flowID, err := uuid.Parse(req.FlowID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid flow_id format"))
		return
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid session_id format"))
		return
	}

	events := make([]services.FlowEventInput, 0, len(req.Events))
	for i, ev := range req.Events {
		clientEventID, err := uuid.Parse(ev.ClientEventID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("event %d: invalid client_event_id format", i))
			return
		}

		input := services.FlowEventInput{
			ClientEventID: clientEventID,
			EventType:     ev.EventType,
			WatchSeconds:  ev.WatchSeconds,
			Completed:     ev.Completed,
			EventData:     ev.EventData,
		}
		if ev.NodeID != "" {
			nodeID, err := uuid.Parse(ev.NodeID)
			if err != nil {
				RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("event %d: invalid node_id format", i))
				return
			}
			input.NodeID = &nodeID
		}
		if ev.OccurredAt != "" {
			occurredAt, err := time.Parse(time.RFC3339, ev.OccurredAt)
			if err != nil {
				RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("event %d: invalid occurred_at timestamp", i))
				return
			}
			input.OccurredAt = &occurredAt
		}
		events = append(events, input)
	}

	result, aerr := h.eventsService.Apply(c.Request.Context(), userID, flowID, sessionID, events)
	if aerr != nil {
		RespondAPIError(c, aerr)
		return
	}
	RespondOK(c, result)
}

// GET /api/videos/:id/flow
func (h *FlowHandler) GetFlowForVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid video id"))
		return
	}

	info, aerr := h.infoService.GetFlowForVideo(c.Request.Context(), videoID)
	if aerr != nil {
		RespondAPIError(c, aerr)
		return
	}
	RespondOK(c, info)
}
