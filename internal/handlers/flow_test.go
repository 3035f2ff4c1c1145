package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kestrelmedia/clipflow-backend/internal/apierr"
	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/requestdata"
	"github.com/kestrelmedia/clipflow-backend/internal/services"
)

type stubResumeService struct {
	result *services.ResumeResult
	err    *apierr.Error
}

func (s *stubResumeService) Resume(ctx context.Context, userID, flowID uuid.UUID) (*services.ResumeResult, *apierr.Error) {
	return s.result, s.err
}

type stubNextService struct {
	result *services.NextResult
	err    *apierr.Error
}

func (s *stubNextService) Next(ctx context.Context, userID, flowID, currentNodeID uuid.UUID, mode string) (*services.NextResult, *apierr.Error) {
	return s.result, s.err
}

type stubEventsService struct {
	gotFlowID    uuid.UUID
	gotSessionID uuid.UUID
	gotEvents    []services.FlowEventInput
	result       *services.EventsResult
	err          *apierr.Error
}

func (s *stubEventsService) Apply(ctx context.Context, userID, flowID, sessionID uuid.UUID, events []services.FlowEventInput) (*services.EventsResult, *apierr.Error) {
	s.gotFlowID = flowID
	s.gotSessionID = sessionID
	s.gotEvents = events
	return s.result, s.err
}

type stubInfoService struct {
	result *services.FlowInfo
	err    *apierr.Error
}

func (s *stubInfoService) GetFlowForVideo(ctx context.Context, videoID uuid.UUID) (*services.FlowInfo, *apierr.Error) {
	return s.result, s.err
}

type flowHandlerEnv struct {
	router *gin.Engine
	resume *stubResumeService
	next   *stubNextService
	events *stubEventsService
	info   *stubInfoService
	userID uuid.UUID
}

func newFlowHandlerEnv(t *testing.T, authed bool) *flowHandlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &flowHandlerEnv{
		resume: &stubResumeService{},
		next:   &stubNextService{},
		events: &stubEventsService{},
		info:   &stubInfoService{},
		userID: uuid.New(),
	}

	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	handler := NewFlowHandler(log, env.resume, env.next, env.events, env.info)

	router := gin.New()
	if authed {
		router.Use(func(c *gin.Context) {
			ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: env.userID})
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	router.POST("/api/flow/resume", handler.Resume)
	router.POST("/api/flow/next", handler.Next)
	router.POST("/api/flow/events", handler.Events)
	router.GET("/api/videos/:id/flow", handler.GetFlowForVideo)

	env.router = router
	return env
}

func (env *flowHandlerEnv) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var envlp ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envlp); err != nil {
		t.Fatalf("failed to decode error envelope: %v (body %q)", err, rec.Body.String())
	}
	return envlp
}

func TestFlowEndpointsRequireAuth(t *testing.T) {
	env := newFlowHandlerEnv(t, false)

	paths := []string{"/api/flow/resume", "/api/flow/next", "/api/flow/events"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := env.post(t, path, `{}`)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if envlp := decodeEnvelope(t, rec); envlp.Code != apierr.CodeUnauthorized {
				t.Errorf("code = %q, want %q", envlp.Code, apierr.CodeUnauthorized)
			}
		})
	}
}

func TestFlowResumeValidation(t *testing.T) {
	env := newFlowHandlerEnv(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing flow_id", `{}`},
		{"bad flow_id", `{"flow_id": "not-a-uuid"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.post(t, "/api/flow/resume", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if envlp := decodeEnvelope(t, rec); envlp.Code != apierr.CodeValidation {
				t.Errorf("code = %q, want %q", envlp.Code, apierr.CodeValidation)
			}
		})
	}
}

func TestFlowResumeMapsServiceError(t *testing.T) {
	env := newFlowHandlerEnv(t, true)
	env.resume.err = apierr.New(http.StatusForbidden, apierr.CodeFlowInactive, fmt.Errorf("flow is not active"))

	rec := env.post(t, "/api/flow/resume", fmt.Sprintf(`{"flow_id": %q}`, uuid.NewString()))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	envlp := decodeEnvelope(t, rec)
	if envlp.Code != apierr.CodeFlowInactive {
		t.Errorf("code = %q, want %q", envlp.Code, apierr.CodeFlowInactive)
	}
	if envlp.Error != "flow is not active" {
		t.Errorf("error = %q, want service message", envlp.Error)
	}
}

func TestFlowNextRejectsUnknownMode(t *testing.T) {
	env := newFlowHandlerEnv(t, true)

	body := fmt.Sprintf(`{"flow_id": %q, "current_node_id": %q, "mode": "shuffle"}`, uuid.NewString(), uuid.NewString())
	rec := env.post(t, "/api/flow/next", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFlowEventsParsesBatch(t *testing.T) {
	env := newFlowHandlerEnv(t, true)
	env.events.result = &services.EventsResult{Success: true, ProcessedCount: 1, Errors: []string{}}

	flowID := uuid.New()
	sessionID := uuid.New()
	nodeID := uuid.New()
	clientEventID := uuid.New()
	body := fmt.Sprintf(`{
		"flow_id": %q,
		"session_id": %q,
		"events": [{
			"client_event_id": %q,
			"node_id": %q,
			"event_type": "view",
			"watch_seconds": 30,
			"completed": true,
			"occurred_at": "2026-03-14T09:26:53Z"
		}]
	}`, flowID, sessionID, clientEventID, nodeID)

	rec := env.post(t, "/api/flow/events", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if env.events.gotFlowID != flowID || env.events.gotSessionID != sessionID {
		t.Error("flow or session id not passed through")
	}
	if len(env.events.gotEvents) != 1 {
		t.Fatalf("events passed through = %d, want 1", len(env.events.gotEvents))
	}
	got := env.events.gotEvents[0]
	if got.ClientEventID != clientEventID {
		t.Error("client_event_id not parsed")
	}
	if got.NodeID == nil || *got.NodeID != nodeID {
		t.Error("node_id not parsed")
	}
	if got.OccurredAt == nil || got.OccurredAt.UTC().Hour() != 9 {
		t.Error("occurred_at not parsed")
	}
	if got.WatchSeconds != 30 || !got.Completed || got.EventType != "view" {
		t.Error("event fields not passed through")
	}
}

func TestFlowEventsRejectsBadTimestamps(t *testing.T) {
	env := newFlowHandlerEnv(t, true)

	body := fmt.Sprintf(`{
		"flow_id": %q,
		"session_id": %q,
		"events": [{"client_event_id": %q, "event_type": "view", "occurred_at": "yesterday"}]
	}`, uuid.NewString(), uuid.NewString(), uuid.NewString())

	rec := env.post(t, "/api/flow/events", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetFlowForVideoRejectsBadID(t *testing.T) {
	env := newFlowHandlerEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/videos/not-a-uuid/flow", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
