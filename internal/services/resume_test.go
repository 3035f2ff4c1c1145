package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

func TestResumeFreshStartPicksStartNode(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, true)
	fixture.addNode(t, "intro", types.NodeTypeStandard, 1, 0)
	start := fixture.addNode(t, "start", types.NodeTypeStart, 2, 10)
	svc := newResumeService(db)

	// Two users with no history must land on the same node.
	for _, userKey := range []string{"first", "second"} {
		userID := newTestUser(t, db)
		result, apiErr := svc.Resume(context.Background(), userID, fixture.Flow.ID)
		if apiErr != nil {
			t.Fatalf("%s user: unexpected error: %v", userKey, apiErr)
		}
		if result.NodeID != start.ID {
			t.Errorf("%s user: got node %s, want start node %s", userKey, result.NodeID, start.ID)
		}
		if result.IsResume {
			t.Errorf("%s user: is_resume = true for a fresh start", userKey)
		}
		if result.SessionID == nil {
			t.Fatalf("%s user: no session id returned", userKey)
		}

		var session types.FlowSession
		if err := db.First(&session, "id = ?", *result.SessionID).Error; err != nil {
			t.Fatalf("%s user: session not persisted: %v", userKey, err)
		}
		if session.EntryNodeID == nil || *session.EntryNodeID != start.ID {
			t.Errorf("%s user: session entry node not set to start node", userKey)
		}
		if session.LastNodeID == nil || *session.LastNodeID != start.ID {
			t.Errorf("%s user: session last node not set to start node", userKey)
		}

		var progress types.FlowProgress
		if err := db.First(&progress, "user_id = ? AND flow_id = ?", userID, fixture.Flow.ID).Error; err != nil {
			t.Fatalf("%s user: progress pointer not persisted: %v", userKey, err)
		}
		if progress.LastSessionID == nil || *progress.LastSessionID != *result.SessionID {
			t.Errorf("%s user: progress pointer does not reference new session", userKey)
		}
	}
}

func TestResumeFallsBackToLowestSequenceHint(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, true)
	fixture.addNode(t, "later", types.NodeTypeStandard, 5, 120)
	first := fixture.addNode(t, "first", types.NodeTypeStandard, 1, 0)
	svc := newResumeService(db)
	userID := newTestUser(t, db)

	result, apiErr := svc.Resume(context.Background(), userID, fixture.Flow.ID)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if result.NodeID != first.ID {
		t.Errorf("got node %s, want lowest sequence_hint node %s", result.NodeID, first.ID)
	}
}

func TestResumeReturnsLastSessionNode(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, true)
	fixture.addNode(t, "start", types.NodeTypeStart, 1, 0)
	middle := fixture.addNode(t, "middle", types.NodeTypeStandard, 2, 60)
	svc := newResumeService(db)
	userID := newTestUser(t, db)

	now := time.Now().UTC()
	session := &types.FlowSession{
		ID:           uuid.New(),
		UserID:       userID,
		FlowID:       fixture.Flow.ID,
		EntryNodeID:  &fixture.Nodes["start"].ID,
		LastNodeID:   &middle.ID,
		SessionStart: now,
		LastActiveAt: now,
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	progress := &types.FlowProgress{
		ID:            uuid.New(),
		UserID:        userID,
		FlowID:        fixture.Flow.ID,
		LastSessionID: &session.ID,
	}
	if err := db.Create(progress).Error; err != nil {
		t.Fatalf("failed to create progress: %v", err)
	}

	result, apiErr := svc.Resume(context.Background(), userID, fixture.Flow.ID)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if !result.IsResume {
		t.Error("is_resume = false, want true")
	}
	if result.NodeID != middle.ID {
		t.Errorf("got node %s, want last session node %s", result.NodeID, middle.ID)
	}
	if result.SessionID == nil || *result.SessionID != session.ID {
		t.Error("session id does not match the resumed session")
	}

	var count int64
	if err := db.Model(&types.FlowSession{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count sessions: %v", err)
	}
	if count != 1 {
		t.Errorf("resume created a new session: got %d sessions, want 1", count)
	}
}

func TestResumeDeeplinkOverridesStartTime(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, true)
	fixture.addNode(t, "start", types.NodeTypeStart, 1, 10)
	fixture.addDeeplink(t, "start", 42)
	svc := newResumeService(db)
	userID := newTestUser(t, db)

	result, apiErr := svc.Resume(context.Background(), userID, fixture.Flow.ID)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if result.JumpToSeconds != 42 {
		t.Errorf("jump_to_seconds = %g, want deeplink override 42", result.JumpToSeconds)
	}
}

func TestResumeDefaultsToClipStartTime(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, true)
	fixture.addNode(t, "start", types.NodeTypeStart, 1, 10)
	svc := newResumeService(db)
	userID := newTestUser(t, db)

	result, apiErr := svc.Resume(context.Background(), userID, fixture.Flow.ID)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if result.JumpToSeconds != 10 {
		t.Errorf("jump_to_seconds = %g, want clip start_time 10", result.JumpToSeconds)
	}
}

func TestResumeErrors(t *testing.T) {
	db := newTestDB(t)
	inactive := newFlowFixture(t, db, false)
	inactive.addNode(t, "start", types.NodeTypeStart, 1, 0)
	empty := newFlowFixture(t, db, true)
	svc := newResumeService(db)
	userID := newTestUser(t, db)

	tests := []struct {
		name       string
		flowID     uuid.UUID
		wantStatus int
		wantCode   string
	}{
		{"unknown flow", uuid.New(), 404, "FLOW_NOT_FOUND"},
		{"inactive flow", inactive.Flow.ID, 403, "FLOW_INACTIVE"},
		{"flow without nodes", empty.Flow.ID, 404, "NO_NODES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, apiErr := svc.Resume(context.Background(), userID, tt.flowID)
			if apiErr == nil {
				t.Fatalf("got result %+v, want error", result)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.wantStatus)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
		})
	}
}
