package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/repos"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

func newInfoService(db *gorm.DB) FlowInfoService {
	log := testLogger()
	return NewFlowInfoService(db, log, repos.NewFlowRepo(db, log), repos.NewFlowNodeRepo(db, log))
}

func TestGetFlowForVideo(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, true)
	fixture.addNode(t, "a", types.NodeTypeStart, 1, 0)
	fixture.addNode(t, "b", types.NodeTypeStandard, 2, 30)
	svc := newInfoService(db)

	info, apiErr := svc.GetFlowForVideo(context.Background(), fixture.Video.ID)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if info.ID != fixture.Flow.ID {
		t.Errorf("flow id = %s, want %s", info.ID, fixture.Flow.ID)
	}
	if info.TotalNodes != 2 {
		t.Errorf("total_nodes = %d, want 2", info.TotalNodes)
	}
	if !info.IsActive {
		t.Error("is_active = false")
	}
}

func TestGetFlowForVideoIgnoresInactive(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, false)
	fixture.addNode(t, "a", types.NodeTypeStart, 1, 0)
	svc := newInfoService(db)

	tests := []struct {
		name    string
		videoID uuid.UUID
	}{
		{"inactive flow", fixture.Video.ID},
		{"unknown video", uuid.New()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, apiErr := svc.GetFlowForVideo(context.Background(), tt.videoID)
			if apiErr == nil {
				t.Fatal("want error")
			}
			if apiErr.Status != 404 || apiErr.Code != "FLOW_NOT_FOUND" {
				t.Errorf("got %d %s, want 404 FLOW_NOT_FOUND", apiErr.Status, apiErr.Code)
			}
		})
	}
}
