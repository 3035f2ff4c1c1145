package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

// Walks a small diamond graph end to end: resume, then alternate event
// ingestion and next-node selection until the flow is exhausted. No node may
// be recommended twice.
func TestFlowWalkNeverRepeatsNodes(t *testing.T) {
	db := newTestDB(t)
	fixture := newFlowFixture(t, db, true)
	fixture.addNode(t, "start", types.NodeTypeStart, 1, 0)
	fixture.addNode(t, "left", types.NodeTypeStandard, 2, 30)
	fixture.addNode(t, "right", types.NodeTypeStandard, 3, 60)
	fixture.addNode(t, "end", types.NodeTypeStandard, 4, 90)
	fixture.addEdge(t, "start", "left", types.EdgeTypeContinue, 2)
	fixture.addEdge(t, "start", "right", types.EdgeTypeExplore, 9)
	fixture.addEdge(t, "left", "right", types.EdgeTypeContinue, 1)
	fixture.addEdge(t, "right", "end", types.EdgeTypeContinue, 1)
	fixture.addEdge(t, "end", "start", types.EdgeTypeRecap, 1)

	resumeSvc := newResumeService(db)
	nextSvc := newNextService(db)
	eventsSvc := newEventsService(db)
	userID := newTestUser(t, db)
	ctx := context.Background()

	entry, apiErr := resumeSvc.Resume(ctx, userID, fixture.Flow.ID)
	if apiErr != nil {
		t.Fatalf("resume: %v", apiErr)
	}
	if entry.NodeID != fixture.Nodes["start"].ID {
		t.Fatalf("resume picked %s, want start node", entry.NodeID)
	}

	report := func(nodeID uuid.UUID) {
		t.Helper()
		batch := []FlowEventInput{{
			ClientEventID: uuid.New(),
			NodeID:        &nodeID,
			EventType:     types.EventTypeView,
			WatchSeconds:  30,
			Completed:     true,
		}}
		if _, aerr := eventsSvc.Apply(ctx, userID, fixture.Flow.ID, *entry.SessionID, batch); aerr != nil {
			t.Fatalf("events: %v", aerr)
		}
	}

	seen := map[uuid.UUID]bool{entry.NodeID: true}
	report(entry.NodeID)

	current := entry.NodeID
	for steps := 0; ; steps++ {
		if steps > len(fixture.Nodes) {
			t.Fatal("walk did not terminate")
		}
		result, aerr := nextSvc.Next(ctx, userID, fixture.Flow.ID, current, ModeAuto)
		if aerr != nil {
			t.Fatalf("next from %s: %v", current, aerr)
		}
		if result.NextNode == nil {
			if result.Reason != ReasonAllViewed && result.Reason != ReasonNoOutgoingEdges {
				t.Errorf("walk ended with reason %q", result.Reason)
			}
			break
		}
		if seen[result.NextNode.NodeID] {
			t.Fatalf("node %s recommended twice", result.NextNode.NodeID)
		}
		seen[result.NextNode.NodeID] = true
		report(result.NextNode.NodeID)
		current = result.NextNode.NodeID
	}

	if len(seen) != len(fixture.Nodes) {
		t.Errorf("visited %d of %d nodes", len(seen), len(fixture.Nodes))
	}

	// A later resume lands on the last node the walk touched.
	again, apiErr := resumeSvc.Resume(ctx, userID, fixture.Flow.ID)
	if apiErr != nil {
		t.Fatalf("second resume: %v", apiErr)
	}
	if !again.IsResume {
		t.Error("second resume: is_resume = false")
	}
	if again.NodeID != current {
		t.Errorf("second resume picked %s, want last visited %s", again.NodeID, current)
	}
}
