package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kestrelmedia/clipflow-backend/internal/logger"
	"github.com/kestrelmedia/clipflow-backend/internal/repos"
	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

var testDBSeq int64

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Video{},
		&types.VideoClip{},
		&types.Flow{},
		&types.FlowNode{},
		&types.FlowEdge{},
		&types.ClipDeeplink{},
		&types.FlowSession{},
		&types.FlowProgress{},
		&types.FlowNodeProgress{},
		&types.FlowEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// flowFixture is one flow plus enough surrounding rows to play it.
type flowFixture struct {
	db    *gorm.DB
	Flow  *types.Flow
	Video *types.Video
	Nodes map[string]*types.FlowNode
	Clips map[string]*types.VideoClip
}

func newFlowFixture(t *testing.T, db *gorm.DB, active bool) *flowFixture {
	t.Helper()

	video := &types.Video{
		ID:           uuid.New(),
		Title:        "Trail Running 101",
		VideoURL:     "https://cdn.example.com/trail.mp4",
		ThumbnailURL: "https://cdn.example.com/trail.jpg",
		Duration:     600,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create video: %v", err)
	}

	flow := &types.Flow{
		ID:       uuid.New(),
		VideoID:  video.ID,
		Title:    "Trail Running Flow",
		IsActive: active,
	}
	if err := db.Create(flow).Error; err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}

	return &flowFixture{
		db:    db,
		Flow:  flow,
		Video: video,
		Nodes: map[string]*types.FlowNode{},
		Clips: map[string]*types.VideoClip{},
	}
}

func (f *flowFixture) addNode(t *testing.T, key, nodeType string, sequenceHint int, clipStart float64) *types.FlowNode {
	t.Helper()

	clip := &types.VideoClip{
		ID:        uuid.New(),
		VideoID:   f.Video.ID,
		Title:     "clip " + key,
		StartTime: clipStart,
		EndTime:   clipStart + 30,
		Duration:  30,
	}
	if err := f.db.Create(clip).Error; err != nil {
		t.Fatalf("failed to create clip %s: %v", key, err)
	}

	node := &types.FlowNode{
		ID:           uuid.New(),
		FlowID:       f.Flow.ID,
		ClipID:       clip.ID,
		NodeType:     nodeType,
		SequenceHint: sequenceHint,
	}
	if err := f.db.Create(node).Error; err != nil {
		t.Fatalf("failed to create node %s: %v", key, err)
	}

	f.Nodes[key] = node
	f.Clips[key] = clip
	return node
}

func (f *flowFixture) addEdge(t *testing.T, fromKey, toKey, edgeType string, weight float64) *types.FlowEdge {
	t.Helper()

	edge := &types.FlowEdge{
		ID:         uuid.New(),
		FlowID:     f.Flow.ID,
		FromNodeID: f.Nodes[fromKey].ID,
		ToNodeID:   f.Nodes[toKey].ID,
		EdgeType:   edgeType,
		Weight:     weight,
		Label:      fromKey + "->" + toKey,
	}
	if err := f.db.Create(edge).Error; err != nil {
		t.Fatalf("failed to create edge %s->%s: %v", fromKey, toKey, err)
	}
	return edge
}

func (f *flowFixture) addDeeplink(t *testing.T, nodeKey string, jumpToSeconds float64) {
	t.Helper()

	deeplink := &types.ClipDeeplink{
		ID:       uuid.New(),
		NodeID:   f.Nodes[nodeKey].ID,
		Metadata: []byte(fmt.Sprintf(`{"jump_to_seconds": %g}`, jumpToSeconds)),
	}
	if err := f.db.Create(deeplink).Error; err != nil {
		t.Fatalf("failed to create deeplink for %s: %v", nodeKey, err)
	}
}

func newTestUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	user := &types.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Password: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user.ID
}

func newResumeService(db *gorm.DB) FlowResumeService {
	log := testLogger()
	return NewFlowResumeService(
		db,
		log,
		repos.NewFlowRepo(db, log),
		repos.NewFlowNodeRepo(db, log),
		repos.NewFlowSessionRepo(db, log),
		repos.NewFlowProgressRepo(db, log),
		repos.NewClipDeeplinkRepo(db, log),
	)
}

func newNextService(db *gorm.DB) FlowNextService {
	log := testLogger()
	return NewFlowNextService(
		db,
		log,
		repos.NewFlowNodeRepo(db, log),
		repos.NewFlowEdgeRepo(db, log),
		repos.NewFlowNodeProgressRepo(db, log),
		repos.NewClipDeeplinkRepo(db, log),
		nil,
	)
}

func newEventsService(db *gorm.DB) FlowEventsService {
	log := testLogger()
	return NewFlowEventsService(
		db,
		log,
		repos.NewFlowSessionRepo(db, log),
		repos.NewFlowNodeRepo(db, log),
		repos.NewFlowEventRepo(db, log),
		repos.NewFlowNodeProgressRepo(db, log),
		repos.NewFlowProgressRepo(db, log),
		nil,
	)
}
