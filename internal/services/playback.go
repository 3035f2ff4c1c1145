package services

import (
	"encoding/json"
	"fmt"

	"github.com/kestrelmedia/clipflow-backend/internal/types"
)

type ClipData struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`
}

type VideoData struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	VideoURL     string `json:"video_url"`
}

// playback is the assembled descriptor of one playable node: its clip,
// parent video and effective start offset.
type playback struct {
	Node          *types.FlowNode
	Clip          *types.VideoClip
	Video         *types.Video
	ClipData      ClipData
	VideoData     VideoData
	JumpToSeconds float64
}

// buildPlayback flattens a node loaded with Clip and Clip.Video and applies
// the deeplink override to the start offset.
func buildPlayback(node *types.FlowNode, deeplink *types.ClipDeeplink) (*playback, error) {
	if node == nil || node.Clip == nil || node.Clip.Video == nil {
		return nil, fmt.Errorf("node %v is missing clip or video", nodeID(node))
	}
	clip := node.Clip
	video := clip.Video

	return &playback{
		Node:  node,
		Clip:  clip,
		Video: video,
		ClipData: ClipData{
			Title:     clip.Title,
			StartTime: clip.StartTime,
			EndTime:   clip.EndTime,
			Duration:  clip.Duration,
		},
		VideoData: VideoData{
			Title:        video.Title,
			ThumbnailURL: video.ThumbnailURL,
			VideoURL:     video.VideoURL,
		},
		JumpToSeconds: resolveJumpToSeconds(clip.StartTime, deeplink),
	}, nil
}

// resolveJumpToSeconds returns the clip's raw start_time unless the node's
// deeplink metadata carries a numeric jump_to_seconds override.
func resolveJumpToSeconds(startTime float64, deeplink *types.ClipDeeplink) float64 {
	if deeplink == nil || len(deeplink.Metadata) == 0 {
		return startTime
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(deeplink.Metadata, &meta); err != nil {
		return startTime
	}
	if v, ok := meta["jump_to_seconds"].(float64); ok {
		return v
	}
	return startTime
}

func nodeID(node *types.FlowNode) interface{} {
	if node == nil {
		return nil
	}
	return node.ID
}
