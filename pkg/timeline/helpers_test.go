package timeline

import (
	"fmt"

	"github.com/gonewx/battleskill/pkg/steps"
)

// testOptions 60fps、100px/s：1 帧 ≈ 1.667px，吸附阈值 10px ≈ 6 帧
func testOptions() Options {
	n := 0
	return Options{
		FPS:              60,
		PixelsPerSecond:  100,
		SnapThreshold:    10,
		GridInterval:     10,
		TrackHeight:      40,
		TotalFrames:      300,
		FrameSlack:       60,
		DefaultTrackName: "main",
		NewID: func() string {
			n++
			return fmt.Sprintf("id%d", n)
		},
	}
}

func newTestTimeline() *Timeline {
	return New(testOptions())
}

func mainTrack(tl *Timeline) string {
	return tl.Tracks()[0].ID
}

func waitStep(id string) steps.Record {
	return steps.Record{ID: id, Type: steps.KindWait, Params: map[string]any{"delay": 500}}
}

// px 帧在测试缩放下的像素位置
func px(frame int) float64 {
	return FrameToPixels(float64(frame), 60, 100)
}
