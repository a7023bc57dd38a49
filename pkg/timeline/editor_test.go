package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/steps"
)

func TestEditorKeepsMinimumTracks(t *testing.T) {
	e := NewEditor(config.DefaultEditorConfig())
	require.Equal(t, 1, e.TrackCount())
	only := e.Tracks()[0].ID

	assert.False(t, e.RemoveTrack(only))
	assert.Equal(t, 1, e.TrackCount())

	extra := e.AddTrack("")
	assert.True(t, e.RemoveTrack(only))
	assert.False(t, e.RemoveTrack(extra.ID))
	assert.False(t, e.RemoveTrack("missing"))

	// 核心时间轴本身没有下限
	assert.True(t, e.Timeline.RemoveTrack(extra.ID))
	assert.Equal(t, 0, e.TrackCount())
}

func TestEditorRemoveTrackEndsDrag(t *testing.T) {
	e := NewEditorWithTimeline(newTestTimeline(), 1)
	t2 := e.AddTrack("b").ID
	seg, _ := e.AddSegment(waitStep("a"), t2, 0, 10)
	require.True(t, e.Drag.Start(seg.ID, DragMove, Point{}))

	require.True(t, e.RemoveTrack(t2))
	assert.False(t, e.Drag.Active())
}

func TestStepDurationFrames(t *testing.T) {
	tl := newTestTimeline()
	assert.Equal(t, 30, tl.StepDurationFrames(waitStep("w")))
	assert.Equal(t, 12, tl.StepDurationFrames(steps.Record{Type: steps.KindMove, Params: map[string]any{"duration": 200}}))
	assert.Equal(t, 30, tl.StepDurationFrames(steps.Record{Type: steps.KindDamage}))
	assert.Equal(t, 1, tl.StepDurationFrames(steps.Record{Type: steps.KindShake, Params: map[string]any{"duration": 1}}))
}

func TestDropStep(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)

	seg, ok := tl.DropStep(waitStep("w1"), t1, px(12))
	require.True(t, ok)
	assert.Equal(t, 10, seg.StartFrame, "snapped to grid")
	assert.Equal(t, 40, seg.EndFrame)

	// 落在已有片段后半段，放在它后面
	seg2, ok := tl.DropStep(waitStep("w2"), t1, px(33))
	require.True(t, ok)
	assert.Equal(t, 40, seg2.StartFrame)

	rec, ok := tl.Step("w2")
	require.True(t, ok)
	assert.Equal(t, steps.KindWait, rec.Type)

	tl.SetTrackLocked(t1, true)
	_, ok = tl.DropStep(waitStep("w3"), t1, px(200))
	assert.False(t, ok)
	_, ok = tl.DropStep(waitStep("w4"), "missing", 0)
	assert.False(t, ok)
	assert.Empty(t, tl.Validate())
}
