package timeline

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/battleskill/pkg/steps"
)

func TestNewCreatesDefaultTrack(t *testing.T) {
	tl := newTestTimeline()
	tracks := tl.Tracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, "main", tracks[0].Name)

	bare := New(Options{FPS: 60, PixelsPerSecond: 100})
	assert.Equal(t, 0, bare.TrackCount())
}

func TestAddTrackAutoName(t *testing.T) {
	tl := newTestTimeline()
	tr := tl.AddTrack("")
	assert.Equal(t, "Track 2", tr.Name)
	assert.Equal(t, "fx", tl.AddTrack("fx").Name)
	assert.Equal(t, "Track 4", tl.AddTrack("").Name)
}

func TestUpdateAndMoveTrack(t *testing.T) {
	tl := newTestTimeline()
	a := tl.AddTrack("a")
	b := tl.AddTrack("b")

	assert.False(t, tl.UpdateTrack("missing", TrackPatch{}))
	require.True(t, tl.RenameTrack(a.ID, "camera"))
	require.True(t, tl.SetTrackHidden(a.ID, true))
	got, _ := tl.Track(a.ID)
	assert.Equal(t, "camera", got.Name)
	assert.True(t, got.Hidden)
	assert.False(t, got.Locked)

	mainID := mainTrack(tl)
	require.True(t, tl.MoveTrack(b.ID, 0))
	assert.Equal(t, []string{b.ID, mainID, a.ID}, trackIDs(tl))
	require.True(t, tl.MoveTrack(b.ID, 99))
	assert.Equal(t, b.ID, tl.Tracks()[2].ID)
	assert.False(t, tl.MoveTrack("missing", 0))
}

func trackIDs(tl *Timeline) []string {
	var ids []string
	for _, tr := range tl.Tracks() {
		ids = append(ids, tr.ID)
	}
	return ids
}

func TestAddThenOverlapReject(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)

	_, ok := tl.AddSegment(waitStep("s1"), t1, 0, 30)
	require.True(t, ok)

	_, ok = tl.AddSegment(waitStep("s2"), t1, 15, 30)
	assert.False(t, ok)
	assert.Len(t, tl.TrackSegments(t1), 1)
	_, known := tl.Step("s2")
	assert.False(t, known, "rejected add has no side effects")

	// 首尾相接不算重叠
	_, ok = tl.AddSegment(waitStep("s3"), t1, 30, 10)
	assert.True(t, ok)
}

func TestAddSegmentRejectsInvalidInput(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)

	_, ok := tl.AddSegment(waitStep("a"), "missing", 0, 10)
	assert.False(t, ok)
	_, ok = tl.AddSegment(waitStep("a"), t1, -5, 10)
	assert.False(t, ok)
	_, ok = tl.AddSegment(waitStep("a"), t1, 0, 0)
	assert.False(t, ok)
	assert.Equal(t, 0, tl.SegmentCount())
}

func TestValidResize(t *testing.T) {
	tl := newTestTimeline()
	seg, ok := tl.AddSegment(waitStep("s"), mainTrack(tl), 0, 30)
	require.True(t, ok)

	assert.True(t, tl.UpdateSegment(seg.ID, 10, 50))
	got, _ := tl.Segment(seg.ID)
	assert.Equal(t, 10, got.StartFrame)
	assert.Equal(t, 50, got.EndFrame)
}

func TestInvalidResizeRejected(t *testing.T) {
	tl := newTestTimeline()
	seg, _ := tl.AddSegment(waitStep("s"), mainTrack(tl), 0, 30)

	assert.False(t, tl.UpdateSegment(seg.ID, 30, 10))
	assert.False(t, tl.UpdateSegment(seg.ID, 20, 20))
	assert.False(t, tl.UpdateSegment("missing", 0, 10))
	got, _ := tl.Segment(seg.ID)
	assert.Equal(t, 0, got.StartFrame)
	assert.Equal(t, 30, got.EndFrame)
}

func TestLockRejectsAddAndUpdate(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)
	seg, _ := tl.AddSegment(waitStep("s"), t1, 0, 30)
	t2 := tl.AddTrack("other").ID

	require.True(t, tl.SetTrackLocked(t1, true))
	_, ok := tl.AddSegment(waitStep("x"), t1, 100, 10)
	assert.False(t, ok)
	assert.False(t, tl.UpdateSegment(seg.ID, 0, 20))
	assert.False(t, tl.MoveSegment(seg.ID, t2, 0, 30), "cannot move out of a locked track")

	require.True(t, tl.SetTrackLocked(t1, false))
	require.True(t, tl.SetTrackLocked(t2, true))
	assert.False(t, tl.MoveSegment(seg.ID, t2, 0, 30), "cannot move into a locked track")
	assert.True(t, tl.UpdateSegment(seg.ID, 0, 20))
}

func TestMoveSegmentAcrossTracks(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)
	t2 := tl.AddTrack("b").ID
	seg, _ := tl.AddSegment(waitStep("s"), t1, 0, 30)
	_, _ = tl.AddSegment(waitStep("o"), t2, 20, 30)

	assert.False(t, tl.MoveSegment(seg.ID, t2, 0, 30), "overlaps on destination")
	assert.True(t, tl.MoveSegment(seg.ID, t2, 50, 80))
	assert.Empty(t, tl.TrackSegments(t1))
	assert.Len(t, tl.TrackSegments(t2), 2)
}

func TestCascadeDeleteClearsSelection(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)
	t2 := tl.AddTrack("b").ID
	a, _ := tl.AddSegment(waitStep("a"), t1, 0, 10)
	b, _ := tl.AddSegment(waitStep("b"), t2, 0, 10)
	_, _ = tl.AddSegment(waitStep("c"), t2, 20, 10)

	require.True(t, tl.Select(b.ID))
	require.True(t, tl.RemoveTrack(t2))

	assert.Equal(t, 1, tl.SegmentCount())
	_, selected := tl.Selected()
	assert.False(t, selected)
	_, ok := tl.Step("b")
	assert.False(t, ok, "steps without segments are dropped")
	_, ok = tl.Segment(a.ID)
	assert.True(t, ok)
	assert.False(t, tl.RemoveTrack(t2))
}

func TestRemoveSegmentClearsSelection(t *testing.T) {
	tl := newTestTimeline()
	seg, _ := tl.AddSegment(waitStep("a"), mainTrack(tl), 0, 10)
	require.True(t, tl.Select(seg.ID))

	assert.True(t, tl.RemoveSegment(seg.ID))
	_, selected := tl.Selected()
	assert.False(t, selected)
	assert.False(t, tl.RemoveSegment(seg.ID))
	assert.False(t, tl.Select(seg.ID))
}

func TestSharedStepSurvivesPartialRemoval(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)
	a, _ := tl.AddSegment(waitStep("shared"), t1, 0, 10)
	_, _ = tl.AddSegment(waitStep("shared"), t1, 20, 10)

	tl.RemoveSegment(a.ID)
	_, ok := tl.Step("shared")
	assert.True(t, ok)
}

func TestTrackSegmentsSorted(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)
	for _, start := range []int{50, 0, 120, 20} {
		_, ok := tl.AddSegment(waitStep(fmt.Sprint(start)), t1, start, 10)
		require.True(t, ok)
	}
	var starts []int
	for _, seg := range tl.TrackSegments(t1) {
		starts = append(starts, seg.StartFrame)
	}
	assert.Equal(t, []int{0, 20, 50, 120}, starts)
}

func TestPlayheadClamped(t *testing.T) {
	tl := newTestTimeline()
	tl.SetCurrentFrame(-10)
	assert.Equal(t, 0, tl.CurrentFrame())
	tl.SetCurrentFrame(1000)
	assert.Equal(t, 300, tl.CurrentFrame())
	tl.SetCurrentFrame(42)
	assert.Equal(t, 42, tl.CurrentFrame())
}

func TestOnChangeNotifications(t *testing.T) {
	tl := newTestTimeline()
	var kinds []ChangeKind
	unsubscribe := tl.OnChange(func(c Change) { kinds = append(kinds, c.Kind) })

	tr := tl.AddTrack("fx")
	seg, _ := tl.AddSegment(waitStep("a"), tr.ID, 0, 10)
	tl.UpdateSegment(seg.ID, 5, 15)
	tl.UpdateSegment(seg.ID, 15, 5) // 被拒绝，不通知
	tl.Select(seg.ID)
	tl.SetCurrentFrame(12)
	tl.RemoveTrack(tr.ID)

	assert.Equal(t, []ChangeKind{
		TrackAdded, SegmentAdded, SegmentUpdated, SelectionChanged, PlayheadMoved,
		SelectionChanged, SegmentRemoved, TrackRemoved,
	}, kinds)

	unsubscribe()
	tl.AddTrack("")
	assert.Len(t, kinds, 8)
}

func TestUpdateStepParams(t *testing.T) {
	tl := newTestTimeline()
	t1 := mainTrack(tl)
	rec := steps.Record{ID: "m", Type: steps.KindMove, Params: map[string]any{"unitId": "hero", "ease": "Linear"}}
	_, ok := tl.AddSegment(rec, t1, 0, 10)
	require.True(t, ok)

	require.True(t, tl.UpdateStepParams("m", map[string]any{"targetX": "+50", "ease": nil}))
	got, _ := tl.Step("m")
	assert.Equal(t, "+50", got.Params["targetX"])
	assert.NotContains(t, got.Params, "ease")
	assert.Equal(t, "Linear", rec.Params["ease"], "caller's record is not aliased")

	tl.SetTrackLocked(t1, true)
	assert.False(t, tl.UpdateStepParams("m", map[string]any{"unitId": "x"}))
	assert.False(t, tl.UpdateStepParams("missing", nil))
}

// TestNoOverlapInvariantUnderRandomOps 随机操作后不重叠与区间合法性始终成立
func TestNoOverlapInvariantUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tl := newTestTimeline()
	tracks := []string{mainTrack(tl), tl.AddTrack("").ID, tl.AddTrack("").ID}

	for i := 0; i < 2000; i++ {
		track := tracks[rng.Intn(len(tracks))]
		switch rng.Intn(4) {
		case 0, 1:
			tl.AddSegment(waitStep(fmt.Sprintf("s%d", i)), track, rng.Intn(300)-10, rng.Intn(40)-5)
		case 2:
			segs := tl.Segments()
			if len(segs) == 0 {
				continue
			}
			seg := segs[rng.Intn(len(segs))]
			start := rng.Intn(300) - 10
			tl.UpdateSegment(seg.ID, start, start+rng.Intn(40)-5)
		case 3:
			segs := tl.Segments()
			if len(segs) == 0 {
				continue
			}
			seg := segs[rng.Intn(len(segs))]
			start := rng.Intn(300)
			tl.MoveSegment(seg.ID, track, start, start+1+rng.Intn(30))
		}
		require.Empty(t, tl.Validate(), "invariant broken after op %d", i)
	}
	assert.Greater(t, tl.SegmentCount(), 0)
}
