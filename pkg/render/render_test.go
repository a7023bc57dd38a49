package render

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/game"
	"github.com/gonewx/battleskill/pkg/steps"
	"github.com/gonewx/battleskill/pkg/timeline"
)

// newTestEditor 60fps、100px/s，关闭吸附：1 秒 = 60 帧 = 100px
func newTestEditor() *timeline.Editor {
	ed := timeline.NewEditor(config.DefaultEditorConfig())
	ed.SetSnapEnabled(false)
	return ed
}

func TestViewport(t *testing.T) {
	vp := Viewport{Width: 800, Height: 400, CameraX: 50, CameraY: -20, Zoom: 2}

	x, y := vp.ToScreen(450, 220)
	if x != 400 || y != 280 {
		t.Errorf("ToScreen() = (%v, %v), want (400, 280)", x, y)
	}
	wx, wy := vp.ToWorld(x, y)
	if math.Abs(wx-450) > 1e-9 || math.Abs(wy-220) > 1e-9 {
		t.Errorf("ToWorld(ToScreen()) = (%v, %v), want (450, 220)", wx, wy)
	}

	identity := Viewport{Width: 800, Height: 400}
	if x, y := identity.ToScreen(123, 45); x != 123 || y != 45 {
		t.Errorf("zero camera should be identity, got (%v, %v)", x, y)
	}
}

func TestBlendColor(t *testing.T) {
	from := color.RGBA{R: 0, G: 100, B: 200, A: 255}
	to := color.RGBA{R: 200, G: 100, B: 0, A: 255}

	tests := []struct {
		t    float64
		want color.RGBA
	}{
		{0, from},
		{1, to},
		{0.5, color.RGBA{R: 100, G: 100, B: 100, A: 255}},
		{2, to},
	}
	for _, tt := range tests {
		if got := BlendColor(from, to, tt.t); got != tt.want {
			t.Errorf("BlendColor(t=%v) = %v, want %v", tt.t, got, tt.want)
		}
	}

	if got := withAlpha(color.RGBA{R: 200, G: 100, B: 50, A: 255}, 0.5); got != (color.RGBA{R: 100, G: 50, B: 25, A: 128}) {
		t.Errorf("withAlpha() = %v", got)
	}
}

func TestTimelineStrip_HitTest(t *testing.T) {
	ed := newTestEditor()
	track := ed.Tracks()[0].ID
	seg, ok := ed.AddSegment(steps.Record{Type: steps.KindWait}, track, 60, 60)
	if !ok {
		t.Fatal("AddSegment failed")
	}
	strip := NewTimelineStrip(ed, 0, 0, 800)

	tests := []struct {
		name string
		p    timeline.Point
		ok   bool
		mode timeline.DragMode
	}{
		{"body", timeline.Point{X: 150, Y: 10}, true, timeline.DragMove},
		{"left edge", timeline.Point{X: 102, Y: 10}, true, timeline.DragResizeStart},
		{"right edge", timeline.Point{X: 197, Y: 10}, true, timeline.DragResizeEnd},
		{"empty", timeline.Point{X: 250, Y: 10}, false, 0},
		{"below tracks", timeline.Point{X: 150, Y: 50}, false, 0},
		{"above tracks", timeline.Point{X: 150, Y: -5}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := strip.HitTest(tt.p)
			if ok != tt.ok {
				t.Fatalf("HitTest() ok = %v, want %v", ok, tt.ok)
			}
			if ok && (hit.SegmentID != seg.ID || hit.Mode != tt.mode) {
				t.Errorf("HitTest() = %+v, want %s on %s", hit, tt.mode, seg.ID)
			}
		})
	}

	ed.SetTrackHidden(track, true)
	if _, ok := strip.HitTest(timeline.Point{X: 150, Y: 10}); ok {
		t.Error("segments on hidden tracks should not be hit")
	}
}

func TestTimelineStrip_PointerDrag(t *testing.T) {
	ed := newTestEditor()
	first := ed.Tracks()[0].ID
	second := ed.AddTrack("fx").ID
	seg, _ := ed.AddSegment(steps.Record{Type: steps.KindWait}, first, 60, 60)
	strip := NewTimelineStrip(ed, 10, 300, 800)

	// 屏幕坐标 = 时间轴坐标 + (X + HeaderWidth, Y + RulerHeight)
	ox, oy := strip.X+HeaderWidth, strip.Y+RulerHeight

	if !strip.PointerDown(ox+150, oy+10) {
		t.Fatal("PointerDown on a segment should start a drag")
	}
	if sel, ok := ed.Selected(); !ok || sel.ID != seg.ID {
		t.Error("pressed segment should be selected")
	}
	if !strip.PointerMove(ox+200, oy+10) {
		t.Fatal("PointerMove should commit")
	}
	got, ok := strip.PointerUp()
	if !ok || got.StartFrame != 90 || got.EndFrame != 150 || got.TrackID != first {
		t.Errorf("after drag: %+v, want [90,150) on %s", got, first)
	}

	// 向下拖动一条轨道的高度换到第二条轨道
	strip.PointerDown(ox+160, oy+10)
	strip.PointerMove(ox+160, oy+50)
	got, _ = strip.PointerUp()
	if got.TrackID != second || got.StartFrame != 90 {
		t.Errorf("cross-track drag: %+v, want start 90 on %s", got, second)
	}

	if _, ok := strip.PointerUp(); ok {
		t.Error("PointerUp without a drag should be a no-op")
	}
}

func TestTimelineStrip_RulerAndDrop(t *testing.T) {
	ed := newTestEditor()
	strip := NewTimelineStrip(ed, 0, 0, 800)

	strip.PointerDown(HeaderWidth+100, 10)
	if ed.CurrentFrame() != 60 {
		t.Errorf("clicking the ruler should move the playhead to 60, got %d", ed.CurrentFrame())
	}

	strip.Library = steps.KindWait
	seg, ok := strip.DropAt(HeaderWidth+300, RulerHeight+10)
	if !ok {
		t.Fatal("DropAt failed")
	}
	rec, _ := ed.Step(seg.StepID)
	if seg.StartFrame != 180 || seg.EndFrame != 192 || rec.Type != steps.KindWait {
		t.Errorf("dropped %+v (%s), want wait at [180,192)", seg, rec.Type)
	}

	if _, ok := strip.DropAt(10, RulerHeight+10); ok {
		t.Error("dropping on the track header should be rejected")
	}
}

func TestTimelineStrip_NextLibraryKind(t *testing.T) {
	strip := NewTimelineStrip(newTestEditor(), 0, 0, 800)
	seen := map[steps.Kind]bool{}
	for range steps.Kinds {
		seen[strip.NextLibraryKind()] = true
	}
	if len(seen) != len(steps.Kinds) || strip.Library != steps.KindMove {
		t.Errorf("cycling should visit every kind and wrap around, saw %v ending at %s", seen, strip.Library)
	}
}

func TestLibraryStepsDecode(t *testing.T) {
	for _, kind := range steps.Kinds {
		if step, ok := steps.Decode(LibraryStep(kind)).(*steps.Invalid); ok {
			t.Errorf("library step %s is invalid: %s", kind, step.Reason)
		}
	}
}

func TestPreviewScene_Play(t *testing.T) {
	cfg := &config.BattleConfig{
		MaxSummons: 1,
		Units: []config.UnitTemplate{
			{ID: "hero", Side: config.SidePlayer, HP: 10, X: 100, Y: 200},
			{ID: "slime", Side: config.SideEnemy, HP: 10, X: 500, Y: 200},
		},
	}
	scene := game.NewBattleScene(game.SceneOptions{})
	battle, err := game.NewBattle(scene, cfg, game.BattleOptions{})
	if err != nil {
		t.Fatalf("NewBattle() error: %v", err)
	}

	ed := newTestEditor()
	ed.AddSegment(LibraryStep(steps.KindMove), ed.Tracks()[0].ID, 0, 18)

	preview := NewPreviewScene(PreviewOptions{Scene: scene, Battle: battle, Battles: cfg, Editor: ed, Width: 800, Height: 600})
	if !preview.Play() {
		t.Fatal("Play() should start")
	}
	if preview.Play() {
		t.Error("Play() while busy should be ignored")
	}

	deadline := time.Now().Add(5 * time.Second)
	for preview.Status() == "" && time.Now().Before(deadline) {
		scene.Update(1.0 / 60)
		time.Sleep(time.Millisecond)
	}
	if preview.Status() != "playback finished" {
		t.Fatalf("status = %q, want playback finished", preview.Status())
	}
	x, _, _ := scene.UnitPosition("hero")
	if x != 440 {
		t.Errorf("hero x = %v, want 440", x)
	}
	if err := preview.SaveOnExit(); err != nil {
		t.Errorf("SaveOnExit() without store error: %v", err)
	}
}
