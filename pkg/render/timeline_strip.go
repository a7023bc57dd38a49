package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/battleskill/pkg/steps"
	"github.com/gonewx/battleskill/pkg/timeline"
	"github.com/gonewx/battleskill/pkg/utils"
)

// 编辑条布局
const (
	RulerHeight = 20.0
	HeaderWidth = 96.0
	EdgeHandle  = 6.0 // 片段两端可缩放区域的宽度（像素）
)

var (
	colorStripBack   = color.RGBA{R: 28, G: 30, B: 36, A: 255}
	colorTrackEven   = color.RGBA{R: 40, G: 43, B: 52, A: 255}
	colorTrackOdd    = color.RGBA{R: 46, G: 49, B: 60, A: 255}
	colorTrackLocked = color.RGBA{R: 60, G: 44, B: 44, A: 255}
	colorRulerTick   = color.RGBA{R: 120, G: 124, B: 136, A: 255}
	colorPlayhead    = color.RGBA{R: 255, G: 208, B: 64, A: 255}
	colorSnapGuide   = color.RGBA{R: 64, G: 255, B: 160, A: 255}
	colorSelected    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// stepColors 片段按步骤类型着色
var stepColors = map[steps.Kind]color.RGBA{
	steps.KindMove:       {R: 88, G: 140, B: 230, A: 255},
	steps.KindDamage:     {R: 220, G: 88, B: 80, A: 255},
	steps.KindEffect:     {R: 200, G: 120, B: 230, A: 255},
	steps.KindWait:       {R: 130, G: 130, B: 130, A: 255},
	steps.KindCamera:     {R: 90, G: 190, B: 160, A: 255},
	steps.KindShake:      {R: 230, G: 170, B: 70, A: 255},
	steps.KindBackground: {R: 110, G: 110, B: 200, A: 255},
	steps.KindSound:      {R: 80, G: 180, B: 90, A: 255},
}

// Hit 指针命中的片段
type Hit struct {
	SegmentID string
	TrackID   string
	Mode      timeline.DragMode
}

// TimelineStrip 时间轴编辑条
//
// 把屏幕坐标换算到时间轴像素空间，驱动编辑器的拖拽会话。
// 左侧 HeaderWidth 像素显示轨道名，顶部 RulerHeight 像素为刻度尺。
type TimelineStrip struct {
	Editor *timeline.Editor
	X, Y   float64 // 编辑条在屏幕上的左上角
	Width  float64

	// Library 右键放置的步骤类型
	Library steps.Kind
}

// NewTimelineStrip 创建编辑条
func NewTimelineStrip(editor *timeline.Editor, x, y, width float64) *TimelineStrip {
	return &TimelineStrip{Editor: editor, X: x, Y: y, Width: width, Library: steps.KindMove}
}

func (s *TimelineStrip) trackHeight() float64 {
	if h := s.Editor.Options().TrackHeight; h > 0 {
		return h
	}
	return 32
}

// Height 编辑条总高度
func (s *TimelineStrip) Height() float64 {
	return RulerHeight + float64(s.Editor.TrackCount())*s.trackHeight()
}

// ToTimeline 屏幕坐标转时间轴像素坐标（x 以第 0 帧为原点，y 以第一条轨道顶部为原点）
func (s *TimelineStrip) ToTimeline(sx, sy float64) timeline.Point {
	return timeline.Point{X: sx - s.X - HeaderWidth, Y: sy - s.Y - RulerHeight}
}

// TrackAt 时间轴坐标 y 所在的轨道
func (s *TimelineStrip) TrackAt(y float64) (timeline.Track, bool) {
	if y < 0 {
		return timeline.Track{}, false
	}
	idx := int(y / s.trackHeight())
	tracks := s.Editor.Tracks()
	if idx >= len(tracks) {
		return timeline.Track{}, false
	}
	return tracks[idx], true
}

// HitTest 查找时间轴坐标 p 处的片段
//
// 距片段两端 EdgeHandle 像素以内为缩放，其余为移动。
// 片段窄于两个手柄时只能移动。
func (s *TimelineStrip) HitTest(p timeline.Point) (Hit, bool) {
	track, ok := s.TrackAt(p.Y)
	if !ok || track.Hidden {
		return Hit{}, false
	}
	scale := s.Editor.Scale()
	for _, seg := range s.Editor.TrackSegments(track.ID) {
		left := scale.FrameToPixels(seg.StartFrame)
		right := scale.FrameToPixels(seg.EndFrame)
		if p.X < left || p.X >= right {
			continue
		}
		hit := Hit{SegmentID: seg.ID, TrackID: track.ID, Mode: timeline.DragMove}
		if right-left > 2*EdgeHandle {
			switch {
			case p.X-left <= EdgeHandle:
				hit.Mode = timeline.DragResizeStart
			case right-p.X <= EdgeHandle:
				hit.Mode = timeline.DragResizeEnd
			}
		}
		return hit, true
	}
	return Hit{}, false
}

// PointerDown 指针按下：命中片段时选中并开始拖拽，点在刻度尺上时移动播放头
func (s *TimelineStrip) PointerDown(sx, sy float64) bool {
	p := s.ToTimeline(sx, sy)
	if p.X < 0 {
		return false
	}
	if p.Y < 0 && p.Y >= -RulerHeight {
		s.Editor.SetCurrentFrame(s.Editor.Scale().PixelsToFrame(p.X))
		return true
	}
	hit, ok := s.HitTest(p)
	if !ok {
		s.Editor.ClearSelection()
		return false
	}
	s.Editor.Select(hit.SegmentID)
	return s.Editor.Drag.Start(hit.SegmentID, hit.Mode, p)
}

// PointerMove 指针移动
func (s *TimelineStrip) PointerMove(sx, sy float64) bool {
	return s.Editor.Drag.Drag(s.ToTimeline(sx, sy))
}

// PointerUp 指针松开，结束拖拽
func (s *TimelineStrip) PointerUp() (timeline.Segment, bool) {
	if !s.Editor.Drag.Active() {
		return timeline.Segment{}, false
	}
	return s.Editor.Drag.End()
}

// DropAt 在指针位置放置当前素材类型的步骤
func (s *TimelineStrip) DropAt(sx, sy float64) (timeline.Segment, bool) {
	p := s.ToTimeline(sx, sy)
	track, ok := s.TrackAt(p.Y)
	if !ok || p.X < 0 {
		return timeline.Segment{}, false
	}
	return s.Editor.DropStep(LibraryStep(s.Library), track.ID, p.X)
}

// NextLibraryKind 切换右键放置的步骤类型
func (s *TimelineStrip) NextLibraryKind() steps.Kind {
	for i, k := range steps.Kinds {
		if k == s.Library {
			s.Library = steps.Kinds[(i+1)%len(steps.Kinds)]
			return s.Library
		}
	}
	s.Library = steps.Kinds[0]
	return s.Library
}

// HandleInput 读取 ebiten 的指针状态
//
// 左键（或触摸）拖拽片段，右键放置素材，Tab 切换素材类型。
func (s *TimelineStrip) HandleInput() {
	p := utils.ReadPointer()
	x, y := float64(p.X), float64(p.Y)

	switch {
	case p.JustPressed:
		s.PointerDown(x, y)
	case p.JustReleased:
		s.PointerUp()
	case p.Pressed:
		s.PointerMove(x, y)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		s.DropAt(x, y)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		s.NextLibraryKind()
	}
}

// Draw 绘制编辑条
func (s *TimelineStrip) Draw(screen *ebiten.Image) {
	th := s.trackHeight()
	scale := s.Editor.Scale()
	left := s.X + HeaderWidth
	height := s.Height()

	vector.DrawFilledRect(screen, float32(s.X), float32(s.Y), float32(s.Width), float32(height), colorStripBack, false)

	// 刻度尺：每秒一条长刻度
	fps := max(1, scale.FPS)
	for f := 0; f <= s.Editor.MaxFrame(); f += fps {
		x := left + scale.FrameToPixels(f)
		if x > s.X+s.Width {
			break
		}
		vector.StrokeLine(screen, float32(x), float32(s.Y+RulerHeight/2), float32(x), float32(s.Y+RulerHeight), 1, colorRulerTick, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%ds", f/fps), int(x)+2, int(s.Y))
	}

	selected, hasSelection := s.Editor.Selected()
	for i, track := range s.Editor.Tracks() {
		top := s.Y + RulerHeight + float64(i)*th
		bg := colorTrackEven
		if i%2 == 1 {
			bg = colorTrackOdd
		}
		if track.Locked {
			bg = colorTrackLocked
		}
		vector.DrawFilledRect(screen, float32(s.X), float32(top), float32(s.Width), float32(th), bg, false)

		label := track.Name
		if track.Hidden {
			label += " (h)"
		}
		if track.Locked {
			label += " (L)"
		}
		ebitenutil.DebugPrintAt(screen, label, int(s.X)+4, int(top)+4)

		for _, seg := range s.Editor.TrackSegments(track.ID) {
			rec, _ := s.Editor.Step(seg.StepID)
			c := stepColors[rec.Type]
			if track.Hidden {
				c = withAlpha(c, 0.35)
			}
			x0 := left + scale.FrameToPixels(seg.StartFrame)
			w := scale.FrameToPixels(seg.EndFrame) - scale.FrameToPixels(seg.StartFrame)
			vector.DrawFilledRect(screen, float32(x0), float32(top+3), float32(w), float32(th-6), c, false)
			if hasSelection && selected.ID == seg.ID {
				vector.StrokeRect(screen, float32(x0), float32(top+3), float32(w), float32(th-6), 2, colorSelected, false)
			}
			ebitenutil.DebugPrintAt(screen, string(rec.Type), int(x0)+3, int(top)+8)
		}
	}

	if guide, ok := s.Editor.Drag.SnapGuide(); ok && s.Editor.Drag.Active() {
		x := left + scale.FrameToPixels(guide.Frame)
		vector.StrokeLine(screen, float32(x), float32(s.Y), float32(x), float32(s.Y+height), 1, colorSnapGuide, false)
	}

	px := left + scale.FrameToPixels(s.Editor.CurrentFrame())
	vector.StrokeLine(screen, float32(px), float32(s.Y), float32(px), float32(s.Y+height), 2, colorPlayhead, false)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("drop: %s  frame %d  snap %v",
		s.Library, s.Editor.CurrentFrame(), s.Editor.SnapEnabled()), int(s.X)+4, int(s.Y+height)+2)
}

// LibraryStep 素材库中步骤类型的默认参数
func LibraryStep(kind steps.Kind) steps.Record {
	rec := steps.Record{Type: kind}
	switch kind {
	case steps.KindMove:
		rec.Params = map[string]any{"unitId": "self", "targetX": "target.x - 60", "targetY": "target.y", "duration": 300, "ease": "outQuad"}
	case steps.KindDamage:
		rec.Params = map[string]any{"targetId": "target"}
	case steps.KindEffect:
		rec.Params = map[string]any{"effectId": "slash", "targetId": "target", "duration": 300}
	case steps.KindWait:
		rec.Params = map[string]any{"delay": 200}
	case steps.KindCamera:
		rec.Params = map[string]any{"zoom": 1.3, "duration": 300, "ease": "inOutQuad"}
	case steps.KindShake:
		rec.Params = map[string]any{"intensity": 6, "duration": 300}
	case steps.KindBackground:
		rec.Params = map[string]any{"color": "#301830", "duration": 300}
	case steps.KindSound:
		rec.Params = map[string]any{"soundId": "hit", "volume": 1}
	}
	return rec
}
