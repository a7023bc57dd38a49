// Package timeline 实现技能编辑器的时间轴引擎
//
// 时间轴由若干轨道组成，每条轨道上放置不重叠的片段，每个片段引用一个步骤。
// 所有修改都经过同一套重叠与锁定检查：被拒绝的修改返回 false，状态保持不变。
//
// Timeline 不是并发安全的，应当只在宿主 UI 的事件线程中使用。
package timeline

import (
	"github.com/google/uuid"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/steps"
)

// Options 时间轴参数
type Options struct {
	FPS              int
	PixelsPerSecond  float64
	SnapThreshold    float64 // 像素
	GridInterval     int     // 帧，0 表示不吸附网格
	TrackHeight      float64 // 像素
	TotalFrames      int
	FrameSlack       int
	DefaultTrackName string // 为空时不创建默认轨道

	// NewID 生成轨道/片段/步骤 ID，默认使用 UUID
	NewID func() string
}

// OptionsFromConfig 从编辑器配置生成时间轴参数
func OptionsFromConfig(cfg *config.EditorConfig) Options {
	if cfg == nil {
		cfg = config.DefaultEditorConfig()
	}
	return Options{
		FPS:              cfg.FPS,
		PixelsPerSecond:  cfg.PixelsPerSecond,
		SnapThreshold:    cfg.SnapThreshold,
		GridInterval:     cfg.GridInterval,
		TrackHeight:      cfg.TrackHeight,
		TotalFrames:      cfg.TotalFrames,
		FrameSlack:       cfg.FrameSlack,
		DefaultTrackName: cfg.DefaultTrackName,
	}
}

// Timeline 轨道、片段与步骤的集合
type Timeline struct {
	opts  Options
	scale Scale

	tracks     []*Track
	trackIndex map[string]*Track
	segments   map[string]*Segment
	steps      map[string]steps.Record

	selected     string
	currentFrame int
	snapEnabled  bool

	listeners []func(Change)
}

// New 创建时间轴；DefaultTrackName 非空时创建默认轨道
func New(opts Options) *Timeline {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	t := &Timeline{
		opts:        opts,
		scale:       Scale{FPS: opts.FPS, Zoom: opts.PixelsPerSecond},
		trackIndex:  make(map[string]*Track),
		segments:    make(map[string]*Segment),
		steps:       make(map[string]steps.Record),
		snapEnabled: true,
	}
	if opts.DefaultTrackName != "" {
		t.insertTrack(Track{ID: t.opts.NewID(), Name: opts.DefaultTrackName})
	}
	return t
}

// Scale 当前换算参数
func (t *Timeline) Scale() Scale { return t.scale }

// Options 返回时间轴参数
func (t *Timeline) Options() Options { return t.opts }

// SetZoom 修改缩放（像素/秒），非正数被忽略
func (t *Timeline) SetZoom(zoom float64) {
	if zoom <= 0 {
		return
	}
	t.scale.Zoom = zoom
	t.opts.PixelsPerSecond = zoom
}

// MaxFrame 片段结束帧允许的最大值
func (t *Timeline) MaxFrame() int {
	return t.opts.TotalFrames + t.opts.FrameSlack
}

// SetSnapEnabled 开关吸附
func (t *Timeline) SetSnapEnabled(enabled bool) { t.snapEnabled = enabled }

// SnapEnabled 是否启用吸附
func (t *Timeline) SnapEnabled() bool { return t.snapEnabled }

// CurrentFrame 播放头所在帧
func (t *Timeline) CurrentFrame() int { return t.currentFrame }

// SetCurrentFrame 移动播放头，结果限制在 [0, TotalFrames]
func (t *Timeline) SetCurrentFrame(frame int) {
	frame = clampInt(frame, 0, t.opts.TotalFrames)
	if frame == t.currentFrame {
		return
	}
	t.currentFrame = frame
	t.emit(Change{Kind: PlayheadMoved, Frame: frame})
}

// Select 选中片段；片段不存在时返回 false
func (t *Timeline) Select(segmentID string) bool {
	if _, ok := t.segments[segmentID]; !ok {
		return false
	}
	if t.selected != segmentID {
		t.selected = segmentID
		t.emit(Change{Kind: SelectionChanged, SegmentID: segmentID})
	}
	return true
}

// ClearSelection 取消选中
func (t *Timeline) ClearSelection() {
	if t.selected == "" {
		return
	}
	t.selected = ""
	t.emit(Change{Kind: SelectionChanged})
}

// Selected 当前选中的片段
func (t *Timeline) Selected() (Segment, bool) {
	if t.selected == "" {
		return Segment{}, false
	}
	seg, ok := t.segments[t.selected]
	if !ok {
		return Segment{}, false
	}
	return *seg, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
