package timeline

import (
	"log"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/steps"
)

// DefaultSegmentSeconds 没有时长参数的步骤放入时间轴时的默认长度（秒）
const DefaultSegmentSeconds = 0.5

// Editor 面向 UI 的编辑器
//
// 在 Timeline 之上增加拖拽会话和最少轨道数限制。
type Editor struct {
	*Timeline
	Drag *DragSession

	minTracks int
}

// NewEditor 根据编辑器配置创建编辑器
func NewEditor(cfg *config.EditorConfig) *Editor {
	if cfg == nil {
		cfg = config.DefaultEditorConfig()
	}
	return NewEditorWithTimeline(New(OptionsFromConfig(cfg)), cfg.MinTracks)
}

// NewEditorWithTimeline 包装已有的时间轴
func NewEditorWithTimeline(tl *Timeline, minTracks int) *Editor {
	return &Editor{
		Timeline:  tl,
		Drag:      NewDragSession(tl),
		minTracks: minTracks,
	}
}

// MinTracks 编辑器保留的最少轨道数
func (e *Editor) MinTracks() int { return e.minTracks }

// RemoveTrack 删除轨道；轨道数已达下限时拒绝
func (e *Editor) RemoveTrack(id string) bool {
	if _, ok := e.Track(id); !ok {
		return false
	}
	if e.TrackCount() <= e.minTracks {
		log.Printf("[Timeline] Warning: cannot remove track %s, at least %d track(s) required", id, e.minTracks)
		return false
	}
	if e.Drag.Active() {
		if seg, ok := e.Segment(e.Drag.SegmentID()); ok && seg.TrackID == id {
			e.Drag.End()
		}
	}
	return e.Timeline.RemoveTrack(id)
}

// StepDurationFrames 步骤在时间轴上的默认长度（帧）
func (t *Timeline) StepDurationFrames(rec steps.Record) int {
	if ms, ok := rec.DurationMs(); ok && ms > 0 {
		return max(1, t.scale.MillisToFrames(ms))
	}
	return max(1, t.scale.TimeToFrame(DefaultSegmentSeconds))
}

// DropStep 把素材库中的步骤拖放到轨道上
//
// 落点由指针位置换算，经过吸附后如果与已有片段冲突，
// 使用与拖拽相同的规则寻找空位。
func (t *Timeline) DropStep(rec steps.Record, trackID string, pointerX float64) (Segment, bool) {
	tr, ok := t.trackIndex[trackID]
	if !ok || tr.Locked {
		return Segment{}, false
	}

	pointerFrame := max(0, t.scale.PixelsToFrame(pointerX))
	duration := t.StepDurationFrames(rec)

	start := pointerFrame
	if snap := t.Snap(start, ""); snap.Snapped {
		start = snap.Frame
	}
	start, ok = t.ResolvePlacement(trackID, start, duration, pointerFrame, "")
	if !ok {
		log.Printf("[Timeline] Warning: no room for %s step on track %s", rec.Type, trackID)
		return Segment{}, false
	}
	return t.AddSegment(rec, trackID, start, duration)
}

// Load 用文档替换当前时间轴，返回被拒绝的条目
func (e *Editor) Load(doc Document) []error {
	if e.Drag.Active() {
		e.Drag.End()
	}
	tl, errs := LoadDocument(doc, e.Timeline.Options())
	e.Timeline = tl
	e.Drag = NewDragSession(tl)
	return errs
}
