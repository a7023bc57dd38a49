package timeline

import (
	"context"
	"log"
	"math"

	"github.com/looplab/fsm"
)

// DragMode 拖拽模式
type DragMode int

const (
	DragMove DragMode = iota
	DragResizeStart
	DragResizeEnd
)

func (m DragMode) String() string {
	switch m {
	case DragMove:
		return "move"
	case DragResizeStart:
		return "resize-start"
	case DragResizeEnd:
		return "resize-end"
	}
	return "unknown"
}

// Point 时间轴像素空间中的指针位置
type Point struct {
	X, Y float64
}

// 拖拽状态机的状态与事件
const (
	StateIdle          = "idle"
	StateMoving        = "moving"
	StateResizingStart = "resizing-start"
	StateResizingEnd   = "resizing-end"

	eventDrop = "drop"
)

var modeStates = map[DragMode]string{
	DragMove:        StateMoving,
	DragResizeStart: StateResizingStart,
	DragResizeEnd:   StateResizingEnd,
}

// DragSession 拖拽/缩放会话
//
// 指针按下时 Start，每次指针移动调用 Drag，松开时 End。
// 每次 Drag 都会经过吸附、边界限制和重叠处理后立即提交到时间轴，
// 松开时的区间就是最后一次 Drag 的结果。
type DragSession struct {
	tl      *Timeline
	machine *fsm.FSM

	mode             DragMode
	segmentID        string
	pointerStart     Point
	originalStart    int
	originalDuration int
	originalTrackID  string

	guide SnapResult
}

// NewDragSession 创建拖拽会话
func NewDragSession(tl *Timeline) *DragSession {
	return &DragSession{
		tl: tl,
		machine: fsm.NewFSM(
			StateIdle,
			fsm.Events{
				{Name: DragMove.String(), Src: []string{StateIdle}, Dst: StateMoving},
				{Name: DragResizeStart.String(), Src: []string{StateIdle}, Dst: StateResizingStart},
				{Name: DragResizeEnd.String(), Src: []string{StateIdle}, Dst: StateResizingEnd},
				{Name: eventDrop, Src: []string{StateMoving, StateResizingStart, StateResizingEnd}, Dst: StateIdle},
			},
			fsm.Callbacks{},
		),
	}
}

// State 状态机当前状态
func (d *DragSession) State() string { return d.machine.Current() }

// Active 是否正在拖拽
func (d *DragSession) Active() bool { return !d.machine.Is(StateIdle) }

// Mode 当前拖拽模式
func (d *DragSession) Mode() DragMode { return d.mode }

// SegmentID 正在拖拽的片段
func (d *DragSession) SegmentID() string { return d.segmentID }

// SnapGuide 当前生效的吸附参考线
func (d *DragSession) SnapGuide() (SnapResult, bool) {
	return d.guide, d.guide.Snapped
}

// Start 开始拖拽
//
// 片段不存在或所在轨道被锁定时为空操作并返回 false。
// 已有拖拽进行中时先结束上一次拖拽。
func (d *DragSession) Start(segmentID string, mode DragMode, pointer Point) bool {
	seg, ok := d.tl.Segment(segmentID)
	if !ok {
		return false
	}
	tr, ok := d.tl.Track(seg.TrackID)
	if !ok || tr.Locked {
		return false
	}
	if _, known := modeStates[mode]; !known {
		return false
	}
	if d.Active() {
		d.End()
	}

	event := mode.String()
	if err := d.machine.Event(context.Background(), event); err != nil {
		log.Printf("[DragSession] Warning: cannot start %s drag: %v", event, err)
		return false
	}

	d.mode = mode
	d.segmentID = segmentID
	d.pointerStart = pointer
	d.originalStart = seg.StartFrame
	d.originalDuration = seg.Duration()
	d.originalTrackID = seg.TrackID
	d.guide = SnapResult{}
	return true
}

// Drag 处理一次指针移动，返回是否提交了新的区间
func (d *DragSession) Drag(pointer Point) bool {
	if !d.Active() {
		return false
	}
	seg, ok := d.tl.Segment(d.segmentID)
	if !ok {
		// 拖拽过程中片段被删除
		return false
	}

	delta := d.tl.scale.PixelsToFrame(pointer.X - d.pointerStart.X)
	switch d.mode {
	case DragMove:
		return d.dragMove(seg, pointer, delta)
	case DragResizeStart:
		return d.dragResizeStart(seg, delta)
	case DragResizeEnd:
		return d.dragResizeEnd(seg, delta)
	}
	return false
}

func (d *DragSession) dragMove(seg Segment, pointer Point, delta int) bool {
	dur := d.originalDuration
	proposed := d.originalStart + delta

	// 起点和终点分别吸附，取距离更近的一个
	startSnap := d.tl.Snap(proposed, seg.ID)
	endSnap := d.tl.Snap(proposed+dur, seg.ID)
	guide := SnapResult{}
	switch {
	case startSnap.Snapped && (!endSnap.Snapped || startSnap.Distance <= endSnap.Distance):
		proposed = startSnap.Frame
		guide = startSnap
	case endSnap.Snapped:
		proposed = endSnap.Frame - dur
		guide = endSnap
	}
	proposed = clampInt(proposed, 0, max(0, d.tl.MaxFrame()-dur))

	trackID := d.targetTrack(seg, pointer)
	pointerFrame := d.tl.scale.PixelsToFrame(pointer.X)
	start, ok := d.tl.ResolvePlacement(trackID, proposed, dur, pointerFrame, seg.ID)
	if !ok {
		return false
	}
	if start != proposed {
		guide = SnapResult{}
	}
	d.guide = guide
	return d.tl.MoveSegment(seg.ID, trackID, start, start+dur)
}

// targetTrack 根据垂直位移计算目标轨道；目标轨道锁定时留在当前轨道
func (d *DragSession) targetTrack(seg Segment, pointer Point) string {
	h := d.tl.opts.TrackHeight
	if h <= 0 {
		return seg.TrackID
	}
	origin := d.tl.TrackIndex(d.originalTrackID)
	if origin < 0 {
		return seg.TrackID
	}
	shift := int(math.Round((pointer.Y - d.pointerStart.Y) / h))
	idx := clampInt(origin+shift, 0, d.tl.TrackCount()-1)
	target := d.tl.tracks[idx]
	if target.Locked {
		return seg.TrackID
	}
	return target.ID
}

func (d *DragSession) dragResizeStart(seg Segment, delta int) bool {
	end := d.originalStart + d.originalDuration
	proposed := d.originalStart + delta

	snap := d.tl.Snap(proposed, seg.ID)
	if snap.Snapped {
		proposed = snap.Frame
	}

	lo := 0
	if prev, ok := d.tl.previousSegment(seg.TrackID, d.originalStart, seg.ID); ok {
		lo = prev.EndFrame
	}
	newStart := clampInt(proposed, lo, end-1)

	d.guide = SnapResult{}
	if snap.Snapped && newStart == snap.Frame {
		d.guide = snap
	}
	return d.tl.UpdateSegment(seg.ID, newStart, end)
}

func (d *DragSession) dragResizeEnd(seg Segment, delta int) bool {
	start := d.originalStart
	originalEnd := d.originalStart + d.originalDuration
	proposed := originalEnd + delta

	snap := d.tl.Snap(proposed, seg.ID)
	if snap.Snapped {
		proposed = snap.Frame
	}

	hi := max(d.tl.MaxFrame(), originalEnd)
	if next, ok := d.tl.nextSegment(seg.TrackID, originalEnd, seg.ID); ok {
		hi = min(hi, next.StartFrame)
	}
	newEnd := clampInt(proposed, start+1, hi)

	d.guide = SnapResult{}
	if snap.Snapped && newEnd == snap.Frame {
		d.guide = snap
	}
	return d.tl.UpdateSegment(seg.ID, start, newEnd)
}

// End 结束拖拽，清除吸附参考线，返回片段的最终状态
func (d *DragSession) End() (Segment, bool) {
	if !d.Active() {
		return Segment{}, false
	}
	seg, ok := d.tl.Segment(d.segmentID)
	if err := d.machine.Event(context.Background(), eventDrop); err != nil {
		log.Printf("[DragSession] Warning: drop failed: %v", err)
	}
	d.segmentID = ""
	d.guide = SnapResult{}
	return seg, ok
}

// Cancel 放弃本次拖拽，片段恢复到拖拽前的位置
func (d *DragSession) Cancel() {
	if !d.Active() {
		return
	}
	if _, ok := d.tl.Segment(d.segmentID); ok {
		d.tl.MoveSegment(d.segmentID, d.originalTrackID, d.originalStart, d.originalStart+d.originalDuration)
	}
	d.End()
}

// previousSegment 轨道上结束于 frame 之前（含）的最后一个片段
func (t *Timeline) previousSegment(trackID string, frame int, excludeID string) (Segment, bool) {
	var prev Segment
	found := false
	for _, seg := range t.TrackSegments(trackID) {
		if seg.ID == excludeID || seg.EndFrame > frame {
			continue
		}
		if !found || seg.EndFrame > prev.EndFrame {
			prev, found = seg, true
		}
	}
	return prev, found
}

// nextSegment 轨道上起始于 frame 之后（含）的第一个片段
func (t *Timeline) nextSegment(trackID string, frame int, excludeID string) (Segment, bool) {
	for _, seg := range t.TrackSegments(trackID) {
		if seg.ID != excludeID && seg.StartFrame >= frame {
			return seg, true
		}
	}
	return Segment{}, false
}
