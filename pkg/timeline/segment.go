package timeline

import (
	"log"
	"sort"

	"github.com/gonewx/battleskill/pkg/steps"
)

// Segment 放置在轨道上的步骤，占据 [StartFrame, EndFrame)
type Segment struct {
	ID         string `json:"id" yaml:"id"`
	StepID     string `json:"stepId" yaml:"stepId"`
	TrackID    string `json:"trackId" yaml:"trackId"`
	StartFrame int    `json:"startFrame" yaml:"startFrame"`
	EndFrame   int    `json:"endFrame" yaml:"endFrame"`
}

// Duration 片段长度（帧）
func (s Segment) Duration() int { return s.EndFrame - s.StartFrame }

// Overlaps 两个半开区间是否重叠
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || bEnd <= aStart)
}

// CheckOverlap 检查区间是否与轨道上的其他片段重叠
//
// 参数：
//   - trackID: 轨道
//   - start, end: 区间 [start, end)
//   - excludeID: 忽略的片段（通常是正在修改的片段自身），可以为空
func (t *Timeline) CheckOverlap(trackID string, start, end int, excludeID string) bool {
	for _, seg := range t.segments {
		if seg.TrackID != trackID || seg.ID == excludeID {
			continue
		}
		if Overlaps(start, end, seg.StartFrame, seg.EndFrame) {
			return true
		}
	}
	return false
}

// canPlace 轨道存在且未锁定，区间合法且不与其他片段重叠
func (t *Timeline) canPlace(trackID string, start, end int, excludeID string) bool {
	tr, ok := t.trackIndex[trackID]
	if !ok || tr.Locked {
		return false
	}
	if start < 0 || end <= start {
		return false
	}
	return !t.CheckOverlap(trackID, start, end, excludeID)
}

// AddSegment 在轨道上放置步骤
//
// 参数：
//   - step: 步骤；ID 为空时自动生成，未登记的步骤会被登记
//   - trackID: 目标轨道
//   - start: 起始帧（≥ 0）
//   - duration: 长度（帧，≥ 1）
//
// 返回：
//   - Segment: 新片段
//   - bool: 轨道不存在、已锁定、区间非法或重叠时为 false，且不产生任何副作用
func (t *Timeline) AddSegment(step steps.Record, trackID string, start, duration int) (Segment, bool) {
	end := start + duration
	if !t.canPlace(trackID, start, end, "") {
		return Segment{}, false
	}

	return t.addSegment(t.opts.NewID(), step, trackID, start, end), true
}

func (t *Timeline) addSegment(id string, step steps.Record, trackID string, start, end int) Segment {
	if step.ID == "" {
		step.ID = t.opts.NewID()
	}
	if _, known := t.steps[step.ID]; !known {
		t.steps[step.ID] = step.Clone()
	}

	seg := &Segment{
		ID:         id,
		StepID:     step.ID,
		TrackID:    trackID,
		StartFrame: start,
		EndFrame:   end,
	}
	t.segments[seg.ID] = seg
	t.emit(Change{Kind: SegmentAdded, TrackID: trackID, SegmentID: seg.ID, StepID: step.ID})
	return *seg
}

// UpdateSegment 修改片段区间
//
// newEnd ≤ newStart、轨道锁定或不存在、与其他片段重叠时返回 false 且不修改状态。
func (t *Timeline) UpdateSegment(id string, newStart, newEnd int) bool {
	seg, ok := t.segments[id]
	if !ok {
		return false
	}
	return t.MoveSegment(id, seg.TrackID, newStart, newEnd)
}

// MoveSegment 把片段移动到指定轨道和区间
//
// 规则与 UpdateSegment 相同；跨轨道移动时源轨道和目标轨道都不能被锁定。
func (t *Timeline) MoveSegment(id, trackID string, newStart, newEnd int) bool {
	seg, ok := t.segments[id]
	if !ok {
		return false
	}
	if src, ok := t.trackIndex[seg.TrackID]; !ok || src.Locked {
		return false
	}
	if !t.canPlace(trackID, newStart, newEnd, id) {
		return false
	}
	if seg.TrackID == trackID && seg.StartFrame == newStart && seg.EndFrame == newEnd {
		return true
	}

	seg.TrackID = trackID
	seg.StartFrame = newStart
	seg.EndFrame = newEnd
	t.emit(Change{Kind: SegmentUpdated, TrackID: trackID, SegmentID: id, StepID: seg.StepID})
	return true
}

// RemoveSegment 删除片段；被选中的片段删除后选中清空
//
// 不再被任何片段引用的步骤一并删除。
func (t *Timeline) RemoveSegment(id string) bool {
	if _, ok := t.segments[id]; !ok {
		return false
	}
	t.removeSegment(id)
	return true
}

func (t *Timeline) removeSegment(id string) {
	seg := t.segments[id]
	delete(t.segments, id)

	if t.selected == id {
		t.selected = ""
		t.emit(Change{Kind: SelectionChanged})
	}

	referenced := false
	for _, other := range t.segments {
		if other.StepID == seg.StepID {
			referenced = true
			break
		}
	}
	if !referenced {
		delete(t.steps, seg.StepID)
	}
	t.emit(Change{Kind: SegmentRemoved, TrackID: seg.TrackID, SegmentID: id, StepID: seg.StepID})
}

// Segment 按 ID 查找片段
func (t *Timeline) Segment(id string) (Segment, bool) {
	seg, ok := t.segments[id]
	if !ok {
		return Segment{}, false
	}
	return *seg, true
}

// TrackSegments 轨道上的所有片段，按起始帧排序
func (t *Timeline) TrackSegments(trackID string) []Segment {
	out := make([]Segment, 0)
	for _, seg := range t.segments {
		if seg.TrackID == trackID {
			out = append(out, *seg)
		}
	}
	sortSegments(out)
	return out
}

// Segments 所有片段，按轨道显示顺序、再按起始帧排序
func (t *Timeline) Segments() []Segment {
	out := make([]Segment, 0, len(t.segments))
	for _, tr := range t.tracks {
		out = append(out, t.TrackSegments(tr.ID)...)
	}
	return out
}

// SegmentCount 片段数量
func (t *Timeline) SegmentCount() int { return len(t.segments) }

func sortSegments(segs []Segment) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].StartFrame != segs[j].StartFrame {
			return segs[i].StartFrame < segs[j].StartFrame
		}
		return segs[i].ID < segs[j].ID
	})
}

// Step 按 ID 查找步骤
func (t *Timeline) Step(id string) (steps.Record, bool) {
	rec, ok := t.steps[id]
	if !ok {
		return steps.Record{}, false
	}
	return rec.Clone(), true
}

// SegmentStep 片段引用的步骤
func (t *Timeline) SegmentStep(segmentID string) (steps.Record, bool) {
	seg, ok := t.segments[segmentID]
	if !ok {
		return steps.Record{}, false
	}
	return t.Step(seg.StepID)
}

// UpdateStepParams 合并更新步骤参数（属性面板编辑）
//
// value 为 nil 的键会被删除。步骤所在轨道被锁定时拒绝修改。
func (t *Timeline) UpdateStepParams(stepID string, params map[string]any) bool {
	rec, ok := t.steps[stepID]
	if !ok {
		return false
	}
	for _, seg := range t.segments {
		if seg.StepID != stepID {
			continue
		}
		if tr, ok := t.trackIndex[seg.TrackID]; ok && tr.Locked {
			log.Printf("[Timeline] Warning: step %s is on locked track %s, params not updated", stepID, tr.ID)
			return false
		}
	}

	rec = rec.Clone()
	if rec.Params == nil {
		rec.Params = make(map[string]any)
	}
	for k, v := range params {
		if v == nil {
			delete(rec.Params, k)
			continue
		}
		rec.Params[k] = v
	}
	t.steps[stepID] = rec
	t.emit(Change{Kind: StepUpdated, StepID: stepID})
	return true
}
