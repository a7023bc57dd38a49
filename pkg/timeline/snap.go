package timeline

import "math"

// SnapSource 吸附点来源
type SnapSource int

const (
	SnapNone SnapSource = iota
	SnapPlayhead
	SnapSegmentEdge
	SnapGrid
)

func (s SnapSource) String() string {
	switch s {
	case SnapPlayhead:
		return "playhead"
	case SnapSegmentEdge:
		return "segment"
	case SnapGrid:
		return "grid"
	}
	return "none"
}

// SnapResult 吸附结果
type SnapResult struct {
	Frame    int
	Snapped  bool
	Source   SnapSource
	Distance float64 // 像素距离
}

// Snap 计算 frame 附近的吸附点
//
// 候选点：播放头、所有片段的起止帧（excludeID 指定的片段除外）、最近的网格帧。
// 在像素空间比较距离，阈值内最近的候选点胜出；距离相同时按上述顺序优先。
// 没有候选点落在阈值内时返回原始帧，Snapped 为 false。
func (t *Timeline) Snap(frame int, excludeID string) SnapResult {
	none := SnapResult{Frame: frame}
	if !t.snapEnabled || t.opts.SnapThreshold <= 0 {
		return none
	}

	px := t.scale.FrameToPixels(frame)
	best := none
	best.Distance = math.Inf(1)

	consider := func(candidate int, src SnapSource) {
		d := math.Abs(t.scale.FrameToPixels(candidate) - px)
		if d <= t.opts.SnapThreshold && d < best.Distance {
			best = SnapResult{Frame: candidate, Snapped: true, Source: src, Distance: d}
		}
	}

	consider(t.currentFrame, SnapPlayhead)

	for _, seg := range t.sortedSegments() {
		if seg.ID == excludeID {
			continue
		}
		consider(seg.StartFrame, SnapSegmentEdge)
		consider(seg.EndFrame, SnapSegmentEdge)
	}

	if g := t.opts.GridInterval; g > 0 {
		grid := int(math.Round(float64(frame)/float64(g))) * g
		consider(grid, SnapGrid)
	}

	if !best.Snapped {
		return none
	}
	return best
}

// sortedSegments 按起始帧排序的全部片段，保证吸附结果与遍历顺序无关
func (t *Timeline) sortedSegments() []Segment {
	out := make([]Segment, 0, len(t.segments))
	for _, seg := range t.segments {
		out = append(out, *seg)
	}
	sortSegments(out)
	return out
}
