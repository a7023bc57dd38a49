package timeline

import "math"

// fits 区间是否可以放在轨道上（不检查锁定），并且不超出 [0, MaxFrame]
func (t *Timeline) fits(trackID string, start, duration int, excludeID string) bool {
	if start < 0 || start+duration > t.MaxFrame() {
		return false
	}
	return !t.CheckOverlap(trackID, start, start+duration, excludeID)
}

// ResolvePlacement 为长度为 duration 的片段在轨道上找一个不重叠的位置
//
// 参数：
//   - trackID: 目标轨道
//   - start: 期望的起始帧
//   - duration: 片段长度
//   - pointerFrame: 指针所在帧，用于决定放在障碍片段之前还是之后
//   - excludeID: 正在拖动的片段自身
//
// 规则：
//  1. 期望位置不冲突时直接使用；
//  2. 冲突时找到阻挡的片段，指针在其中点之前则放在它前面（start - duration），
//     放不下再放到它后面；指针在中点之后则放到它后面（它的 end）；
//  3. 以上位置仍冲突时，选择距离期望位置最近的空隙。
//
// 返回：
//   - int: 起始帧
//   - bool: 轨道上没有足够空间时为 false
func (t *Timeline) ResolvePlacement(trackID string, start, duration int, pointerFrame int, excludeID string) (int, bool) {
	if duration < 1 {
		return 0, false
	}
	if t.fits(trackID, start, duration, excludeID) {
		return start, true
	}

	obstacle, found := t.obstacle(trackID, start, start+duration, pointerFrame, excludeID)
	if found {
		mid := float64(obstacle.StartFrame+obstacle.EndFrame) / 2
		before := obstacle.StartFrame - duration
		after := obstacle.EndFrame

		if float64(pointerFrame) < mid {
			if t.fits(trackID, before, duration, excludeID) {
				return before, true
			}
			if t.fits(trackID, after, duration, excludeID) {
				return after, true
			}
		} else if t.fits(trackID, after, duration, excludeID) {
			return after, true
		}
	}

	return t.nearestFreeGap(trackID, start, duration, excludeID)
}

// obstacle 找出与区间冲突的片段；有多个时优先选择包含指针的那个，否则取最靠前的
func (t *Timeline) obstacle(trackID string, start, end, pointerFrame int, excludeID string) (Segment, bool) {
	var first Segment
	found := false
	for _, seg := range t.TrackSegments(trackID) {
		if seg.ID == excludeID || !Overlaps(start, end, seg.StartFrame, seg.EndFrame) {
			continue
		}
		if pointerFrame >= seg.StartFrame && pointerFrame < seg.EndFrame {
			return seg, true
		}
		if !found {
			first = seg
			found = true
		}
	}
	return first, found
}

// nearestFreeGap 在轨道的空隙中选择离期望起始帧最近的位置
func (t *Timeline) nearestFreeGap(trackID string, start, duration int, excludeID string) (int, bool) {
	limit := t.MaxFrame()
	cursor := 0
	bestStart, bestDist := 0, math.MaxInt
	found := false

	tryGap := func(gapStart, gapEnd int) {
		if gapEnd-gapStart < duration {
			return
		}
		pos := clampInt(start, gapStart, gapEnd-duration)
		d := pos - start
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestStart, bestDist, found = pos, d, true
		}
	}

	for _, seg := range t.TrackSegments(trackID) {
		if seg.ID == excludeID {
			continue
		}
		if seg.StartFrame > cursor {
			tryGap(cursor, min(seg.StartFrame, limit))
		}
		if seg.EndFrame > cursor {
			cursor = seg.EndFrame
		}
	}
	if cursor < limit {
		tryGap(cursor, limit)
	}
	return bestStart, found
}
