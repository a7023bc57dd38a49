package timeline

import (
	"fmt"
	"log"
)

// Track 轨道
type Track struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Locked bool   `json:"locked" yaml:"locked"`
	Hidden bool   `json:"hidden" yaml:"hidden"`
}

// TrackPatch 轨道的部分更新，nil 字段保持不变
type TrackPatch struct {
	Name   *string
	Locked *bool
	Hidden *bool
}

// AddTrack 添加轨道
//
// 参数：
//   - name: 轨道名称，为空时自动命名为 "Track N"（N = 当前轨道数 + 1）
//
// 返回：
//   - Track: 新轨道
func (t *Timeline) AddTrack(name string) Track {
	if name == "" {
		name = fmt.Sprintf("Track %d", len(t.tracks)+1)
	}
	return t.insertTrack(Track{ID: t.opts.NewID(), Name: name})
}

func (t *Timeline) insertTrack(tr Track) Track {
	stored := tr
	t.tracks = append(t.tracks, &stored)
	t.trackIndex[stored.ID] = &stored
	t.emit(Change{Kind: TrackAdded, TrackID: stored.ID})
	return stored
}

// RemoveTrack 删除轨道及其上的所有片段
//
// 被删除的片段如果处于选中状态，选中会被清空。轨道不存在时返回 false。
func (t *Timeline) RemoveTrack(id string) bool {
	idx := t.trackPosition(id)
	if idx < 0 {
		return false
	}

	for _, seg := range t.TrackSegments(id) {
		t.removeSegment(seg.ID)
	}

	t.tracks = append(t.tracks[:idx], t.tracks[idx+1:]...)
	delete(t.trackIndex, id)
	t.emit(Change{Kind: TrackRemoved, TrackID: id})
	return true
}

// UpdateTrack 合并更新轨道字段，轨道不存在时为空操作
func (t *Timeline) UpdateTrack(id string, patch TrackPatch) bool {
	tr, ok := t.trackIndex[id]
	if !ok {
		return false
	}
	if patch.Name != nil {
		tr.Name = *patch.Name
	}
	if patch.Locked != nil {
		tr.Locked = *patch.Locked
	}
	if patch.Hidden != nil {
		tr.Hidden = *patch.Hidden
	}
	t.emit(Change{Kind: TrackUpdated, TrackID: id})
	return true
}

// SetTrackLocked 锁定/解锁轨道
func (t *Timeline) SetTrackLocked(id string, locked bool) bool {
	return t.UpdateTrack(id, TrackPatch{Locked: &locked})
}

// SetTrackHidden 隐藏/显示轨道
func (t *Timeline) SetTrackHidden(id string, hidden bool) bool {
	return t.UpdateTrack(id, TrackPatch{Hidden: &hidden})
}

// RenameTrack 重命名轨道
func (t *Timeline) RenameTrack(id, name string) bool {
	return t.UpdateTrack(id, TrackPatch{Name: &name})
}

// MoveTrack 调整轨道显示顺序，index 超出范围时移动到两端
func (t *Timeline) MoveTrack(id string, index int) bool {
	from := t.trackPosition(id)
	if from < 0 {
		log.Printf("[Timeline] Warning: cannot move unknown track %s", id)
		return false
	}
	index = clampInt(index, 0, len(t.tracks)-1)
	if index == from {
		return true
	}
	tr := t.tracks[from]
	t.tracks = append(t.tracks[:from], t.tracks[from+1:]...)
	t.tracks = append(t.tracks[:index], append([]*Track{tr}, t.tracks[index:]...)...)
	t.emit(Change{Kind: TrackMoved, TrackID: id})
	return true
}

// Track 按 ID 查找轨道
func (t *Timeline) Track(id string) (Track, bool) {
	tr, ok := t.trackIndex[id]
	if !ok {
		return Track{}, false
	}
	return *tr, true
}

// Tracks 按显示顺序返回所有轨道
func (t *Timeline) Tracks() []Track {
	out := make([]Track, len(t.tracks))
	for i, tr := range t.tracks {
		out[i] = *tr
	}
	return out
}

// TrackCount 轨道数量
func (t *Timeline) TrackCount() int { return len(t.tracks) }

// TrackIndex 轨道的显示位置，不存在时返回 -1
func (t *Timeline) TrackIndex(id string) int { return t.trackPosition(id) }

func (t *Timeline) trackPosition(id string) int {
	for i, tr := range t.tracks {
		if tr.ID == id {
			return i
		}
	}
	return -1
}
