package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/gonewx/battleskill/pkg/steps"
)

// Compile 把可见轨道上的片段编译为按时间排序的提示点
//
// 有时长概念的步骤（duration/delay）一律以片段长度为准，时间轴上的缩放直接决定播放时长。
func (t *Timeline) Compile() []steps.Cue {
	cues := make([]steps.Cue, 0, len(t.segments))
	for _, tr := range t.tracks {
		if tr.Hidden {
			continue
		}
		for _, seg := range t.TrackSegments(tr.ID) {
			rec, ok := t.steps[seg.StepID]
			if !ok {
				continue
			}
			rec = rec.Clone()
			if key := rec.Type.DurationParam(); key != "" {
				if rec.Params == nil {
					rec.Params = make(map[string]any)
				}
				rec.Params[key] = t.scale.FrameToMillis(seg.Duration())
			}
			cues = append(cues, steps.Cue{
				At:      t.frameDuration(seg.StartFrame),
				Frame:   seg.StartFrame,
				TrackID: tr.ID,
				Step:    rec,
			})
		}
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Frame < cues[j].Frame })
	return cues
}

// Duration 时间轴内容的总时长（最后一个可见片段的结束时间）
func (t *Timeline) Duration() time.Duration {
	end := 0
	for _, seg := range t.segments {
		if tr, ok := t.trackIndex[seg.TrackID]; ok && !tr.Hidden && seg.EndFrame > end {
			end = seg.EndFrame
		}
	}
	return t.frameDuration(end)
}

func (t *Timeline) frameDuration(frame int) time.Duration {
	return time.Duration(math.Round(t.scale.FrameToTime(frame) * float64(time.Second)))
}
