package steps

import "time"

// Cue 时间轴编译结果中的一个提示点
type Cue struct {
	At      time.Duration `json:"at" yaml:"at"`           // 相对播放开始的时间
	Frame   int           `json:"frame" yaml:"frame"`     // 起始帧
	TrackID string        `json:"trackId" yaml:"trackId"` // 来源轨道
	Step    Record        `json:"step" yaml:"step"`
}
