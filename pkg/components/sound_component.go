package components

// SoundComponent 正在播放的音效实例
type SoundComponent struct {
	InstanceID string
	SoundID    string
	Volume     float64
	Loop       bool
	Stop       func() // 由音频后端提供，停止播放
}
