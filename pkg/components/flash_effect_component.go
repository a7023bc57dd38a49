package components

import "image/color"

// FlashEffectComponent 全屏闪光
//
// 闪光从 Intensity=1 开始线性衰减，持续 Duration 秒后移除
type FlashEffectComponent struct {
	// Color 闪光颜色
	Color color.RGBA

	// Duration 持续时间（秒）
	Duration float64

	// Elapsed 已经过的时间（秒）
	Elapsed float64

	// Intensity 当前强度（0.0 - 1.0）
	Intensity float64

	// Completion 闪光结束时完成
	Completion *Completion
}
