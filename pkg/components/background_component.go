package components

import "image/color"

// BackgroundComponent 战斗背景
//
// 切换时旧背景在 Fade 从 0 到 1 的过程中被新背景覆盖
type BackgroundComponent struct {
	Color     color.RGBA
	Image     string
	PrevColor color.RGBA
	PrevImage string
	Fade      float64
}
