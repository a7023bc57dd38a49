package components

import "image/color"

// FloatingTextComponent 向上飘动并淡出的文字（伤害数字、提示）
type FloatingTextComponent struct {
	Text      string
	Color     color.RGBA
	VelocityY float64 // 像素/秒，负数向上
	Alpha     float64
}
