package components

import "image/color"

// EffectComponent 正在播放的特效实例
type EffectComponent struct {
	InstanceID string
	EffectID   string

	// AttachedTo 跟随的单位ID，为空时特效位于 PositionComponent 的绝对坐标
	AttachedTo string
	OffsetX    float64
	OffsetY    float64

	Scale    float64
	Rotation float64 // 弧度
	Alpha    float64
	Loop     bool

	// 帧动画参数
	Frames int
	FPS    float64
	Frame  int

	// 程序化绘制参数（没有贴图时使用）
	Color  color.RGBA
	Radius float64
}
