package components

// CameraComponent 镜头状态
//
// OffsetX/OffsetY/Zoom 由镜头动画修改；ShakeX/ShakeY 是叠加在偏移之上的抖动量，
// 抖动结束后归零。渲染时使用 ViewOffset 得到最终偏移。
type CameraComponent struct {
	// OffsetX 镜头平移X（世界坐标）
	OffsetX float64

	// OffsetY 镜头平移Y（世界坐标）
	OffsetY float64

	// Zoom 缩放倍率，1.0 为原始大小
	Zoom float64

	// ShakeX 当前抖动偏移X
	ShakeX float64

	// ShakeY 当前抖动偏移Y
	ShakeY float64
}

// ViewOffset 包含抖动的最终偏移
func (c *CameraComponent) ViewOffset() (float64, float64) {
	return c.OffsetX + c.ShakeX, c.OffsetY + c.ShakeY
}
