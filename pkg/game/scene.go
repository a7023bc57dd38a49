package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 由宿主循环驱动的画面（战斗预览、时间轴编辑器）
type Scene interface {
	// Update 推进 deltaTime 秒并处理输入
	Update(deltaTime float64) error

	// Draw 绘制到 screen
	Draw(screen *ebiten.Image)
}

// Saveable 退出时需要保存状态的画面
//
// 窗口关闭时 SceneManager 对所有实现了该接口的画面调用 SaveOnExit
type Saveable interface {
	SaveOnExit() error
}
