// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Pointer 当前帧的指针状态，统一鼠标左键与第一个触点
type Pointer struct {
	X, Y         int
	Pressed      bool
	JustPressed  bool
	JustReleased bool
	Touch        bool
}

// 触摸释放的那一帧已经取不到触点位置，使用上一帧记录的位置
var lastTouchX, lastTouchY int

// ReadPointer 读取指针状态，触摸优先于鼠标
//
// 每帧只应调用一次。
func ReadPointer() Pointer {
	if released := inpututil.AppendJustReleasedTouchIDs(nil); len(released) > 0 {
		return Pointer{X: lastTouchX, Y: lastTouchY, JustReleased: true, Touch: true}
	}
	if touches := ebiten.AppendTouchIDs(nil); len(touches) > 0 {
		id := touches[0]
		x, y := ebiten.TouchPosition(id)
		lastTouchX, lastTouchY = x, y
		return Pointer{
			X: x, Y: y,
			Pressed:     true,
			JustPressed: inpututil.TouchPressDuration(id) == 1,
			Touch:       true,
		}
	}

	x, y := ebiten.CursorPosition()
	return Pointer{
		X: x, Y: y,
		Pressed:      ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		JustPressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		JustReleased: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
}
