package game

import "image/color"

// UnitState 单位状态快照
type UnitState struct {
	ID        string
	Name      string
	Side      string
	Summoned  bool
	HP, MaxHP int
	MP, MaxMP int
	Attack    int
	Defense   int
	Defending bool
	X, Y      float64
}

// Alive 是否存活
func (u UnitState) Alive() bool { return u.HP > 0 }

// EffectState 特效快照
type EffectState struct {
	InstanceID string
	EffectID   string
	X, Y       float64
	Scale      float64
	Rotation   float64
	Alpha      float64
	Frame      int
	Frames     int
	Progress   float64 // 非循环特效的播放进度 [0, 1]
	Color      color.RGBA
	Radius     float64
}

// TextState 飘字快照
type TextState struct {
	Text  string
	X, Y  float64
	Color color.RGBA
	Alpha float64
}

// SceneView 一帧画面所需的全部状态
//
// 由 BattleScene.View 在持锁时复制，渲染不需要再访问场景
type SceneView struct {
	Units   []UnitState
	Effects []EffectState
	Texts   []TextState

	CameraX, CameraY float64
	Zoom             float64

	Background      color.RGBA
	BackgroundImage string
	PrevBackground  color.RGBA
	PrevImage       string
	BackgroundFade  float64

	Flash          color.RGBA
	FlashIntensity float64

	Sounds int // 正在播放的音效数量
}
