package steps

import "time"

// Handle 完成句柄：动画结束（进度 ≥ 1）或被强制停止时关闭
type Handle <-chan struct{}

var closedHandle = func() Handle {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done 返回一个已完成的句柄
func Done() Handle { return closedHandle }

// UnitProvider 单位相关操作
type UnitProvider interface {
	MoveUnit(unitID string, x, y float64, duration time.Duration, ease string) Handle
	SetUnitPosition(unitID string, x, y float64)
	ResetUnitPosition(unitID string, duration time.Duration) Handle
	UnitPosition(unitID string) (x, y float64, ok bool)
}

// CameraProvider 镜头操作
type CameraProvider interface {
	ShakeCamera(intensity float64, duration time.Duration) Handle
	MoveCamera(offsetX, offsetY float64, duration time.Duration, ease string) Handle
	ZoomCamera(zoom float64, duration time.Duration, ease string) Handle
	ResetCamera(duration time.Duration) Handle
}

// EffectRequest 特效播放参数
type EffectRequest struct {
	EffectID string
	X, Y     float64 // PlayEffectOnUnit 时为相对单位的偏移
	Scale    float64
	Rotation float64
	Alpha    float64
	Loop     bool
	Duration time.Duration
}

// EffectProvider 特效操作
type EffectProvider interface {
	PlayEffect(req EffectRequest) (instanceID string, done Handle)
	PlayEffectOnUnit(unitID string, req EffectRequest) (instanceID string, done Handle)
	StopEffect(instanceID string)
}

// SoundProvider 音效操作
type SoundProvider interface {
	PlaySound(soundID string, volume float64, loop bool) (instanceID string)
	StopSound(instanceID string)
}

// Renderer 画面表现操作
type Renderer interface {
	ShowDamageNumber(unitID string, value float64, kind string) Handle
	ShowFloatingText(x, y float64, text, color string) Handle
	SetBackgroundColor(color string, duration time.Duration) Handle
	SetBackgroundImage(path string, duration time.Duration) Handle
	FlashScreen(color string, duration time.Duration) Handle
}

// Clock 提供与动画循环同步的计时
type Clock interface {
	After(d time.Duration) Handle
}

// Deps 执行器依赖，构造时注入；未提供的接口对应的步骤会告警并跳过
type Deps struct {
	Units    UnitProvider
	Camera   CameraProvider
	Effects  EffectProvider
	Sounds   SoundProvider
	Renderer Renderer
	Clock    Clock
}

// Bindings 单位别名，例如 self -> 施法者、target -> 目标
type Bindings map[string]string

// Resolve 解析别名，未绑定的 ID 原样返回
func (b Bindings) Resolve(id string) string {
	if unit, ok := b[id]; ok && unit != "" {
		return unit
	}
	return id
}
