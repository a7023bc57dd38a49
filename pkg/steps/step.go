package steps

import (
	"fmt"
	"time"
)

// Step 解码后的步骤
//
// 每种步骤类型对应一个结构体；无法执行的记录解码为 *Invalid。
type Step interface {
	StepID() string
	Kind() Kind
}

// Move 移动单位
type Move struct {
	ID       string
	UnitID   string
	X, Y     Value
	Duration time.Duration
	Ease     string
}

// Damage 显示伤害/治疗数字
type Damage struct {
	ID       string
	TargetID string
	Value    float64
	Type     string // damage / heal / critical / miss
}

// Effect 播放特效
type Effect struct {
	ID       string
	EffectID string
	TargetID string // 为空时使用 X/Y 绝对位置
	X, Y     Value
	OffsetX  float64 // 跟随单位时相对单位位置的偏移
	OffsetY  float64
	Scale    float64
	Rotation float64
	Alpha    float64
	Loop     bool
	Duration time.Duration // 0 表示使用资源库中的默认时长
}

// Wait 等待
type Wait struct {
	ID    string
	Delay time.Duration
}

// Camera 镜头平移/缩放/复位
type Camera struct {
	ID       string
	Zoom     *float64
	OffsetX  *float64
	OffsetY  *float64
	Duration time.Duration
	Ease     string
	Reset    bool
}

// Shake 震屏
type Shake struct {
	ID        string
	Intensity float64
	Duration  time.Duration
}

// BackgroundMode 背景步骤的三种互斥模式
type BackgroundMode int

const (
	BackgroundColor BackgroundMode = iota
	BackgroundImage
	BackgroundFlash
)

// Background 背景变化
type Background struct {
	ID       string
	Mode     BackgroundMode
	Value    string // 颜色或图片路径
	Duration time.Duration
}

// Sound 播放音效
type Sound struct {
	ID      string
	SoundID string
	Volume  float64
	Loop    bool
}

// Invalid 缺少必填参数或类型未知的步骤，执行时告警并跳过
type Invalid struct {
	ID     string
	Type   Kind
	Reason string
}

func (s *Move) StepID() string { return s.ID }
func (s *Damage) StepID() string { return s.ID }
func (s *Effect) StepID() string { return s.ID }
func (s *Wait) StepID() string { return s.ID }
func (s *Camera) StepID() string { return s.ID }
func (s *Shake) StepID() string { return s.ID }
func (s *Background) StepID() string { return s.ID }
func (s *Sound) StepID() string { return s.ID }
func (s *Invalid) StepID() string { return s.ID }

func (*Move) Kind() Kind { return KindMove }
func (*Damage) Kind() Kind { return KindDamage }
func (*Effect) Kind() Kind { return KindEffect }
func (*Wait) Kind() Kind { return KindWait }
func (*Camera) Kind() Kind { return KindCamera }
func (*Shake) Kind() Kind { return KindShake }
func (*Background) Kind() Kind { return KindBackground }
func (*Sound) Kind() Kind { return KindSound }
func (s *Invalid) Kind() Kind { return s.Type }

// 默认时长（毫秒参数缺失时）
const (
	DefaultMoveDuration   = 300 * time.Millisecond
	DefaultCameraDuration = 500 * time.Millisecond
	DefaultShakeDuration  = 300 * time.Millisecond
	DefaultFlashDuration  = 200 * time.Millisecond
)

// Decode 把步骤记录转换为具体的步骤类型
//
// Decode 是纯函数：只检查参数形式，不访问场景。坐标参数保留为 Value，
// 在执行时再求值。缺少必填参数时返回 *Invalid。
func Decode(r Record) Step {
	p := r.Params
	if p == nil {
		p = map[string]any{}
	}

	switch r.Type {
	case KindMove:
		unitID := paramString(p, "unitId")
		if unitID == "" {
			return &Invalid{ID: r.ID, Type: r.Type, Reason: "missing unitId"}
		}
		return &Move{
			ID:       r.ID,
			UnitID:   unitID,
			X:        ParseValue(firstParam(p, "targetX", "x")),
			Y:        ParseValue(firstParam(p, "targetY", "y")),
			Duration: paramDuration(p, "duration", DefaultMoveDuration),
			Ease:     paramString(p, "ease"),
		}

	case KindDamage:
		target := paramString(p, "targetId", "unitId")
		if target == "" {
			return &Invalid{ID: r.ID, Type: r.Type, Reason: "missing targetId"}
		}
		kind := paramString(p, "type")
		if kind == "" {
			kind = "damage"
		}
		return &Damage{
			ID:       r.ID,
			TargetID: target,
			Value:    paramFloat(p, "value", 0),
			Type:     kind,
		}

	case KindEffect:
		effectID := paramString(p, "effectId")
		if effectID == "" {
			return &Invalid{ID: r.ID, Type: r.Type, Reason: "missing effectId"}
		}
		return &Effect{
			ID:       r.ID,
			EffectID: effectID,
			TargetID: paramString(p, "targetId", "unitId"),
			X:        ParseValue(p["x"]),
			Y:        ParseValue(p["y"]),
			OffsetX:  paramFloat(p, "offsetX", 0),
			OffsetY:  paramFloat(p, "offsetY", 0),
			Scale:    paramFloat(p, "scale", 1),
			Rotation: paramFloat(p, "rotation", 0),
			Alpha:    paramFloat(p, "alpha", 1),
			Loop:     paramBool(p, "loop"),
			Duration: paramDuration(p, "duration", 0),
		}

	case KindWait:
		return &Wait{ID: r.ID, Delay: paramDuration(p, "delay", 0)}

	case KindCamera:
		return &Camera{
			ID:       r.ID,
			Zoom:     optionalNumber(p, "zoom"),
			OffsetX:  optionalNumber(p, "offsetX"),
			OffsetY:  optionalNumber(p, "offsetY"),
			Duration: paramDuration(p, "duration", DefaultCameraDuration),
			Ease:     paramString(p, "ease"),
			Reset:    paramBool(p, "reset"),
		}

	case KindShake:
		return &Shake{
			ID:        r.ID,
			Intensity: paramFloat(p, "intensity", 5),
			Duration:  paramDuration(p, "duration", DefaultShakeDuration),
		}

	case KindBackground:
		return decodeBackground(r.ID, p)

	case KindSound:
		soundID := paramString(p, "soundId")
		if soundID == "" {
			return &Invalid{ID: r.ID, Type: r.Type, Reason: "missing soundId"}
		}
		return &Sound{
			ID:      r.ID,
			SoundID: soundID,
			Volume:  clamp01(paramFloat(p, "volume", 1)),
			Loop:    paramBool(p, "loop"),
		}
	}

	return &Invalid{ID: r.ID, Type: r.Type, Reason: fmt.Sprintf("unknown step type %q", r.Type)}
}

func decodeBackground(id string, p map[string]any) Step {
	type option struct {
		mode BackgroundMode
		key  string
	}
	var chosen []option
	for _, o := range []option{
		{BackgroundColor, "color"},
		{BackgroundImage, "image"},
		{BackgroundFlash, "flash"},
	} {
		if paramString(p, o.key) != "" {
			chosen = append(chosen, o)
		}
	}

	switch len(chosen) {
	case 0:
		return &Invalid{ID: id, Type: KindBackground, Reason: "one of color, image or flash is required"}
	case 1:
	default:
		return &Invalid{ID: id, Type: KindBackground, Reason: "color, image and flash are mutually exclusive"}
	}

	def := time.Duration(0)
	if chosen[0].mode == BackgroundFlash {
		def = DefaultFlashDuration
	}
	return &Background{
		ID:       id,
		Mode:     chosen[0].mode,
		Value:    paramString(p, chosen[0].key),
		Duration: paramDuration(p, "duration", def),
	}
}

func firstParam(p map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := p[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func optionalNumber(p map[string]any, key string) *float64 {
	if n, ok := paramNumber(p, key); ok {
		return &n
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
