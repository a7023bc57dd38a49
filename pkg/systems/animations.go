package systems

import (
	"math/rand"
	"time"

	"github.com/tanema/gween"

	"github.com/gonewx/battleskill/pkg/utils"
)

// TimerAnimation 纯计时，不修改任何值
type TimerAnimation struct {
	Remaining float64 // 剩余时间（秒）
}

func (a *TimerAnimation) Update(dt float64) bool {
	a.Remaining -= dt
	return a.Remaining <= 1e-9
}

func (a *TimerAnimation) Finish() { a.Remaining = 0 }

type tweenChannel struct {
	target *float64
	tween  *gween.Tween
	end    float64
}

// TweenAnimation 在同一时长和缓动下补间一个或多个数值
type TweenAnimation struct {
	duration float32
	easeName string
	channels []tweenChannel
}

// NewTween 创建补间动画，用 Add 添加要补间的字段
//
// 参数：
//   - duration: 时长；≤ 0 时第一次 Update 即到达终值
//   - easeName: 缓动名称，未知名称按线性处理
func NewTween(duration time.Duration, easeName string) *TweenAnimation {
	return &TweenAnimation{duration: float32(duration.Seconds()), easeName: easeName}
}

// Add 从 target 的当前值补间到 to
func (a *TweenAnimation) Add(target *float64, to float64) *TweenAnimation {
	if target == nil {
		return a
	}
	fn, _ := utils.EaseByName(a.easeName)
	a.channels = append(a.channels, tweenChannel{
		target: target,
		tween:  gween.New(float32(*target), float32(to), a.duration, fn),
		end:    to,
	})
	return a
}

func (a *TweenAnimation) Update(dt float64) bool {
	finished := true
	for _, ch := range a.channels {
		v, done := ch.tween.Update(float32(dt))
		if done {
			*ch.target = ch.end
			continue
		}
		*ch.target = float64(v)
		finished = false
	}
	return finished
}

func (a *TweenAnimation) Finish() {
	for _, ch := range a.channels {
		*ch.target = ch.end
	}
}

// ShakeAnimation 随机抖动，幅度随进度线性衰减，结束时归零
type ShakeAnimation struct {
	X, Y      *float64
	Intensity float64
	Duration  float64
	Elapsed   float64
	Rand      *rand.Rand
}

func (a *ShakeAnimation) Update(dt float64) bool {
	a.Elapsed += dt
	if a.Elapsed >= a.Duration {
		return true
	}
	amp := a.Intensity * (1 - a.Elapsed/a.Duration)
	*a.X = (a.Rand.Float64()*2 - 1) * amp
	*a.Y = (a.Rand.Float64()*2 - 1) * amp
	return false
}

func (a *ShakeAnimation) Finish() {
	*a.X = 0
	*a.Y = 0
}
