package systems

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gonewx/battleskill/pkg/steps"
)

// Animation 由 AnimationLoop 逐帧推进的动画
type Animation interface {
	// Update 推进 dt 秒，返回 true 表示已完成（进度 ≥ 1）
	Update(dt float64) bool
	// Finish 立即跳到终值
	Finish()
}

type runningAnimation struct {
	key  string
	anim Animation
	done chan struct{}
}

// AnimationLoop 共享的动画循环
//
// 所有动画在同一次 Update 中推进，彼此不阻塞。每个动画对应一个完成句柄，
// 动画结束或被 Stop 时关闭。同一个 key 上启动新动画会先把旧动画跳到终值。
//
// AnimationLoop 同时实现 steps.Clock：计时器和动画走同一条时间线，
// 因此提示点的延迟与画面帧对齐。
type AnimationLoop struct {
	mu      sync.Mutex
	running []*runningAnimation
	elapsed time.Duration
}

// NewAnimationLoop 创建动画循环
func NewAnimationLoop() *AnimationLoop {
	return &AnimationLoop{}
}

// Start 启动动画
//
// 参数：
//   - key: 动画槽位，例如 "unit.hero.move"；为空时自动生成
//   - anim: 动画
//
// 返回：
//   - steps.Handle: 完成句柄
func (l *AnimationLoop) Start(key string, anim Animation) steps.Handle {
	if anim == nil {
		return steps.Done()
	}
	if key == "" {
		key = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, ra := range l.running {
		if ra.key == key {
			ra.anim.Finish()
			close(ra.done)
			l.running = append(l.running[:i], l.running[i+1:]...)
			break
		}
	}

	ra := &runningAnimation{key: key, anim: anim, done: make(chan struct{})}
	l.running = append(l.running, ra)
	return ra.done
}

// After 返回在循环时间经过 d 后关闭的句柄
func (l *AnimationLoop) After(d time.Duration) steps.Handle {
	if d <= 0 {
		return steps.Done()
	}
	return l.Start("", &TimerAnimation{Remaining: d.Seconds()})
}

// Update 推进所有动画
//
// 参数：
//   - dt: 时间增量（秒）
func (l *AnimationLoop) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.elapsed += time.Duration(dt * float64(time.Second))

	kept := l.running[:0]
	for _, ra := range l.running {
		if ra.anim.Update(dt) {
			ra.anim.Finish()
			close(ra.done)
			continue
		}
		kept = append(kept, ra)
	}
	for i := len(kept); i < len(l.running); i++ {
		l.running[i] = nil
	}
	l.running = kept
}

// Stop 停止指定槽位的动画，跳到终值并关闭句柄
func (l *AnimationLoop) Stop(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, ra := range l.running {
		if ra.key == key {
			ra.anim.Finish()
			close(ra.done)
			l.running = append(l.running[:i], l.running[i+1:]...)
			return true
		}
	}
	return false
}

// StopAll 停止所有动画（包括计时器），循环回到空闲
func (l *AnimationLoop) StopAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.running) > 0 {
		log.Printf("[AnimationLoop] Stopping %d running animations", len(l.running))
	}
	for _, ra := range l.running {
		ra.anim.Finish()
		close(ra.done)
	}
	l.running = nil
}

// Active 正在运行的动画数量
func (l *AnimationLoop) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.running)
}

// Idle 没有任何动画在运行
func (l *AnimationLoop) Idle() bool {
	return l.Active() == 0
}

// IsRunning 指定槽位是否有动画
func (l *AnimationLoop) IsRunning(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ra := range l.running {
		if ra.key == key {
			return true
		}
	}
	return false
}

// Elapsed 循环累计推进的时间
func (l *AnimationLoop) Elapsed() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.elapsed
}

// Run 以固定频率推进 update，直到 ctx 结束
//
// 用于没有 ebiten 游戏循环的场合（命令行播放、测试）。update 通常是
// 场景的 Update，它会在持有场景锁时调用 AnimationLoop.Update。
//
// 参数：
//   - ctx: 结束信号
//   - tps: 每秒更新次数，≤ 0 时使用 60
//   - update: 每次调用传入固定的 dt（秒）
func Run(ctx context.Context, tps int, update func(dt float64)) error {
	if tps <= 0 {
		tps = 60
	}
	interval := time.Second / time.Duration(tps)
	dt := interval.Seconds()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			update(dt)
		}
	}
}
