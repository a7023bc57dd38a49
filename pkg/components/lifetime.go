package components

import "sync"

// Completion 完成信号，可以安全地多次 Resolve
type Completion struct {
	ch   chan struct{}
	once sync.Once
}

// NewCompletion 创建未完成的信号
func NewCompletion() *Completion {
	return &Completion{ch: make(chan struct{})}
}

// Done 返回在 Resolve 后关闭的通道
func (c *Completion) Done() <-chan struct{} { return c.ch }

// Resolve 标记完成
func (c *Completion) Resolve() {
	c.once.Do(func() { close(c.ch) })
}

// IsResolved 是否已完成
func (c *Completion) IsResolved() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// LifetimeComponent 管理实体的生命周期
// 用于自动清理特效、飘字、音效等有时限的实体，过期时通知等待者
type LifetimeComponent struct {
	MaxLifetime     float64     // 最大生命周期(秒)
	CurrentLifetime float64     // 当前已存在时间(秒)
	IsExpired       bool        // 是否已过期
	Completion      *Completion // 过期或被移除时完成，可为 nil
}

// Progress 生命周期进度 [0, 1]
func (l *LifetimeComponent) Progress() float64 {
	if l.MaxLifetime <= 0 {
		return 1
	}
	p := l.CurrentLifetime / l.MaxLifetime
	if p > 1 {
		return 1
	}
	return p
}
