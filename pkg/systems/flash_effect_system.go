package systems

import (
	"image/color"
	"time"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/ecs"
	"github.com/gonewx/battleskill/pkg/steps"
)

// FlashEffectSystem 全屏闪光系统
// 同一时刻只有一个闪光，新的闪光会结束旧的
type FlashEffectSystem struct {
	entityManager *ecs.EntityManager
	flashEntity   ecs.EntityID
}

// NewFlashEffectSystem 创建闪光系统
func NewFlashEffectSystem(em *ecs.EntityManager) *FlashEffectSystem {
	return &FlashEffectSystem{
		entityManager: em,
		flashEntity:   em.CreateEntity(),
	}
}

// Flash 触发闪光
func (s *FlashEffectSystem) Flash(col color.RGBA, duration time.Duration) steps.Handle {
	s.Stop()
	if duration <= 0 {
		return steps.Done()
	}
	completion := components.NewCompletion()
	ecs.AddComponent(s.entityManager, s.flashEntity, &components.FlashEffectComponent{
		Color:      col,
		Duration:   duration.Seconds(),
		Intensity:  1,
		Completion: completion,
	})
	return completion.Done()
}

// Current 当前闪光，没有时为 nil
func (s *FlashEffectSystem) Current() *components.FlashEffectComponent {
	flash, _ := ecs.GetComponent[*components.FlashEffectComponent](s.entityManager, s.flashEntity)
	return flash
}

// Stop 立即结束闪光
func (s *FlashEffectSystem) Stop() {
	if flash := s.Current(); flash != nil {
		flash.Completion.Resolve()
		ecs.RemoveComponent[*components.FlashEffectComponent](s.entityManager, s.flashEntity)
	}
}

// Update 更新闪光强度
// 参数：
//   - dt: 时间增量（秒）
func (s *FlashEffectSystem) Update(dt float64) {
	flash := s.Current()
	if flash == nil {
		return
	}

	flash.Elapsed += dt
	if flash.Elapsed >= flash.Duration {
		s.Stop()
		return
	}
	flash.Intensity = 1 - flash.Elapsed/flash.Duration
}
