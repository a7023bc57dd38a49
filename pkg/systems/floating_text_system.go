package systems

import (
	"image/color"
	"math"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/ecs"
	"github.com/gonewx/battleskill/pkg/steps"
)

// 飘字默认参数
const (
	FloatingTextDuration = 0.8   // 秒
	FloatingTextSpeed    = -60.0 // 像素/秒，向上
)

// FloatingTextSystem 管理伤害数字和提示文字
type FloatingTextSystem struct {
	entityManager *ecs.EntityManager
}

// NewFloatingTextSystem 创建飘字系统
func NewFloatingTextSystem(em *ecs.EntityManager) *FloatingTextSystem {
	return &FloatingTextSystem{entityManager: em}
}

// Spawn 在 (x, y) 生成飘字
//
// 返回：
//   - steps.Handle: 文字消失时关闭
func (s *FloatingTextSystem) Spawn(x, y float64, text string, col color.RGBA) steps.Handle {
	completion := components.NewCompletion()
	entity := s.entityManager.CreateEntity()
	ecs.AddComponent(s.entityManager, entity, &components.FloatingTextComponent{
		Text:      text,
		Color:     col,
		VelocityY: FloatingTextSpeed,
		Alpha:     1,
	})
	ecs.AddComponent(s.entityManager, entity, &components.PositionComponent{X: x, Y: y})
	ecs.AddComponent(s.entityManager, entity, &components.LifetimeComponent{
		MaxLifetime: FloatingTextDuration,
		Completion:  completion,
	})
	return completion.Done()
}

// Update 上移并淡出，需要在 LifetimeSystem 之前调用
func (s *FloatingTextSystem) Update(dt float64) {
	entities := ecs.GetEntitiesWith3[
		*components.FloatingTextComponent,
		*components.PositionComponent,
		*components.LifetimeComponent,
	](s.entityManager)

	for _, id := range entities {
		text, _ := ecs.GetComponent[*components.FloatingTextComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)

		pos.Y += text.VelocityY * dt
		if lifetime.MaxLifetime > 0 {
			text.Alpha = 1 - math.Min(1, (lifetime.CurrentLifetime+dt)/lifetime.MaxLifetime)
		}
	}
}
