package systems

import (
	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/ecs"
)

// LifetimeSystem 管理实体的生命周期
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
}

// NewLifetimeSystem 创建一个新的生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// Update 更新所有拥有生命周期组件的实体
func (s *LifetimeSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith1[*components.LifetimeComponent](s.entityManager)

	for _, id := range entities {
		if !s.entityManager.IsAlive(id) {
			continue
		}
		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
		if !ok {
			continue
		}

		lifetime.CurrentLifetime += deltaTime
		if lifetime.CurrentLifetime >= lifetime.MaxLifetime {
			lifetime.IsExpired = true
		}

		// 过期：通知等待者并标记实体待删除
		if lifetime.IsExpired {
			Expire(s.entityManager, id)
		}
	}
}

// Expire 立即结束实体的生命周期
//
// 完成信号在调用时即被触发，实体在下一次 RemoveMarkedEntities 时删除
func Expire(em *ecs.EntityManager, id ecs.EntityID) {
	if lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](em, id); ok {
		lifetime.IsExpired = true
		if lifetime.Completion != nil {
			lifetime.Completion.Resolve()
		}
	}
	em.DestroyEntity(id)
}
