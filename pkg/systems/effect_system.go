package systems

import (
	"image/color"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/ecs"
	"github.com/gonewx/battleskill/pkg/steps"
	"github.com/gonewx/battleskill/pkg/utils"
)

// UnitLocator 查询单位当前位置
type UnitLocator func(unitID string) (x, y float64, ok bool)

// EffectSystem 管理特效实例
//
// 非循环特效在时长结束后由 LifetimeSystem 清理；循环特效没有自然结束，
// 由 StopEffect 或安全超时结束，超时会打印警告。
type EffectSystem struct {
	entityManager *ecs.EntityManager
	library       *config.ResourceLibrary
	locate        UnitLocator
	loopSafety    time.Duration
	instances     map[string]ecs.EntityID
}

// NewEffectSystem 创建特效系统
//
// 参数：
//   - em: 实体管理器
//   - lib: 资源库，可为 nil（所有特效都使用占位表现）
//   - locate: 单位位置查询，用于跟随单位的特效
//   - loopSafety: 循环特效的安全超时
func NewEffectSystem(em *ecs.EntityManager, lib *config.ResourceLibrary, locate UnitLocator, loopSafety time.Duration) *EffectSystem {
	if loopSafety <= 0 {
		loopSafety = 10 * time.Second
	}
	return &EffectSystem{
		entityManager: em,
		library:       lib,
		locate:        locate,
		loopSafety:    loopSafety,
		instances:     make(map[string]ecs.EntityID),
	}
}

// Spawn 创建特效实例
//
// 参数：
//   - req: 特效参数；attachTo 非空时 req.X/req.Y 为相对单位的偏移
//   - attachTo: 跟随的单位ID
//
// 返回：
//   - string: 实例ID
//   - steps.Handle: 特效结束时关闭
func (s *EffectSystem) Spawn(req steps.EffectRequest, attachTo string) (string, steps.Handle) {
	def, ok := s.library.Effect(req.EffectID)
	if !ok {
		log.Printf("[EffectSystem] Warning: effect %q not in resource library, using placeholder", req.EffectID)
		def = config.EffectDef{Name: req.EffectID, Frames: 1, FPS: 30, Duration: 0.5, Scale: 1, Radius: 24}
	}

	duration := req.Duration.Seconds()
	if duration <= 0 {
		duration = def.Duration
	}
	loop := req.Loop || def.Loop
	if loop {
		duration = s.loopSafety.Seconds()
	}

	scale := def.Scale
	if req.Scale > 0 {
		scale *= req.Scale
	}
	col, ok := utils.ParseColor(def.Color)
	if !ok {
		col = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	id := uuid.NewString()
	entity := s.entityManager.CreateEntity()
	effect := &components.EffectComponent{
		InstanceID: id,
		EffectID:   req.EffectID,
		AttachedTo: attachTo,
		Scale:      scale,
		Rotation:   req.Rotation,
		Alpha:      req.Alpha,
		Loop:       loop,
		Frames:     def.Frames,
		FPS:        float64(def.FPS),
		Color:      col,
		Radius:     def.Radius,
	}
	pos := &components.PositionComponent{X: req.X, Y: req.Y}
	if attachTo != "" {
		effect.OffsetX, effect.OffsetY = req.X, req.Y
		s.follow(effect, pos)
	}
	completion := components.NewCompletion()

	ecs.AddComponent(s.entityManager, entity, effect)
	ecs.AddComponent(s.entityManager, entity, pos)
	ecs.AddComponent(s.entityManager, entity, &components.LifetimeComponent{
		MaxLifetime: duration,
		Completion:  completion,
	})
	s.instances[id] = entity
	return id, completion.Done()
}

// Stop 结束特效实例，未知ID为空操作
func (s *EffectSystem) Stop(instanceID string) bool {
	entity, ok := s.instances[instanceID]
	if !ok {
		return false
	}
	delete(s.instances, instanceID)
	Expire(s.entityManager, entity)
	return true
}

// StopAll 结束所有特效
func (s *EffectSystem) StopAll() {
	for id := range s.instances {
		s.Stop(id)
	}
}

// Count 存活的特效数量
func (s *EffectSystem) Count() int {
	return len(s.instances)
}

// Update 推进帧动画，更新跟随位置，处理循环特效的安全超时
//
// 需要在 LifetimeSystem 之前调用
func (s *EffectSystem) Update(dt float64) {
	for id, entity := range s.instances {
		if !s.entityManager.IsAlive(entity) {
			delete(s.instances, id)
			continue
		}
		effect, ok := ecs.GetComponent[*components.EffectComponent](s.entityManager, entity)
		if !ok {
			continue
		}
		lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, entity)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, entity)

		if effect.AttachedTo != "" && pos != nil {
			s.follow(effect, pos)
		}

		if lifetime != nil {
			elapsed := lifetime.CurrentLifetime + dt
			effect.Frame = frameAt(elapsed, effect.FPS, effect.Frames, effect.Loop)
			if effect.Loop && elapsed >= lifetime.MaxLifetime {
				log.Printf("[EffectSystem] Warning: looping effect %s (%s) hit safety timeout %.1fs, stopping",
					effect.InstanceID, effect.EffectID, lifetime.MaxLifetime)
				delete(s.instances, id)
			} else if elapsed >= lifetime.MaxLifetime {
				delete(s.instances, id)
			}
		}
	}
}

func (s *EffectSystem) follow(effect *components.EffectComponent, pos *components.PositionComponent) {
	if s.locate == nil {
		return
	}
	if x, y, ok := s.locate(effect.AttachedTo); ok {
		pos.X = x + effect.OffsetX
		pos.Y = y + effect.OffsetY
	}
}

// frameAt 计算经过 elapsed 秒时的帧序号
func frameAt(elapsed, fps float64, frames int, loop bool) int {
	if frames <= 1 || fps <= 0 {
		return 0
	}
	f := int(math.Floor(elapsed * fps))
	if loop {
		return f % frames
	}
	if f >= frames {
		return frames - 1
	}
	return f
}
