package systems

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/ecs"
)

// SoundBackend 实际的音频输出
type SoundBackend interface {
	// Play 开始播放，返回停止函数
	Play(def config.SoundDef, volume float64, loop bool) (stop func(), err error)
}

// SoundSystem 管理音效实例
//
// 非循环音效在资源定义的时长后结束；循环音效由 Stop 或安全超时结束。
// 没有音频后端时仍然记录实例，只是不发声。
type SoundSystem struct {
	entityManager *ecs.EntityManager
	library       *config.ResourceLibrary
	backend       SoundBackend
	loopSafety    time.Duration
	instances     map[string]ecs.EntityID
}

// NewSoundSystem 创建音效系统
func NewSoundSystem(em *ecs.EntityManager, lib *config.ResourceLibrary, backend SoundBackend, loopSafety time.Duration) *SoundSystem {
	if loopSafety <= 0 {
		loopSafety = 10 * time.Second
	}
	return &SoundSystem{
		entityManager: em,
		library:       lib,
		backend:       backend,
		loopSafety:    loopSafety,
		instances:     make(map[string]ecs.EntityID),
	}
}

// Play 播放音效
//
// 参数：
//   - soundID: 资源库中的音效ID
//   - volume: 音量 [0, 1]，与资源定义的音量相乘
//   - loop: 是否循环
//
// 返回：
//   - string: 实例ID，音效不存在时为空
func (s *SoundSystem) Play(soundID string, volume float64, loop bool) string {
	def, ok := s.library.Sound(soundID)
	if !ok {
		log.Printf("[SoundSystem] Warning: sound %q not in resource library, skipped", soundID)
		return ""
	}
	loop = loop || def.Loop
	volume *= def.Volume

	var stop func()
	if s.backend != nil {
		var err error
		stop, err = s.backend.Play(def, volume, loop)
		if err != nil {
			log.Printf("[SoundSystem] Warning: failed to play sound %s: %v", soundID, err)
		}
	}

	duration := def.Duration
	if loop {
		duration = s.loopSafety.Seconds()
	}

	id := uuid.NewString()
	entity := s.entityManager.CreateEntity()
	ecs.AddComponent(s.entityManager, entity, &components.SoundComponent{
		InstanceID: id,
		SoundID:    soundID,
		Volume:     volume,
		Loop:       loop,
		Stop:       stop,
	})
	ecs.AddComponent(s.entityManager, entity, &components.LifetimeComponent{MaxLifetime: duration})
	s.instances[id] = entity
	return id
}

// Stop 停止音效实例，未知ID为空操作
func (s *SoundSystem) Stop(instanceID string) bool {
	entity, ok := s.instances[instanceID]
	if !ok {
		return false
	}
	delete(s.instances, instanceID)
	s.halt(entity)
	Expire(s.entityManager, entity)
	return true
}

// StopAll 停止所有音效
func (s *SoundSystem) StopAll() {
	for id := range s.instances {
		s.Stop(id)
	}
}

// Count 正在播放的音效数量
func (s *SoundSystem) Count() int {
	return len(s.instances)
}

// Update 结束到期的音效，需要在 LifetimeSystem 之前调用
func (s *SoundSystem) Update(dt float64) {
	for id, entity := range s.instances {
		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, entity)
		if !ok || !s.entityManager.IsAlive(entity) {
			delete(s.instances, id)
			continue
		}
		if lifetime.CurrentLifetime+dt < lifetime.MaxLifetime {
			continue
		}
		if sound, ok := ecs.GetComponent[*components.SoundComponent](s.entityManager, entity); ok && sound.Loop {
			log.Printf("[SoundSystem] Warning: looping sound %s (%s) hit safety timeout, stopping", id, sound.SoundID)
		}
		s.halt(entity)
		delete(s.instances, id)
	}
}

func (s *SoundSystem) halt(entity ecs.EntityID) {
	if sound, ok := ecs.GetComponent[*components.SoundComponent](s.entityManager, entity); ok && sound.Stop != nil {
		sound.Stop()
		sound.Stop = nil
	}
}
