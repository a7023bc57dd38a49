package game

import (
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager 管理已注册的画面，同一时刻只有一个画面接收 Update 和 Draw
type SceneManager struct {
	scenes  map[string]Scene
	order   []string
	current string
}

// NewSceneManager 创建空的画面管理器
func NewSceneManager() *SceneManager {
	return &SceneManager{scenes: make(map[string]Scene)}
}

// Register 注册画面；第一个注册的画面成为当前画面
func (sm *SceneManager) Register(name string, scene Scene) {
	if _, exists := sm.scenes[name]; !exists {
		sm.order = append(sm.order, name)
	}
	sm.scenes[name] = scene
	if sm.current == "" {
		sm.current = name
	}
}

// SwitchTo 切换当前画面，未注册的名字为空操作
func (sm *SceneManager) SwitchTo(name string) bool {
	if _, ok := sm.scenes[name]; !ok {
		log.Printf("[SceneManager] Warning: unknown scene %q", name)
		return false
	}
	sm.current = name
	return true
}

// Next 按注册顺序切换到下一个画面
func (sm *SceneManager) Next() string {
	if len(sm.order) == 0 {
		return ""
	}
	for i, name := range sm.order {
		if name == sm.current {
			sm.current = sm.order[(i+1)%len(sm.order)]
			break
		}
	}
	return sm.current
}

// Current 当前画面名称
func (sm *SceneManager) Current() string {
	return sm.current
}

// Update 更新当前画面
func (sm *SceneManager) Update(deltaTime float64) error {
	if scene, ok := sm.scenes[sm.current]; ok {
		return scene.Update(deltaTime)
	}
	return nil
}

// Draw 绘制当前画面
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if scene, ok := sm.scenes[sm.current]; ok {
		scene.Draw(screen)
	}
}

// SaveOnExit 保存所有可保存的画面，返回合并后的错误
func (sm *SceneManager) SaveOnExit() error {
	var errs []error
	for _, name := range sm.order {
		if s, ok := sm.scenes[name].(Saveable); ok {
			if err := s.SaveOnExit(); err != nil {
				errs = append(errs, fmt.Errorf("failed to save scene %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
