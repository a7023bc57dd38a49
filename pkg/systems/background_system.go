package systems

import (
	"image/color"
	"time"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/ecs"
	"github.com/gonewx/battleskill/pkg/steps"
)

const backgroundFadeKey = "background.fade"

// BackgroundSystem 管理背景切换，切换过程是一次淡入
type BackgroundSystem struct {
	entityManager *ecs.EntityManager
	loop          *AnimationLoop
	entity        ecs.EntityID
}

// NewBackgroundSystem 创建背景系统
func NewBackgroundSystem(em *ecs.EntityManager, loop *AnimationLoop, initial color.RGBA) *BackgroundSystem {
	s := &BackgroundSystem{entityManager: em, loop: loop, entity: em.CreateEntity()}
	ecs.AddComponent(em, s.entity, &components.BackgroundComponent{Color: initial, PrevColor: initial, Fade: 1})
	return s
}

// Background 返回背景组件
func (s *BackgroundSystem) Background() *components.BackgroundComponent {
	bg, _ := ecs.GetComponent[*components.BackgroundComponent](s.entityManager, s.entity)
	return bg
}

// SetColor 切换到纯色背景
func (s *BackgroundSystem) SetColor(col color.RGBA, duration time.Duration) steps.Handle {
	return s.transition(func(bg *components.BackgroundComponent) {
		bg.Color = col
		bg.Image = ""
	}, duration)
}

// SetImage 切换到图片背景
func (s *BackgroundSystem) SetImage(path string, duration time.Duration) steps.Handle {
	return s.transition(func(bg *components.BackgroundComponent) {
		bg.Image = path
	}, duration)
}

func (s *BackgroundSystem) transition(apply func(bg *components.BackgroundComponent), duration time.Duration) steps.Handle {
	bg := s.Background()
	if bg == nil {
		return steps.Done()
	}
	// 先结束正在进行的切换，旧背景取切换完成后的状态
	s.loop.Stop(backgroundFadeKey)
	bg.PrevColor, bg.PrevImage = bg.Color, bg.Image
	apply(bg)
	bg.Fade = 0
	return s.loop.Start(backgroundFadeKey, NewTween(duration, "linear").Add(&bg.Fade, 1))
}
