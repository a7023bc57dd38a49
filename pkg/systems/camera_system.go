package systems

import (
	"math/rand"
	"time"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/ecs"
	"github.com/gonewx/battleskill/pkg/steps"
)

// 镜头动画槽位
const (
	cameraPanKey   = "camera.pan"
	cameraZoomKey  = "camera.zoom"
	cameraShakeKey = "camera.shake"
)

// 镜头缩放范围
const (
	CameraMinZoom = 0.25
	CameraMaxZoom = 4.0
)

// CameraSystem 管理镜头平移、缩放和抖动。
// 所有动画交给 AnimationLoop 推进，CameraSystem 只负责创建动画和提供镜头状态。
type CameraSystem struct {
	entityManager *ecs.EntityManager
	loop          *AnimationLoop
	rng           *rand.Rand
	cameraEntity  ecs.EntityID // 镜头实体ID
}

// NewCameraSystem 创建镜头控制系统。
//
// 参数：
//   - em: 实体管理器
//   - loop: 动画循环
//   - rng: 抖动使用的随机源，为 nil 时使用固定种子
func NewCameraSystem(em *ecs.EntityManager, loop *AnimationLoop, rng *rand.Rand) *CameraSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	cs := &CameraSystem{
		entityManager: em,
		loop:          loop,
		rng:           rng,
	}

	// 创建镜头实体
	cs.cameraEntity = em.CreateEntity()
	ecs.AddComponent(em, cs.cameraEntity, &components.CameraComponent{Zoom: 1})

	return cs
}

// Camera 返回镜头组件
func (cs *CameraSystem) Camera() *components.CameraComponent {
	cam, _ := ecs.GetComponent[*components.CameraComponent](cs.entityManager, cs.cameraEntity)
	return cam
}

// MoveTo 平移镜头到指定偏移。
// 参数:
//   - offsetX, offsetY: 目标偏移（世界坐标）
//   - duration: 时长
//   - ease: 缓动名称
func (cs *CameraSystem) MoveTo(offsetX, offsetY float64, duration time.Duration, ease string) steps.Handle {
	cam := cs.Camera()
	if cam == nil {
		return steps.Done()
	}
	tw := NewTween(duration, ease).Add(&cam.OffsetX, offsetX).Add(&cam.OffsetY, offsetY)
	return cs.loop.Start(cameraPanKey, tw)
}

// ZoomTo 缩放镜头，倍率限制在 [CameraMinZoom, CameraMaxZoom]
func (cs *CameraSystem) ZoomTo(zoom float64, duration time.Duration, ease string) steps.Handle {
	cam := cs.Camera()
	if cam == nil {
		return steps.Done()
	}
	if zoom < CameraMinZoom {
		zoom = CameraMinZoom
	}
	if zoom > CameraMaxZoom {
		zoom = CameraMaxZoom
	}
	return cs.loop.Start(cameraZoomKey, NewTween(duration, ease).Add(&cam.Zoom, zoom))
}

// Shake 抖动镜头，结束后抖动偏移归零
func (cs *CameraSystem) Shake(intensity float64, duration time.Duration) steps.Handle {
	cam := cs.Camera()
	if cam == nil || intensity <= 0 || duration <= 0 {
		return steps.Done()
	}
	return cs.loop.Start(cameraShakeKey, &ShakeAnimation{
		X:         &cam.ShakeX,
		Y:         &cam.ShakeY,
		Intensity: intensity,
		Duration:  duration.Seconds(),
		Rand:      cs.rng,
	})
}

// Reset 停止抖动，偏移和缩放回到初始值
func (cs *CameraSystem) Reset(duration time.Duration) steps.Handle {
	cam := cs.Camera()
	if cam == nil {
		return steps.Done()
	}
	cs.loop.Stop(cameraShakeKey)
	cs.loop.Stop(cameraZoomKey)
	tw := NewTween(duration, "inOutQuad").
		Add(&cam.OffsetX, 0).
		Add(&cam.OffsetY, 0).
		Add(&cam.Zoom, 1)
	return cs.loop.Start(cameraPanKey, tw)
}

// IsAnimating 返回镜头是否正在动画中。
func (cs *CameraSystem) IsAnimating() bool {
	return cs.loop.IsRunning(cameraPanKey) || cs.loop.IsRunning(cameraZoomKey) || cs.loop.IsRunning(cameraShakeKey)
}
