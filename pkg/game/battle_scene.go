package game

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/ecs"
	"github.com/gonewx/battleskill/pkg/steps"
	"github.com/gonewx/battleskill/pkg/systems"
	"github.com/gonewx/battleskill/pkg/utils"
)

// DamageTextOffset 伤害数字相对单位位置的高度
const DamageTextOffset = 48.0

var (
	colorWhite    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorDamage   = color.RGBA{R: 255, G: 80, B: 64, A: 255}
	colorCritical = color.RGBA{R: 255, G: 176, B: 32, A: 255}
	colorHeal     = color.RGBA{R: 96, G: 230, B: 120, A: 255}
	colorMana     = color.RGBA{R: 96, G: 160, B: 255, A: 255}
)

// SceneOptions 战斗场景的依赖
type SceneOptions struct {
	Library    *config.ResourceLibrary // 特效与音效资源，可为 nil
	Audio      systems.SoundBackend    // 音频后端，可为 nil（静音）
	Rand       *rand.Rand              // 镜头抖动随机源，可为 nil
	LoopSafety time.Duration           // 循环特效/音效的安全超时
	Background color.RGBA              // 初始背景色
}

// BattleScene 战斗画面
//
// BattleScene 实现了步骤执行器需要的全部接口（单位、镜头、特效、音效、画面、时钟），
// 执行器在自己的 goroutine 中调用这些方法，游戏循环调用 Update 推进画面。
// 所有状态由 mu 保护；锁顺序固定为先场景后动画循环。
type BattleScene struct {
	mu sync.Mutex

	entityManager *ecs.EntityManager
	loop          *systems.AnimationLoop

	camera     *systems.CameraSystem
	effects    *systems.EffectSystem
	sounds     *systems.SoundSystem
	texts      *systems.FloatingTextSystem
	flash      *systems.FlashEffectSystem
	background *systems.BackgroundSystem
	lifetime   *systems.LifetimeSystem

	units     map[string]ecs.EntityID
	unitOrder []string
}

// NewBattleScene 创建战斗场景
func NewBattleScene(opts SceneOptions) *BattleScene {
	if opts.Background == (color.RGBA{}) {
		opts.Background = color.RGBA{R: 24, G: 26, B: 38, A: 255}
	}

	em := ecs.NewEntityManager()
	loop := systems.NewAnimationLoop()
	s := &BattleScene{
		entityManager: em,
		loop:          loop,
		units:         make(map[string]ecs.EntityID),
	}
	s.camera = systems.NewCameraSystem(em, loop, opts.Rand)
	s.effects = systems.NewEffectSystem(em, opts.Library, s.unitPosition, opts.LoopSafety)
	s.sounds = systems.NewSoundSystem(em, opts.Library, opts.Audio, opts.LoopSafety)
	s.texts = systems.NewFloatingTextSystem(em)
	s.flash = systems.NewFlashEffectSystem(em)
	s.background = systems.NewBackgroundSystem(em, loop, opts.Background)
	s.lifetime = systems.NewLifetimeSystem(em)
	return s
}

// Deps 以本场景作为执行器的全部依赖
func (s *BattleScene) Deps() steps.Deps {
	return steps.Deps{
		Units:    s,
		Camera:   s,
		Effects:  s,
		Sounds:   s,
		Renderer: s,
		Clock:    s,
	}
}

// Loop 返回场景的动画循环
func (s *BattleScene) Loop() *systems.AnimationLoop { return s.loop }

// Update 推进一帧
// 参数：
//   - dt: 时间增量（秒）
func (s *BattleScene) Update(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loop.Update(dt)
	s.effects.Update(dt)
	s.sounds.Update(dt)
	s.texts.Update(dt)
	s.flash.Update(dt)
	s.lifetime.Update(dt)
	s.entityManager.RemoveMarkedEntities()
}

// StopAll 结束所有动画、特效、音效和闪光，动画跳到终值，所有等待中的句柄立即完成
func (s *BattleScene) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAllLocked()
}

func (s *BattleScene) stopAllLocked() {
	s.loop.StopAll()
	s.effects.StopAll()
	s.sounds.StopAll()
	s.flash.Stop()
	s.entityManager.RemoveMarkedEntities()
}

// ResetAll 在 StopAll 的基础上让单位回到站位、镜头复位
func (s *BattleScene) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopAllLocked()
	for _, id := range s.unitOrder {
		entity := s.units[id]
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, entity)
		home, _ := ecs.GetComponent[*components.HomePositionComponent](s.entityManager, entity)
		if pos != nil && home != nil {
			pos.X, pos.Y = home.X, home.Y
		}
	}
	s.camera.Reset(0)
	s.loop.StopAll()
}

// ========== 单位管理 ==========

// AddUnit 按模板创建单位
//
// 参数：
//   - tpl: 单位模板，ID 必须唯一
//   - summoned: 是否为召唤物
//
// 返回：
//   - error: ID 为空或重复时返回 ErrDuplicateUnit
func (s *BattleScene) AddUnit(tpl config.UnitTemplate, summoned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tpl.ID == "" {
		return fmt.Errorf("unit template without id: %w", ErrDuplicateUnit)
	}
	if _, exists := s.units[tpl.ID]; exists {
		return fmt.Errorf("unit %q: %w", tpl.ID, ErrDuplicateUnit)
	}

	entity := s.entityManager.CreateEntity()
	ecs.AddComponent(s.entityManager, entity, &components.UnitComponent{
		ID:       tpl.ID,
		Name:     tpl.Name,
		Side:     tpl.Side,
		Summoned: summoned,
	})
	ecs.AddComponent(s.entityManager, entity, &components.HealthComponent{CurrentHealth: tpl.HP, MaxHealth: tpl.HP})
	ecs.AddComponent(s.entityManager, entity, &components.StatsComponent{
		MP:      tpl.MP,
		MaxMP:   tpl.MP,
		Attack:  tpl.Attack,
		Defense: tpl.Defense,
	})
	ecs.AddComponent(s.entityManager, entity, &components.PositionComponent{X: tpl.X, Y: tpl.Y})
	ecs.AddComponent(s.entityManager, entity, &components.HomePositionComponent{X: tpl.X, Y: tpl.Y})

	s.units[tpl.ID] = entity
	s.unitOrder = append(s.unitOrder, tpl.ID)
	return nil
}

// RemoveUnit 移除单位及其动画
func (s *BattleScene) RemoveUnit(unitID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.units[unitID]
	if !ok {
		return false
	}
	s.loop.Stop(moveKey(unitID))
	s.entityManager.DestroyEntity(entity)
	s.entityManager.RemoveMarkedEntities()
	delete(s.units, unitID)
	for i, id := range s.unitOrder {
		if id == unitID {
			s.unitOrder = append(s.unitOrder[:i], s.unitOrder[i+1:]...)
			break
		}
	}
	return true
}

// Unit 返回单位快照
func (s *BattleScene) Unit(unitID string) (UnitState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unitStateLocked(unitID)
}

// Units 按加入顺序返回所有单位快照
func (s *BattleScene) Units() []UnitState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]UnitState, 0, len(s.unitOrder))
	for _, id := range s.unitOrder {
		if u, ok := s.unitStateLocked(id); ok {
			out = append(out, u)
		}
	}
	return out
}

// ModifyUnit 在场景锁内修改单位的生命和属性
func (s *BattleScene) ModifyUnit(unitID string, fn func(hp *components.HealthComponent, stats *components.StatsComponent)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.units[unitID]
	if !ok {
		return fmt.Errorf("unit %q: %w", unitID, ErrUnknownUnit)
	}
	hp, _ := ecs.GetComponent[*components.HealthComponent](s.entityManager, entity)
	stats, _ := ecs.GetComponent[*components.StatsComponent](s.entityManager, entity)
	fn(hp, stats)
	return nil
}

func (s *BattleScene) unitStateLocked(unitID string) (UnitState, bool) {
	entity, ok := s.units[unitID]
	if !ok {
		return UnitState{}, false
	}
	em := s.entityManager
	unit, _ := ecs.GetComponent[*components.UnitComponent](em, entity)
	hp, _ := ecs.GetComponent[*components.HealthComponent](em, entity)
	stats, _ := ecs.GetComponent[*components.StatsComponent](em, entity)
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, entity)
	if unit == nil || hp == nil || stats == nil || pos == nil {
		return UnitState{}, false
	}
	return UnitState{
		ID:        unit.ID,
		Name:      unit.Name,
		Side:      unit.Side,
		Summoned:  unit.Summoned,
		HP:        hp.CurrentHealth,
		MaxHP:     hp.MaxHealth,
		MP:        stats.MP,
		MaxMP:     stats.MaxMP,
		Attack:    stats.Attack,
		Defense:   stats.Defense,
		Defending: stats.Defending,
		X:         pos.X,
		Y:         pos.Y,
	}, true
}

// unitPosition 不加锁，供持锁的系统回调使用
func (s *BattleScene) unitPosition(unitID string) (float64, float64, bool) {
	entity, ok := s.units[unitID]
	if !ok {
		return 0, 0, false
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, entity)
	if !ok {
		return 0, 0, false
	}
	return pos.X, pos.Y, true
}

func moveKey(unitID string) string { return "unit." + unitID + ".move" }

// ========== steps.UnitProvider ==========

// MoveUnit 补间移动单位
func (s *BattleScene) MoveUnit(unitID string, x, y float64, duration time.Duration, ease string) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positionLocked(unitID)
	if !ok {
		log.Printf("[BattleScene] Warning: MoveUnit on unknown unit %q", unitID)
		return steps.Done()
	}
	return s.loop.Start(moveKey(unitID), systems.NewTween(duration, ease).Add(&pos.X, x).Add(&pos.Y, y))
}

// SetUnitPosition 立即设置单位位置，正在进行的移动被取消
func (s *BattleScene) SetUnitPosition(unitID string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positionLocked(unitID)
	if !ok {
		log.Printf("[BattleScene] Warning: SetUnitPosition on unknown unit %q", unitID)
		return
	}
	s.loop.Stop(moveKey(unitID))
	pos.X, pos.Y = x, y
}

// ResetUnitPosition 回到站位
func (s *BattleScene) ResetUnitPosition(unitID string, duration time.Duration) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positionLocked(unitID)
	if !ok {
		log.Printf("[BattleScene] Warning: ResetUnitPosition on unknown unit %q", unitID)
		return steps.Done()
	}
	home, _ := ecs.GetComponent[*components.HomePositionComponent](s.entityManager, s.units[unitID])
	return s.loop.Start(moveKey(unitID), systems.NewTween(duration, "outQuad").Add(&pos.X, home.X).Add(&pos.Y, home.Y))
}

// UnitPosition 单位当前位置
func (s *BattleScene) UnitPosition(unitID string) (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unitPosition(unitID)
}

func (s *BattleScene) positionLocked(unitID string) (*components.PositionComponent, bool) {
	entity, ok := s.units[unitID]
	if !ok {
		return nil, false
	}
	return ecs.GetComponent[*components.PositionComponent](s.entityManager, entity)
}

// ========== steps.CameraProvider ==========

// ShakeCamera 镜头抖动
func (s *BattleScene) ShakeCamera(intensity float64, duration time.Duration) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Shake(intensity, duration)
}

// MoveCamera 镜头平移
func (s *BattleScene) MoveCamera(offsetX, offsetY float64, duration time.Duration, ease string) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.MoveTo(offsetX, offsetY, duration, ease)
}

// ZoomCamera 镜头缩放
func (s *BattleScene) ZoomCamera(zoom float64, duration time.Duration, ease string) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.ZoomTo(zoom, duration, ease)
}

// ResetCamera 镜头复位
func (s *BattleScene) ResetCamera(duration time.Duration) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Reset(duration)
}

// ========== steps.EffectProvider ==========

// PlayEffect 在绝对坐标播放特效
func (s *BattleScene) PlayEffect(req steps.EffectRequest) (string, steps.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effects.Spawn(req, "")
}

// PlayEffectOnUnit 在单位身上播放特效，特效跟随单位移动
func (s *BattleScene) PlayEffectOnUnit(unitID string, req steps.EffectRequest) (string, steps.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[unitID]; !ok {
		log.Printf("[BattleScene] Warning: effect %q targets unknown unit %q, skipped", req.EffectID, unitID)
		return "", steps.Done()
	}
	return s.effects.Spawn(req, unitID)
}

// StopEffect 结束特效
func (s *BattleScene) StopEffect(instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects.Stop(instanceID)
}

// ========== steps.SoundProvider ==========

// PlaySound 播放音效
func (s *BattleScene) PlaySound(soundID string, volume float64, loop bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sounds.Play(soundID, volume, loop)
}

// StopSound 停止音效
func (s *BattleScene) StopSound(instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sounds.Stop(instanceID)
}

// ========== steps.Renderer ==========

// ShowDamageNumber 在单位头顶显示数字
//
// 参数：
//   - kind: "heal" 显示为绿色加号，"mp" 为蓝色，"critical" 为橙色并带感叹号，其他为红色
func (s *BattleScene) ShowDamageNumber(unitID string, value float64, kind string) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	x, y, ok := s.unitPosition(unitID)
	if !ok {
		log.Printf("[BattleScene] Warning: damage number for unknown unit %q skipped", unitID)
		return steps.Done()
	}
	text, col := formatDamage(value, kind)
	return s.texts.Spawn(x, y-DamageTextOffset, text, col)
}

func formatDamage(value float64, kind string) (string, color.RGBA) {
	n := int(math.Round(math.Abs(value)))
	switch kind {
	case "heal":
		return fmt.Sprintf("+%d", n), colorHeal
	case "mp":
		return fmt.Sprintf("+%d MP", n), colorMana
	case "critical":
		return fmt.Sprintf("%d!", n), colorCritical
	default:
		return fmt.Sprintf("%d", n), colorDamage
	}
}

// ShowFloatingText 显示飘字，颜色无法解析时使用白色
func (s *BattleScene) ShowFloatingText(x, y float64, text, col string) steps.Handle {
	c, ok := utils.ParseColor(col)
	if !ok {
		c = colorWhite
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts.Spawn(x, y, text, c)
}

// SetBackgroundColor 切换背景色
func (s *BattleScene) SetBackgroundColor(col string, duration time.Duration) steps.Handle {
	c, ok := utils.ParseColor(col)
	if !ok {
		log.Printf("[BattleScene] Warning: invalid background color %q, skipped", col)
		return steps.Done()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background.SetColor(c, duration)
}

// SetBackgroundImage 切换背景图
func (s *BattleScene) SetBackgroundImage(path string, duration time.Duration) steps.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background.SetImage(path, duration)
}

// FlashScreen 全屏闪光，颜色无法解析时使用白色
func (s *BattleScene) FlashScreen(col string, duration time.Duration) steps.Handle {
	c, ok := utils.ParseColor(col)
	if !ok {
		c = colorWhite
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flash.Flash(c, duration)
}

// ========== steps.Clock ==========

// After 按动画循环时间计时
func (s *BattleScene) After(d time.Duration) steps.Handle {
	return s.loop.After(d)
}

// ========== 渲染快照 ==========

// View 复制当前画面状态
func (s *BattleScene) View() SceneView {
	s.mu.Lock()
	defer s.mu.Unlock()

	em := s.entityManager
	var v SceneView
	for _, id := range s.unitOrder {
		if u, ok := s.unitStateLocked(id); ok {
			v.Units = append(v.Units, u)
		}
	}

	for _, id := range ecs.GetEntitiesWith2[*components.EffectComponent, *components.PositionComponent](em) {
		if !em.IsAlive(id) {
			continue
		}
		eff, _ := ecs.GetComponent[*components.EffectComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		state := EffectState{
			InstanceID: eff.InstanceID,
			EffectID:   eff.EffectID,
			X:          pos.X,
			Y:          pos.Y,
			Scale:      eff.Scale,
			Rotation:   eff.Rotation,
			Alpha:      eff.Alpha,
			Frame:      eff.Frame,
			Frames:     eff.Frames,
			Color:      eff.Color,
			Radius:     eff.Radius,
		}
		if life, ok := ecs.GetComponent[*components.LifetimeComponent](em, id); ok && !eff.Loop {
			state.Progress = life.Progress()
		}
		v.Effects = append(v.Effects, state)
	}

	for _, id := range ecs.GetEntitiesWith2[*components.FloatingTextComponent, *components.PositionComponent](em) {
		if !em.IsAlive(id) {
			continue
		}
		text, _ := ecs.GetComponent[*components.FloatingTextComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		v.Texts = append(v.Texts, TextState{Text: text.Text, X: pos.X, Y: pos.Y, Color: text.Color, Alpha: text.Alpha})
	}

	if cam := s.camera.Camera(); cam != nil {
		v.CameraX, v.CameraY = cam.ViewOffset()
		v.Zoom = cam.Zoom
	}
	if bg := s.background.Background(); bg != nil {
		v.Background, v.BackgroundImage = bg.Color, bg.Image
		v.PrevBackground, v.PrevImage = bg.PrevColor, bg.PrevImage
		v.BackgroundFade = bg.Fade
	}
	if flash := s.flash.Current(); flash != nil {
		v.Flash, v.FlashIntensity = flash.Color, flash.Intensity
	}
	v.Sounds = s.sounds.Count()
	return v
}
