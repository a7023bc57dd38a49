package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/game"
	"github.com/gonewx/battleskill/pkg/steps"
	"github.com/gonewx/battleskill/pkg/timeline"
)

// zoomStep 按一次 +/- 时时间轴缩放的倍率
const zoomStep = 1.25

// PreviewOptions 预览画面的依赖
type PreviewOptions struct {
	Scene    *game.BattleScene
	Battle   *game.Battle
	Battles  *config.BattleConfig
	Editor   *timeline.Editor
	Store    *game.SkillStore     // 可为 nil，不保存技能
	Settings *game.SettingsManager // 可为 nil
	Images   ImageLoader
	Skill    string // 编辑中的技能名
	Width    float64
	Height   float64
}

// PreviewScene 战斗预览 + 时间轴编辑画面
//
// 上半部分绘制战斗场景，下半部分是时间轴编辑条。
// 演出和战斗行动在后台 goroutine 中执行，动画由 Update 推进。
type PreviewScene struct {
	opts     PreviewOptions
	renderer *SceneRenderer
	strip    *TimelineStrip

	mu        sync.Mutex
	cancel    context.CancelFunc
	busy      bool
	playStart time.Duration
	playing   bool
	status    string
}

// NewPreviewScene 创建预览画面
func NewPreviewScene(opts PreviewOptions) *PreviewScene {
	if opts.Skill == "" {
		opts.Skill = "untitled"
	}
	p := &PreviewScene{
		opts:     opts,
		renderer: NewSceneRenderer(opts.Images),
	}
	p.strip = NewTimelineStrip(opts.Editor, 0, p.sceneHeight(), opts.Width)
	if opts.Settings != nil {
		s := opts.Settings.GetSettings()
		opts.Editor.SetSnapEnabled(s.SnapEnabled)
		if s.PixelsPerSecond > 0 {
			opts.Editor.SetZoom(s.PixelsPerSecond)
		}
	}
	return p
}

func (p *PreviewScene) sceneHeight() float64 {
	return p.opts.Height * 0.6
}

// Strip 时间轴编辑条
func (p *PreviewScene) Strip() *TimelineStrip { return p.strip }

// Status 最近一条状态信息
func (p *PreviewScene) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *PreviewScene) setStatus(format string, args ...any) {
	p.mu.Lock()
	p.status = fmt.Sprintf(format, args...)
	p.mu.Unlock()
}

// bindings 演出中 self/target 对应的单位：第一个存活的己方单位和敌方单位
func (p *PreviewScene) bindings() steps.Bindings {
	b := steps.Bindings{}
	for _, u := range p.opts.Scene.Units() {
		if !u.Alive() {
			continue
		}
		if u.Side == config.SideEnemy {
			if b["target"] == "" {
				b["target"] = u.ID
			}
		} else if b["self"] == "" {
			b["self"] = u.ID
		}
	}
	return b
}

// run 在后台执行一个行动；已有行动进行中时忽略
//
// playback 为 true 时播放头跟随动画循环时间移动
func (p *PreviewScene) run(name string, playback bool, action func(ctx context.Context) error) bool {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.busy = true
	p.cancel = cancel
	p.playing = playback
	p.playStart = p.opts.Scene.Loop().Elapsed()
	p.mu.Unlock()

	go func() {
		err := action(ctx)
		p.mu.Lock()
		p.busy = false
		p.playing = false
		p.cancel = nil
		p.mu.Unlock()
		cancel()

		switch {
		case err == nil:
			p.setStatus("%s finished", name)
		case errors.Is(err, context.Canceled):
			p.setStatus("%s stopped", name)
		default:
			p.setStatus("%s: %v", name, err)
			log.Printf("[PreviewScene] Warning: %s failed: %v", name, err)
		}
	}()
	return true
}

// Play 从头播放编辑中的时间轴
func (p *PreviewScene) Play() bool {
	cues := p.opts.Editor.Compile()
	if len(cues) == 0 {
		p.setStatus("nothing to play")
		return false
	}
	exec := steps.NewExecutor(p.opts.Scene.Deps()).WithBindings(p.bindings())
	return p.run("playback", true, func(ctx context.Context) error {
		return exec.ExecuteCues(ctx, cues)
	})
}

// Stop 取消正在执行的行动，所有动画跳到终值并复位场景
func (p *PreviewScene) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.opts.Scene.ResetAll()
}

// Save 保存编辑中的技能
func (p *PreviewScene) Save() error {
	if p.opts.Store == nil {
		return nil
	}
	if err := p.opts.Store.Save(p.opts.Skill, p.opts.Editor.Document(p.opts.Skill)); err != nil {
		return err
	}
	if p.opts.Settings != nil {
		p.opts.Settings.SetLastSkill(p.opts.Skill)
	}
	p.setStatus("saved %s", p.opts.Skill)
	return nil
}

// SaveOnExit 退出时保存技能和编辑器设置
func (p *PreviewScene) SaveOnExit() error {
	p.Stop()
	var errs []error
	if err := p.Save(); err != nil {
		errs = append(errs, err)
	}
	if p.opts.Settings != nil {
		p.opts.Settings.SetSnapEnabled(p.opts.Editor.SnapEnabled())
		p.opts.Settings.SetPixelsPerSecond(p.opts.Editor.Scale().Zoom)
		if err := p.opts.Settings.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update 处理输入并推进动画
func (p *PreviewScene) Update(deltaTime float64) error {
	p.strip.HandleInput()
	p.handleKeys()

	p.opts.Scene.Update(deltaTime)

	p.mu.Lock()
	playing, start := p.playing, p.playStart
	p.mu.Unlock()
	if playing {
		elapsed := (p.opts.Scene.Loop().Elapsed() - start).Seconds()
		p.opts.Editor.SetCurrentFrame(p.opts.Editor.Scale().TimeToFrame(elapsed))
	}
	return nil
}

func (p *PreviewScene) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		p.Play()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		p.Stop()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		if err := p.Save(); err != nil {
			p.setStatus("save failed: %v", err)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		p.opts.Editor.SetSnapEnabled(!p.opts.Editor.SnapEnabled())
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		if seg, ok := p.opts.Editor.Selected(); ok {
			p.opts.Editor.RemoveSegment(seg.ID)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		p.opts.Editor.SetZoom(p.opts.Editor.Scale().Zoom * zoomStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		p.opts.Editor.SetZoom(p.opts.Editor.Scale().Zoom / zoomStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		p.toggleSelectedTrack(true)
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		p.toggleSelectedTrack(false)
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		p.opts.Editor.AddTrack("")
	}

	p.handleBattleKeys()
}

// toggleSelectedTrack 切换选中片段所在轨道的隐藏或锁定状态
func (p *PreviewScene) toggleSelectedTrack(hidden bool) {
	seg, ok := p.opts.Editor.Selected()
	if !ok {
		return
	}
	track, ok := p.opts.Editor.Track(seg.TrackID)
	if !ok {
		return
	}
	if hidden {
		p.opts.Editor.SetTrackHidden(track.ID, !track.Hidden)
	} else {
		p.opts.Editor.SetTrackLocked(track.ID, !track.Locked)
	}
}

// handleBattleKeys 数字键触发战斗行动：1 攻击 2 技能 3 防御 4 召唤 5 逃跑 E 敌方回合
func (p *PreviewScene) handleBattleKeys() {
	b := p.opts.Battle
	if b == nil {
		return
	}
	bind := p.bindings()
	self, target := bind["self"], bind["target"]

	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		p.run("attack", false, func(ctx context.Context) error {
			_, err := b.Attack(ctx, self, target)
			return err
		})
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		skill := p.firstSkill()
		p.run("skill "+skill, false, func(ctx context.Context) error {
			_, err := b.UseSkill(ctx, self, skill, target)
			return err
		})
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		p.run("defend", false, func(context.Context) error { return b.Defend(self) })
	case inpututil.IsKeyJustPressed(ebiten.Key4):
		if p.opts.Battles == nil || len(p.opts.Battles.Summons) == 0 {
			return
		}
		summon := p.opts.Battles.Summons[0].ID
		p.run("summon", false, func(context.Context) error {
			_, err := b.Summon(summon)
			return err
		})
	case inpututil.IsKeyJustPressed(ebiten.Key5):
		p.run("escape", false, func(context.Context) error {
			ok, err := b.Escape()
			if err == nil && !ok {
				p.setStatus("escape failed")
			}
			return err
		})
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		p.run("enemy turn", false, b.EnemyTurn)
	}
}

func (p *PreviewScene) firstSkill() string {
	if p.opts.Battles == nil || len(p.opts.Battles.Skills) == 0 {
		return p.opts.Skill
	}
	for _, s := range p.opts.Battles.Skills {
		if s.ID == p.opts.Skill {
			return s.ID
		}
	}
	return p.opts.Battles.Skills[0].ID
}

// Draw 绘制场景、编辑条和状态栏
func (p *PreviewScene) Draw(screen *ebiten.Image) {
	view := p.opts.Scene.View()
	p.renderer.Draw(screen, view, p.opts.Width, p.sceneHeight())

	phase := ""
	if p.opts.Battle != nil {
		phase = p.opts.Battle.Phase()
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  [%s]  %s", p.opts.Skill, phase, statusLine(view)), 8, 8)
	ebitenutil.DebugPrintAt(screen, p.Status(), 8, 24)

	p.strip.Draw(screen)
}
