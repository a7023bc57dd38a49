// Package app 提供技能编辑器应用的核心包装器
//
// 该包把初始化逻辑从 main 包提取出来：加载配置、创建存储和音频、
// 搭建战斗场景与时间轴编辑器，并实现 ebiten.Game 接口。
package app

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/game"
	"github.com/gonewx/battleskill/pkg/render"
	"github.com/gonewx/battleskill/pkg/timeline"
)

// 逻辑屏幕尺寸
const (
	WindowWidth  = 960
	WindowHeight = 640
)

// AppName gdata 存储使用的应用名
const AppName = "battleskill"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Skill 要编辑的技能名，为空时使用上次打开的技能
	Skill string
}

// App 是编辑器应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	settings     *game.SettingsManager
	verbose      bool
}

// NewApp 创建并初始化应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	editorCfg, err := config.LoadEditorConfig(config.EditorConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load editor config: %w", err)
	}
	library, err := config.LoadResourceLibrary(config.ResourceLibraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load resource library: %w", err)
	}
	battleCfg, err := config.LoadBattleConfig(config.BattleConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load battle config: %w", err)
	}

	// gdata 不可用时设置和技能只保存在内存中
	gdataManager, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: persistent storage unavailable: %v", err)
		gdataManager = nil
	}
	settings, _ := game.NewSettingsManager(gdataManager)
	store, err := game.NewSkillStore(gdataManager)
	if err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	audioContext := audio.NewContext(48000)
	resourceManager := game.NewResourceManager(audioContext)
	audioManager := game.NewAudioManager(resourceManager, settings)

	scene := game.NewBattleScene(game.SceneOptions{
		Library:    library,
		Audio:      audioManager,
		LoopSafety: editorCfg.LoopSafety(),
	})
	battle, err := game.NewBattle(scene, battleCfg, game.BattleOptions{
		Scripts:  store.Scripts(),
		Timeline: timeline.OptionsFromConfig(editorCfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	skill := cfg.Skill
	if skill == "" {
		skill = settings.GetSettings().LastSkill
	}
	editor := timeline.NewEditor(editorCfg)
	if doc := openSkill(store, battleCfg, skill); doc != nil {
		for _, e := range editor.Load(*doc) {
			log.Printf("[App] Warning: skill %s: %v", skill, e)
		}
	}

	sceneManager := game.NewSceneManager()
	sceneManager.Register("preview", render.NewPreviewScene(render.PreviewOptions{
		Scene:    scene,
		Battle:   battle,
		Battles:  battleCfg,
		Editor:   editor,
		Store:    store,
		Settings: settings,
		Images:   resourceManager,
		Skill:    skill,
		Width:    WindowWidth,
		Height:   WindowHeight,
	}))
	log.Printf("[App] Editing skill %q (%d segments)", skill, editor.SegmentCount())

	return &App{
		sceneManager: sceneManager,
		settings:     settings,
		verbose:      cfg.Verbose,
	}, nil
}

// openSkill 依次从技能存储和战斗配置中的脚本路径读取技能文档
func openSkill(store *game.SkillStore, battleCfg *config.BattleConfig, name string) *timeline.Document {
	if name == "" {
		return nil
	}
	if doc, err := store.Load(name); err == nil {
		return doc
	} else if !errors.Is(err, game.ErrSkillNotFound) {
		log.Printf("[App] Warning: %v", err)
	}
	if def, ok := battleCfg.Skill(name); ok && def.Script != "" {
		doc, err := game.LoadSkillDocument(def.Script)
		if err != nil {
			log.Printf("[App] Warning: %v", err)
			return nil
		}
		return doc
	}
	return nil
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		if err := a.sceneManager.SaveOnExit(); err != nil {
			log.Printf("[App] Warning: failed to save on exit: %v", err)
		}
		return ebiten.Termination
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		fullscreen := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(fullscreen)
		a.settings.SetFullscreen(fullscreen)
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	return a.sceneManager.Update(deltaTime)
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

// Fullscreen 上次退出时是否为全屏
func (a *App) Fullscreen() bool {
	return a.settings.GetSettings().Fullscreen
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
