// skillplay 在没有窗口的情况下播放技能文档，并记录每一次场景调用
//
// 用法：
//
//	go run ./cmd/skillplay -skill data/skills/fireball.yaml -self hero -target slime
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/game"
	"github.com/gonewx/battleskill/pkg/steps"
	"github.com/gonewx/battleskill/pkg/systems"
	"github.com/gonewx/battleskill/pkg/timeline"
)

func main() {
	skillPath := flag.String("skill", "data/skills/fireball.yaml", "技能文档路径（.yaml 或 .json）")
	self := flag.String("self", "hero", "self 绑定的单位")
	target := flag.String("target", "slime", "target 绑定的单位")
	tps := flag.Int("tps", 60, "动画循环每秒更新次数")
	timeout := flag.Duration("timeout", 30*time.Second, "播放超时")
	flag.Parse()

	if err := run(*skillPath, *self, *target, *tps, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "skillplay: %v\n", err)
		os.Exit(1)
	}
}

func run(skillPath, self, target string, tps int, timeout time.Duration) error {
	editorCfg, err := config.LoadEditorConfig(config.EditorConfigPath)
	if err != nil {
		log.Printf("[skillplay] Warning: %v (using defaults)", err)
		editorCfg = config.DefaultEditorConfig()
	}
	library, err := config.LoadResourceLibrary(config.ResourceLibraryPath)
	if err != nil {
		log.Printf("[skillplay] Warning: %v (effects use placeholders)", err)
	}
	battleCfg, err := config.LoadBattleConfig(config.BattleConfigPath)
	if err != nil {
		return err
	}

	doc, err := game.LoadSkillDocument(skillPath)
	if err != nil {
		return err
	}
	tl, errs := timeline.LoadDocument(*doc, timeline.OptionsFromConfig(editorCfg))
	for _, e := range errs {
		log.Printf("[skillplay] Warning: %v", e)
	}
	cues := tl.Compile()
	log.Printf("[skillplay] %s: %d cues, %v", doc.Name, len(cues), tl.Duration())

	scene := game.NewBattleScene(game.SceneOptions{
		Library:    library,
		LoopSafety: editorCfg.LoopSafety(),
	})
	for _, tpl := range battleCfg.Units {
		if err := scene.AddUnit(tpl, false); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go func() {
		_ = systems.Run(loopCtx, tps, scene.Update)
	}()

	start := time.Now()
	exec := steps.NewExecutor(trace(scene.Deps(), start)).WithBindings(steps.Bindings{"self": self, "target": target})
	if err := exec.ExecuteCues(ctx, cues); err != nil {
		return fmt.Errorf("playback interrupted: %w", err)
	}

	for _, u := range scene.Units() {
		log.Printf("[skillplay] %s at (%.0f, %.0f) hp %d/%d", u.ID, u.X, u.Y, u.HP, u.MaxHP)
	}
	log.Printf("[skillplay] finished in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
