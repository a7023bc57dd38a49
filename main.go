package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/battleskill/pkg/app"
	"github.com/gonewx/battleskill/pkg/embedded"
)

func main() {
	verbose := flag.Bool("verbose", false, "输出详细日志")
	skill := flag.String("skill", "", "要编辑的技能名（默认打开上次编辑的技能）")
	flag.Parse()

	// 必须在加载任何配置之前注册嵌入数据
	embedded.Init(dataFS)

	game, err := app.NewApp(app.Config{Verbose: *verbose, Skill: *skill})
	if err != nil {
		// 非 verbose 模式下日志已关闭，启动错误直接写到 stderr
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle("Battle Skill Editor")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetFullscreen(game.Fullscreen())

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
