// verify_skill 校验技能文档并打印编译后的演出表
//
// 用法：
//
//	go run ./cmd/verify_skill                       # 校验 data/skills 下的全部文档
//	go run ./cmd/verify_skill data/skills/heal.yaml # 校验指定文档
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/timeline"
)

func main() {
	dir := flag.String("dir", "data/skills", "未指定文件时扫描的目录")
	quiet := flag.Bool("q", false, "只输出错误")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		found, err := skillFiles(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verify_skill: %v\n", err)
			os.Exit(1)
		}
		paths = found
	}

	editorCfg, err := config.LoadEditorConfig(config.EditorConfigPath)
	if err != nil {
		editorCfg = config.DefaultEditorConfig()
	}
	opts := timeline.OptionsFromConfig(editorCfg)

	out := io.Writer(os.Stdout)
	if *quiet {
		out = io.Discard
	}
	failed := 0
	for _, path := range paths {
		failed += verify(out, os.Stderr, path, opts)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d problem(s) found\n", failed)
		os.Exit(1)
	}
}

// skillFiles 列出目录中的 .yaml/.yml/.json 文档
func skillFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// verify 校验单个文档，返回发现的问题数
//
// 参数：
//
//	out - 演出表输出
//	errOut - 错误输出
//	path - 文档路径
//	opts - 时间轴参数
func verify(out, errOut io.Writer, path string, opts timeline.Options) int {
	doc, err := timeline.ReadDocument(path)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", path, err)
		return 1
	}

	problems := doc.Validate()
	tl, loadErrs := timeline.LoadDocument(*doc, opts)
	if len(problems) == 0 {
		// 加载阶段的错误与 Validate 大部分重复，只在文档本身合法时补充
		problems = loadErrs
	}
	for _, p := range problems {
		fmt.Fprintf(errOut, "%s: %v\n", path, p)
	}

	cues := tl.Compile()
	fmt.Fprintf(out, "%s (%s): %d tracks, %d cues, %v\n",
		path, doc.Name, len(tl.Tracks()), len(cues), tl.Duration())
	for _, c := range cues {
		fmt.Fprintf(out, "  %8v  f%-5d %-10s %-10s %s\n", c.At, c.Frame, c.TrackID, c.Step.Type, c.Step.ID)
	}
	return len(problems)
}
