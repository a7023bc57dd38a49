package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// EditorConfigPath 编辑器配置的默认位置
const EditorConfigPath = "data/editor.yaml"

// EditorConfig 时间轴编辑器配置
//
// 控制帧率、缩放、吸附阈值等编辑器参数。
//
// 配置文件位置: data/editor.yaml
type EditorConfig struct {
	// FPS 时间轴帧率（帧/秒）
	FPS int `yaml:"fps"`

	// PixelsPerSecond 缩放系数：1 秒对应的像素宽度
	PixelsPerSecond float64 `yaml:"pixelsPerSecond"`

	// SnapThreshold 吸附阈值（像素）
	SnapThreshold float64 `yaml:"snapThreshold"`

	// GridInterval 网格间隔（帧），0 表示不吸附到网格
	GridInterval int `yaml:"gridInterval"`

	// TrackHeight 每条轨道的高度（像素），用于拖拽时计算跨轨道移动
	TrackHeight float64 `yaml:"trackHeight"`

	// TotalFrames 时间轴总帧数
	TotalFrames int `yaml:"totalFrames"`

	// FrameSlack 允许片段超出总帧数的余量（帧）
	FrameSlack int `yaml:"frameSlack"`

	// MinTracks 编辑器至少保留的轨道数量
	MinTracks int `yaml:"minTracks"`

	// DefaultTrackName 初始化时创建的默认轨道名称
	DefaultTrackName string `yaml:"defaultTrackName"`

	// LoopSafetyTimeout 循环特效的强制结束时间（秒）
	LoopSafetyTimeout float64 `yaml:"loopSafetyTimeout"`
}

// DefaultEditorConfig 返回内置的默认编辑器配置
func DefaultEditorConfig() *EditorConfig {
	cfg := &EditorConfig{}
	applyEditorDefaults(cfg)
	return cfg
}

// LoopSafety 循环特效的安全超时
func (c *EditorConfig) LoopSafety() time.Duration {
	return time.Duration(c.LoopSafetyTimeout * float64(time.Second))
}

// LoadEditorConfig 加载编辑器配置
//
// 参数:
//   - path: 配置文件路径（如 "data/editor.yaml"）
//
// 返回:
//   - *EditorConfig: 加载成功后的配置（缺省字段已填充默认值）
//   - error: 读取、解析或验证失败时返回错误
func LoadEditorConfig(path string) (*EditorConfig, error) {
	data, err := readConfigData(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read editor config file %s: %w", path, err)
	}

	var cfg EditorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse editor config YAML from %s: %w", path, err)
	}

	applyEditorDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid editor config in %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEditorDefaults 为未配置（零值）的字段设置默认值
func applyEditorDefaults(cfg *EditorConfig) {
	if cfg.FPS == 0 {
		cfg.FPS = 60
	}
	if cfg.PixelsPerSecond == 0 {
		cfg.PixelsPerSecond = 100
	}
	if cfg.SnapThreshold == 0 {
		cfg.SnapThreshold = 10
	}
	if cfg.GridInterval == 0 {
		cfg.GridInterval = 10
	}
	if cfg.TrackHeight == 0 {
		cfg.TrackHeight = 40
	}
	if cfg.TotalFrames == 0 {
		cfg.TotalFrames = 300
	}
	if cfg.FrameSlack == 0 {
		cfg.FrameSlack = 60
	}
	if cfg.MinTracks == 0 {
		cfg.MinTracks = 1
	}
	if cfg.DefaultTrackName == "" {
		cfg.DefaultTrackName = "main"
	}
	if cfg.LoopSafetyTimeout == 0 {
		cfg.LoopSafetyTimeout = 10
	}
}

// Validate 验证配置有效性
func (c *EditorConfig) Validate() error {
	if c.FPS < 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.PixelsPerSecond < 0 {
		return fmt.Errorf("pixelsPerSecond must be positive, got %.2f", c.PixelsPerSecond)
	}
	if c.SnapThreshold < 0 {
		return fmt.Errorf("snapThreshold must be >= 0, got %.2f", c.SnapThreshold)
	}
	if c.GridInterval < 0 {
		return fmt.Errorf("gridInterval must be >= 0, got %d", c.GridInterval)
	}
	if c.TrackHeight < 0 {
		return fmt.Errorf("trackHeight must be positive, got %.2f", c.TrackHeight)
	}
	if c.TotalFrames < 0 || c.FrameSlack < 0 {
		return fmt.Errorf("totalFrames/frameSlack must be >= 0, got %d/%d", c.TotalFrames, c.FrameSlack)
	}
	if c.MinTracks < 0 {
		return fmt.Errorf("minTracks must be >= 0, got %d", c.MinTracks)
	}
	if c.LoopSafetyTimeout < 0 {
		return fmt.Errorf("loopSafetyTimeout must be >= 0, got %.2f", c.LoopSafetyTimeout)
	}
	return nil
}
