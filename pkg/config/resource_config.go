package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ResourceLibraryPath 资源库配置的默认位置
const ResourceLibraryPath = "data/effects.yaml"

// EffectDef 特效资源定义
type EffectDef struct {
	Name     string  `yaml:"name"`
	Frames   int     `yaml:"frames"`   // 序列帧数量
	FPS      int     `yaml:"fps"`      // 序列帧播放速率
	Duration float64 `yaml:"duration"` // 持续时间（秒），为 0 时由 Frames/FPS 推算
	Loop     bool    `yaml:"loop"`     // 是否默认循环
	Scale    float64 `yaml:"scale"`    // 默认缩放
	Color    string  `yaml:"color"`    // 预览渲染时使用的颜色
	Radius   float64 `yaml:"radius"`   // 预览渲染时的半径（像素）
}

// SoundDef 音效资源定义
type SoundDef struct {
	Name     string  `yaml:"name"`
	Path     string  `yaml:"path"`     // 音频文件路径（.ogg / .mp3），可为空
	Volume   float64 `yaml:"volume"`   // 默认音量 [0, 1]
	Duration float64 `yaml:"duration"` // 非循环音效的播放时长（秒）
	Loop     bool    `yaml:"loop"`
}

// ResourceLibrary 特效与音效资源库
//
// 配置文件位置: data/effects.yaml
type ResourceLibrary struct {
	Effects map[string]EffectDef `yaml:"effects"`
	Sounds  map[string]SoundDef  `yaml:"sounds"`
}

// LoadResourceLibrary 加载资源库配置
func LoadResourceLibrary(path string) (*ResourceLibrary, error) {
	data, err := readConfigData(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource library %s: %w", path, err)
	}

	var lib ResourceLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse resource library YAML from %s: %w", path, err)
	}

	lib.applyDefaults()

	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resource library in %s: %w", path, err)
	}
	return &lib, nil
}

func (l *ResourceLibrary) applyDefaults() {
	if l.Effects == nil {
		l.Effects = make(map[string]EffectDef)
	}
	if l.Sounds == nil {
		l.Sounds = make(map[string]SoundDef)
	}
	for id, def := range l.Effects {
		if def.Name == "" {
			def.Name = id
		}
		if def.FPS == 0 {
			def.FPS = 30
		}
		if def.Duration == 0 && def.Frames > 0 {
			def.Duration = float64(def.Frames) / float64(def.FPS)
		}
		if def.Duration == 0 {
			def.Duration = 0.5
		}
		if def.Scale == 0 {
			def.Scale = 1
		}
		if def.Radius == 0 {
			def.Radius = 24
		}
		l.Effects[id] = def
	}
	for id, def := range l.Sounds {
		if def.Name == "" {
			def.Name = id
		}
		if def.Volume == 0 {
			def.Volume = 1
		}
		if def.Duration == 0 {
			def.Duration = 1
		}
		l.Sounds[id] = def
	}
}

// Validate 验证资源定义
func (l *ResourceLibrary) Validate() error {
	for id, def := range l.Effects {
		if def.Frames < 0 || def.FPS < 0 || def.Duration < 0 {
			return fmt.Errorf("effect '%s' has negative timing values", id)
		}
	}
	for id, def := range l.Sounds {
		if def.Volume < 0 || def.Volume > 1 {
			return fmt.Errorf("sound '%s' volume must be in [0, 1], got %.2f", id, def.Volume)
		}
	}
	return nil
}

// Effect 查找特效定义
func (l *ResourceLibrary) Effect(id string) (EffectDef, bool) {
	if l == nil {
		return EffectDef{}, false
	}
	def, ok := l.Effects[id]
	return def, ok
}

// Sound 查找音效定义
func (l *ResourceLibrary) Sound(id string) (SoundDef, bool) {
	if l == nil {
		return SoundDef{}, false
	}
	def, ok := l.Sounds[id]
	return def, ok
}
