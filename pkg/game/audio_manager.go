package game

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/gonewx/battleskill/pkg/config"
)

// AudioManager 音频管理器
// 职责：
//   - 作为 SoundSystem 的音频后端播放音效步骤
//   - 实现音量控制（从 SettingsManager 读取设置）
//
// 没有音频上下文（命令行工具、测试）或音效没有文件路径时静默跳过。
type AudioManager struct {
	resourceManager *ResourceManager // 资源管理器（用于加载音频）
	settingsManager *SettingsManager // 设置管理器（用于读取音量设置）
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - rm: ResourceManager 实例（用于加载音频文件）
//   - sm: SettingsManager 实例（用于读取音量设置，可为 nil）
func NewAudioManager(rm *ResourceManager, sm *SettingsManager) *AudioManager {
	return &AudioManager{
		resourceManager: rm,
		settingsManager: sm,
	}
}

// Play 播放音效
//
// 参数：
//   - def: 音效资源定义
//   - volume: 步骤音量（已乘上资源默认音量），再乘以设置中的音效音量
//   - loop: 是否循环
//
// 返回：
//   - func(): 停止播放，静默跳过时为 nil
//   - error: 加载或创建播放器失败
func (am *AudioManager) Play(def config.SoundDef, volume float64, loop bool) (func(), error) {
	if am.settingsManager != nil && !am.settingsManager.GetSettings().SoundEnabled {
		return nil, nil
	}
	if def.Path == "" || am.resourceManager == nil || am.resourceManager.AudioContext() == nil {
		return nil, nil
	}

	pcm, err := am.resourceManager.LoadSound(def.Path)
	if err != nil {
		return nil, err
	}

	var src io.Reader = bytes.NewReader(pcm)
	if loop {
		src = audio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm)))
	}
	player, err := am.resourceManager.AudioContext().NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", def.Path, err)
	}
	player.SetVolume(volume * am.getSoundVolume())
	player.Play()

	return func() {
		player.Pause()
		if err := player.Close(); err != nil {
			log.Printf("[AudioManager] Warning: Failed to close player for %s: %v", def.Name, err)
		}
	}, nil
}

// getSoundVolume 获取音效音量设置
func (am *AudioManager) getSoundVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().SoundVolume
	}
	return 0.8 // 默认值
}
