package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下打开 gdata 存储
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gdataManager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

// TestDefaultSettings 测试 DefaultSettings() 返回正确的默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.SoundVolume != 0.8 {
		t.Errorf("SoundVolume: got %v, want 0.8", settings.SoundVolume)
	}
	if !settings.SoundEnabled {
		t.Error("SoundEnabled: got false, want true")
	}
	if !settings.SnapEnabled {
		t.Error("SnapEnabled: got false, want true")
	}
	if settings.Fullscreen || settings.LastSkill != "" || settings.PixelsPerSecond != 0 {
		t.Errorf("unexpected defaults: %+v", settings)
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}

	sm.SetSoundVolume(0.3)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
	if sm.GetSettings().SoundVolume != 0.3 {
		t.Errorf("SoundVolume: got %v, want 0.3", sm.GetSettings().SoundVolume)
	}
}

// TestSettingsManagerSaveAndLoad 测试设置的持久化
func TestSettingsManagerSaveAndLoad(t *testing.T) {
	gdataManager := openTestGdata(t, "test_battleskill_settings")

	sm, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	sm.SetSoundVolume(0.5)
	sm.SetSoundEnabled(false)
	sm.SetSnapEnabled(false)
	sm.SetPixelsPerSecond(240)
	sm.SetLastSkill("fireball")
	sm.SetFullscreen(true)
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	got := reloaded.GetSettings()
	want := EditorSettings{
		SoundVolume:     0.5,
		SoundEnabled:    false,
		SnapEnabled:     false,
		PixelsPerSecond: 240,
		LastSkill:       "fireball",
		Fullscreen:      true,
	}
	if *got != want {
		t.Errorf("reloaded settings = %+v, want %+v", *got, want)
	}
}

// TestSettingsManagerLoadCorrupted 测试存储数据损坏时回退到默认设置
func TestSettingsManagerLoadCorrupted(t *testing.T) {
	gdataManager := openTestGdata(t, "test_battleskill_corrupted")
	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("soundVolume: [")); err != nil {
		t.Fatalf("SaveObjectProp() error: %v", err)
	}

	sm, err := NewSettingsManager(gdataManager)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	if *sm.GetSettings() != *DefaultSettings() {
		t.Errorf("corrupted settings should fall back to defaults, got %+v", sm.GetSettings())
	}
}

// TestClampVolume 测试音量限制
func TestClampVolume(t *testing.T) {
	tests := []struct {
		input, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tt := range tests {
		if got := clampVolume(tt.input); got != tt.want {
			t.Errorf("clampVolume(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}

	sm, _ := NewSettingsManager(nil)
	sm.SetPixelsPerSecond(-10)
	if sm.GetSettings().PixelsPerSecond != 0 {
		t.Errorf("negative zoom should reset to 0, got %v", sm.GetSettings().PixelsPerSecond)
	}
}
