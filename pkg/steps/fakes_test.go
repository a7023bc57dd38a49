package steps

import (
	"fmt"
	"sync"
	"time"
)

// call 记录一次接口调用
type call struct {
	Method string
	Args   []any
}

// fakeScene 实现全部注入接口，记录调用
//
// hold 为 true 时，返回的句柄需要手动 release 才会关闭。
type fakeScene struct {
	mu        sync.Mutex
	calls     []call
	positions map[string][2]float64
	hold      bool
	pending   []chan struct{}
	afters    []time.Duration
}

func newFakeScene() *fakeScene {
	return &fakeScene{positions: map[string][2]float64{}}
}

func (f *fakeScene) deps() Deps {
	return Deps{Units: f, Camera: f, Effects: f, Sounds: f, Renderer: f}
}

func (f *fakeScene) record(method string, args ...any) Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: method, Args: args})
	if !f.hold {
		return Done()
	}
	ch := make(chan struct{})
	f.pending = append(f.pending, ch)
	return ch
}

// releaseAll 关闭所有挂起的句柄
func (f *fakeScene) releaseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.pending {
		close(ch)
	}
	f.pending = nil
}

func (f *fakeScene) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeScene) methods() []string {
	var out []string
	for _, c := range f.snapshot() {
		out = append(out, c.Method)
	}
	return out
}

func (f *fakeScene) MoveUnit(unitID string, x, y float64, d time.Duration, ease string) Handle {
	return f.record("MoveUnit", unitID, x, y, d, ease)
}

func (f *fakeScene) SetUnitPosition(unitID string, x, y float64) {
	f.mu.Lock()
	f.positions[unitID] = [2]float64{x, y}
	f.mu.Unlock()
	f.record("SetUnitPosition", unitID, x, y)
}

func (f *fakeScene) ResetUnitPosition(unitID string, d time.Duration) Handle {
	return f.record("ResetUnitPosition", unitID, d)
}

func (f *fakeScene) UnitPosition(unitID string) (float64, float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.positions[unitID]
	return p[0], p[1], ok
}

func (f *fakeScene) ShakeCamera(intensity float64, d time.Duration) Handle {
	return f.record("ShakeCamera", intensity, d)
}

func (f *fakeScene) MoveCamera(x, y float64, d time.Duration, ease string) Handle {
	return f.record("MoveCamera", x, y, d, ease)
}

func (f *fakeScene) ZoomCamera(zoom float64, d time.Duration, ease string) Handle {
	return f.record("ZoomCamera", zoom, d, ease)
}

func (f *fakeScene) ResetCamera(d time.Duration) Handle {
	return f.record("ResetCamera", d)
}

func (f *fakeScene) PlayEffect(req EffectRequest) (string, Handle) {
	h := f.record("PlayEffect", req)
	return fmt.Sprintf("fx-%d", len(f.snapshot())), h
}

func (f *fakeScene) PlayEffectOnUnit(unitID string, req EffectRequest) (string, Handle) {
	h := f.record("PlayEffectOnUnit", unitID, req)
	return fmt.Sprintf("fx-%d", len(f.snapshot())), h
}

func (f *fakeScene) StopEffect(id string) { f.record("StopEffect", id) }

func (f *fakeScene) PlaySound(soundID string, volume float64, loop bool) string {
	f.record("PlaySound", soundID, volume, loop)
	return "snd"
}

func (f *fakeScene) StopSound(id string) { f.record("StopSound", id) }

func (f *fakeScene) ShowDamageNumber(unitID string, value float64, kind string) Handle {
	return f.record("ShowDamageNumber", unitID, value, kind)
}

func (f *fakeScene) ShowFloatingText(x, y float64, text, color string) Handle {
	return f.record("ShowFloatingText", x, y, text, color)
}

func (f *fakeScene) SetBackgroundColor(color string, d time.Duration) Handle {
	return f.record("SetBackgroundColor", color, d)
}

func (f *fakeScene) SetBackgroundImage(path string, d time.Duration) Handle {
	return f.record("SetBackgroundImage", path, d)
}

func (f *fakeScene) FlashScreen(color string, d time.Duration) Handle {
	return f.record("FlashScreen", color, d)
}

// After 实现 Clock：记录等待时长并立即完成
func (f *fakeScene) After(d time.Duration) Handle {
	f.mu.Lock()
	f.afters = append(f.afters, d)
	f.mu.Unlock()
	return Done()
}
