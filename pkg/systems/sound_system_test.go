package systems

import (
	"errors"
	"testing"
	"time"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/ecs"
)

type fakeBackend struct {
	played  []string
	volumes []float64
	stopped []string
	fail    bool
}

func (b *fakeBackend) Play(def config.SoundDef, volume float64, loop bool) (func(), error) {
	if b.fail {
		return nil, errors.New("device busy")
	}
	b.played = append(b.played, def.Name)
	b.volumes = append(b.volumes, volume)
	return func() { b.stopped = append(b.stopped, def.Name) }, nil
}

func newSoundWorld(backend SoundBackend) (*SoundSystem, func(dt float64)) {
	em := ecs.NewEntityManager()
	sounds := NewSoundSystem(em, testLibrary(), backend, 2*time.Second)
	lifetime := NewLifetimeSystem(em)
	return sounds, func(dt float64) {
		sounds.Update(dt)
		lifetime.Update(dt)
		em.RemoveMarkedEntities()
	}
}

func TestSoundSystem_OneShot(t *testing.T) {
	backend := &fakeBackend{}
	sounds, update := newSoundWorld(backend)

	id := sounds.Play("hit", 0.8, false)
	if id == "" {
		t.Fatal("Play returned empty id")
	}
	if len(backend.played) != 1 || backend.volumes[0] != 0.4 {
		t.Fatalf("backend got %v at %v, want hit at 0.4", backend.played, backend.volumes)
	}

	update(0.2)
	if sounds.Count() != 1 {
		t.Fatal("sound ended early")
	}
	update(0.2)
	if sounds.Count() != 0 {
		t.Fatal("sound should end after its duration")
	}
	if len(backend.stopped) != 1 {
		t.Errorf("backend stop calls = %d, want 1", len(backend.stopped))
	}
}

func TestSoundSystem_LoopUntilStopped(t *testing.T) {
	backend := &fakeBackend{}
	sounds, update := newSoundWorld(backend)

	id := sounds.Play("bgm", 1, false)
	update(1.5)
	if sounds.Count() != 1 {
		t.Fatal("looping sound should outlive its nominal duration")
	}
	if !sounds.Stop(id) {
		t.Fatal("Stop should find the looping sound")
	}
	if sounds.Stop(id) {
		t.Error("second Stop should be a no-op")
	}
	update(0.1)
	if len(backend.stopped) != 1 {
		t.Errorf("backend stop calls = %d, want 1", len(backend.stopped))
	}

	sounds.Play("bgm", 1, true)
	update(2.5)
	if sounds.Count() != 0 {
		t.Error("looping sound should stop at the safety timeout")
	}
}

func TestSoundSystem_MissingAndFailing(t *testing.T) {
	sounds, _ := newSoundWorld(&fakeBackend{fail: true})
	if id := sounds.Play("nope", 1, false); id != "" {
		t.Errorf("unknown sound should return empty id, got %q", id)
	}
	// 后端失败时仍然记录实例
	if id := sounds.Play("hit", 1, false); id == "" {
		t.Error("backend failure should still create an instance")
	}

	silent, update := newSoundWorld(nil)
	silent.Play("hit", 1, false)
	silent.StopAll()
	update(0.1)
	if silent.Count() != 0 {
		t.Error("StopAll should clear every instance")
	}
}
