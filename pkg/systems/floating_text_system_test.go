package systems

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/gonewx/battleskill/pkg/components"
	"github.com/gonewx/battleskill/pkg/ecs"
)

func TestFloatingTextRisesAndFades(t *testing.T) {
	em := ecs.NewEntityManager()
	texts := NewFloatingTextSystem(em)
	lifetime := NewLifetimeSystem(em)

	done := texts.Spawn(100, 200, "-42", color.RGBA{R: 255, A: 255})
	ids := ecs.GetEntitiesWith1[*components.FloatingTextComponent](em)
	if len(ids) != 1 {
		t.Fatalf("expected 1 floating text, got %d", len(ids))
	}
	text, _ := ecs.GetComponent[*components.FloatingTextComponent](em, ids[0])
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, ids[0])

	texts.Update(0.4)
	lifetime.Update(0.4)
	if math.Abs(pos.Y-176) > 1e-9 {
		t.Errorf("y = %v, want 176", pos.Y)
	}
	if math.Abs(text.Alpha-0.5) > 1e-9 {
		t.Errorf("alpha = %v, want 0.5", text.Alpha)
	}

	texts.Update(0.5)
	lifetime.Update(0.5)
	if !isClosed(done) {
		t.Error("floating text handle should close when the text expires")
	}
}

func TestFlashDecaysAndReplaces(t *testing.T) {
	em := ecs.NewEntityManager()
	flash := NewFlashEffectSystem(em)

	if !isClosed(flash.Flash(color.RGBA{A: 255}, 0)) {
		t.Error("zero-duration flash should resolve immediately")
	}

	first := flash.Flash(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 200*time.Millisecond)
	flash.Update(0.05)
	if got := flash.Current().Intensity; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("intensity = %v, want 0.75", got)
	}

	second := flash.Flash(color.RGBA{R: 255, A: 255}, 100*time.Millisecond)
	if !isClosed(first) {
		t.Error("a new flash should end the previous one")
	}
	flash.Update(0.1)
	if !isClosed(second) || flash.Current() != nil {
		t.Error("flash should be removed after its duration")
	}
}

func TestBackgroundTransition(t *testing.T) {
	em := ecs.NewEntityManager()
	loop := NewAnimationLoop()
	bg := NewBackgroundSystem(em, loop, color.RGBA{A: 255})

	h := bg.SetColor(color.RGBA{R: 40, G: 0, B: 60, A: 255}, 100*time.Millisecond)
	state := bg.Background()
	if state.Fade != 0 || state.PrevColor != (color.RGBA{A: 255}) {
		t.Fatalf("transition should start from the previous background: %+v", *state)
	}

	h2 := bg.SetImage("data/bg/cave.png", 100*time.Millisecond)
	if !isClosed(h) {
		t.Error("a new transition should finish the previous one")
	}
	if state.PrevColor.R != 40 || state.Image != "data/bg/cave.png" {
		t.Errorf("unexpected background state %+v", *state)
	}

	loop.Update(0.2)
	if !isClosed(h2) || state.Fade != 1 {
		t.Errorf("transition should complete, fade = %v", state.Fade)
	}
}
