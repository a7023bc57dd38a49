package main

import (
	"log"
	"time"

	"github.com/gonewx/battleskill/pkg/steps"
)

// trace 包装场景接口，每次调用前打印相对开始时间的日志
func trace(deps steps.Deps, start time.Time) steps.Deps {
	t := tracer{start: start}
	return steps.Deps{
		Units:    tracedUnits{deps.Units, t},
		Camera:   tracedCamera{deps.Camera, t},
		Effects:  tracedEffects{deps.Effects, t},
		Sounds:   tracedSounds{deps.Sounds, t},
		Renderer: tracedRenderer{deps.Renderer, t},
		Clock:    deps.Clock,
	}
}

type tracer struct {
	start time.Time
}

func (t tracer) logf(format string, args ...any) {
	elapsed := time.Since(t.start).Seconds()
	log.Printf("[skillplay] %7.3fs "+format, append([]any{elapsed}, args...)...)
}

type tracedUnits struct {
	steps.UnitProvider
	tracer
}

func (u tracedUnits) MoveUnit(unitID string, x, y float64, d time.Duration, ease string) steps.Handle {
	u.logf("move %s -> (%.0f, %.0f) over %v %s", unitID, x, y, d, ease)
	return u.UnitProvider.MoveUnit(unitID, x, y, d, ease)
}

func (u tracedUnits) ResetUnitPosition(unitID string, d time.Duration) steps.Handle {
	u.logf("reset %s over %v", unitID, d)
	return u.UnitProvider.ResetUnitPosition(unitID, d)
}

type tracedCamera struct {
	steps.CameraProvider
	tracer
}

func (c tracedCamera) ShakeCamera(intensity float64, d time.Duration) steps.Handle {
	c.logf("shake %.1f over %v", intensity, d)
	return c.CameraProvider.ShakeCamera(intensity, d)
}

func (c tracedCamera) MoveCamera(x, y float64, d time.Duration, ease string) steps.Handle {
	c.logf("camera pan (%.0f, %.0f) over %v", x, y, d)
	return c.CameraProvider.MoveCamera(x, y, d, ease)
}

func (c tracedCamera) ZoomCamera(zoom float64, d time.Duration, ease string) steps.Handle {
	c.logf("camera zoom %.2f over %v", zoom, d)
	return c.CameraProvider.ZoomCamera(zoom, d, ease)
}

func (c tracedCamera) ResetCamera(d time.Duration) steps.Handle {
	c.logf("camera reset over %v", d)
	return c.CameraProvider.ResetCamera(d)
}

type tracedEffects struct {
	steps.EffectProvider
	tracer
}

func (e tracedEffects) PlayEffect(req steps.EffectRequest) (string, steps.Handle) {
	e.logf("effect %s at (%.0f, %.0f)", req.EffectID, req.X, req.Y)
	return e.EffectProvider.PlayEffect(req)
}

func (e tracedEffects) PlayEffectOnUnit(unitID string, req steps.EffectRequest) (string, steps.Handle) {
	e.logf("effect %s on %s", req.EffectID, unitID)
	return e.EffectProvider.PlayEffectOnUnit(unitID, req)
}

type tracedSounds struct {
	steps.SoundProvider
	tracer
}

func (s tracedSounds) PlaySound(soundID string, volume float64, loop bool) string {
	s.logf("sound %s volume %.2f loop %v", soundID, volume, loop)
	return s.SoundProvider.PlaySound(soundID, volume, loop)
}

type tracedRenderer struct {
	steps.Renderer
	tracer
}

func (r tracedRenderer) ShowDamageNumber(unitID string, value float64, kind string) steps.Handle {
	r.logf("damage %s %.0f (%s)", unitID, value, kind)
	return r.Renderer.ShowDamageNumber(unitID, value, kind)
}

func (r tracedRenderer) SetBackgroundColor(color string, d time.Duration) steps.Handle {
	r.logf("background %s over %v", color, d)
	return r.Renderer.SetBackgroundColor(color, d)
}

func (r tracedRenderer) SetBackgroundImage(path string, d time.Duration) steps.Handle {
	r.logf("background image %s over %v", path, d)
	return r.Renderer.SetBackgroundImage(path, d)
}

func (r tracedRenderer) FlashScreen(color string, d time.Duration) steps.Handle {
	r.logf("flash %s over %v", color, d)
	return r.Renderer.FlashScreen(color, d)
}
