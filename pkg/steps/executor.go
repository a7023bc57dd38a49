package steps

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// Executor 步骤执行器
//
// 执行器本身不持有场景状态，所有副作用都通过构造时注入的 Deps 完成。
// 每个步骤在其动画完成（句柄关闭）后才返回。参数缺失或无法解析时
// 只记录告警并跳过，唯一向上返回的错误是 ctx 被取消。
type Executor struct {
	deps     Deps
	bindings Bindings
}

// NewExecutor 创建执行器
func NewExecutor(deps Deps) *Executor {
	return &Executor{deps: deps}
}

// WithBindings 返回绑定了单位别名的执行器副本
func (e *Executor) WithBindings(b Bindings) *Executor {
	c := *e
	c.bindings = b
	return &c
}

// ExecuteStep 执行单个步骤，等待其动画完成
func (e *Executor) ExecuteStep(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.Run(ctx, Decode(rec))
}

// ExecuteSteps 顺序执行：每个步骤完成后再开始下一个
func (e *Executor) ExecuteSteps(ctx context.Context, recs []Record) error {
	for _, rec := range recs {
		if err := e.ExecuteStep(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteStepsParallel 同时开始所有步骤，全部完成后返回
func (e *Executor) ExecuteStepsParallel(ctx context.Context, recs []Record) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range recs {
		rec := rec
		g.Go(func() error {
			return e.ExecuteStep(gctx, rec)
		})
	}
	return g.Wait()
}

// ExecuteCues 按时间点播放编译后的时间轴
//
// 所有提示点从同一时刻开始计时，各自等待 At 后执行，全部完成后返回。
func (e *Executor) ExecuteCues(ctx context.Context, cues []Cue) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, cue := range cues {
		cue := cue
		g.Go(func() error {
			if err := e.sleep(gctx, cue.At); err != nil {
				return err
			}
			return e.ExecuteStep(gctx, cue.Step)
		})
	}
	return g.Wait()
}

// Run 执行已解码的步骤
func (e *Executor) Run(ctx context.Context, step Step) error {
	switch s := step.(type) {
	case *Move:
		return e.runMove(ctx, s)
	case *Damage:
		return e.runDamage(ctx, s)
	case *Effect:
		return e.runEffect(ctx, s)
	case *Wait:
		return e.sleep(ctx, s.Delay)
	case *Camera:
		return e.runCamera(ctx, s)
	case *Shake:
		return e.runShake(ctx, s)
	case *Background:
		return e.runBackground(ctx, s)
	case *Sound:
		return e.runSound(s)
	case *Invalid:
		warnf("%s step %q skipped: %s", s.Type, s.ID, s.Reason)
		return nil
	case nil:
		return nil
	}
	warnf("unsupported step %T skipped", step)
	return nil
}

func (e *Executor) runMove(ctx context.Context, s *Move) error {
	if e.deps.Units == nil {
		warnf("move step %q skipped: no unit provider", s.ID)
		return nil
	}
	unit := e.bindings.Resolve(s.UnitID)
	curX, curY, ok := e.deps.Units.UnitPosition(unit)
	if !ok {
		warnf("move step %q skipped: unit %q not found", s.ID, unit)
		return nil
	}
	if !s.X.IsSet() && !s.Y.IsSet() {
		warnf("move step %q skipped: no targetX/targetY", s.ID)
		return nil
	}

	x, okX := e.resolve(s.ID, "targetX", s.X, unit, AxisX)
	y, okY := e.resolve(s.ID, "targetY", s.Y, unit, AxisY)
	if !okX {
		x = curX
	}
	if !okY {
		y = curY
	}
	if !okX && !okY {
		return nil
	}
	return e.await(ctx, e.deps.Units.MoveUnit(unit, x, y, s.Duration, s.Ease))
}

func (e *Executor) runDamage(ctx context.Context, s *Damage) error {
	if e.deps.Renderer == nil {
		warnf("damage step %q skipped: no renderer", s.ID)
		return nil
	}
	target := e.bindings.Resolve(s.TargetID)
	return e.await(ctx, e.deps.Renderer.ShowDamageNumber(target, s.Value, s.Type))
}

func (e *Executor) runEffect(ctx context.Context, s *Effect) error {
	if e.deps.Effects == nil {
		warnf("effect step %q skipped: no effect provider", s.ID)
		return nil
	}
	req := EffectRequest{
		EffectID: s.EffectID,
		Scale:    s.Scale,
		Rotation: s.Rotation,
		Alpha:    s.Alpha,
		Loop:     s.Loop,
		Duration: s.Duration,
	}

	var done Handle
	if s.TargetID != "" {
		req.X, req.Y = s.OffsetX, s.OffsetY
		_, done = e.deps.Effects.PlayEffectOnUnit(e.bindings.Resolve(s.TargetID), req)
	} else {
		if !s.X.IsSet() || !s.Y.IsSet() {
			warnf("effect step %q skipped: needs targetId or x/y", s.ID)
			return nil
		}
		x, okX := e.resolve(s.ID, "x", s.X, "self", AxisX)
		y, okY := e.resolve(s.ID, "y", s.Y, "self", AxisY)
		if !okX || !okY {
			return nil
		}
		req.X, req.Y = x, y
		_, done = e.deps.Effects.PlayEffect(req)
	}

	// 循环特效由安全超时或 StopEffect 结束，不阻塞脚本
	if s.Loop {
		return nil
	}
	return e.await(ctx, done)
}

func (e *Executor) runCamera(ctx context.Context, s *Camera) error {
	if e.deps.Camera == nil {
		warnf("camera step %q skipped: no camera provider", s.ID)
		return nil
	}
	if s.Reset {
		return e.await(ctx, e.deps.Camera.ResetCamera(s.Duration))
	}

	var handles []Handle
	if s.Zoom != nil {
		handles = append(handles, e.deps.Camera.ZoomCamera(*s.Zoom, s.Duration, s.Ease))
	}
	if s.OffsetX != nil || s.OffsetY != nil {
		var ox, oy float64
		if s.OffsetX != nil {
			ox = *s.OffsetX
		}
		if s.OffsetY != nil {
			oy = *s.OffsetY
		}
		handles = append(handles, e.deps.Camera.MoveCamera(ox, oy, s.Duration, s.Ease))
	}
	if len(handles) == 0 {
		warnf("camera step %q skipped: no zoom, offset or reset", s.ID)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handles {
		h := h
		g.Go(func() error { return e.await(gctx, h) })
	}
	return g.Wait()
}

func (e *Executor) runShake(ctx context.Context, s *Shake) error {
	if e.deps.Camera == nil {
		warnf("shake step %q skipped: no camera provider", s.ID)
		return nil
	}
	return e.await(ctx, e.deps.Camera.ShakeCamera(s.Intensity, s.Duration))
}

func (e *Executor) runBackground(ctx context.Context, s *Background) error {
	if e.deps.Renderer == nil {
		warnf("background step %q skipped: no renderer", s.ID)
		return nil
	}
	var h Handle
	switch s.Mode {
	case BackgroundColor:
		h = e.deps.Renderer.SetBackgroundColor(s.Value, s.Duration)
	case BackgroundImage:
		h = e.deps.Renderer.SetBackgroundImage(s.Value, s.Duration)
	case BackgroundFlash:
		h = e.deps.Renderer.FlashScreen(s.Value, s.Duration)
	}
	return e.await(ctx, h)
}

func (e *Executor) runSound(s *Sound) error {
	if e.deps.Sounds == nil {
		warnf("sound step %q skipped: no sound provider", s.ID)
		return nil
	}
	e.deps.Sounds.PlaySound(s.SoundID, s.Volume, s.Loop)
	return nil
}

// resolve 求坐标参数值，失败时告警
func (e *Executor) resolve(stepID, param string, v Value, anchor string, axis Axis) (float64, bool) {
	if !v.IsSet() {
		return 0, false
	}
	var lookup PositionLookup
	if e.deps.Units != nil {
		lookup = e.deps.Units.UnitPosition
	}
	n, ok := v.Resolve(lookup, anchor, axis, e.bindings.Resolve)
	if !ok {
		warnf("step %q: cannot resolve %s value %q (%s), parameter ignored", stepID, param, v.Raw, v.Kind)
	}
	return n, ok
}

// sleep 等待 d，优先使用与动画循环同步的时钟
func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if e.deps.Clock != nil {
		return e.await(ctx, e.deps.Clock.After(d))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) await(ctx context.Context, h Handle) error {
	if h == nil {
		return nil
	}
	select {
	case <-h:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func warnf(format string, args ...any) {
	log.Printf("[StepExecutor] Warning: "+format, args...)
}
