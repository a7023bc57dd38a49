package steps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveRec(id, unit string, x any) Record {
	return Record{ID: id, Type: KindMove, Params: map[string]any{"unitId": unit, "targetX": x, "duration": 100}}
}

func TestExecuteMoveRelativeOffset(t *testing.T) {
	scene := newFakeScene()
	scene.positions["hero"] = [2]float64{10, 20}
	ex := NewExecutor(scene.deps())

	require.NoError(t, ex.ExecuteStep(context.Background(), moveRec("m", "hero", "+100")))

	calls := scene.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "MoveUnit", calls[0].Method)
	assert.Equal(t, []any{"hero", 110.0, 20.0, 100 * time.Millisecond, ""}, calls[0].Args)
}

func TestExecuteMoveFailuresAreNoOps(t *testing.T) {
	scene := newFakeScene()
	scene.positions["hero"] = [2]float64{10, 20}
	ex := NewExecutor(scene.deps())
	ctx := context.Background()

	// 缺少 unitId
	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "a", Type: KindMove, Params: map[string]any{"targetX": 5}}))
	// 单位不存在
	require.NoError(t, ex.ExecuteStep(ctx, moveRec("b", "ghost", 5)))
	// 两个坐标都无法解析
	require.NoError(t, ex.ExecuteStep(ctx, moveRec("c", "hero", "somewhere")))
	// 非有限数值按无法解析处理
	require.NoError(t, ex.ExecuteStep(ctx, moveRec("nan", "hero", "NaN")))
	require.NoError(t, ex.ExecuteStep(ctx, moveRec("inf", "hero", "+Inf")))
	assert.Empty(t, scene.snapshot())

	// 一个坐标无法解析时，该轴保持当前值
	rec := Record{ID: "d", Type: KindMove, Params: map[string]any{"unitId": "hero", "targetX": "??", "targetY": 99}}
	require.NoError(t, ex.ExecuteStep(ctx, rec))
	calls := scene.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, 10.0, calls[0].Args[1])
	assert.Equal(t, 99.0, calls[0].Args[2])
}

func TestExecuteWithBindings(t *testing.T) {
	scene := newFakeScene()
	scene.positions["hero"] = [2]float64{100, 300}
	scene.positions["slime"] = [2]float64{600, 300}
	ex := NewExecutor(scene.deps()).WithBindings(Bindings{"self": "hero", "target": "slime"})

	rec := Record{ID: "dash", Type: KindMove, Params: map[string]any{"unitId": "self", "targetX": "target.x - 80"}}
	require.NoError(t, ex.ExecuteStep(context.Background(), rec))

	calls := scene.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "hero", calls[0].Args[0])
	assert.Equal(t, 520.0, calls[0].Args[1])
}

func TestExecuteStepsIsSequential(t *testing.T) {
	scene := newFakeScene()
	scene.positions["hero"] = [2]float64{0, 0}
	scene.hold = true
	ex := NewExecutor(scene.deps())

	done := make(chan error, 1)
	go func() {
		done <- ex.ExecuteSteps(context.Background(), []Record{
			moveRec("1", "hero", 10),
			moveRec("2", "hero", 20),
		})
	}()

	require.Eventually(t, func() bool { return len(scene.snapshot()) == 1 }, time.Second, time.Millisecond)
	// 第一个步骤未完成前，第二个步骤不能开始
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, scene.snapshot(), 1)

	scene.releaseAll()
	require.Eventually(t, func() bool { return len(scene.snapshot()) == 2 }, time.Second, time.Millisecond)
	scene.releaseAll()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ExecuteSteps did not finish")
	}
	assert.Equal(t, 20.0, scene.snapshot()[1].Args[1])
}

func TestExecuteStepsParallelStartsAll(t *testing.T) {
	scene := newFakeScene()
	scene.positions["a"] = [2]float64{0, 0}
	scene.positions["b"] = [2]float64{0, 0}
	scene.hold = true
	ex := NewExecutor(scene.deps())

	done := make(chan error, 1)
	go func() {
		done <- ex.ExecuteStepsParallel(context.Background(), []Record{
			moveRec("1", "a", 10),
			moveRec("2", "b", 20),
			{ID: "3", Type: KindShake, Params: map[string]any{"intensity": 4}},
		})
	}()

	require.Eventually(t, func() bool { return len(scene.snapshot()) == 3 }, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("parallel execution must wait for every handle")
	default:
	}

	scene.releaseAll()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ExecuteStepsParallel did not finish")
	}
}

func TestExecuteStepContextCancel(t *testing.T) {
	scene := newFakeScene()
	scene.positions["hero"] = [2]float64{0, 0}
	scene.hold = true
	ex := NewExecutor(scene.deps())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ex.ExecuteStep(ctx, moveRec("m", "hero", 10)) }()

	require.Eventually(t, func() bool { return len(scene.snapshot()) == 1 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancel did not unblock ExecuteStep")
	}
	scene.releaseAll()
}

func TestExecuteCameraZoomAndPan(t *testing.T) {
	scene := newFakeScene()
	ex := NewExecutor(scene.deps())
	ctx := context.Background()

	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "c", Type: KindCamera, Params: map[string]any{
		"zoom": 1.5, "offsetX": 40, "duration": 200, "ease": "Sine.easeInOut",
	}}))
	assert.ElementsMatch(t, []string{"ZoomCamera", "MoveCamera"}, scene.methods())

	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "r", Type: KindCamera, Params: map[string]any{"reset": true, "zoom": 3}}))
	assert.Equal(t, "ResetCamera", scene.methods()[2], "reset wins over zoom")

	// 没有任何镜头参数时跳过
	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "n", Type: KindCamera}))
	assert.Len(t, scene.snapshot(), 3)
}

func TestExecuteEffect(t *testing.T) {
	scene := newFakeScene()
	scene.positions["hero"] = [2]float64{100, 200}
	ex := NewExecutor(scene.deps()).WithBindings(Bindings{"self": "hero"})
	ctx := context.Background()

	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "1", Type: KindEffect, Params: map[string]any{
		"effectId": "slash", "targetId": "self", "offsetY": -30, "scale": 2,
	}}))
	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "2", Type: KindEffect, Params: map[string]any{
		"effectId": "boom", "x": "+10", "y": 50,
	}}))
	// 缺少位置
	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "3", Type: KindEffect, Params: map[string]any{"effectId": "boom"}}))
	// 缺少 effectId
	require.NoError(t, ex.ExecuteStep(ctx, Record{ID: "4", Type: KindEffect, Params: map[string]any{"x": 1, "y": 1}}))

	calls := scene.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "PlayEffectOnUnit", calls[0].Method)
	assert.Equal(t, "hero", calls[0].Args[0])
	req := calls[0].Args[1].(EffectRequest)
	assert.Equal(t, -30.0, req.Y)
	assert.Equal(t, 2.0, req.Scale)

	assert.Equal(t, "PlayEffect", calls[1].Method)
	req = calls[1].Args[0].(EffectRequest)
	assert.Equal(t, 110.0, req.X)
	assert.Equal(t, 50.0, req.Y)
}

func TestExecuteLoopEffectDoesNotBlock(t *testing.T) {
	scene := newFakeScene()
	scene.hold = true
	ex := NewExecutor(scene.deps())

	done := make(chan error, 1)
	go func() {
		done <- ex.ExecuteStep(context.Background(), Record{ID: "aura", Type: KindEffect, Params: map[string]any{
			"effectId": "aura", "x": 0, "y": 0, "loop": true,
		}})
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("looping effect should not block the script")
	}
	scene.releaseAll()
}

func TestExecuteMiscSteps(t *testing.T) {
	scene := newFakeScene()
	ex := NewExecutor(Deps{
		Units: scene, Camera: scene, Effects: scene, Sounds: scene, Renderer: scene, Clock: scene,
	})

	err := ex.ExecuteSteps(context.Background(), []Record{
		{ID: "1", Type: KindDamage, Params: map[string]any{"targetId": "slime", "value": 30, "type": "critical"}},
		{ID: "2", Type: KindWait, Params: map[string]any{"delay": 250}},
		{ID: "3", Type: KindShake, Params: map[string]any{"intensity": 8, "duration": 400}},
		{ID: "4", Type: KindBackground, Params: map[string]any{"color": "#220000", "duration": 300}},
		{ID: "5", Type: KindBackground, Params: map[string]any{"image": "bg/night.png"}},
		{ID: "6", Type: KindBackground, Params: map[string]any{"flash": "#ffffff"}},
		{ID: "7", Type: KindSound, Params: map[string]any{"soundId": "hit", "volume": 0.5}},
		{ID: "8", Type: KindSound},
		{ID: "9", Type: "mystery"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ShowDamageNumber", "ShakeCamera", "SetBackgroundColor",
		"SetBackgroundImage", "FlashScreen", "PlaySound",
	}, scene.methods())
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, scene.afters)
	assert.Equal(t, []any{"slime", 30.0, "critical"}, scene.snapshot()[0].Args)
}

func TestExecuteWithoutProviders(t *testing.T) {
	ex := NewExecutor(Deps{})
	ctx := context.Background()
	for _, k := range Kinds {
		rec := Record{ID: string(k), Type: k, Params: map[string]any{
			"unitId": "a", "targetId": "a", "effectId": "e", "soundId": "s",
			"x": 1, "y": 1, "color": "#fff", "zoom": 2, "delay": 1,
		}}
		assert.NoError(t, ex.ExecuteStep(ctx, rec), "kind %s", k)
	}
}

func TestExecuteCues(t *testing.T) {
	scene := newFakeScene()
	scene.positions["hero"] = [2]float64{0, 0}
	ex := NewExecutor(Deps{Units: scene, Camera: scene, Clock: scene})

	err := ex.ExecuteCues(context.Background(), []Cue{
		{At: 0, Step: moveRec("a", "hero", 50)},
		{At: 500 * time.Millisecond, Step: Record{ID: "b", Type: KindShake}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"MoveUnit", "ShakeCamera"}, scene.methods())
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, scene.afters)
}

func TestExecuteStepCancelledBeforeStart(t *testing.T) {
	scene := newFakeScene()
	ex := NewExecutor(scene.deps())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ex.ExecuteSteps(ctx, []Record{{ID: "s", Type: KindShake}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, scene.snapshot())
}
