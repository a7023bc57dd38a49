// Package render 使用 ebiten 绘制战斗场景快照和时间轴编辑条
//
// 渲染只读取 game.SceneView 和 timeline.Editor 的状态，不修改场景；
// 输入（指针、键盘）由 TimelineStrip 和 PreviewScene 转换为编辑器调用。
package render

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/battleskill/pkg/game"
)

// 单位占位图形尺寸
const (
	UnitWidth     = 48.0
	UnitHeight    = 64.0
	hpBarHeight   = 5.0
	hpBarGap      = 6.0
	debugCharSize = 6.0 // ebitenutil 调试字体的字宽
)

var (
	colorPlayer    = color.RGBA{R: 72, G: 132, B: 220, A: 255}
	colorEnemy     = color.RGBA{R: 200, G: 72, B: 72, A: 255}
	colorSummon    = color.RGBA{R: 120, G: 200, B: 200, A: 255}
	colorDown      = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	colorHPBack    = color.RGBA{R: 32, G: 32, B: 32, A: 200}
	colorHP        = color.RGBA{R: 96, G: 210, B: 96, A: 255}
	colorMP        = color.RGBA{R: 96, G: 160, B: 255, A: 255}
	colorDefending = color.RGBA{R: 154, G: 208, B: 255, A: 255}
)

// ImageLoader 按路径加载背景图，通常是 game.ResourceManager
type ImageLoader interface {
	LoadImage(path string) (*ebiten.Image, error)
}

// Viewport 世界坐标到屏幕坐标的换算
//
// 镜头偏移为 0、缩放为 1 时世界坐标与屏幕坐标重合；
// 缩放以视口中心为原点。
type Viewport struct {
	Width, Height float64
	CameraX       float64
	CameraY       float64
	Zoom          float64
}

// ToScreen 世界坐标转屏幕坐标
func (v Viewport) ToScreen(x, y float64) (float64, float64) {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	cx, cy := v.Width/2, v.Height/2
	return (x-v.CameraX-cx)*zoom + cx, (y-v.CameraY-cy)*zoom + cy
}

// ToWorld 屏幕坐标转世界坐标
func (v Viewport) ToWorld(sx, sy float64) (float64, float64) {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	cx, cy := v.Width/2, v.Height/2
	return (sx-cx)/zoom + cx + v.CameraX, (sy-cy)/zoom + cy + v.CameraY
}

// SceneRenderer 把场景快照绘制到屏幕的一个矩形区域
type SceneRenderer struct {
	images ImageLoader
	failed map[string]bool // 加载失败的背景图只告警一次
}

// NewSceneRenderer 创建场景渲染器
//
// 参数：
//   - images: 背景图加载器，可为 nil（只绘制背景色）
func NewSceneRenderer(images ImageLoader) *SceneRenderer {
	return &SceneRenderer{images: images, failed: make(map[string]bool)}
}

// Draw 绘制一帧
//
// 参数：
//   - screen: 目标图像
//   - view: 场景快照
//   - width, height: 场景区域大小（从屏幕左上角开始）
func (r *SceneRenderer) Draw(screen *ebiten.Image, view game.SceneView, width, height float64) {
	vp := Viewport{Width: width, Height: height, CameraX: view.CameraX, CameraY: view.CameraY, Zoom: view.Zoom}

	r.drawBackground(screen, view, width, height)
	for _, u := range view.Units {
		drawUnit(screen, vp, u)
	}
	for _, e := range view.Effects {
		drawEffect(screen, vp, e)
	}
	for _, t := range view.Texts {
		drawText(screen, vp, t)
	}
	if view.FlashIntensity > 0 {
		vector.DrawFilledRect(screen, 0, 0, float32(width), float32(height), withAlpha(view.Flash, view.FlashIntensity), false)
	}
}

// drawBackground 背景色与背景图按 BackgroundFade 交叉淡入
func (r *SceneRenderer) drawBackground(screen *ebiten.Image, view game.SceneView, width, height float64) {
	fade := clamp01(view.BackgroundFade)
	bg := BlendColor(view.PrevBackground, view.Background, fade)
	vector.DrawFilledRect(screen, 0, 0, float32(width), float32(height), bg, false)

	if fade < 1 {
		r.drawImage(screen, view.PrevImage, 1-fade, width, height)
	}
	r.drawImage(screen, view.BackgroundImage, fade, width, height)
}

func (r *SceneRenderer) drawImage(screen *ebiten.Image, path string, alpha, width, height float64) {
	if path == "" || alpha <= 0 || r.images == nil || r.failed[path] {
		return
	}
	img, err := r.images.LoadImage(path)
	if err != nil {
		log.Printf("[SceneRenderer] Warning: failed to load background %s: %v", path, err)
		r.failed[path] = true
		return
	}
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(width/float64(b.Dx()), height/float64(b.Dy()))
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(img, op)
}

func drawUnit(screen *ebiten.Image, vp Viewport, u game.UnitState) {
	x, y := vp.ToScreen(u.X, u.Y)
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	w, h := UnitWidth*zoom, UnitHeight*zoom
	left, top := x-w/2, y-h

	body := colorPlayer
	switch {
	case !u.Alive():
		body = colorDown
	case u.Summoned:
		body = colorSummon
	case u.Side == "enemy":
		body = colorEnemy
	}
	vector.DrawFilledRect(screen, float32(left), float32(top), float32(w), float32(h), body, false)
	if u.Defending {
		vector.StrokeRect(screen, float32(left-2), float32(top-2), float32(w+4), float32(h+4), 2, colorDefending, false)
	}

	barY := top - hpBarGap - hpBarHeight
	drawBar(screen, left, barY, w, float64(u.HP), float64(u.MaxHP), colorHP)
	if u.MaxMP > 0 {
		drawBar(screen, left, y+2, w, float64(u.MP), float64(u.MaxMP), colorMP)
	}

	label := u.Name
	if label == "" {
		label = u.ID
	}
	ebitenutil.DebugPrintAt(screen, label, int(x-float64(len(label))*debugCharSize/2), int(barY-16))
}

func drawBar(screen *ebiten.Image, x, y, w, value, maxValue float64, fill color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), hpBarHeight, colorHPBack, false)
	if maxValue <= 0 {
		return
	}
	ratio := clamp01(value / maxValue)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w*ratio), hpBarHeight, fill, false)
}

// drawEffect 特效用圆环占位：半径随缩放变化，序列帧推进时圆环旋转
func drawEffect(screen *ebiten.Image, vp Viewport, e game.EffectState) {
	x, y := vp.ToScreen(e.X, e.Y)
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	radius := e.Radius * e.Scale * zoom
	if radius <= 0 {
		radius = 16 * zoom
	}
	alpha := e.Alpha
	if e.Progress > 0 {
		alpha *= 1 - 0.5*e.Progress
	}
	c := withAlpha(e.Color, alpha)

	vector.StrokeCircle(screen, float32(x), float32(y), float32(radius), 3, c, true)

	angle := e.Rotation * math.Pi / 180
	if e.Frames > 0 {
		angle += 2 * math.Pi * float64(e.Frame) / float64(e.Frames)
	}
	ex, ey := x+math.Cos(angle)*radius, y+math.Sin(angle)*radius
	vector.StrokeLine(screen, float32(x), float32(y), float32(ex), float32(ey), 2, c, true)
}

// drawText 调试字体只有白色，颜色用文字下方的色条表示
func drawText(screen *ebiten.Image, vp Viewport, t game.TextState) {
	if t.Alpha <= 0 {
		return
	}
	x, y := vp.ToScreen(t.X, t.Y)
	width := float64(len(t.Text)) * debugCharSize
	left := x - width/2
	vector.DrawFilledRect(screen, float32(left), float32(y+14), float32(width), 2, withAlpha(t.Color, t.Alpha), false)
	ebitenutil.DebugPrintAt(screen, t.Text, int(left), int(y))
}

// BlendColor 按 t ∈ [0, 1] 在 from 与 to 之间线性插值
func BlendColor(from, to color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{R: lerp(from.R, to.R), G: lerp(from.G, to.G), B: lerp(from.B, to.B), A: lerp(from.A, to.A)}
}

// withAlpha 返回按 alpha 缩放后的预乘颜色
func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	alpha = clamp01(alpha)
	scale := func(v uint8) uint8 { return uint8(math.Round(float64(v) * alpha)) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: scale(c.A)}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// statusLine 场景状态栏文本
func statusLine(view game.SceneView) string {
	return fmt.Sprintf("zoom %.2f  camera (%.0f, %.0f)  effects %d  sounds %d",
		view.Zoom, view.CameraX, view.CameraY, len(view.Effects), view.Sounds)
}
