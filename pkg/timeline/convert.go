package timeline

import "math"

// 帧、秒、像素之间的换算
//
// zoom 表示 1 秒对应的像素宽度。fps 或 zoom 不为正数时所有换算返回 0，不会 panic。

// FrameToTime 帧 → 秒
func FrameToTime(frame int, fps int) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frame) / float64(fps)
}

// TimeToFrame 秒 → 帧（四舍五入）
func TimeToFrame(seconds float64, fps int) int {
	if fps <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(fps)))
}

// FrameToPixels 帧 → 像素
func FrameToPixels(frame float64, fps int, zoom float64) float64 {
	if fps <= 0 || zoom <= 0 {
		return 0
	}
	return frame / float64(fps) * zoom
}

// PixelsToFrame 像素 → 帧（四舍五入）
func PixelsToFrame(px float64, fps int, zoom float64) int {
	if fps <= 0 || zoom <= 0 {
		return 0
	}
	return int(math.Round(px / zoom * float64(fps)))
}

// TimeToPixels 秒 → 像素
func TimeToPixels(seconds float64, zoom float64) float64 {
	if zoom <= 0 {
		return 0
	}
	return seconds * zoom
}

// PixelsToTime 像素 → 秒
func PixelsToTime(px float64, zoom float64) float64 {
	if zoom <= 0 {
		return 0
	}
	return px / zoom
}

// Scale 时间轴的换算参数
type Scale struct {
	FPS  int
	Zoom float64 // 像素/秒
}

func (s Scale) FrameToTime(frame int) float64 { return FrameToTime(frame, s.FPS) }
func (s Scale) TimeToFrame(seconds float64) int { return TimeToFrame(seconds, s.FPS) }
func (s Scale) FrameToPixels(frame int) float64 { return FrameToPixels(float64(frame), s.FPS, s.Zoom) }
func (s Scale) PixelsToFrame(px float64) int { return PixelsToFrame(px, s.FPS, s.Zoom) }
func (s Scale) FrameToMillis(frame int) float64 { return FrameToTime(frame, s.FPS) * 1000 }
func (s Scale) MillisToFrames(ms float64) int { return TimeToFrame(ms/1000, s.FPS) }
