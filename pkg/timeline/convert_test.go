package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversionsWithInvalidScale(t *testing.T) {
	assert.Equal(t, 0.0, FrameToTime(30, 0))
	assert.Equal(t, 0, TimeToFrame(1.5, -1))
	assert.Equal(t, 0.0, FrameToPixels(30, 60, 0))
	assert.Equal(t, 0.0, FrameToPixels(30, 0, 100))
	assert.Equal(t, 0, PixelsToFrame(100, 60, -5))
	assert.Equal(t, 0.0, TimeToPixels(2, 0))
	assert.Equal(t, 0.0, PixelsToTime(2, 0))
}

func TestConversions(t *testing.T) {
	assert.Equal(t, 0.5, FrameToTime(30, 60))
	assert.Equal(t, 90, TimeToFrame(1.5, 60))
	assert.Equal(t, 50.0, FrameToPixels(30, 60, 100))
	assert.Equal(t, 30, PixelsToFrame(50, 60, 100))
	assert.Equal(t, 150.0, TimeToPixels(1.5, 100))
	assert.Equal(t, 1.5, PixelsToTime(150, 100))
}

func TestConversionRoundTrip(t *testing.T) {
	for _, fps := range []int{24, 30, 60} {
		for _, zoom := range []float64{25, 100, 333.3} {
			for f := 0; f <= 600; f++ {
				assert.Equal(t, f, TimeToFrame(FrameToTime(f, fps), fps))
				back := PixelsToFrame(FrameToPixels(float64(f), fps, zoom), fps, zoom)
				assert.InDelta(t, f, back, 1, "fps=%d zoom=%v frame=%d", fps, zoom, f)
			}
		}
	}
	for _, sec := range []float64{0, 0.1, 1.25, 7.5} {
		assert.InDelta(t, sec, PixelsToTime(TimeToPixels(sec, 120), 120), 1e-9)
	}
}

func TestScaleMillis(t *testing.T) {
	s := Scale{FPS: 60, Zoom: 100}
	assert.Equal(t, 500.0, s.FrameToMillis(30))
	assert.Equal(t, 30, s.MillisToFrames(500))
	assert.Equal(t, s.FrameToPixels(60), 100.0)
}
