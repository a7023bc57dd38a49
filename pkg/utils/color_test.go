package utils

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.RGBA
		ok    bool
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}, true},
		{"#0f0", color.RGBA{0, 255, 0, 255}, true},
		{"0x102030", color.RGBA{0x10, 0x20, 0x30, 255}, true},
		{"#10203080", color.RGBA{0x10, 0x20, 0x30, 0x80}, true},
		{" White ", color.RGBA{255, 255, 255, 255}, true},
		{"#zzzzzz", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
		{"purple-ish", color.RGBA{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseColor(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; 期望 %v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
