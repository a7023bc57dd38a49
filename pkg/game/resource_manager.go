package game

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/gonewx/battleskill/pkg/config"
)

// ResourceManager loads and caches the assets referenced by skill steps:
// decoded sound effects (PCM) and background images.
//
// Files are read through config.ReadDataFile, so a file on disk wins over the
// embedded default data with the same path.
//
// Unlike the rest of the game package, the caches are guarded by a mutex:
// sound steps are dispatched from executor goroutines.
//
// Usage:
//
//	audioContext := audio.NewContext(48000)
//	rm := NewResourceManager(audioContext)
//	pcm, err := rm.LoadSound("data/sounds/slash.ogg")
type ResourceManager struct {
	mu           sync.Mutex
	imageCache   map[string]*ebiten.Image // Cache for loaded images: path -> Image
	soundCache   map[string][]byte        // Cache for decoded PCM: path -> samples
	audioContext *audio.Context           // Global audio context, nil in headless mode
}

// NewResourceManager creates and initializes a new ResourceManager instance.
//
// Parameters:
//   - audioContext: The global audio context, or nil when audio is disabled.
func NewResourceManager(audioContext *audio.Context) *ResourceManager {
	return &ResourceManager{
		imageCache:   make(map[string]*ebiten.Image),
		soundCache:   make(map[string][]byte),
		audioContext: audioContext,
	}
}

// AudioContext returns the audio context used for playback (may be nil).
func (rm *ResourceManager) AudioContext() *audio.Context {
	return rm.audioContext
}

// LoadImage loads an image file and caches it for future use.
// Supported formats: PNG and JPEG.
func (rm *ResourceManager) LoadImage(path string) (*ebiten.Image, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if cachedImage, exists := rm.imageCache[path]; exists {
		return cachedImage, nil
	}

	data, err := config.ReadDataFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	ebitenImage := ebiten.NewImageFromImage(img)
	rm.imageCache[path] = ebitenImage
	return ebitenImage, nil
}

// LoadSound loads a sound effect and returns its decoded PCM bytes
// (16-bit little-endian stereo at the file's own sample rate).
// Supported formats: MP3 (.mp3), OGG Vorbis (.ogg) and WAV (.wav).
func (rm *ResourceManager) LoadSound(path string) ([]byte, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if pcm, exists := rm.soundCache[path]; exists {
		return pcm, nil
	}

	data, err := config.ReadDataFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sound file %s: %w", path, err)
	}
	pcm, err := decodeAudio(path, data)
	if err != nil {
		return nil, err
	}
	rm.soundCache[path] = pcm
	return pcm, nil
}

// decodeAudio picks the decoder by file extension.
func decodeAudio(path string, data []byte) ([]byte, error) {
	reader := bytes.NewReader(data)
	ext := strings.ToLower(filepath.Ext(path))

	var stream io.Reader
	switch ext {
	case ".mp3":
		decodedStream, err := mp3.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", path, err)
		}
		stream = decodedStream
	case ".ogg":
		decodedStream, err := vorbis.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", path, err)
		}
		stream = decodedStream
	case ".wav":
		decodedStream, err := wav.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", path, err)
		}
		stream = decodedStream
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg, .wav)", ext)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded audio %s: %w", path, err)
	}
	return pcm, nil
}
