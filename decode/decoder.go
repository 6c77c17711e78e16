package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mixmentor/mixmentor/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64 // interleaved samples in [-1, 1]
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// Mono collapses interleaved channels to a single channel by
// arithmetic mean. Already-mono data is returned as is.
func (a *AudioData) Mono() []float64 {
	if a.Channels <= 1 {
		return a.PCM
	}

	frames := len(a.PCM) / a.Channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < a.Channels; c++ {
			sum += a.PCM[i*a.Channels+c]
		}
		mono[i] = sum / float64(a.Channels)
	}
	return mono
}

// Decoder decodes WAV and MP3 payloads into PCM in-process. There is
// no transcoding or resampling: samples come out at the source rate.
type Decoder struct {
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder() *Decoder {
	return &Decoder{
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// Supported reports whether the file extension names a decodable format.
func Supported(ext string) bool {
	switch normalizeExt(ext) {
	case ".wav", ".mp3":
		return true
	}
	return false
}

// DecodeFile decodes an audio file and returns PCM data
func (d *Decoder) DecodeFile(path string) (*AudioData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	return d.DecodeBytes(data, filepath.Ext(path))
}

// DecodeBytes decodes raw audio bytes; ext selects the container format.
func (d *Decoder) DecodeBytes(data []byte, ext string) (*AudioData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio data")
	}

	switch normalizeExt(ext) {
	case ".wav":
		return d.decodeWAV(data)
	case ".mp3":
		return d.decodeMP3(data)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
}

func (d *Decoder) finish(pcm []float64, sampleRate, channels int) (*AudioData, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid stream parameters: rate=%d channels=%d", sampleRate, channels)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	frames := len(pcm) / channels
	duration := time.Duration(frames) * time.Second / time.Duration(sampleRate)

	d.logger.Debug("audio decoded", logging.Fields{
		"samples":     len(pcm),
		"sample_rate": sampleRate,
		"channels":    channels,
		"duration":    duration.Seconds(),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   duration,
	}, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
