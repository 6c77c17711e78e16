package decode

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV encodes 16-bit PCM into a temp WAV file and returns its path.
func writeWAV(t *testing.T, samples []int, sampleRate, channels int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return path
}

func TestDecodeWAVMono(t *testing.T) {
	samples := []int{0, 16384, -16384, 32767, -32768}
	path := writeWAV(t, samples, 44100, 1)

	d := NewDecoder()
	got, err := d.DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}

	if got.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", got.SampleRate)
	}
	if got.Channels != 1 {
		t.Errorf("Channels = %d, want 1", got.Channels)
	}
	if len(got.PCM) != len(samples) {
		t.Fatalf("len(PCM) = %d, want %d", len(got.PCM), len(samples))
	}

	want := []float64{0, 0.5, -0.5, 32767.0 / 32768.0, -1.0}
	for i, w := range want {
		if math.Abs(got.PCM[i]-w) > 1e-9 {
			t.Errorf("PCM[%d] = %v, want %v", i, got.PCM[i], w)
		}
	}
}

func TestDecodeWAVStereo(t *testing.T) {
	// Interleaved L/R frames.
	samples := []int{16384, -16384, 8192, -8192}
	path := writeWAV(t, samples, 48000, 2)

	d := NewDecoder()
	got, err := d.DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}

	if got.Channels != 2 {
		t.Errorf("Channels = %d, want 2", got.Channels)
	}
	if got.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", got.SampleRate)
	}

	mono := got.Mono()
	if len(mono) != 2 {
		t.Fatalf("len(mono) = %d, want 2 frames", len(mono))
	}
	// L and R cancel per frame.
	for i, m := range mono {
		if math.Abs(m) > 1e-9 {
			t.Errorf("mono[%d] = %v, want 0", i, m)
		}
	}
}

func TestDecodeBytesErrors(t *testing.T) {
	d := NewDecoder()

	tests := []struct {
		name string
		data []byte
		ext  string
	}{
		{"empty", nil, ".wav"},
		{"unsupported_ext", []byte("RIFF"), ".ogg"},
		{"garbage_wav", []byte("not a wav file at all"), ".wav"},
		{"garbage_mp3", []byte("not an mp3 file at all"), ".mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.DecodeBytes(tt.data, tt.ext); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestDecodeFileMissing(t *testing.T) {
	d := NewDecoder()
	if _, err := d.DecodeFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".wav", true},
		{".WAV", true},
		{"wav", true},
		{".mp3", true},
		{".MP3", true},
		{".flac", false},
		{".ogg", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.ext); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestMonoPassthrough(t *testing.T) {
	a := &AudioData{PCM: []float64{0.1, 0.2, 0.3}, SampleRate: 44100, Channels: 1}
	mono := a.Mono()
	if len(mono) != 3 || mono[1] != 0.2 {
		t.Errorf("Mono() = %v, want unchanged samples", mono)
	}
}

func TestDecodeDuration(t *testing.T) {
	samples := make([]int, 44100)
	path := writeWAV(t, samples, 44100, 1)

	d := NewDecoder()
	got, err := d.DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if math.Abs(got.Duration.Seconds()-1.0) > 1e-6 {
		t.Errorf("Duration = %v, want 1s", got.Duration)
	}
}
