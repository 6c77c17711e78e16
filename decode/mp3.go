package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// decodeMP3 decodes a compressed lossy payload.
func (d *Decoder) decodeMP3(data []byte) (*AudioData, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("read mp3 stream: %w", err)
	}

	// go-mp3 emits 16-bit little-endian stereo frames (4 bytes each)
	raw = raw[:len(raw)-len(raw)%4]
	if len(raw) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	pcm := make([]float64, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		pcm[i/2] = float64(int16(binary.LittleEndian.Uint16(raw[i:i+2]))) / 32768.0
	}

	return d.finish(pcm, dec.SampleRate(), 2)
}
