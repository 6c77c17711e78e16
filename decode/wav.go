package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// decodeWAV decodes an uncompressed waveform payload.
func (d *Decoder) decodeWAV(data []byte) (*AudioData, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read PCM buffer: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	// Scale integer samples to [-1, 1]
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	pcm := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		pcm[i] = float64(s) * scale
	}

	return d.finish(pcm, buf.Format.SampleRate, buf.Format.NumChannels)
}
