package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/mixmentor/mixmentor/decode"
	"github.com/mixmentor/mixmentor/logging"
)

// Epsilon guards log and ratio denominators so silence yields finite
// metrics instead of -Inf or NaN.
const Epsilon = 1e-12

// ErrInvalidInput reports a contract violation: the extractor was
// handed an empty sample buffer. Upstream validation should make this
// unreachable.
var ErrInvalidInput = errors.New("analysis: empty sample buffer")

// Metrics is the fixed set of scalar acoustic metrics computed from
// one mono signal. Every value is a pure function of the input
// samples; recomputation on identical samples yields identical values.
//
// LoudnessProxy is a simplified energy-based stand-in for loudness,
// not ITU-R BS.1770 compliant. Downstream thresholds are tuned against
// this proxy.
type Metrics struct {
	Duration          float64 `json:"duration"` // seconds
	RMS               float64 `json:"rms"`
	Peak              float64 `json:"peak"`
	CrestFactor       float64 `json:"crest_factor"`
	LoudnessProxy     float64 `json:"lufs"`
	SpectralCentroid  float64 `json:"centroid"`      // Hz
	DominantFrequency float64 `json:"dominant_freq"` // Hz
	SampleRate        int     `json:"sample_rate"`
	SampleCount       int     `json:"sample_count"`
}

// Extractor computes Metrics from decoded audio.
type Extractor struct {
	logger logging.Logger
}

// NewExtractor creates a new feature extractor
func NewExtractor() *Extractor {
	return &Extractor{
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}
}

// Extract computes the metric set for the given audio. Multi-channel
// input is collapsed to mono by arithmetic mean before analysis.
func (e *Extractor) Extract(audio *decode.AudioData) (*Metrics, error) {
	if audio == nil || len(audio.PCM) == 0 {
		return nil, ErrInvalidInput
	}
	return e.ExtractMono(audio.Mono(), audio.SampleRate)
}

// ExtractMono computes the metric set from raw mono samples.
func (e *Extractor) ExtractMono(samples []float64, sampleRate int) (*Metrics, error) {
	if len(samples) == 0 {
		return nil, ErrInvalidInput
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	// RMS and peak in one pass
	peak := 0.0
	sumSquares := 0.0
	for _, s := range samples {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
		sumSquares += s * s
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))

	spectrum := magnitudeSpectrum(samples)
	freqs := frequencyBins(len(spectrum), len(samples), sampleRate)

	weighted := 0.0
	for i := range spectrum {
		weighted += freqs[i] * spectrum[i]
	}
	centroid := weighted / (floats.Sum(spectrum) + Epsilon)

	// MaxIdx returns the first index on ties, so an all-zero spectrum
	// lands on bin 0.
	dominant := freqs[floats.MaxIdx(spectrum)]

	m := &Metrics{
		Duration:          float64(len(samples)) / float64(sampleRate),
		RMS:               rms,
		Peak:              peak,
		CrestFactor:       peak / (rms + Epsilon),
		LoudnessProxy:     20 * math.Log10(rms+Epsilon),
		SpectralCentroid:  centroid,
		DominantFrequency: dominant,
		SampleRate:        sampleRate,
		SampleCount:       len(samples),
	}

	e.logger.Debug("metrics extracted", logging.Fields{
		"samples":       m.SampleCount,
		"sample_rate":   m.SampleRate,
		"duration":      m.Duration,
		"rms":           m.RMS,
		"peak":          m.Peak,
		"lufs":          m.LoudnessProxy,
		"centroid":      m.SpectralCentroid,
		"dominant_freq": m.DominantFrequency,
	})

	return m, nil
}

// magnitudeSpectrum computes the one-sided magnitude spectrum over
// the full signal length (N/2+1 bins for even N).
func magnitudeSpectrum(samples []float64) []float64 {
	full := fft.FFTReal(samples)

	bins := len(full)/2 + 1
	bins = min(bins, len(full))

	mags := make([]float64, bins)
	for i := 0; i < bins; i++ {
		mags[i] = cmplx.Abs(full[i])
	}
	return mags
}

// frequencyBins returns the center frequency of each one-sided bin,
// bin_k = k * sampleRate / N.
func frequencyBins(numBins, n, sampleRate int) []float64 {
	freqs := make([]float64, numBins)
	for k := 0; k < numBins; k++ {
		freqs[k] = float64(k) * float64(sampleRate) / float64(n)
	}
	return freqs
}
