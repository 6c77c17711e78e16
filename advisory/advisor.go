package advisory

import (
	"fmt"
	"strings"

	"github.com/mixmentor/mixmentor/analysis"
)

// Threshold constants for the per-metric rules. Fixed at compile time
// so advisory output is reproducible; tuned against the energy-based
// loudness proxy, not true LUFS.
const (
	LoudnessLow  = -15.5 // dB-like
	LoudnessHigh = -11.5
	PeakLow      = 0.70 // amplitude ratio
	PeakHigh     = 0.98
	CrestLow     = 3.0 // ratio
	CrestHigh    = 6.0
	DominantLow  = 80.0 // Hz
	DominantHigh = 3000.0
	CentroidLow  = 1400.0 // Hz
	CentroidHigh = 4800.0
)

// Headline messages. Rules are evaluated in fixed order (loudness,
// peak, crest factor, dominant frequency, centroid) and the first one
// that fires on either branch supplies the headline; later violations
// keep their tips but never the headline.
const (
	HeadlineLoudnessHigh = "Loudness is too high – possible distortion/volume reduction."
	HeadlineLoudnessLow  = "Loudness is low – mix won't stand out compared to others."
	HeadlinePeakHigh     = "High peak – risk of clipping/distortion."
	HeadlinePeakLow      = "Peak level is low – dynamic range is underused."
	HeadlineCrestLow     = "Mix is over-compressed – loss of dynamics."
	HeadlineCrestHigh    = "Mix is very dynamic – may need gentle compression."
	HeadlineDominantLow  = "Bass dominates the spectrum – possible low-end buildup."
	HeadlineDominantHigh = "High frequencies dominate – possible harshness."
	HeadlineCentroidLow  = "Mix sounds dark – brightness is lacking."
	HeadlineCentroidHigh = "Mix sounds sharp – high-end is dominant."
	HeadlineBalanced     = "Your mix is balanced and excellent! Keep it up."
)

// Advice is the advisory output for one metric set: a single headline
// verdict plus ordered per-metric tips and explanations.
type Advice struct {
	Headline     string   `json:"main_tip"`
	Tips         []string `json:"tips"`
	Explanations []string `json:"explanations"`
}

// JoinedTips returns the tips joined for flat-record persistence.
func (a *Advice) JoinedTips() string {
	return strings.Join(a.Tips, "; ")
}

// flag records a headline candidate; only the first one sticks.
func (a *Advice) flag(headline string) {
	if a.Headline == "" {
		a.Headline = headline
	}
}

func (a *Advice) tip(format string, args ...any) {
	a.Tips = append(a.Tips, fmt.Sprintf(format, args...))
}

func (a *Advice) explain(text string) {
	a.Explanations = append(a.Explanations, text)
}

// Advise maps metrics to mixing feedback. Output is deterministic:
// every metric contributes exactly one tip (violation or healthy), and
// the explanations follow the same fixed evaluation order.
func Advise(m *analysis.Metrics) *Advice {
	a := &Advice{}

	switch {
	case m.LoudnessProxy > LoudnessHigh:
		a.tip("High loudness (%.2f LUFS). It's recommended to reduce master volume/limiter to about -13~-14 LUFS to avoid distortion and automatic volume reduction on streaming platforms.", m.LoudnessProxy)
		a.flag(HeadlineLoudnessHigh)
		a.explain("LUFS represents perceived loudness. Too high values will cause platforms like Spotify to reduce volume automatically, possibly causing distortion.")
	case m.LoudnessProxy < LoudnessLow:
		a.tip("Low loudness (%.2f LUFS). Consider raising volume or remastering to make the mix stand out.", m.LoudnessProxy)
		a.flag(HeadlineLoudnessLow)
		a.explain("Low LUFS means the track sounds weak compared to others, especially in playlists.")
	default:
		a.tip("Average loudness is normal (%.2f LUFS) – great!", m.LoudnessProxy)
		a.explain("Loudness is within normal range, but make sure other parameters are good too.")
	}

	switch {
	case m.Peak > PeakHigh:
		a.tip("High peak value (%.2f). Recommended to lower to -0.5dBFS to avoid clipping or distortion.", m.Peak)
		a.flag(HeadlinePeakHigh)
		a.explain("High peak values mean audio signal touches upper limit, risking digital distortion.")
	case m.Peak < PeakLow:
		a.tip("Low peak value (%.2f). Consider increasing gain to utilize dynamic range.", m.Peak)
		a.flag(HeadlinePeakLow)
		a.explain("Low peak means mix isn't utilizing full dynamic range – master gain can be raised.")
	default:
		a.tip("Peak level is within a healthy range (%.2f).", m.Peak)
	}

	switch {
	case m.CrestFactor < CrestLow:
		a.tip("Low Crest Factor (%.2f). Mix is too compressed – try reducing compression/limiter.", m.CrestFactor)
		a.flag(HeadlineCrestLow)
		a.explain("Low Crest Factor indicates small difference between peaks and noise floor, meaning heavy compression.")
	case m.CrestFactor > CrestHigh:
		a.tip("High Crest Factor (%.2f). Mix is very dynamic – might need compression.", m.CrestFactor)
		a.flag(HeadlineCrestHigh)
		a.explain("High Crest Factor is typical for classical or soundtrack music; if not, mix might be too soft.")
	default:
		a.tip("Crest Factor is within normal range (%.2f).", m.CrestFactor)
	}

	switch {
	case m.DominantFrequency < DominantLow:
		a.tip("Bass dominant frequency (%.1fHz). Check for muddy build-up in 20–80Hz range.", m.DominantFrequency)
		a.flag(HeadlineDominantLow)
		a.explain("Very low dominant frequency suggests bass is overpowering. Use headphones and EQ to check.")
	case m.DominantFrequency > DominantHigh:
		a.tip("High frequency dominant (%.1fHz). Possibly too much high-end boost.", m.DominantFrequency)
		a.flag(HeadlineDominantHigh)
		a.explain("High dominant frequency can cause harshness and listener fatigue. Balance highs and lows.")
	default:
		a.tip("Dominant frequency is within a healthy range (%.1fHz).", m.DominantFrequency)
	}

	switch {
	case m.SpectralCentroid < CentroidLow:
		a.tip("Low spectral centroid (%.1fHz). Consider adding brightness (EQ around 2kHz-7kHz).", m.SpectralCentroid)
		a.flag(HeadlineCentroidLow)
		a.explain("Low centroid results in a 'dark' mix; sometimes a bit of brightness is desired for modern sound.")
	case m.SpectralCentroid > CentroidHigh:
		a.tip("High spectral centroid (%.1fHz). High-end is dominant – consider EQ adjustments.", m.SpectralCentroid)
		a.flag(HeadlineCentroidHigh)
		a.explain("Too high centroid makes mix sound 'sharp' or 'thin', which can be unpleasant for long listening.")
	default:
		a.tip("Spectral centroid is balanced (%.1fHz).", m.SpectralCentroid)
	}

	if a.Headline == "" {
		a.Headline = HeadlineBalanced
	}

	return a
}
