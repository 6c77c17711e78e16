package advisory

import (
	"strings"
	"testing"

	"github.com/mixmentor/mixmentor/analysis"
)

// balanced metrics sit comfortably inside every threshold band.
func balancedMetrics() *analysis.Metrics {
	return &analysis.Metrics{
		LoudnessProxy:     -13.0,
		Peak:              0.85,
		CrestFactor:       4.5,
		DominantFrequency: 1000,
		SpectralCentroid:  2500,
	}
}

func TestAdviseBalanced(t *testing.T) {
	a := Advise(balancedMetrics())

	if a.Headline != HeadlineBalanced {
		t.Errorf("Headline = %q, want %q", a.Headline, HeadlineBalanced)
	}
	if len(a.Tips) != 5 {
		t.Errorf("len(Tips) = %d, want one tip per metric", len(a.Tips))
	}
	// Only the healthy loudness branch carries an explanation.
	if len(a.Explanations) != 1 {
		t.Errorf("len(Explanations) = %d, want 1", len(a.Explanations))
	}
}

func TestAdviseSingleViolation(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(m *analysis.Metrics)
		wantHeadline string
	}{
		{"loudness_high", func(m *analysis.Metrics) { m.LoudnessProxy = -10 }, HeadlineLoudnessHigh},
		{"loudness_low", func(m *analysis.Metrics) { m.LoudnessProxy = -20 }, HeadlineLoudnessLow},
		{"peak_high", func(m *analysis.Metrics) { m.Peak = 0.99 }, HeadlinePeakHigh},
		{"peak_low", func(m *analysis.Metrics) { m.Peak = 0.5 }, HeadlinePeakLow},
		{"crest_low", func(m *analysis.Metrics) { m.CrestFactor = 2.0 }, HeadlineCrestLow},
		{"crest_high", func(m *analysis.Metrics) { m.CrestFactor = 8.0 }, HeadlineCrestHigh},
		{"dominant_low", func(m *analysis.Metrics) { m.DominantFrequency = 50 }, HeadlineDominantLow},
		{"dominant_high", func(m *analysis.Metrics) { m.DominantFrequency = 5000 }, HeadlineDominantHigh},
		{"centroid_low", func(m *analysis.Metrics) { m.SpectralCentroid = 800 }, HeadlineCentroidLow},
		{"centroid_high", func(m *analysis.Metrics) { m.SpectralCentroid = 6000 }, HeadlineCentroidHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := balancedMetrics()
			tt.mutate(m)

			a := Advise(m)
			if a.Headline != tt.wantHeadline {
				t.Errorf("Headline = %q, want %q", a.Headline, tt.wantHeadline)
			}
			if len(a.Tips) != 5 {
				t.Errorf("len(Tips) = %d, want 5", len(a.Tips))
			}
		})
	}
}

func TestAdviseFirstViolationWinsHeadline(t *testing.T) {
	m := balancedMetrics()
	m.LoudnessProxy = -10 // fires first
	m.Peak = 0.99         // fires too, but later in evaluation order

	a := Advise(m)
	if a.Headline != HeadlineLoudnessHigh {
		t.Errorf("Headline = %q, want earlier rule %q", a.Headline, HeadlineLoudnessHigh)
	}

	// The later violation still contributes its tip and explanation.
	if !containsSubstring(a.Tips, "High peak value") {
		t.Errorf("Tips missing the peak violation: %v", a.Tips)
	}
	if len(a.Explanations) != 2 {
		t.Errorf("len(Explanations) = %d, want 2 (two violations)", len(a.Explanations))
	}
}

func TestAdviseSilence(t *testing.T) {
	// Silence trips loudness-low, crest-low, dominant-low and
	// centroid-low; loudness is evaluated first.
	m := &analysis.Metrics{
		LoudnessProxy:     -240,
		Peak:              0,
		CrestFactor:       0,
		DominantFrequency: 0,
		SpectralCentroid:  0,
	}

	a := Advise(m)
	if a.Headline != HeadlineLoudnessLow {
		t.Errorf("Headline = %q, want %q", a.Headline, HeadlineLoudnessLow)
	}
	if len(a.Tips) != 5 {
		t.Errorf("len(Tips) = %d, want 5", len(a.Tips))
	}
}

func TestAdviseBoundariesAreHealthy(t *testing.T) {
	// Thresholds are strict comparisons: landing exactly on a bound
	// stays in the healthy band.
	m := &analysis.Metrics{
		LoudnessProxy:     LoudnessHigh,
		Peak:              PeakHigh,
		CrestFactor:       CrestLow,
		DominantFrequency: DominantHigh,
		SpectralCentroid:  CentroidLow,
	}

	a := Advise(m)
	if a.Headline != HeadlineBalanced {
		t.Errorf("Headline = %q, want %q at exact bounds", a.Headline, HeadlineBalanced)
	}
}

func TestAdviseDeterministic(t *testing.T) {
	m := balancedMetrics()
	m.SpectralCentroid = 6000

	a1 := Advise(m)
	a2 := Advise(m)

	if a1.Headline != a2.Headline {
		t.Errorf("headlines differ: %q vs %q", a1.Headline, a2.Headline)
	}
	if a1.JoinedTips() != a2.JoinedTips() {
		t.Errorf("tips differ:\n%s\n%s", a1.JoinedTips(), a2.JoinedTips())
	}
}

func TestJoinedTips(t *testing.T) {
	a := Advise(balancedMetrics())
	joined := a.JoinedTips()

	if got := strings.Count(joined, "; "); got != 4 {
		t.Errorf("JoinedTips has %d separators, want 4 for 5 tips", got)
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
