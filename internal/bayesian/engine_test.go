package bayesian

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

// strongFactors is a high-conviction setup in a calm market.
func strongFactors() Factors {
	return Factors{
		SignalStrength:     0.9,
		TrendStrength:      0.9,
		Momentum:           0.8,
		Volatility:         0.1,
		VolumeProfile:      0.9,
		TimeframeAlignment: 1.0,
		StructureQuality:   0.8,
		ChaosRiskLevel:     0.1,
	}
}

// weakFactors is a low-conviction setup in a chaotic market.
func weakFactors() Factors {
	return Factors{
		SignalStrength:     0.3,
		TrendStrength:      0.1,
		Momentum:           0.0,
		Volatility:         0.9,
		VolumeProfile:      0.4,
		TimeframeAlignment: 0.3,
		StructureQuality:   0.2,
		ChaosRiskLevel:     0.85,
	}
}

// TestAnalyzeStrongSetup tests that a high-conviction calm setup grades
// excellent with a high posterior
func TestAnalyzeStrongSetup(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	analysis := engine.Analyze(strongFactors())

	if analysis.Posterior <= 0.75 {
		t.Errorf("expected posterior above 0.75, got %f", analysis.Posterior)
	}
	if analysis.QualityTier != TierExcellent {
		t.Errorf("expected excellent tier, got %s (posterior %f, rr %f, conf %f)",
			analysis.QualityTier, analysis.Posterior, analysis.RiskRewardRatio, analysis.ConfidenceLevel)
	}
	if analysis.RiskRewardRatio <= 2.5 {
		t.Errorf("expected risk:reward above 2.5, got %f", analysis.RiskRewardRatio)
	}
	if analysis.ExpectedReturn <= 0 {
		t.Errorf("expected positive expected return, got %f", analysis.ExpectedReturn)
	}
}

// TestAnalyzeWeakSetup tests that a chaotic low-conviction setup grades poor
// with the risk:reward clamped at its floor
func TestAnalyzeWeakSetup(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	analysis := engine.Analyze(weakFactors())

	if analysis.QualityTier != TierPoor {
		t.Errorf("expected poor tier, got %s", analysis.QualityTier)
	}
	if analysis.Posterior >= 0.55 {
		t.Errorf("expected posterior below 0.55, got %f", analysis.Posterior)
	}
	if analysis.RiskRewardRatio != 1.0 {
		t.Errorf("expected risk:reward clamped at 1.0, got %f", analysis.RiskRewardRatio)
	}
}

// TestAnalyzeInvariants tests the numeric contracts over a grid of inputs,
// including deliberately out-of-range factors
func TestAnalyzeInvariants(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	grid := []Factors{
		{},
		strongFactors(),
		weakFactors(),
		{SignalStrength: 1, TrendStrength: 1, Momentum: 1, Volatility: 1, VolumeProfile: 1, TimeframeAlignment: 1, StructureQuality: 1, ChaosRiskLevel: 0},
		{SignalStrength: 1, TrendStrength: -1, Momentum: -1, Volatility: 1, VolumeProfile: 1, TimeframeAlignment: 1, StructureQuality: 1, ChaosRiskLevel: 1},
		{SignalStrength: 5, TrendStrength: -3, Momentum: 7, Volatility: -2, VolumeProfile: 9, TimeframeAlignment: -1, StructureQuality: 4, ChaosRiskLevel: 6},
	}

	for i, f := range grid {
		a := engine.Analyze(f)

		if a.Prior < 0.30 || a.Prior > 0.80 {
			t.Errorf("case %d: prior %f outside [0.30,0.80]", i, a.Prior)
		}
		if a.Likelihood < 0 || a.Likelihood > 0.95 {
			t.Errorf("case %d: likelihood %f outside [0,0.95]", i, a.Likelihood)
		}
		if a.Evidence < 0.10 {
			t.Errorf("case %d: evidence %f below floor 0.10", i, a.Evidence)
		}
		if a.Posterior < 0 || a.Posterior > 1 {
			t.Errorf("case %d: posterior %f outside [0,1]", i, a.Posterior)
		}
		if a.RiskRewardRatio < 1.0 || a.RiskRewardRatio > 5.0 {
			t.Errorf("case %d: risk:reward %f outside [1,5]", i, a.RiskRewardRatio)
		}
		if a.ConfidenceLevel < 0 || a.ConfidenceLevel > 1 {
			t.Errorf("case %d: confidence %f outside [0,1]", i, a.ConfidenceLevel)
		}
	}
}

// TestAnalyzeChaosMonotonicity tests that raising only the chaos level never
// improves the posterior or the risk:reward
func TestAnalyzeChaosMonotonicity(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	prev := engine.Analyze(strongFactors())
	for _, chaos := range []float64{0.3, 0.5, 0.7, 0.9} {
		f := strongFactors()
		f.ChaosRiskLevel = chaos
		cur := engine.Analyze(f)

		if cur.Posterior > prev.Posterior {
			t.Errorf("chaos %f: posterior rose from %f to %f", chaos, prev.Posterior, cur.Posterior)
		}
		if cur.RiskRewardRatio > prev.RiskRewardRatio {
			t.Errorf("chaos %f: risk:reward rose from %f to %f", chaos, prev.RiskRewardRatio, cur.RiskRewardRatio)
		}
		prev = cur
	}
}

// TestAnalyzeDeterministic tests that identical factors produce identical
// analyses
func TestAnalyzeDeterministic(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	first := engine.Analyze(strongFactors())
	second := engine.Analyze(strongFactors())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("analyses differ: %+v vs %+v", first, second)
	}
}

// TestQualityTierGates tests the tier boundaries directly
func TestQualityTierGates(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	cases := []struct {
		posterior, rr, chaos, confidence float64
		want                             QualityTier
	}{
		{0.80, 3.0, 0.2, 0.80, TierExcellent},
		{0.70, 2.5, 0.4, 0.70, TierGood},
		{0.60, 1.8, 0.6, 0.60, TierAcceptable},
		{0.50, 1.2, 0.9, 0.40, TierPoor},
		// Excellent posterior with extreme chaos still degrades.
		{0.90, 4.0, 0.9, 0.90, TierPoor},
	}

	for _, tc := range cases {
		got := engine.qualityTier(tc.posterior, tc.rr, tc.chaos, tc.confidence)
		if got != tc.want {
			t.Errorf("tier(%f,%f,%f,%f): expected %s, got %s",
				tc.posterior, tc.rr, tc.chaos, tc.confidence, tc.want, got)
		}
	}
}
