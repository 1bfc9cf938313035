package risk

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func moderateInput() Input {
	return Input{
		Posterior:      0.7,
		Confidence:     0.7,
		ChaosRiskLevel: 0.2,
		Volatility:     0.3,
		RiskReward:     2.5,
		AccountBalance: 10000,
	}
}

// TestSizeMultiplicativeBounds tests the multiplicative model stays inside
// the position bounds and prices dollars from the percent
func TestSizeMultiplicativeBounds(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zerolog.Nop())
	result := engine.Size(moderateInput())

	if result.PercentOfCapital < MinPositionPercent || result.PercentOfCapital > MaxPositionPercent {
		t.Fatalf("size %f outside [%f,%f]", result.PercentOfCapital, MinPositionPercent, MaxPositionPercent)
	}

	dollars, _ := result.DollarAmount.Float64()
	expected := 10000 * result.PercentOfCapital
	if dollars < expected-0.01 || dollars > expected+0.01 {
		t.Errorf("dollar amount %f does not match percent %f of balance", dollars, result.PercentOfCapital)
	}

	lots, _ := result.LotSize.Float64()
	if lots <= 0 {
		t.Errorf("expected positive lot size, got %f", lots)
	}

	if len(result.AdjustmentFactors) != 4 {
		t.Errorf("expected 4 adjustment factors, got %d", len(result.AdjustmentFactors))
	}
	if len(result.Reasons) == 0 {
		t.Error("expected a sizing audit trail")
	}
}

// TestSizeChaosMonotonicity tests that more chaos never sizes larger
func TestSizeChaosMonotonicity(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zerolog.Nop())

	prev := engine.Size(moderateInput()).PercentOfCapital
	for _, chaos := range []float64{0.4, 0.6, 0.8, 0.95} {
		in := moderateInput()
		in.ChaosRiskLevel = chaos
		cur := engine.Size(in).PercentOfCapital

		if cur > prev {
			t.Errorf("chaos %f: size rose from %f to %f", chaos, prev, cur)
		}
		prev = cur
	}
}

// TestSizeExtremeChaosClampsToMinimum tests the minimum bound and micro tier
// under extreme chaos
func TestSizeExtremeChaosClampsToMinimum(t *testing.T) {
	in := moderateInput()
	in.ChaosRiskLevel = 0.95

	engine := NewEngine(DefaultConfig(), zerolog.Nop())
	result := engine.Size(in)

	if result.PercentOfCapital != MinPositionPercent {
		t.Errorf("expected clamp at %f, got %f", MinPositionPercent, result.PercentOfCapital)
	}
	if result.SizingTier != TierMicro {
		t.Errorf("expected micro tier above 0.7 chaos, got %s", result.SizingTier)
	}

	joined := strings.Join(result.Reasons, "; ")
	if !strings.Contains(joined, "minimum position bound") {
		t.Errorf("expected minimum-bound reason, got %q", joined)
	}
	if !strings.Contains(joined, "micro sizing") {
		t.Errorf("expected chaos-forced-micro reason, got %q", joined)
	}
}

// TestSizeMaximumClamp tests the ceiling with an oversized base risk
func TestSizeMaximumClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseRiskPercent = 0.2

	in := Input{
		Posterior:      0.8,
		Confidence:     0.9,
		ChaosRiskLevel: 0.1,
		Volatility:     0.1,
		RiskReward:     3.0,
		AccountBalance: 10000,
	}

	engine := NewEngine(cfg, zerolog.Nop())
	result := engine.Size(in)

	if result.PercentOfCapital != MaxPositionPercent {
		t.Errorf("expected clamp at %f, got %f", MaxPositionPercent, result.PercentOfCapital)
	}
	if result.SizingTier != TierAggressive {
		t.Errorf("expected aggressive tier, got %s", result.SizingTier)
	}
	if !strings.Contains(strings.Join(result.Reasons, "; "), "maximum position bound") {
		t.Error("expected maximum-bound reason")
	}
}

// TestSizeHalfKelly tests the Kelly fraction and the negative-edge floor
func TestSizeHalfKelly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ModelHalfKelly

	engine := NewEngine(cfg, zerolog.Nop())

	// p=0.6, b=2: kelly = (1.2-0.4)/2 = 0.4, halved to 0.2, then clamped.
	in := Input{Posterior: 0.6, Confidence: 1.0, RiskReward: 2.0, AccountBalance: 10000}
	result := engine.Size(in)
	if result.PercentOfCapital != MaxPositionPercent {
		t.Errorf("expected max clamp from a large Kelly edge, got %f", result.PercentOfCapital)
	}
	if k := result.AdjustmentFactors["kelly"]; k < 0.399 || k > 0.401 {
		t.Errorf("expected kelly factor near 0.4, got %f", k)
	}

	// Negative edge floors at zero before the minimum clamp applies.
	in = Input{Posterior: 0.3, Confidence: 0.5, RiskReward: 1.5, AccountBalance: 10000}
	result = engine.Size(in)
	if result.PercentOfCapital != MinPositionPercent {
		t.Errorf("expected min clamp on negative edge, got %f", result.PercentOfCapital)
	}
	if result.AdjustmentFactors["kelly"] != 0 {
		t.Errorf("expected kelly floored at 0, got %f", result.AdjustmentFactors["kelly"])
	}
}

// TestSizeDollarRounding tests the decimal dollar and lot arithmetic
func TestSizeDollarRounding(t *testing.T) {
	in := moderateInput()
	in.ChaosRiskLevel = 0.95 // forces the 0.005 minimum

	engine := NewEngine(DefaultConfig(), zerolog.Nop())
	result := engine.Size(in)

	if got := result.DollarAmount.String(); got != "50" {
		t.Errorf("expected $50 at 0.5%% of 10000, got %s", got)
	}
	if got := result.LotSize.String(); got != "0.05" {
		t.Errorf("expected 0.05 lots at $1000 per lot, got %s", got)
	}
}

// TestClassifyTier tests the tier ladder directly
func TestClassifyTier(t *testing.T) {
	cases := []struct {
		size      float64
		chaos     float64
		posterior float64
		want      SizingTier
	}{
		{0.05, 0.8, 0.9, TierMicro},
		{0.03, 0.6, 0.8, TierConservative},
		{0.03, 0.2, 0.5, TierConservative},
		{0.05, 0.2, 0.8, TierAggressive},
		{0.03, 0.2, 0.7, TierModerate},
		{0.01, 0.2, 0.7, TierConservative},
	}

	for _, tc := range cases {
		in := Input{ChaosRiskLevel: tc.chaos, Posterior: tc.posterior}
		if got := classifyTier(tc.size, in); got != tc.want {
			t.Errorf("tier(size=%f chaos=%f posterior=%f): expected %s, got %s",
				tc.size, tc.chaos, tc.posterior, tc.want, got)
		}
	}
}
