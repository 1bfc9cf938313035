package bayesian

import (
	"math"

	"github.com/rs/zerolog"
)

// QualityTier grades the overall trade setup
type QualityTier string

const (
	TierExcellent  QualityTier = "excellent"
	TierGood       QualityTier = "good"
	TierAcceptable QualityTier = "acceptable"
	TierPoor       QualityTier = "poor"
)

// Factors are the contextual inputs to the posterior estimate. All fields are
// normalized to [0,1] except TrendStrength and Momentum, which are signed and
// clamped to [-1,1].
type Factors struct {
	SignalStrength     float64 `json:"signal_strength"`
	TrendStrength      float64 `json:"trend_strength"` // signed
	Momentum           float64 `json:"momentum"`       // signed
	Volatility         float64 `json:"volatility"`
	VolumeProfile      float64 `json:"volume_profile"`
	TimeframeAlignment float64 `json:"timeframe_alignment"`
	StructureQuality   float64 `json:"structure_quality"`
	ChaosRiskLevel     float64 `json:"chaos_risk_level"`
}

// normalized returns a copy with every field forced into its documented range.
func (f Factors) normalized() Factors {
	f.SignalStrength = clamp01(f.SignalStrength)
	f.TrendStrength = clampSigned(f.TrendStrength)
	f.Momentum = clampSigned(f.Momentum)
	f.Volatility = clamp01(f.Volatility)
	f.VolumeProfile = clamp01(f.VolumeProfile)
	f.TimeframeAlignment = clamp01(f.TimeframeAlignment)
	f.StructureQuality = clamp01(f.StructureQuality)
	f.ChaosRiskLevel = clamp01(f.ChaosRiskLevel)
	return f
}

// Analysis is the posterior estimate with its numeric invariants: prior,
// likelihood, evidence, posterior and confidence in [0,1], risk:reward in
// [1,5].
type Analysis struct {
	Prior           float64     `json:"prior"`
	Likelihood      float64     `json:"likelihood"`
	Evidence        float64     `json:"evidence"`
	Posterior       float64     `json:"posterior"`
	ExpectedReturn  float64     `json:"expected_return"`
	RiskRewardRatio float64     `json:"risk_reward_ratio"`
	ConfidenceLevel float64     `json:"confidence_level"`
	QualityTier     QualityTier `json:"quality_tier"`
}

// Bounds applied during inference.
const (
	priorFloor    = 0.30
	priorCeiling  = 0.80
	likelihoodCap = 0.95
	evidenceFloor = 0.10 // keeps the posterior division finite
	rrFloor       = 1.0
	rrCeiling     = 5.0
)

// Engine converts a raw signal and contextual factors into a posterior
// success probability
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a Bayesian confidence engine
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Analyze runs the full inference. The computation is pure: identical factors
// always produce an identical analysis.
func (e *Engine) Analyze(f Factors) Analysis {
	f = f.normalized()

	prior := e.prior(f)
	likelihood := e.likelihood(f)
	evidence := e.evidence(f)
	posterior := clamp01(likelihood * prior / evidence)

	expectedReturn := e.expectedReturn(f, posterior)
	riskReward := e.riskReward(f, posterior)
	confidence := e.confidence(f, prior, likelihood, evidence, posterior)
	tier := e.qualityTier(posterior, riskReward, f.ChaosRiskLevel, confidence)

	analysis := Analysis{
		Prior:           prior,
		Likelihood:      likelihood,
		Evidence:        evidence,
		Posterior:       posterior,
		ExpectedReturn:  expectedReturn,
		RiskRewardRatio: riskReward,
		ConfidenceLevel: confidence,
		QualityTier:     tier,
	}

	e.logger.Debug().
		Float64("posterior", posterior).
		Float64("risk_reward", riskReward).
		Str("tier", string(tier)).
		Msg("bayesian analysis complete")

	return analysis
}

// prior starts at an uninformed 0.5 and shifts with the signed trend and
// momentum reads, bounded to [0.30, 0.80].
func (e *Engine) prior(f Factors) float64 {
	adjustment := 0.15*f.TrendStrength + 0.10*f.Momentum
	return clamp(0.5+adjustment, priorFloor, priorCeiling)
}

// likelihood is the weighted sum of success factors, capped at 0.95.
func (e *Engine) likelihood(f Factors) float64 {
	trendMomentum := math.Abs(f.TrendStrength) * math.Abs(f.Momentum)

	likelihood := 0.25*f.SignalStrength +
		0.20*trendMomentum +
		0.15*f.VolumeProfile +
		0.15*f.TimeframeAlignment +
		0.15*f.StructureQuality +
		0.10*(1-f.ChaosRiskLevel)

	return math.Min(likelihood, likelihoodCap)
}

// evidence is a seven-factor weighted sum, floored at 0.10 so the posterior
// division never degenerates.
func (e *Engine) evidence(f Factors) float64 {
	evidence := 0.20*f.SignalStrength +
		0.15*math.Abs(f.TrendStrength) +
		0.15*math.Abs(f.Momentum) +
		0.10*f.Volatility +
		0.15*f.VolumeProfile +
		0.15*f.TimeframeAlignment +
		0.10*f.StructureQuality

	return math.Max(evidence, evidenceFloor)
}

// expectedReturn weighs the average win, which scales with trend, momentum
// and volatility, against the average loss.
func (e *Engine) expectedReturn(f Factors, posterior float64) float64 {
	avgWin := 0.02 + 0.01*math.Abs(f.TrendStrength) + 0.01*math.Abs(f.Momentum) + 0.01*f.Volatility
	avgLoss := 0.015

	return posterior*avgWin - (1-posterior)*avgLoss
}

// riskReward derives the achievable risk:reward from the posterior edge,
// discounting chaos, bounded to [1,5]. Monotonically non-increasing in chaos.
func (e *Engine) riskReward(f Factors, posterior float64) float64 {
	rr := 2.0 +
		(posterior-0.5)*4 -
		f.ChaosRiskLevel*1.5 +
		math.Abs(f.TrendStrength)*1.0 +
		f.Volatility*0.5

	return clamp(rr, rrFloor, rrCeiling)
}

// confidence blends the inference chain into one calibrated level.
func (e *Engine) confidence(f Factors, prior, likelihood, evidence, posterior float64) float64 {
	confidence := 0.40*posterior +
		0.25*likelihood +
		0.15*evidence +
		0.10*f.SignalStrength +
		0.10*f.TimeframeAlignment

	return clamp01(confidence)
}

// qualityTier grades the setup from the posterior, risk:reward, chaos and
// confidence gates.
func (e *Engine) qualityTier(posterior, riskReward, chaos, confidence float64) QualityTier {
	switch {
	case posterior > 0.75 && riskReward > 2.5 && chaos < 0.3 && confidence > 0.75:
		return TierExcellent
	case posterior > 0.65 && riskReward > 2.0 && chaos < 0.5 && confidence > 0.65:
		return TierGood
	case posterior > 0.55 && riskReward > 1.5 && chaos < 0.7 && confidence > 0.55:
		return TierAcceptable
	default:
		return TierPoor
	}
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clampSigned(v float64) float64 {
	return clamp(v, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
