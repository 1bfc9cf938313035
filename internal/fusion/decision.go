package fusion

import (
	"fmt"

	"github.com/rs/zerolog"

	"trading-advisor/internal/bayesian"
	"trading-advisor/internal/risk"
)

// Action is the final accept/hold/reject call
type Action string

const (
	ActionExecute Action = "execute"
	ActionWait    Action = "wait"
	ActionAbort   Action = "abort"
)

// Config holds the fusion policy thresholds
type Config struct {
	ChaosAbortThreshold   float64 `json:"chaos_abort_threshold"`   // abort above this regardless of quality
	ChaosExecuteCeiling   float64 `json:"chaos_execute_ceiling"`   // execute requires chaos below this
	GoodTierMinConfidence float64 `json:"good_tier_min_confidence"` // Good setups need this confidence to execute
}

// DefaultConfig returns the reference fusion policy
func DefaultConfig() Config {
	return Config{
		ChaosAbortThreshold:   0.8,
		ChaosExecuteCeiling:   0.5,
		GoodTierMinConfidence: 0.75,
	}
}

// Factors is the contextual bundle the fusion rules may cite in reasons
type Factors struct {
	TrendStrength      float64 `json:"trend_strength"`
	Momentum           float64 `json:"momentum"`
	VolumeProfile      float64 `json:"volume_profile"`
	StructureQuality   float64 `json:"structure_quality"`
	TimeframeAlignment float64 `json:"timeframe_alignment"`
}

// Decision is the externally observable recommendation for one cycle
type Decision struct {
	Action       Action   `json:"action"`
	Confidence   float64  `json:"confidence"`
	PositionSize float64  `json:"position_size"` // fraction of capital
	RiskLevel    string   `json:"risk_level"`    // low, medium, high, extreme
	QualityScore float64  `json:"quality_score"` // 0-10
	Reasons      []string `json:"reasons"`
}

// Engine applies the rule-based execute/wait/abort policy
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// NewEngine creates a decision fusion engine
func NewEngine(cfg Config, logger zerolog.Logger) *Engine {
	if cfg.ChaosAbortThreshold <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Decide fuses the Bayesian analysis, chaos risk and position sizing into one
// action. Poor quality or extreme chaos aborts outright; only Excellent
// setups, or Good ones with high confidence, execute in a calm regime;
// everything else waits.
func (e *Engine) Decide(analysis bayesian.Analysis, chaosLevel float64, sizing risk.Result, factors Factors) Decision {
	decision := Decision{
		Confidence:   analysis.ConfidenceLevel,
		PositionSize: sizing.PercentOfCapital,
		RiskLevel:    riskLevel(chaosLevel),
		QualityScore: qualityScore(analysis, chaosLevel),
	}

	switch {
	case chaosLevel > e.cfg.ChaosAbortThreshold:
		decision.Action = ActionAbort
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("chaos risk %.2f above abort threshold %.2f", chaosLevel, e.cfg.ChaosAbortThreshold))

	case analysis.QualityTier == bayesian.TierPoor:
		decision.Action = ActionAbort
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("quality tier %s: posterior %.2f does not justify a trade", analysis.QualityTier, analysis.Posterior))

	case e.canExecute(analysis, chaosLevel):
		decision.Action = ActionExecute
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("quality tier %s with confidence %.2f in a calm regime", analysis.QualityTier, analysis.ConfidenceLevel))
		decision.Reasons = append(decision.Reasons, sizing.Reasons...)

	default:
		decision.Action = ActionWait
		decision.Reasons = append(decision.Reasons, e.waitReason(analysis, chaosLevel))
	}

	if factors.StructureQuality < 0.3 && decision.Action == ActionExecute {
		// Structure already passed the confluence filter; note it anyway so
		// low-structure executions are visible in audit output.
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("note: structure quality %.2f is near the floor", factors.StructureQuality))
	}

	e.logger.Debug().
		Str("action", string(decision.Action)).
		Float64("quality_score", decision.QualityScore).
		Str("risk_level", decision.RiskLevel).
		Msg("decision fused")

	return decision
}

// canExecute applies the execute gate.
func (e *Engine) canExecute(analysis bayesian.Analysis, chaosLevel float64) bool {
	if chaosLevel >= e.cfg.ChaosExecuteCeiling {
		return false
	}
	if analysis.QualityTier == bayesian.TierExcellent {
		return true
	}
	return analysis.QualityTier == bayesian.TierGood &&
		analysis.ConfidenceLevel > e.cfg.GoodTierMinConfidence
}

// waitReason explains which gate held the trade back.
func (e *Engine) waitReason(analysis bayesian.Analysis, chaosLevel float64) string {
	if chaosLevel >= e.cfg.ChaosExecuteCeiling {
		return fmt.Sprintf("chaos risk %.2f too high to execute, not high enough to abort", chaosLevel)
	}
	if analysis.QualityTier == bayesian.TierGood {
		return fmt.Sprintf("good setup but confidence %.2f below execute threshold %.2f",
			analysis.ConfidenceLevel, e.cfg.GoodTierMinConfidence)
	}
	return fmt.Sprintf("quality tier %s requires stronger confirmation", analysis.QualityTier)
}

// qualityScore collapses the analysis into a 0-10 health metric.
func qualityScore(analysis bayesian.Analysis, chaosLevel float64) float64 {
	score := 4.0*analysis.Posterior +
		2.0*analysis.ConfidenceLevel +
		2.0*(analysis.RiskRewardRatio/5.0) +
		2.0*(1-chaosLevel)

	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score
}

// riskLevel labels the chaos band.
func riskLevel(chaosLevel float64) string {
	switch {
	case chaosLevel >= 0.8:
		return "extreme"
	case chaosLevel >= 0.55:
		return "high"
	case chaosLevel >= 0.3:
		return "medium"
	default:
		return "low"
	}
}
