package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SizingModel selects the position-sizing formula
type SizingModel string

const (
	ModelMultiplicative SizingModel = "multiplicative"
	ModelHalfKelly      SizingModel = "half_kelly"
)

// SizingTier classifies how aggressive the final size is
type SizingTier string

const (
	TierMicro        SizingTier = "micro"
	TierConservative SizingTier = "conservative"
	TierModerate     SizingTier = "moderate"
	TierAggressive   SizingTier = "aggressive"
)

// Position size bounds as fractions of capital.
const (
	MinPositionPercent = 0.005
	MaxPositionPercent = 0.10
)

// Config holds sizing configuration
type Config struct {
	BaseRiskPercent    float64     `json:"base_risk_percent"`    // starting fraction of capital, e.g. 0.02
	Model              SizingModel `json:"model"`
	DollarsPerLot      float64     `json:"dollars_per_lot"`      // instrument-specific lot divisor
	MinPositionPercent float64     `json:"min_position_percent"`
	MaxPositionPercent float64     `json:"max_position_percent"`
}

// DefaultConfig returns conservative reference sizing settings
func DefaultConfig() Config {
	return Config{
		BaseRiskPercent:    0.02,
		Model:              ModelMultiplicative,
		DollarsPerLot:      1000,
		MinPositionPercent: MinPositionPercent,
		MaxPositionPercent: MaxPositionPercent,
	}
}

// Input carries the probabilistic and risk context for sizing
type Input struct {
	Posterior      float64 `json:"posterior"`
	Confidence     float64 `json:"confidence"`
	ChaosRiskLevel float64 `json:"chaos_risk_level"`
	Volatility     float64 `json:"volatility"`
	RiskReward     float64 `json:"risk_reward"`
	AccountBalance float64 `json:"account_balance"`
}

// Result is the bounded position size with its audit trail
type Result struct {
	PercentOfCapital  float64            `json:"percent_of_capital"` // [0.005, 0.10]
	DollarAmount      decimal.Decimal    `json:"dollar_amount"`
	LotSize           decimal.Decimal    `json:"lot_size"`
	SizingTier        SizingTier         `json:"sizing_tier"`
	AdjustmentFactors map[string]float64 `json:"adjustment_factors"`
	Reasons           []string           `json:"reasons"`
}

// Engine turns chaos risk and the posterior probability into a bounded
// position size
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// NewEngine creates a position sizing engine
func NewEngine(cfg Config, logger zerolog.Logger) *Engine {
	if cfg.BaseRiskPercent <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.MinPositionPercent <= 0 {
		cfg.MinPositionPercent = MinPositionPercent
	}
	if cfg.MaxPositionPercent <= 0 || cfg.MaxPositionPercent > MaxPositionPercent {
		cfg.MaxPositionPercent = MaxPositionPercent
	}
	if cfg.DollarsPerLot <= 0 {
		cfg.DollarsPerLot = 1000
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Size computes the position size under the configured model. The size is
// monotonically non-increasing in chaos and always inside the configured
// bounds.
func (e *Engine) Size(in Input) Result {
	factors := make(map[string]float64)

	var size float64
	switch e.cfg.Model {
	case ModelHalfKelly:
		size = e.kellySize(in, factors)
	default:
		size = e.multiplicativeSize(in, factors)
	}

	size = clamp(size, e.cfg.MinPositionPercent, e.cfg.MaxPositionPercent)

	dollars := decimal.NewFromFloat(in.AccountBalance).
		Mul(decimal.NewFromFloat(size)).
		Round(2)
	lots := dollars.Div(decimal.NewFromFloat(e.cfg.DollarsPerLot)).Round(2)

	tier := classifyTier(size, in)
	reasons := e.reasons(in, factors, size, tier)

	e.logger.Debug().
		Float64("percent", size).
		Str("dollars", dollars.String()).
		Str("tier", string(tier)).
		Msg("position sized")

	return Result{
		PercentOfCapital:  size,
		DollarAmount:      dollars,
		LotSize:           lots,
		SizingTier:        tier,
		AdjustmentFactors: factors,
		Reasons:           reasons,
	}
}

// multiplicativeSize applies the multiplicative risk model:
// base × (1−chaos) × posterior^0.8 × (0.5+0.5·confidence) × (1−0.3·volatility)
func (e *Engine) multiplicativeSize(in Input, factors map[string]float64) float64 {
	chaosFactor := 1 - clamp01(in.ChaosRiskLevel)
	posteriorFactor := math.Pow(clamp01(in.Posterior), 0.8)
	confidenceFactor := 0.5 + 0.5*clamp01(in.Confidence)
	volatilityFactor := 1 - 0.3*clamp01(in.Volatility)

	factors["chaos"] = chaosFactor
	factors["posterior"] = posteriorFactor
	factors["confidence"] = confidenceFactor
	factors["volatility"] = volatilityFactor

	return e.cfg.BaseRiskPercent * chaosFactor * posteriorFactor * confidenceFactor * volatilityFactor
}

// kellySize applies the half-Kelly variant: (p·b − (1−p))/b halved, then
// discounted for chaos and confidence.
func (e *Engine) kellySize(in Input, factors map[string]float64) float64 {
	p := clamp01(in.Posterior)
	b := in.RiskReward
	if b < 1 {
		b = 1
	}

	kelly := (p*b - (1 - p)) / b
	if kelly < 0 {
		kelly = 0
	}
	halfKelly := kelly / 2

	chaosFactor := 1 - clamp01(in.ChaosRiskLevel)
	confidenceFactor := 0.5 + 0.5*clamp01(in.Confidence)

	factors["kelly"] = kelly
	factors["half_kelly"] = halfKelly
	factors["chaos"] = chaosFactor
	factors["confidence"] = confidenceFactor

	return halfKelly * chaosFactor * confidenceFactor
}

// classifyTier buckets the size by the chaos/posterior ladder.
func classifyTier(size float64, in Input) SizingTier {
	switch {
	case in.ChaosRiskLevel > 0.7:
		return TierMicro
	case in.ChaosRiskLevel > 0.5 || in.Posterior < 0.6:
		return TierConservative
	case size >= 0.04 && in.Posterior > 0.75:
		return TierAggressive
	case size >= 0.025:
		return TierModerate
	default:
		return TierConservative
	}
}

// reasons names the adjustment that dominated the final size so the result
// stays auditable.
func (e *Engine) reasons(in Input, factors map[string]float64, size float64, tier SizingTier) []string {
	reasons := []string{
		fmt.Sprintf("%s model sized position at %.2f%% of capital (%s tier)", e.cfg.Model, size*100, tier),
	}

	// The smallest multiplier is the one that cut the size the most.
	dominantName := ""
	dominantValue := math.MaxFloat64
	for name, value := range factors {
		if value < dominantValue {
			dominantName = name
			dominantValue = value
		}
	}
	if dominantName != "" {
		reasons = append(reasons, fmt.Sprintf("dominant adjustment: %s factor %.3f", dominantName, dominantValue))
	}

	if in.ChaosRiskLevel > 0.7 {
		reasons = append(reasons, fmt.Sprintf("chaos risk %.2f forced micro sizing", in.ChaosRiskLevel))
	}
	if size <= e.cfg.MinPositionPercent {
		reasons = append(reasons, "size clamped at the minimum position bound")
	}
	if size >= e.cfg.MaxPositionPercent {
		reasons = append(reasons, "size clamped at the maximum position bound")
	}

	return reasons
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
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
