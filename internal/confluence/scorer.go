package confluence

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"trading-advisor/internal/analysis"
	"trading-advisor/internal/indicators"
	"trading-advisor/internal/market"
	"trading-advisor/internal/structure"
	"trading-advisor/internal/trend"
)

// Point weights for the bullish/bearish composite scores. They sum to 100 so
// scores read as a percentage of full confluence.
const (
	pointsTimeframe = 25
	pointsStructure = 20
	pointsEMA       = 20
	pointsMACD      = 15
	pointsVolume    = 20
)

// Config holds the tunable confluence thresholds
type Config struct {
	MinScore            float64                 `json:"min_score"`             // winning side must clear this, 0-100
	MinTrendStrength    trend.Strength          `json:"min_trend_strength"`    // master filter
	RSIExtremityBound   float64                 `json:"rsi_extremity_bound"`   // buys blocked above 100-x... see Validate
	MinStructureQuality float64                 `json:"min_structure_quality"` // master filter, 0-1
	MinADX              float64                 `json:"min_adx"`               // ranging filter
	StopATRMultiples    map[Mode]float64        `json:"stop_atr_multiples"`
	RiskRewardTable     map[trend.Phase]float64 `json:"risk_reward_table"`
}

// DefaultConfig returns reference thresholds: a 65/100 minimum score, tight
// scalp stops and wide swing stops, and phase-dependent risk:reward.
func DefaultConfig() Config {
	return Config{
		MinScore:            65,
		MinTrendStrength:    trend.StrengthModerate,
		RSIExtremityBound:   80,
		MinStructureQuality: 0.30,
		MinADX:              20,
		StopATRMultiples: map[Mode]float64{
			ModeScalp: 1.0,
			ModeSwing: 3.5,
		},
		RiskRewardTable: map[trend.Phase]float64{
			trend.PhaseMarkup:       3.0,
			trend.PhaseMarkdown:     3.0,
			trend.PhaseAccumulation: 1.5,
			trend.PhaseDistribution: 1.5,
			trend.PhaseTransitional: 2.0,
		},
	}
}

// Input bundles everything the scorer fuses into a signal
type Input struct {
	Candles    []market.Candle
	Indicators indicators.Set
	Structure  structure.Assessment
	MicroTrend trend.Assessment
	MacroTrend trend.Assessment
	Phase      trend.Phase
	Volume     analysis.VolumeProfile
	Alignment  analysis.TimeframeAlignment
	Mode       Mode
}

// Breakdown records how each side scored, for observability
type Breakdown struct {
	BullishScore float64  `json:"bullish_score"`
	BearishScore float64  `json:"bearish_score"`
	Contributors []string `json:"contributors"`
}

// Scorer fuses structure, trend, momentum and volume into a directional
// signal with entry, stop and targets
type Scorer struct {
	cfg    Config
	logger zerolog.Logger
}

// NewScorer creates a confluence scorer
func NewScorer(cfg Config, logger zerolog.Logger) *Scorer {
	if cfg.MinScore <= 0 {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg, logger: logger}
}

// Score runs the master filters and, when they pass, accumulates bullish and
// bearish confluence points. The winning side must clear the configured
// minimum score or the result is NoTrade. Ties never trade.
func (s *Scorer) Score(in Input) (RawSignal, Breakdown) {
	timestamp := int64(0)
	if len(in.Candles) > 0 {
		timestamp = in.Candles[len(in.Candles)-1].CloseTime
	}
	timestamp = candleTimestamp(timestamp)

	var breakdown Breakdown

	if len(in.Candles) < 30 {
		return noTrade(in.Mode, "insufficient candle history for confluence scoring", timestamp), breakdown
	}

	// Master filters: each one blocks the trade outright.
	if reason := s.masterFilters(in); reason != "" {
		s.logger.Debug().Str("reason", reason).Msg("confluence: master filter rejected")
		return noTrade(in.Mode, reason, timestamp), breakdown
	}

	breakdown = s.accumulate(in)

	direction := DirectionNoTrade
	score := 0.0
	switch {
	case breakdown.BullishScore > breakdown.BearishScore:
		direction = DirectionBuy
		score = breakdown.BullishScore
	case breakdown.BearishScore > breakdown.BullishScore:
		direction = DirectionSell
		score = breakdown.BearishScore
	default:
		return noTrade(in.Mode, "bullish and bearish confluence tied", timestamp), breakdown
	}

	if score < s.cfg.MinScore {
		reason := fmt.Sprintf("confluence score %.0f below minimum %.0f", score, s.cfg.MinScore)
		return noTrade(in.Mode, reason, timestamp), breakdown
	}

	signal := s.buildSignal(in, direction, score, breakdown, timestamp)

	s.logger.Debug().
		Str("direction", string(signal.Direction)).
		Float64("score", score).
		Float64("entry", signal.Entry).
		Float64("stop", signal.StopLoss).
		Msg("confluence signal emitted")

	return signal, breakdown
}

// masterFilters returns a rejection reason, or "" when all filters pass.
func (s *Scorer) masterFilters(in Input) string {
	if !in.MacroTrend.Strength.AtLeast(s.cfg.MinTrendStrength) {
		return fmt.Sprintf("trend strength %s below required %s", in.MacroTrend.Strength, s.cfg.MinTrendStrength)
	}

	if in.MacroTrend.Direction == trend.DirectionBullish && in.Indicators.RSI > s.cfg.RSIExtremityBound {
		return fmt.Sprintf("RSI %.1f beyond extremity bound %.1f for longs", in.Indicators.RSI, s.cfg.RSIExtremityBound)
	}
	if in.MacroTrend.Direction == trend.DirectionBearish && in.Indicators.RSI < 100-s.cfg.RSIExtremityBound {
		return fmt.Sprintf("RSI %.1f beyond extremity bound %.1f for shorts", in.Indicators.RSI, 100-s.cfg.RSIExtremityBound)
	}

	if in.Indicators.ADX.ADX > 0 && in.Indicators.ADX.ADX < s.cfg.MinADX && in.Phase.IsRanging() {
		return fmt.Sprintf("ranging market: ADX %.1f below %.1f", in.Indicators.ADX.ADX, s.cfg.MinADX)
	}

	if in.Structure.Quality < s.cfg.MinStructureQuality {
		return fmt.Sprintf("structure quality %.2f below minimum %.2f", in.Structure.Quality, s.cfg.MinStructureQuality)
	}

	return ""
}

// accumulate awards bullish/bearish points per confluence factor.
func (s *Scorer) accumulate(in Input) Breakdown {
	var b Breakdown

	award := func(bull bool, points float64, label string) {
		side := "bearish"
		if bull {
			b.BullishScore += points
			side = "bullish"
		} else {
			b.BearishScore += points
		}
		b.Contributors = append(b.Contributors, fmt.Sprintf("%s: %s +%.0f", label, side, points))
	}

	// Multi-timeframe alignment.
	if in.Alignment.Bullish {
		award(true, pointsTimeframe, "timeframe alignment")
	} else if in.Alignment.Bearish {
		award(false, pointsTimeframe, "timeframe alignment")
	} else if in.Alignment.Score > 0.5 {
		bull := in.Alignment.AlignedUp > in.Alignment.AlignedDown
		award(bull, pointsTimeframe*in.Alignment.Score, "partial timeframe alignment")
	}

	// Structure / smart-money score.
	structPoints := pointsStructure * in.Structure.Quality
	if in.Structure.Break.Detected {
		award(in.Structure.Break.Direction == structure.PolarityBullish, structPoints, "structure break")
	} else {
		bullSwings := in.Structure.HigherHighs + in.Structure.HigherLows
		bearSwings := in.Structure.LowerHighs + in.Structure.LowerLows
		if bullSwings != bearSwings {
			award(bullSwings > bearSwings, structPoints, "swing structure")
		}
	}

	// EMA alignment from the micro and macro trend reads.
	if in.MicroTrend.Direction == in.MacroTrend.Direction && in.MacroTrend.Direction != trend.DirectionNeutral {
		award(in.MacroTrend.Direction == trend.DirectionBullish, pointsEMA, "micro/macro trend agreement")
	} else if in.MacroTrend.Direction != trend.DirectionNeutral {
		award(in.MacroTrend.Direction == trend.DirectionBullish, pointsEMA*0.5, "macro trend only")
	}

	// MACD sign.
	if in.Indicators.MACD.Histogram > 0 {
		award(true, pointsMACD, "MACD momentum")
	} else if in.Indicators.MACD.Histogram < 0 {
		award(false, pointsMACD, "MACD momentum")
	}

	// Volume confirmation follows the stronger side so far.
	bullLeading := b.BullishScore >= b.BearishScore
	if in.Volume.Confirms(bullLeading) {
		award(bullLeading, pointsVolume, "volume confirmation")
	} else if in.Volume.VolumeRatio >= 0.9 {
		award(bullLeading, pointsVolume*0.5, "neutral volume")
	}

	return b
}

// buildSignal prices the entry, stop and targets for the chosen direction.
func (s *Scorer) buildSignal(in Input, direction Direction, score float64, b Breakdown, timestamp int64) RawSignal {
	entry := market.LastClose(in.Candles)

	stopMultiple, ok := s.cfg.StopATRMultiples[in.Mode]
	if !ok || stopMultiple <= 0 {
		stopMultiple = 1.5
	}
	stopDistance := in.Indicators.ATR * stopMultiple

	riskReward, ok := s.cfg.RiskRewardTable[in.Phase]
	if !ok || riskReward <= 0 {
		riskReward = 2.0
	}

	var stop float64
	var targets []float64
	if direction == DirectionBuy {
		stop = entry - stopDistance
		targets = []float64{
			entry + stopDistance*riskReward,
			entry + stopDistance*riskReward*1.5,
		}
	} else {
		stop = entry + stopDistance
		targets = []float64{
			entry - stopDistance*riskReward,
			entry - stopDistance*riskReward*1.5,
		}
	}

	if score > 100 {
		score = 100
	}

	return RawSignal{
		ID:            signalID(in.Mode, direction, entry, timestamp),
		Mode:          in.Mode,
		Direction:     direction,
		Entry:         entry,
		StopLoss:      stop,
		TakeProfits:   targets,
		RawConfidence: score,
		Reason:        strings.Join(b.Contributors, "; "),
		Timestamp:     timestamp,
	}
}
