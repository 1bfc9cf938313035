package trend

import (
	"fmt"

	"github.com/rs/zerolog"

	"trading-advisor/internal/indicators"
	"trading-advisor/internal/market"
	"trading-advisor/internal/structure"
)

// Direction represents the classified trend direction
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Strength buckets the absolute trend score
type Strength string

const (
	StrengthNone       Strength = "none"
	StrengthWeak       Strength = "weak"
	StrengthModerate   Strength = "moderate"
	StrengthStrong     Strength = "strong"
	StrengthVeryStrong Strength = "very_strong"
)

// strengthRank orders strengths for threshold comparisons
var strengthRank = map[Strength]int{
	StrengthNone:       0,
	StrengthWeak:       1,
	StrengthModerate:   2,
	StrengthStrong:     3,
	StrengthVeryStrong: 4,
}

// AtLeast reports whether s meets or exceeds the minimum strength
func (s Strength) AtLeast(min Strength) bool {
	return strengthRank[s] >= strengthRank[min]
}

// Assessment is the classified trend with its audit trail
type Assessment struct {
	Direction Direction `json:"direction"`
	Strength  Strength  `json:"strength"`
	Score     int       `json:"score"`
	Signals   []string  `json:"signals"`
}

// Config holds the tunable RSI zone thresholds
type Config struct {
	BullRSIThreshold float64 `json:"bull_rsi_threshold"`
	BearRSIThreshold float64 `json:"bear_rsi_threshold"`
}

// DefaultConfig returns the standard RSI zone thresholds
func DefaultConfig() Config {
	return Config{
		BullRSIThreshold: 55,
		BearRSIThreshold: 45,
	}
}

// Classifier scores trend and momentum from indicators and structure
type Classifier struct {
	cfg    Config
	logger zerolog.Logger
}

// NewClassifier creates a trend classifier
func NewClassifier(cfg Config, logger zerolog.Logger) *Classifier {
	if cfg.BullRSIThreshold <= 0 {
		cfg = DefaultConfig()
	}
	return &Classifier{cfg: cfg, logger: logger}
}

// Classify produces a signed trend score from weighted contributions and maps
// it onto a direction and strength bucket. Short histories classify neutral.
func (c *Classifier) Classify(candles []market.Candle, ind indicators.Set, st structure.Assessment) Assessment {
	if len(candles) < 30 {
		return Assessment{
			Direction: DirectionNeutral,
			Strength:  StrengthNone,
			Signals:   []string{"insufficient history for trend classification"},
		}
	}

	score := 0
	var signals []string

	addScore := func(points int, signal string) {
		if points == 0 {
			return
		}
		score += points
		signals = append(signals, fmt.Sprintf("%s (%+d)", signal, points))
	}

	// 1. EMA stacking across the 9/21/50/200 ladder.
	addScore(emaStackScore(ind), "EMA alignment")

	// 2. Price position relative to the moving averages.
	lastClose := market.LastClose(candles)
	if ind.EMA21 > 0 && ind.EMA50 > 0 {
		if lastClose > ind.EMA21 && lastClose > ind.EMA50 {
			addScore(2, "price above EMA21/EMA50")
		} else if lastClose < ind.EMA21 && lastClose < ind.EMA50 {
			addScore(-2, "price below EMA21/EMA50")
		}
	}

	// 3. Swing-sequence classification (HH/HL vs LH/LL).
	addScore(swingSequenceScore(st), "swing sequence")

	// 4. RSI zone relative to the configured thresholds.
	if ind.RSI >= c.cfg.BullRSIThreshold+10 {
		addScore(2, "RSI deep in bull zone")
	} else if ind.RSI >= c.cfg.BullRSIThreshold {
		addScore(1, "RSI in bull zone")
	} else if ind.RSI <= c.cfg.BearRSIThreshold-10 {
		addScore(-2, "RSI deep in bear zone")
	} else if ind.RSI <= c.cfg.BearRSIThreshold {
		addScore(-1, "RSI in bear zone")
	}

	// 5. MACD sign and crossover state.
	if ind.MACD.MACD > 0 && ind.MACD.Histogram > 0 {
		addScore(2, "MACD positive with rising histogram")
	} else if ind.MACD.Histogram > 0 {
		addScore(1, "MACD histogram positive")
	} else if ind.MACD.MACD < 0 && ind.MACD.Histogram < 0 {
		addScore(-2, "MACD negative with falling histogram")
	} else if ind.MACD.Histogram < 0 {
		addScore(-1, "MACD histogram negative")
	}

	// 6. Recent candle-color dominance.
	addScore(candleDominanceScore(candles), "candle color dominance")

	assessment := Assessment{
		Direction: directionFromScore(score),
		Strength:  strengthFromScore(score),
		Score:     score,
		Signals:   signals,
	}

	c.logger.Debug().
		Int("score", score).
		Str("direction", string(assessment.Direction)).
		Str("strength", string(assessment.Strength)).
		Msg("trend classified")

	return assessment
}

// emaStackScore rewards full or partial alignment of the EMA ladder.
func emaStackScore(ind indicators.Set) int {
	// EMA200 needs 200 candles; fall back to the three shorter EMAs when it
	// is unavailable rather than penalizing the whole ladder.
	if ind.EMA9 == 0 || ind.EMA21 == 0 || ind.EMA50 == 0 {
		return 0
	}

	if ind.EMA200 > 0 {
		if ind.EMA9 > ind.EMA21 && ind.EMA21 > ind.EMA50 && ind.EMA50 > ind.EMA200 {
			return 5
		}
		if ind.EMA9 < ind.EMA21 && ind.EMA21 < ind.EMA50 && ind.EMA50 < ind.EMA200 {
			return -5
		}
	}

	aligned := 0
	if ind.EMA9 > ind.EMA21 {
		aligned++
	} else if ind.EMA9 < ind.EMA21 {
		aligned--
	}
	if ind.EMA21 > ind.EMA50 {
		aligned++
	} else if ind.EMA21 < ind.EMA50 {
		aligned--
	}

	switch aligned {
	case 2:
		return 3
	case 1:
		return 1
	case -1:
		return -1
	case -2:
		return -3
	}
	return 0
}

// swingSequenceScore scores the HH/HL vs LH/LL swing structure.
func swingSequenceScore(st structure.Assessment) int {
	bull := st.HigherHighs + st.HigherLows
	bear := st.LowerHighs + st.LowerLows
	total := bull + bear
	if total == 0 {
		return 0
	}

	if bull > bear {
		if float64(bull)/float64(total) >= 0.75 {
			return 4
		}
		return 3
	}
	if bear > bull {
		if float64(bear)/float64(total) >= 0.75 {
			return -4
		}
		return -3
	}
	return 0
}

// candleDominanceScore checks the color of the last ten candles.
func candleDominanceScore(candles []market.Candle) int {
	lookback := 10
	if len(candles) < lookback {
		lookback = len(candles)
	}

	bullish := 0
	bearish := 0
	for _, c := range candles[len(candles)-lookback:] {
		if c.IsBullish() {
			bullish++
		} else if c.IsBearish() {
			bearish++
		}
	}

	if bullish >= 7 {
		return 2
	}
	if bearish >= 7 {
		return -2
	}
	return 0
}

func directionFromScore(score int) Direction {
	if score >= 3 {
		return DirectionBullish
	}
	if score <= -3 {
		return DirectionBearish
	}
	return DirectionNeutral
}

func strengthFromScore(score int) Strength {
	abs := score
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 10:
		return StrengthVeryStrong
	case abs >= 6:
		return StrengthStrong
	case abs >= 3:
		return StrengthModerate
	case abs >= 1:
		return StrengthWeak
	default:
		return StrengthNone
	}
}
