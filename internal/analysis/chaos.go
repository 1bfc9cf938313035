package analysis

import (
	"math"

	"trading-advisor/internal/indicators"
	"trading-advisor/internal/market"
)

// VolatilityRegime labels the current volatility environment
type VolatilityRegime string

const (
	RegimeLow     VolatilityRegime = "low"
	RegimeMedium  VolatilityRegime = "medium"
	RegimeHigh    VolatilityRegime = "high"
	RegimeExtreme VolatilityRegime = "extreme"
)

// ChaosAssessment quantifies how disorderly recent price action is. Level is
// the chaos risk in [0,1] consumed by the Bayesian and sizing engines.
type ChaosAssessment struct {
	Level      float64          `json:"level"`
	Volatility float64          `json:"volatility"` // normalized 0-1
	ATRRatio   float64          `json:"atr_ratio"`  // current vs longer-run ATR
	BBWidth    float64          `json:"bb_width"`   // band width as % of mid
	WickRatio  float64          `json:"wick_ratio"` // avg wick vs body
	Regime     VolatilityRegime `json:"regime"`
}

// ChaosMeter measures volatility and disorder from candle history
type ChaosMeter struct {
	atrPeriod  int
	basePeriod int
}

// NewChaosMeter creates a chaos meter with standard lookbacks
func NewChaosMeter() *ChaosMeter {
	return &ChaosMeter{
		atrPeriod:  14,
		basePeriod: 50,
	}
}

// Assess computes the chaos risk level. Short histories report a mid-level
// chaos of 0.5 so downstream sizing stays conservative rather than blowing up.
func (cm *ChaosMeter) Assess(candles []market.Candle) ChaosAssessment {
	if len(candles) < cm.basePeriod+1 {
		return ChaosAssessment{
			Level:      0.5,
			Volatility: 0.5,
			Regime:     RegimeMedium,
		}
	}

	price := market.LastClose(candles)
	if price <= 0 {
		return ChaosAssessment{Level: 0.5, Volatility: 0.5, Regime: RegimeMedium}
	}

	// Current ATR against the longer-run baseline: expansion means disorder.
	atrNow := indicators.CalculateATR(candles, cm.atrPeriod, 0)
	atrBase := indicators.CalculateATR(candles, cm.basePeriod, 0)
	atrRatio := 1.0
	if atrBase > 0 {
		atrRatio = atrNow / atrBase
	}

	// Bollinger width as a fraction of the mid band.
	bb := indicators.CalculateBollingerBands(candles, 20, 2.0)
	bbWidth := 0.0
	if bb.Middle > 0 {
		bbWidth = (bb.Upper - bb.Lower) / bb.Middle
	}

	// Long wicks relative to bodies signal contested, whipsawing candles.
	wickRatio := averageWickRatio(candles[len(candles)-20:])

	// Normalize each component to 0-1.
	ratioScore := clamp01((atrRatio - 0.8) / 1.2)    // 0.8x -> 0, 2.0x -> 1
	widthScore := clamp01(bbWidth / 0.12)            // 12% band width -> 1
	wickScore := clamp01((wickRatio - 0.5) / 2.5)    // bodies dominated by wicks -> 1
	volScore := clamp01((atrNow / price) / 0.04)     // 4% ATR of price -> 1

	level := clamp01(0.35*ratioScore + 0.25*widthScore + 0.20*wickScore + 0.20*volScore)

	return ChaosAssessment{
		Level:      level,
		Volatility: volScore,
		ATRRatio:   atrRatio,
		BBWidth:    bbWidth,
		WickRatio:  wickRatio,
		Regime:     regimeFromLevel(level),
	}
}

// averageWickRatio computes mean wick length relative to body size.
func averageWickRatio(candles []market.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}

	sum := 0.0
	counted := 0
	for _, c := range candles {
		body := c.Body()
		wick := c.Range() - body
		if body <= 0 {
			continue
		}
		sum += wick / body
		counted++
	}
	if counted == 0 {
		return 3.0 // all-doji window: treat as maximally contested
	}
	return sum / float64(counted)
}

func regimeFromLevel(level float64) VolatilityRegime {
	switch {
	case level >= 0.8:
		return RegimeExtreme
	case level >= 0.55:
		return RegimeHigh
	case level >= 0.3:
		return RegimeMedium
	default:
		return RegimeLow
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
