package trend

import (
	"trading-advisor/internal/market"
)

// Phase identifies the current market phase, which drives the risk:reward
// table in signal construction
type Phase string

const (
	PhaseMarkup       Phase = "markup"
	PhaseMarkdown     Phase = "markdown"
	PhaseAccumulation Phase = "accumulation"
	PhaseDistribution Phase = "distribution"
	PhaseTransitional Phase = "transitional"
)

// DetectPhase classifies the market phase from the trend assessment and
// recent price action
func DetectPhase(candles []market.Candle, assessment Assessment) Phase {
	if len(candles) < 20 {
		return PhaseTransitional
	}

	if assessment.Direction == DirectionBullish && assessment.Strength.AtLeast(StrengthStrong) {
		return PhaseMarkup
	}
	if assessment.Direction == DirectionBearish && assessment.Strength.AtLeast(StrengthStrong) {
		return PhaseMarkdown
	}

	if assessment.Direction == DirectionNeutral {
		// Ranging: above the recent mean suggests accumulation, below it
		// distribution.
		recent := candles[len(candles)-20:]
		avgPrice := 0.0
		for _, c := range recent {
			avgPrice += c.Close
		}
		avgPrice /= float64(len(recent))

		if market.LastClose(candles) > avgPrice {
			return PhaseAccumulation
		}
		return PhaseDistribution
	}

	return PhaseTransitional
}

// IsRanging reports whether the phase is a non-directional regime
func (p Phase) IsRanging() bool {
	return p == PhaseAccumulation || p == PhaseDistribution
}
