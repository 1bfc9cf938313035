package analysis

import (
	"trading-advisor/internal/indicators"
	"trading-advisor/internal/market"
)

// Timeframe identifies a resampled view of the base candle series
type Timeframe string

const (
	TFBase Timeframe = "base"
	TF3x   Timeframe = "3x"
	TF12x  Timeframe = "12x"
)

// timeframeFactors maps each view to its aggregation factor over the base
// series
var timeframeFactors = map[Timeframe]int{
	TFBase: 1,
	TF3x:   3,
	TF12x:  12,
}

// TimeframeAlignment reports directional agreement across resampled views of
// the same series
type TimeframeAlignment struct {
	Directions map[Timeframe]string `json:"directions"` // "up", "down", "flat"
	AlignedUp  int                  `json:"aligned_up"`
	AlignedDown int                 `json:"aligned_down"`
	Score      float64              `json:"score"` // 0-1 agreement strength
	Bullish    bool                 `json:"bullish"`
	Bearish    bool                 `json:"bearish"`
}

// TimeframeAnalyzer checks trend agreement across higher-timeframe views
// built by resampling the supplied candles; no external data is fetched.
type TimeframeAnalyzer struct {
	fastPeriod int
	slowPeriod int
}

// NewTimeframeAnalyzer creates a multi-timeframe alignment analyzer
func NewTimeframeAnalyzer() *TimeframeAnalyzer {
	return &TimeframeAnalyzer{
		fastPeriod: 9,
		slowPeriod: 21,
	}
}

// Analyze resamples the base series into higher-timeframe views and compares
// EMA direction across them
func (ta *TimeframeAnalyzer) Analyze(candles []market.Candle) TimeframeAlignment {
	alignment := TimeframeAlignment{
		Directions: make(map[Timeframe]string),
	}

	views := 0
	for tf, factor := range timeframeFactors {
		resampled := market.Resample(candles, factor)
		dir := ta.direction(resampled)
		alignment.Directions[tf] = dir
		if dir == "flat" {
			continue
		}
		views++
		if dir == "up" {
			alignment.AlignedUp++
		} else {
			alignment.AlignedDown++
		}
	}

	total := len(timeframeFactors)
	if alignment.AlignedUp > alignment.AlignedDown {
		alignment.Score = float64(alignment.AlignedUp) / float64(total)
		alignment.Bullish = alignment.AlignedUp == total
	} else if alignment.AlignedDown > alignment.AlignedUp {
		alignment.Score = float64(alignment.AlignedDown) / float64(total)
		alignment.Bearish = alignment.AlignedDown == total
	} else if views > 0 {
		alignment.Score = 0.25 // split views carry little conviction
	}

	return alignment
}

// direction classifies a view by its fast/slow EMA relationship
func (ta *TimeframeAnalyzer) direction(candles []market.Candle) string {
	if len(candles) < ta.slowPeriod {
		return "flat"
	}

	fast := indicators.CalculateEMA(candles, ta.fastPeriod)
	slow := indicators.CalculateEMA(candles, ta.slowPeriod)
	if slow == 0 {
		return "flat"
	}

	diff := (fast - slow) / slow * 100
	if diff > 0.05 {
		return "up"
	}
	if diff < -0.05 {
		return "down"
	}
	return "flat"
}
