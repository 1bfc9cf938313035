package analysis

import (
	"trading-advisor/internal/market"
)

// VolumeAnalyzer provides volume-based technical analysis
type VolumeAnalyzer struct {
	avgPeriod int // Period for average volume calculation
}

// VolumeProfile represents volume analysis results
type VolumeProfile struct {
	CurrentVolume  float64 `json:"current_volume"`
	AverageVolume  float64 `json:"average_volume"`
	VolumeRatio    float64 `json:"volume_ratio"`     // Current / Average
	IsHighVolume   bool    `json:"is_high_volume"`   // Volume > 2x average
	IsClimaxVolume bool    `json:"is_climax_volume"` // Volume > 3x average
	OBV            float64 `json:"obv"`              // On-Balance Volume
	VolumeType     string  `json:"volume_type"`      // "buying", "selling", "neutral"
}

// NewVolumeAnalyzer creates a new volume analyzer
func NewVolumeAnalyzer(avgPeriod int) *VolumeAnalyzer {
	if avgPeriod <= 0 {
		avgPeriod = 20 // Default 20-period average
	}
	return &VolumeAnalyzer{
		avgPeriod: avgPeriod,
	}
}

// AnalyzeVolume performs comprehensive volume analysis
func (va *VolumeAnalyzer) AnalyzeVolume(candles []market.Candle) VolumeProfile {
	if len(candles) == 0 {
		return VolumeProfile{VolumeType: "neutral"}
	}

	currentCandle := candles[len(candles)-1]
	currentVolume := currentCandle.Volume

	avgVolume := va.averageVolume(candles)

	var volumeRatio float64
	if avgVolume > 0 {
		volumeRatio = currentVolume / avgVolume
	}

	return VolumeProfile{
		CurrentVolume:  currentVolume,
		AverageVolume:  avgVolume,
		VolumeRatio:    volumeRatio,
		IsHighVolume:   volumeRatio > 2.0,
		IsClimaxVolume: volumeRatio > 3.0,
		OBV:            va.calculateOBV(candles),
		VolumeType:     determineVolumeType(currentCandle),
	}
}

// averageVolume calculates the average volume over the configured period
func (va *VolumeAnalyzer) averageVolume(candles []market.Candle) float64 {
	period := va.avgPeriod
	if len(candles) < period {
		period = len(candles)
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Volume
	}

	return sum / float64(period)
}

// calculateOBV computes On-Balance Volume across the series
func (va *VolumeAnalyzer) calculateOBV(candles []market.Candle) float64 {
	obv := 0.0
	for i := 1; i < len(candles); i++ {
		if candles[i].Close > candles[i-1].Close {
			obv += candles[i].Volume
		} else if candles[i].Close < candles[i-1].Close {
			obv -= candles[i].Volume
		}
	}
	return obv
}

// determineVolumeType identifies if volume is buying or selling pressure
func determineVolumeType(candle market.Candle) string {
	candleRange := candle.Range()
	if candleRange == 0 {
		return "neutral"
	}

	// Close in the upper third of the range means buyers absorbed the volume,
	// lower third means sellers did.
	position := (candle.Close - candle.Low) / candleRange
	switch {
	case position >= 0.66:
		return "buying"
	case position <= 0.33:
		return "selling"
	default:
		return "neutral"
	}
}

// Score condenses the profile into a 0-1 confirmation factor
func (vp VolumeProfile) Score() float64 {
	score := 0.5 // Base score

	if vp.IsClimaxVolume {
		score = 1.0
	} else if vp.IsHighVolume {
		score = 0.85
	} else if vp.VolumeRatio > 1.2 {
		score = 0.7
	} else if vp.VolumeRatio > 0 && vp.VolumeRatio < 0.8 {
		score = 0.3
	}

	if vp.VolumeType != "neutral" && vp.VolumeRatio > 1.5 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}

	return score
}

// Confirms reports whether volume backs a move in the given direction
func (vp VolumeProfile) Confirms(bullish bool) bool {
	if vp.VolumeRatio < 1.1 {
		return false
	}
	if bullish {
		return vp.VolumeType != "selling"
	}
	return vp.VolumeType != "buying"
}
