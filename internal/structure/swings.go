package structure

import (
	"trading-advisor/internal/market"
)

// FindSwingHighs identifies candles whose high is strictly extremal within a
// symmetric window of w candles on each side
func FindSwingHighs(candles []market.Candle, window int) []SwingPoint {
	var swingHighs []SwingPoint

	for i := window; i < len(candles)-window; i++ {
		isSwingHigh := true
		currentHigh := candles[i].High

		for j := i - window; j <= i+window; j++ {
			if j != i && candles[j].High >= currentHigh {
				isSwingHigh = false
				break
			}
		}

		if isSwingHigh {
			swingHighs = append(swingHighs, SwingPoint{
				Price:       currentHigh,
				CandleIndex: i,
				Type:        "high",
				Confirmed:   true,
			})
		}
	}

	return swingHighs
}

// FindSwingLows identifies candles whose low is strictly extremal within a
// symmetric window of w candles on each side
func FindSwingLows(candles []market.Candle, window int) []SwingPoint {
	var swingLows []SwingPoint

	for i := window; i < len(candles)-window; i++ {
		isSwingLow := true
		currentLow := candles[i].Low

		for j := i - window; j <= i+window; j++ {
			if j != i && candles[j].Low <= currentLow {
				isSwingLow = false
				break
			}
		}

		if isSwingLow {
			swingLows = append(swingLows, SwingPoint{
				Price:       currentLow,
				CandleIndex: i,
				Type:        "low",
				Confirmed:   true,
			})
		}
	}

	return swingLows
}

// CountHigherHighs counts successive higher highs in swing points
func CountHigherHighs(swingHighs []SwingPoint) int {
	count := 0
	for i := 1; i < len(swingHighs); i++ {
		if swingHighs[i].Price > swingHighs[i-1].Price {
			count++
		}
	}
	return count
}

// CountHigherLows counts successive higher lows in swing points
func CountHigherLows(swingLows []SwingPoint) int {
	count := 0
	for i := 1; i < len(swingLows); i++ {
		if swingLows[i].Price > swingLows[i-1].Price {
			count++
		}
	}
	return count
}

// CountLowerHighs counts successive lower highs in swing points
func CountLowerHighs(swingHighs []SwingPoint) int {
	count := 0
	for i := 1; i < len(swingHighs); i++ {
		if swingHighs[i].Price < swingHighs[i-1].Price {
			count++
		}
	}
	return count
}

// CountLowerLows counts successive lower lows in swing points
func CountLowerLows(swingLows []SwingPoint) int {
	count := 0
	for i := 1; i < len(swingLows); i++ {
		if swingLows[i].Price < swingLows[i-1].Price {
			count++
		}
	}
	return count
}
