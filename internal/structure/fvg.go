package structure

import (
	"trading-advisor/internal/market"
)

// DetectFairValueGaps identifies three-candle patterns where the first
// candle's extreme does not overlap the third candle's opposite extreme,
// leaving an untouched gap. A gap is marked filled once a later candle's wick
// re-enters it.
func DetectFairValueGaps(candles []market.Candle) []FairValueGap {
	if len(candles) < 3 {
		return nil
	}

	var fvgs []FairValueGap

	for i := 0; i < len(candles)-2; i++ {
		c1 := candles[i]
		c3 := candles[i+2]

		// Bullish FVG: gap between c1 high and c3 low.
		if c1.High < c3.Low {
			fvg := FairValueGap{
				Range:       PriceRange{Top: c3.Low, Bottom: c1.High},
				Polarity:    PolarityBullish,
				CandleIndex: i + 1,
			}
			fvg.Filled = gapRevisited(candles[i+3:], fvg)
			fvgs = append(fvgs, fvg)
		}

		// Bearish FVG: gap between c1 low and c3 high.
		if c1.Low > c3.High {
			fvg := FairValueGap{
				Range:       PriceRange{Top: c1.Low, Bottom: c3.High},
				Polarity:    PolarityBearish,
				CandleIndex: i + 1,
			}
			fvg.Filled = gapRevisited(candles[i+3:], fvg)
			fvgs = append(fvgs, fvg)
		}
	}

	return fvgs
}

// gapRevisited reports whether any later candle wicked back into the gap.
func gapRevisited(later []market.Candle, fvg FairValueGap) bool {
	for _, c := range later {
		if fvg.Polarity == PolarityBullish {
			if c.Low <= fvg.Range.Top && c.Low >= fvg.Range.Bottom {
				return true
			}
			if c.Low < fvg.Range.Bottom {
				return true
			}
		} else {
			if c.High >= fvg.Range.Bottom && c.High <= fvg.Range.Top {
				return true
			}
			if c.High > fvg.Range.Top {
				return true
			}
		}
	}
	return false
}

// UnfilledFairValueGaps returns only the gaps price has not revisited
func UnfilledFairValueGaps(fvgs []FairValueGap) []FairValueGap {
	var unfilled []FairValueGap
	for _, fvg := range fvgs {
		if !fvg.Filled {
			unfilled = append(unfilled, fvg)
		}
	}
	return unfilled
}
