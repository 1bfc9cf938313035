package structure

import (
	"math"

	"trading-advisor/internal/market"
)

const (
	orderBlockBodyMultiple = 2.0 // body vs prior candle range
	orderBlockBodyRatio    = 0.7 // body vs own range
	orderBlockFlankCount   = 2   // opposite-colored candles required after
)

// DetectOrderBlocks finds candles whose body is at least twice the prior
// candle's range, with a body/range ratio above 0.7, followed by at least two
// opposite-colored candles. The block spans body-to-extreme in the direction
// of commitment.
func DetectOrderBlocks(candles []market.Candle) []OrderBlock {
	var blocks []OrderBlock

	for i := 1; i < len(candles)-orderBlockFlankCount; i++ {
		c := candles[i]
		prior := candles[i-1]

		body := c.Body()
		priorRange := prior.Range()
		if priorRange <= 0 || body < priorRange*orderBlockBodyMultiple {
			continue
		}

		candleRange := c.Range()
		if candleRange <= 0 || body/candleRange <= orderBlockBodyRatio {
			continue
		}

		// Require opposite-colored flanking candles after the block candle.
		opposite := 0
		for j := i + 1; j <= i+orderBlockFlankCount && j < len(candles); j++ {
			if c.IsBullish() && candles[j].IsBearish() {
				opposite++
			} else if c.IsBearish() && candles[j].IsBullish() {
				opposite++
			}
		}
		if opposite < orderBlockFlankCount {
			continue
		}

		if c.IsBullish() {
			blocks = append(blocks, OrderBlock{
				Range: PriceRange{
					Top:    c.High,
					Bottom: math.Min(c.Open, c.Close),
				},
				Polarity:    PolarityBullish,
				CandleIndex: i,
			})
		} else if c.IsBearish() {
			blocks = append(blocks, OrderBlock{
				Range: PriceRange{
					Top:    math.Max(c.Open, c.Close),
					Bottom: c.Low,
				},
				Polarity:    PolarityBearish,
				CandleIndex: i,
			})
		}
	}

	return blocks
}
