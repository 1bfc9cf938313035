package structure

import (
	"testing"

	"github.com/rs/zerolog"

	"trading-advisor/internal/market"
)

// flatCandles builds n candles pinned to price with half-unit wicks.
func flatCandles(n int, price float64) []market.Candle {
	candles := make([]market.Candle, n)
	for i := range candles {
		candles[i] = market.Candle{
			Open:  price,
			High:  price + 0.5,
			Low:   price - 0.5,
			Close: price,
		}
	}
	return candles
}

// zigzagCandles builds one candle per close, opening at the midpoint of the
// previous and current close, with half-unit wicks.
func zigzagCandles(closes []float64) []market.Candle {
	candles := make([]market.Candle, len(closes))
	prev := closes[0]
	for i, c := range closes {
		open := (prev + c) / 2
		high := c
		low := c
		if open > high {
			high = open
		}
		if open < low {
			low = open
		}
		candles[i] = market.Candle{
			Open:  open,
			High:  high + 0.5,
			Low:   low - 0.5,
			Close: c,
		}
		prev = c
	}
	return candles
}

// TestFindSwingHighsStrictExtremal tests that only a strictly extremal high
// inside the symmetric window qualifies
func TestFindSwingHighsStrictExtremal(t *testing.T) {
	candles := flatCandles(13, 100)
	candles[6].High = 105
	candles[6].Close = 104
	candles[6].Open = 100

	highs := FindSwingHighs(candles, 5)
	if len(highs) != 1 {
		t.Fatalf("expected exactly 1 swing high, got %d", len(highs))
	}
	if highs[0].CandleIndex != 6 || highs[0].Price != 105 {
		t.Errorf("expected swing high 105 at index 6, got %+v", highs[0])
	}

	// An equal high in the window disqualifies the candidate.
	candles[2].High = 105
	if highs := FindSwingHighs(candles, 5); len(highs) != 0 {
		t.Errorf("expected no swing high with an equal high in window, got %d", len(highs))
	}
}

// TestFindSwingLowsStrictExtremal tests the mirrored low detection
func TestFindSwingLowsStrictExtremal(t *testing.T) {
	candles := flatCandles(13, 100)
	candles[6].Low = 95
	candles[6].Close = 96
	candles[6].Open = 100

	lows := FindSwingLows(candles, 5)
	if len(lows) != 1 {
		t.Fatalf("expected exactly 1 swing low, got %d", len(lows))
	}
	if lows[0].CandleIndex != 6 || lows[0].Price != 95 {
		t.Errorf("expected swing low 95 at index 6, got %+v", lows[0])
	}
}

// TestSwingSequenceCounts tests higher-high / lower-low counting
func TestSwingSequenceCounts(t *testing.T) {
	highs := []SwingPoint{{Price: 100}, {Price: 105}, {Price: 103}, {Price: 110}}

	if got := CountHigherHighs(highs); got != 2 {
		t.Errorf("expected 2 higher highs, got %d", got)
	}
	if got := CountLowerHighs(highs); got != 1 {
		t.Errorf("expected 1 lower high, got %d", got)
	}
}

// TestDetectFairValueGapsBullish tests the three-candle bullish gap
func TestDetectFairValueGapsBullish(t *testing.T) {
	candles := []market.Candle{
		{Open: 98, High: 100, Low: 97, Close: 99},
		{Open: 99, High: 106, Low: 99, Close: 105},
		{Open: 105, High: 108, Low: 105, Close: 107},
	}

	fvgs := DetectFairValueGaps(candles)
	if len(fvgs) != 1 {
		t.Fatalf("expected 1 fair value gap, got %d", len(fvgs))
	}

	fvg := fvgs[0]
	if fvg.Polarity != PolarityBullish {
		t.Errorf("expected bullish gap, got %s", fvg.Polarity)
	}
	if fvg.Range.Bottom != 100 || fvg.Range.Top != 105 {
		t.Errorf("expected gap 100-105, got %+v", fvg.Range)
	}
	if fvg.Filled {
		t.Error("gap with no later candles must be unfilled")
	}
}

// TestDetectFairValueGapsFilled tests that a later wick into the gap fills it
func TestDetectFairValueGapsFilled(t *testing.T) {
	candles := []market.Candle{
		{Open: 98, High: 100, Low: 97, Close: 99},
		{Open: 99, High: 106, Low: 99, Close: 105},
		{Open: 105, High: 108, Low: 105, Close: 107},
		{Open: 107, High: 107.5, Low: 103, Close: 104}, // wick re-enters 100-105
	}

	fvgs := DetectFairValueGaps(candles)
	if len(fvgs) != 1 {
		t.Fatalf("expected 1 fair value gap, got %d", len(fvgs))
	}
	if !fvgs[0].Filled {
		t.Error("expected gap marked filled after wick re-entry")
	}
	if got := UnfilledFairValueGaps(fvgs); len(got) != 0 {
		t.Errorf("expected no unfilled gaps, got %d", len(got))
	}
}

// TestDetectFairValueGapsBearish tests the mirrored bearish gap
func TestDetectFairValueGapsBearish(t *testing.T) {
	candles := []market.Candle{
		{Open: 107, High: 108, Low: 105, Close: 106},
		{Open: 105, High: 105, Low: 99, Close: 100},
		{Open: 100, High: 102, Low: 98, Close: 99},
	}

	fvgs := DetectFairValueGaps(candles)
	if len(fvgs) != 1 {
		t.Fatalf("expected 1 fair value gap, got %d", len(fvgs))
	}
	if fvgs[0].Polarity != PolarityBearish {
		t.Errorf("expected bearish gap, got %s", fvgs[0].Polarity)
	}
	if fvgs[0].Range.Bottom != 102 || fvgs[0].Range.Top != 105 {
		t.Errorf("expected gap 102-105, got %+v", fvgs[0].Range)
	}
}

// TestDetectOrderBlocks tests the body-size and flank requirements
func TestDetectOrderBlocks(t *testing.T) {
	candles := []market.Candle{
		{Open: 100, High: 100.5, Low: 99.5, Close: 100},   // prior, range 1
		{Open: 100, High: 103, Low: 99.9, Close: 102.8},   // block: body 2.8, ratio 0.90
		{Open: 102.8, High: 103, Low: 102, Close: 102.2},  // bearish flank
		{Open: 102.2, High: 102.4, Low: 101.5, Close: 101.8}, // bearish flank
	}

	blocks := DetectOrderBlocks(candles)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 order block, got %d", len(blocks))
	}
	block := blocks[0]
	if block.Polarity != PolarityBullish {
		t.Errorf("expected bullish block, got %s", block.Polarity)
	}
	if block.Range.Top != 103 || block.Range.Bottom != 100 {
		t.Errorf("expected block 100-103, got %+v", block.Range)
	}

	// Without opposite-colored flanks the candle is not a block.
	candles[2] = market.Candle{Open: 102.8, High: 104, Low: 102.5, Close: 103.5}
	if blocks := DetectOrderBlocks(candles); len(blocks) != 0 {
		t.Errorf("expected no blocks without two opposite flanks, got %d", len(blocks))
	}
}

// TestDetectZones tests supply/demand zone detection and strength ranking
func TestDetectZones(t *testing.T) {
	candles := flatCandles(5, 100)
	for i := range candles {
		candles[i].Close = 100.2 // small bodies, avg 0.2
	}
	candles = append(candles, market.Candle{Open: 100, High: 103, Low: 99.8, Close: 102.5}) // demand
	candles = append(candles, flatCandles(3, 102.5)...)

	demand, supply := DetectZones(candles)
	if len(demand) != 1 {
		t.Fatalf("expected 1 demand zone, got %d", len(demand))
	}
	if len(supply) != 0 {
		t.Errorf("expected no supply zones, got %d", len(supply))
	}
	if demand[0].High != 103 || demand[0].Low != 99.8 {
		t.Errorf("zone bounds wrong: %+v", demand[0])
	}
	if demand[0].Strength <= 1 {
		t.Errorf("expected strength above 1 for an oversized body, got %f", demand[0].Strength)
	}
}

// TestDetectLiquiditySweep tests the second-most-extreme comparison
func TestDetectLiquiditySweep(t *testing.T) {
	candles := flatCandles(20, 100)
	candles[10].High = 103 // single outlier high in the window
	// Current candle pokes above the second-highest (100.5) but not 103.
	candles = append(candles, market.Candle{Open: 100, High: 101.5, Low: 99.8, Close: 100.2})

	sweep := detectLiquiditySweep(candles)
	if !sweep.SweptHighs {
		t.Error("expected high-side sweep above second-highest high")
	}
	if sweep.SweptLows {
		t.Error("did not expect a low-side sweep")
	}
	if sweep.Score != 0.5 {
		t.Errorf("expected score 0.5, got %f", sweep.Score)
	}
}

// TestAssessChangeOfCharacter tests that a bullish break inside a lower-high /
// lower-low sequence is classified CHoCH, not BOS
func TestAssessChangeOfCharacter(t *testing.T) {
	// Downtrend of lower highs and lower lows, then a closing rally through
	// the last swing high.
	closes := []float64{100, 105, 110, 105, 100, 95, 99, 101, 97, 93, 87, 90, 92, 88, 84, 80, 85, 93}
	candles := zigzagCandles(closes)

	detector := NewDetector(2, zerolog.Nop())
	assessment := detector.Assess(candles)

	if assessment.LowerHighs < 2 || assessment.LowerLows < 2 {
		t.Fatalf("fixture should establish a downtrend sequence, got LH=%d LL=%d",
			assessment.LowerHighs, assessment.LowerLows)
	}
	if !assessment.Break.Detected {
		t.Fatal("expected a structure break on the closing rally")
	}
	if assessment.Break.Direction != PolarityBullish {
		t.Errorf("expected bullish break, got %s", assessment.Break.Direction)
	}
	if assessment.Break.Kind != ChangeOfCharacter {
		t.Errorf("expected CHoCH against the downtrend, got %s", assessment.Break.Kind)
	}
}

// TestAssessShortHistory tests the empty assessment below 2w+1 candles
func TestAssessShortHistory(t *testing.T) {
	detector := NewDetector(5, zerolog.Nop())
	assessment := detector.Assess(flatCandles(8, 100))

	if assessment.Quality != 0 {
		t.Errorf("expected zero quality, got %f", assessment.Quality)
	}
	if len(assessment.SwingHighs) != 0 || assessment.Break.Detected {
		t.Error("expected empty assessment for short history")
	}
}

// TestAssessQualityBounds tests that quality stays inside 0-1 on a busy tape
func TestAssessQualityBounds(t *testing.T) {
	closes := []float64{100, 102, 104, 103, 101, 103, 106, 108, 107, 105,
		107, 110, 112, 111, 109, 111, 114, 116, 115, 113, 115, 118}
	candles := zigzagCandles(closes)

	detector := NewDetector(2, zerolog.Nop())
	assessment := detector.Assess(candles)

	if assessment.Quality < 0 || assessment.Quality > 1 {
		t.Errorf("quality out of range: %f", assessment.Quality)
	}
	if len(assessment.FibonacciLevels) != len(FibRatios) {
		t.Errorf("expected %d fib levels, got %d", len(FibRatios), len(assessment.FibonacciLevels))
	}
}
