package structure

import (
	"sort"

	"github.com/rs/zerolog"

	"trading-advisor/internal/market"
)

// Swing windows per analysis scale.
const (
	IntradaySwingWindow = 5
	SwingScaleWindow    = 10

	liquidityLookback = 20
	fibLookback       = 100
)

// FibRatios are the retracement ratios reported in every assessment.
var FibRatios = []float64{0.0, 0.236, 0.382, 0.5, 0.618, 0.786, 1.0}

// Detector performs structural analysis of a candle sequence
type Detector struct {
	swingWindow int
	logger      zerolog.Logger
}

// NewDetector creates a structure detector. window is the symmetric swing
// lookback (5 for intraday, 10 for swing-scale analysis).
func NewDetector(window int, logger zerolog.Logger) *Detector {
	if window <= 0 {
		window = IntradaySwingWindow
	}
	return &Detector{
		swingWindow: window,
		logger:      logger,
	}
}

// Assess runs the full structural analysis. Sequences shorter than twice the
// swing window produce an empty assessment with zero quality.
func (d *Detector) Assess(candles []market.Candle) Assessment {
	assessment := Assessment{
		FibonacciLevels: make(map[float64]float64),
	}

	if len(candles) < d.swingWindow*2+1 {
		d.logger.Debug().
			Int("candles", len(candles)).
			Int("required", d.swingWindow*2+1).
			Msg("structure: insufficient history, returning empty assessment")
		return assessment
	}

	assessment.SwingHighs = FindSwingHighs(candles, d.swingWindow)
	assessment.SwingLows = FindSwingLows(candles, d.swingWindow)

	assessment.HigherHighs = CountHigherHighs(assessment.SwingHighs)
	assessment.HigherLows = CountHigherLows(assessment.SwingLows)
	assessment.LowerHighs = CountLowerHighs(assessment.SwingHighs)
	assessment.LowerLows = CountLowerLows(assessment.SwingLows)

	assessment.OrderBlocks = DetectOrderBlocks(candles)
	assessment.FairValueGaps = DetectFairValueGaps(candles)
	assessment.Liquidity = detectLiquiditySweep(candles)
	assessment.Break = d.detectStructureBreak(candles, assessment)
	assessment.FibonacciLevels = fibonacciLevels(candles)
	assessment.DemandZones, assessment.SupplyZones = DetectZones(candles)

	assessment.Quality = scoreQuality(assessment)

	return assessment
}

// detectLiquiditySweep checks whether the current extreme exceeds the
// second-most-extreme value of the last 20 candles, which signals a stop-hunt
// rather than a clean breakout.
func detectLiquiditySweep(candles []market.Candle) LiquiditySweep {
	if len(candles) < liquidityLookback+1 {
		return LiquiditySweep{}
	}

	current := candles[len(candles)-1]
	window := candles[len(candles)-1-liquidityLookback : len(candles)-1]

	highs := make([]float64, len(window))
	lows := make([]float64, len(window))
	for i, c := range window {
		highs[i] = c.High
		lows[i] = c.Low
	}
	sort.Float64s(highs)
	sort.Float64s(lows)

	secondHighest := highs[len(highs)-2]
	secondLowest := lows[1]

	sweep := LiquiditySweep{
		SweptHighs: current.High > secondHighest,
		SweptLows:  current.Low < secondLowest,
	}
	if sweep.SweptHighs {
		sweep.Score += 0.5
	}
	if sweep.SweptLows {
		sweep.Score += 0.5
	}

	return sweep
}

// detectStructureBreak reports a close beyond the most recent major swing.
// The break is a CHoCH when it also violates the established higher-low /
// lower-high sequence, otherwise a plain BOS.
func (d *Detector) detectStructureBreak(candles []market.Candle, a Assessment) StructureBreak {
	lastClose := market.LastClose(candles)

	var sb StructureBreak

	if len(a.SwingHighs) > 0 {
		recentHigh := a.SwingHighs[len(a.SwingHighs)-1].Price
		if lastClose > recentHigh {
			sb = StructureBreak{Detected: true, Direction: PolarityBullish, Kind: BreakOfStructure}
			// A bullish break inside an established lower-high sequence is a
			// character change, not continuation.
			if a.LowerHighs > a.HigherHighs && a.LowerLows > a.HigherLows {
				sb.Kind = ChangeOfCharacter
			}
		}
	}

	if !sb.Detected && len(a.SwingLows) > 0 {
		recentLow := a.SwingLows[len(a.SwingLows)-1].Price
		if lastClose < recentLow {
			sb = StructureBreak{Detected: true, Direction: PolarityBearish, Kind: BreakOfStructure}
			if a.HigherLows > a.LowerLows && a.HigherHighs > a.LowerHighs {
				sb.Kind = ChangeOfCharacter
			}
		}
	}

	if sb.Detected {
		d.logger.Debug().
			Str("direction", string(sb.Direction)).
			Str("kind", string(sb.Kind)).
			Float64("close", lastClose).
			Msg("structure break detected")
	}

	return sb
}

// fibonacciLevels maps retracement ratios to prices over the recent range.
func fibonacciLevels(candles []market.Candle) map[float64]float64 {
	lookback := fibLookback
	if len(candles) < lookback {
		lookback = len(candles)
	}
	window := candles[len(candles)-lookback:]

	high := window[0].High
	low := window[0].Low
	for _, c := range window {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}

	diff := high - low
	levels := make(map[float64]float64, len(FibRatios))
	for _, ratio := range FibRatios {
		levels[ratio] = high - diff*ratio
	}
	return levels
}

// scoreQuality condenses the assessment into a 0-1 tradeability score.
func scoreQuality(a Assessment) float64 {
	score := 0.0

	if len(a.SwingHighs) >= 2 && len(a.SwingLows) >= 2 {
		score += 0.25
	}
	if a.Break.Detected {
		score += 0.25
	}
	if len(a.OrderBlocks) > 0 {
		score += 0.15
	}
	if len(UnfilledFairValueGaps(a.FairValueGaps)) > 0 {
		score += 0.15
	}
	if len(a.DemandZones) > 0 || len(a.SupplyZones) > 0 {
		score += 0.10
	}

	// A directional swing sequence is worth more than a mixed one.
	total := a.HigherHighs + a.HigherLows + a.LowerHighs + a.LowerLows
	if total > 0 {
		bull := float64(a.HigherHighs + a.HigherLows)
		bear := float64(a.LowerHighs + a.LowerLows)
		dominance := bull / float64(total)
		if bear > bull {
			dominance = bear / float64(total)
		}
		score += 0.10 * dominance
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
