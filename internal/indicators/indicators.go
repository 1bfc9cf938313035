package indicators

import (
	"math"

	"trading-advisor/internal/market"
)

// ============================================================================
// MOVING AVERAGES
// ============================================================================

// CalculateSMA calculates Simple Moving Average of closes
func CalculateSMA(candles []market.Candle, period int) float64 {
	if len(candles) < period || period <= 0 {
		return 0
	}

	sum := 0.0
	startIdx := len(candles) - period

	for i := startIdx; i < len(candles); i++ {
		sum += candles[i].Close
	}

	return sum / float64(period)
}

// CalculateEMA calculates Exponential Moving Average of closes, seeded by the
// SMA of the first period closes
func CalculateEMA(candles []market.Candle, period int) float64 {
	if len(candles) < period || period <= 0 {
		return 0
	}

	values := market.Closes(candles)
	series := emaSeries(values, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// emaSeries computes the EMA over values; the first emitted element is the
// SMA seed over the first period values.
func emaSeries(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	multiplier := 2.0 / float64(period+1)

	series := make([]float64, 0, len(values)-period+1)
	series = append(series, seed)

	ema := seed
	for i := period; i < len(values); i++ {
		ema = (values[i] * multiplier) + (ema * (1 - multiplier))
		series = append(series, ema)
	}

	return series
}

// ============================================================================
// RSI (Relative Strength Index)
// ============================================================================

// CalculateRSI calculates the Relative Strength Index using Wilder smoothing:
// the average gain/loss is seeded over the first period deltas, then updated
// with avg = (avg*(period-1) + contribution) / period.
func CalculateRSI(candles []market.Candle, period int) float64 {
	if len(candles) < period+1 || period <= 0 {
		return 50.0 // Neutral RSI
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= period; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		gain := 0.0
		loss := 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// ============================================================================
// MACD (Moving Average Convergence Divergence)
// ============================================================================

// MACDResult holds MACD indicator values
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD calculates MACD, Signal line, and Histogram. The signal line
// is a true EMA of the MACD-line series over signalPeriod.
func CalculateMACD(candles []market.Candle, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	if len(candles) < slowPeriod+signalPeriod {
		return MACDResult{}
	}

	closes := market.Closes(candles)
	fastSeries := emaSeries(closes, fastPeriod)
	slowSeries := emaSeries(closes, slowPeriod)

	// Both series end at the last candle; align them on the tail.
	n := len(slowSeries)
	if len(fastSeries) < n {
		n = len(fastSeries)
	}
	macdSeries := make([]float64, n)
	for i := 0; i < n; i++ {
		macdSeries[i] = fastSeries[len(fastSeries)-n+i] - slowSeries[len(slowSeries)-n+i]
	}

	signalSeries := emaSeries(macdSeries, signalPeriod)
	if len(signalSeries) == 0 {
		return MACDResult{}
	}

	macdLine := macdSeries[len(macdSeries)-1]
	signalLine := signalSeries[len(signalSeries)-1]

	return MACDResult{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: macdLine - signalLine,
	}
}

// ============================================================================
// BOLLINGER BANDS
// ============================================================================

// BollingerBandsResult holds Bollinger Bands values
type BollingerBandsResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// CalculateBollingerBands calculates Bollinger Bands using the population
// standard deviation over period closes
func CalculateBollingerBands(candles []market.Candle, period int, stdDevMultiplier float64) BollingerBandsResult {
	if len(candles) < period || period <= 0 {
		return BollingerBandsResult{}
	}

	middle := CalculateSMA(candles, period)

	variance := 0.0
	startIdx := len(candles) - period
	for i := startIdx; i < len(candles); i++ {
		diff := candles[i].Close - middle
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(period))

	return BollingerBandsResult{
		Upper:  middle + (stdDev * stdDevMultiplier),
		Middle: middle,
		Lower:  middle - (stdDev * stdDevMultiplier),
	}
}

// ============================================================================
// ATR (Average True Range)
// ============================================================================

// CalculateATR calculates Average True Range over period, floored at the
// caller-supplied minimum so stops never collapse in a low-range regime
func CalculateATR(candles []market.Candle, period int, floor float64) float64 {
	if len(candles) < period+1 || period <= 0 {
		return floor
	}

	trSum := 0.0
	startIdx := len(candles) - period

	for i := startIdx; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		prevClose := candles[i-1].Close

		tr := math.Max(
			high-low,
			math.Max(
				math.Abs(high-prevClose),
				math.Abs(low-prevClose),
			),
		)
		trSum += tr
	}

	atr := trSum / float64(period)
	if atr < floor {
		return floor
	}
	return atr
}

// ============================================================================
// STOCHASTIC OSCILLATOR
// ============================================================================

// StochasticResult holds Stochastic Oscillator values
type StochasticResult struct {
	K float64
	D float64
}

// CalculateStochastic calculates the Stochastic Oscillator; %D is the SMA of
// the last dPeriod %K values
func CalculateStochastic(candles []market.Candle, kPeriod, dPeriod int) StochasticResult {
	if len(candles) < kPeriod+dPeriod-1 || kPeriod <= 0 || dPeriod <= 0 {
		return StochasticResult{K: 50, D: 50}
	}

	kValues := make([]float64, dPeriod)
	for j := 0; j < dPeriod; j++ {
		end := len(candles) - (dPeriod - 1 - j)
		kValues[j] = stochasticK(candles[:end], kPeriod)
	}

	dSum := 0.0
	for _, k := range kValues {
		dSum += k
	}

	return StochasticResult{
		K: kValues[len(kValues)-1],
		D: dSum / float64(dPeriod),
	}
}

func stochasticK(candles []market.Candle, kPeriod int) float64 {
	startIdx := len(candles) - kPeriod
	highestHigh := candles[startIdx].High
	lowestLow := candles[startIdx].Low

	for i := startIdx; i < len(candles); i++ {
		if candles[i].High > highestHigh {
			highestHigh = candles[i].High
		}
		if candles[i].Low < lowestLow {
			lowestLow = candles[i].Low
		}
	}

	if highestHigh == lowestLow {
		return 50
	}

	currentClose := candles[len(candles)-1].Close
	return ((currentClose - lowestLow) / (highestHigh - lowestLow)) * 100
}

// ============================================================================
// ADX (Average Directional Index)
// ============================================================================

// ADXResult holds ADX and directional indicator values
type ADXResult struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// CalculateADX calculates the Average Directional Index with +DI and -DI
// using Wilder smoothing
func CalculateADX(candles []market.Candle, period int) ADXResult {
	if len(candles) < 2*period+1 || period <= 0 {
		return ADXResult{}
	}

	var smTR, smPlusDM, smMinusDM float64
	dxValues := make([]float64, 0, len(candles))

	for i := 1; i < len(candles); i++ {
		high := candles[i].High
		low := candles[i].Low
		prevHigh := candles[i-1].High
		prevLow := candles[i-1].Low
		prevClose := candles[i-1].Close

		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))

		upMove := high - prevHigh
		downMove := prevLow - low
		plusDM := 0.0
		minusDM := 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}

		if i <= period {
			smTR += tr
			smPlusDM += plusDM
			smMinusDM += minusDM
			if i < period {
				continue
			}
		} else {
			smTR = smTR - smTR/float64(period) + tr
			smPlusDM = smPlusDM - smPlusDM/float64(period) + plusDM
			smMinusDM = smMinusDM - smMinusDM/float64(period) + minusDM
		}

		if smTR == 0 {
			dxValues = append(dxValues, 0)
			continue
		}

		plusDI := 100 * smPlusDM / smTR
		minusDI := 100 * smMinusDM / smTR
		diSum := plusDI + minusDI
		if diSum == 0 {
			dxValues = append(dxValues, 0)
			continue
		}
		dxValues = append(dxValues, 100*math.Abs(plusDI-minusDI)/diSum)
	}

	if len(dxValues) < period {
		return ADXResult{}
	}

	// ADX seeds as the mean of the first period DX values, then Wilder-smooths.
	adx := 0.0
	for i := 0; i < period; i++ {
		adx += dxValues[i]
	}
	adx /= float64(period)
	for i := period; i < len(dxValues); i++ {
		adx = (adx*float64(period-1) + dxValues[i]) / float64(period)
	}

	plusDI := 0.0
	minusDI := 0.0
	if smTR > 0 {
		plusDI = 100 * smPlusDM / smTR
		minusDI = 100 * smMinusDM / smTR
	}

	return ADXResult{ADX: adx, PlusDI: plusDI, MinusDI: minusDI}
}

// ============================================================================
// VWAP (Volume Weighted Average Price)
// ============================================================================

// CalculateVWAP calculates the volume-weighted average price over period
// using the typical price of each candle
func CalculateVWAP(candles []market.Candle, period int) float64 {
	if len(candles) == 0 || period <= 0 {
		return 0
	}
	if len(candles) < period {
		period = len(candles)
	}

	priceVolume := 0.0
	totalVolume := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		typical := (candles[i].High + candles[i].Low + candles[i].Close) / 3
		priceVolume += typical * candles[i].Volume
		totalVolume += candles[i].Volume
	}

	if totalVolume == 0 {
		return market.LastClose(candles)
	}
	return priceVolume / totalVolume
}

// ============================================================================
// MOMENTUM
// ============================================================================

// CalculateMomentum calculates percentage price change over period
func CalculateMomentum(candles []market.Candle, period int) float64 {
	if len(candles) < period+1 || period <= 0 {
		return 0
	}

	currentPrice := candles[len(candles)-1].Close
	pastPrice := candles[len(candles)-period-1].Close
	if pastPrice == 0 {
		return 0
	}

	return ((currentPrice - pastPrice) / pastPrice) * 100
}

// ============================================================================
// VOLUME
// ============================================================================

// CalculateAverageVolume calculates average volume over a period
func CalculateAverageVolume(candles []market.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < period {
		period = len(candles)
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Volume
	}

	return sum / float64(period)
}

// IsVolumeSpike checks if current volume is significantly higher than average
func IsVolumeSpike(candles []market.Candle, period int, multiplier float64) bool {
	if len(candles) < period+1 {
		return false
	}

	avgVolume := CalculateAverageVolume(candles[:len(candles)-1], period)
	currentVolume := candles[len(candles)-1].Volume

	return currentVolume >= avgVolume*multiplier
}
