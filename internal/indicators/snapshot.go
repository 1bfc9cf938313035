package indicators

import (
	"trading-advisor/internal/market"
)

// Standard periods used across the pipeline.
const (
	DefaultRSIPeriod    = 14
	DefaultATRPeriod    = 14
	DefaultADXPeriod    = 14
	DefaultBBPeriod     = 20
	DefaultBBMultiplier = 2.0
	DefaultVWAPPeriod   = 20
	DefaultStochK       = 14
	DefaultStochD       = 3
	MACDFastPeriod      = 12
	MACDSlowPeriod      = 26
	MACDSignalPeriod    = 9
)

// Set is a per-analysis snapshot of every indicator the pipeline consumes.
// It is derived, stateless, and recomputed on every call.
type Set struct {
	EMA9   float64 `json:"ema_9"`
	EMA21  float64 `json:"ema_21"`
	EMA50  float64 `json:"ema_50"`
	EMA200 float64 `json:"ema_200"`
	SMA20  float64 `json:"sma_20"`
	SMA50  float64 `json:"sma_50"`

	RSI float64 `json:"rsi"`

	MACD MACDResult `json:"macd"`

	ATR float64 `json:"atr"`

	Bollinger BollingerBandsResult `json:"bollinger"`

	ADX ADXResult `json:"adx"`

	Stochastic StochasticResult `json:"stochastic"`

	VWAP float64 `json:"vwap"`

	AverageVolume float64 `json:"average_volume"`
	Momentum10    float64 `json:"momentum_10"`
}

// Snapshot computes the full indicator set for a candle sequence. Components
// with insufficient history hold their documented neutral defaults; atrFloor
// is the minimum ATR the domain allows.
func Snapshot(candles []market.Candle, atrFloor float64) Set {
	return Set{
		EMA9:          CalculateEMA(candles, 9),
		EMA21:         CalculateEMA(candles, 21),
		EMA50:         CalculateEMA(candles, 50),
		EMA200:        CalculateEMA(candles, 200),
		SMA20:         CalculateSMA(candles, 20),
		SMA50:         CalculateSMA(candles, 50),
		RSI:           CalculateRSI(candles, DefaultRSIPeriod),
		MACD:          CalculateMACD(candles, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod),
		ATR:           CalculateATR(candles, DefaultATRPeriod, atrFloor),
		Bollinger:     CalculateBollingerBands(candles, DefaultBBPeriod, DefaultBBMultiplier),
		ADX:           CalculateADX(candles, DefaultADXPeriod),
		Stochastic:    CalculateStochastic(candles, DefaultStochK, DefaultStochD),
		VWAP:          CalculateVWAP(candles, DefaultVWAPPeriod),
		AverageVolume: CalculateAverageVolume(candles, 20),
		Momentum10:    CalculateMomentum(candles, 10),
	}
}
