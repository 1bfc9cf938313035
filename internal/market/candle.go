package market

import (
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Candle represents a single OHLCV candle. Sequences are ordered oldest to
// newest. High must enclose Open/Close from above and Low from below; Repair
// fixes sequences that violate this instead of rejecting them.
type Candle struct {
	OpenTime  int64   `json:"openTime"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"closeTime"`
}

// Time returns the candle close time.
func (c Candle) Time() time.Time {
	return time.Unix(c.CloseTime/1000, 0)
}

// Body returns the absolute size of the candle body.
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the full high-to-low range of the candle.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports whether the candle closed below its open.
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// Repair returns a copy of candles with invalid OHLC values corrected and the
// number of corrections applied. Non-finite fields are replaced with the
// candle close (or the previous close when the close itself is bad), and
// High/Low are clamped to enclose Open and Close. Each correction is logged.
func Repair(candles []Candle, logger zerolog.Logger) ([]Candle, int) {
	repaired := make([]Candle, len(candles))
	copy(repaired, candles)

	corrections := 0
	prevClose := 0.0

	for i := range repaired {
		c := &repaired[i]

		if !isFinite(c.Close) {
			c.Close = prevClose
			corrections++
		}
		if !isFinite(c.Open) {
			c.Open = c.Close
			corrections++
		}
		if !isFinite(c.High) {
			c.High = c.Close
			corrections++
		}
		if !isFinite(c.Low) {
			c.Low = c.Close
			corrections++
		}
		if !isFinite(c.Volume) || c.Volume < 0 {
			c.Volume = 0
			corrections++
		}

		// High must enclose the body from above, Low from below.
		bodyHigh := math.Max(c.Open, c.Close)
		bodyLow := math.Min(c.Open, c.Close)
		if c.High < bodyHigh {
			logger.Warn().
				Int("index", i).
				Float64("high", c.High).
				Float64("body_high", bodyHigh).
				Msg("repaired candle: high below body")
			c.High = bodyHigh
			corrections++
		}
		if c.Low > bodyLow {
			logger.Warn().
				Int("index", i).
				Float64("low", c.Low).
				Float64("body_low", bodyLow).
				Msg("repaired candle: low above body")
			c.Low = bodyLow
			corrections++
		}

		prevClose = c.Close
	}

	return repaired, corrections
}

// Closes extracts the close prices from a candle sequence.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// LastClose returns the most recent close price, or 0 for an empty sequence.
func LastClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}

// Resample aggregates every factor consecutive candles into one, producing a
// higher-timeframe view of the same series. A trailing partial group is kept
// so the latest price action is never dropped.
func Resample(candles []Candle, factor int) []Candle {
	if factor <= 1 || len(candles) == 0 {
		return candles
	}

	resampled := make([]Candle, 0, len(candles)/factor+1)
	for start := 0; start < len(candles); start += factor {
		end := start + factor
		if end > len(candles) {
			end = len(candles)
		}
		group := candles[start:end]

		agg := Candle{
			OpenTime:  group[0].OpenTime,
			Open:      group[0].Open,
			High:      group[0].High,
			Low:       group[0].Low,
			Close:     group[len(group)-1].Close,
			CloseTime: group[len(group)-1].CloseTime,
		}
		for _, c := range group {
			if c.High > agg.High {
				agg.High = c.High
			}
			if c.Low < agg.Low {
				agg.Low = c.Low
			}
			agg.Volume += c.Volume
		}
		resampled = append(resampled, agg)
	}

	return resampled
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
