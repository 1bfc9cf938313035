package confluence

import (
	"fmt"

	"github.com/google/uuid"
)

// Mode selects the trading horizon a signal is built for
type Mode string

const (
	ModeScalp Mode = "scalp" // short-horizon
	ModeSwing Mode = "swing" // long-horizon
)

// Direction is the final directional call of the scorer
type Direction string

const (
	DirectionBuy     Direction = "buy"
	DirectionSell    Direction = "sell"
	DirectionNoTrade Direction = "no_trade"
)

// signalNamespace seeds deterministic signal IDs so identical analyses yield
// identical signals (the pipeline is a pure function of its inputs).
var signalNamespace = uuid.MustParse("9f2c1d7e-4b1a-4f43-8f07-2d5b7c3a9e61")

// RawSignal is the directional signal produced once per analysis call. It is
// never mutated after construction.
type RawSignal struct {
	ID            string    `json:"id"`
	Mode          Mode      `json:"mode"`
	Direction     Direction `json:"direction"`
	Entry         float64   `json:"entry"`
	StopLoss      float64   `json:"stop_loss"`
	TakeProfits   []float64 `json:"take_profits"`
	RawConfidence float64   `json:"raw_confidence"` // 0-100
	Reason        string    `json:"reason"`
	Timestamp     int64     `json:"timestamp"` // ms of the last candle close
}

// TakeProfit returns the primary target, or 0 when none exists
func (s RawSignal) TakeProfit() float64 {
	if len(s.TakeProfits) == 0 {
		return 0
	}
	return s.TakeProfits[0]
}

// IsActionable reports whether the signal calls for a trade
func (s RawSignal) IsActionable() bool {
	return s.Direction == DirectionBuy || s.Direction == DirectionSell
}

// signalID derives a deterministic ID from the signal's defining fields.
func signalID(mode Mode, direction Direction, entry float64, timestamp int64) string {
	key := fmt.Sprintf("%s|%s|%.8f|%d", mode, direction, entry, timestamp)
	return uuid.NewSHA1(signalNamespace, []byte(key)).String()
}

// NoTradeSignal builds a defaulted NoTrade signal carrying the reason. Used
// by callers that must degrade gracefully before scoring can run.
func NoTradeSignal(mode Mode, reason string) RawSignal {
	return noTrade(mode, reason, candleTimestamp(0))
}

// noTrade builds a defaulted NoTrade signal carrying the reason
func noTrade(mode Mode, reason string, timestamp int64) RawSignal {
	return RawSignal{
		ID:        signalID(mode, DirectionNoTrade, 0, timestamp),
		Mode:      mode,
		Direction: DirectionNoTrade,
		Reason:    reason,
		Timestamp: timestamp,
	}
}

// candleTimestamp converts a close time to the signal timestamp, falling back
// to zero when no candles exist.
func candleTimestamp(closeTime int64) int64 {
	if closeTime <= 0 {
		return 0
	}
	return closeTime
}
