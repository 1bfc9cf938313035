package stability

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trading-advisor/internal/confluence"
)

// ModeConfig holds the per-mode hysteresis thresholds. Two tunings exist in
// practice (tight 0.1%/0.3% and loose 0.5%/1.0% price thresholds); both are
// expressible here rather than hard-coded.
type ModeConfig struct {
	MinAge                time.Duration `json:"min_age"`
	PriceThresholdPercent float64       `json:"price_threshold_percent"` // e.g. 0.1 = 0.1%
	ConfidenceDropPoints  float64       `json:"confidence_drop_points"`  // on the 0-100 scale
}

// Config maps each trading mode to its thresholds
type Config map[confluence.Mode]ModeConfig

// DefaultConfig returns the reference thresholds: 15 minutes / 0.1% for the
// short horizon and 4 hours / 0.3% for the long horizon.
func DefaultConfig() Config {
	return Config{
		confluence.ModeScalp: {
			MinAge:                15 * time.Minute,
			PriceThresholdPercent: 0.1,
			ConfidenceDropPoints:  15,
		},
		confluence.ModeSwing: {
			MinAge:                4 * time.Hour,
			PriceThresholdPercent: 0.3,
			ConfidenceDropPoints:  20,
		},
	}
}

// CachedSignal is the accepted signal held per mode
type CachedSignal struct {
	Signal       confluence.RawSignal `json:"signal"`
	PriceAtCache float64              `json:"price_at_cache"`
	CachedAt     time.Time            `json:"cached_at"`
}

// Result reports what the gate returned and why
type Result struct {
	Signal    confluence.RawSignal `json:"signal"`
	Replaced  bool                 `json:"replaced"`
	FromCache bool                 `json:"from_cache"`
	Reason    string               `json:"reason"`
}

// modeState serializes read-modify-write access for one mode. Two concurrent
// refreshes would otherwise both pass the staleness check and race to
// overwrite the cache.
type modeState struct {
	mu     sync.Mutex
	cached *CachedSignal
}

// Manager is the hysteresis layer that keeps accepted signals stable until a
// sufficiently large, persistent change occurs
type Manager struct {
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time

	statesMu sync.Mutex
	states   map[confluence.Mode]*modeState
}

// NewManager creates a stability manager
func NewManager(cfg Config, logger zerolog.Logger) *Manager {
	if len(cfg) == 0 {
		cfg = DefaultConfig()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		states: make(map[confluence.Mode]*modeState),
	}
}

// SetClock overrides the time source; intended for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Evaluate runs the stability gate for one mode. The first actionable signal
// for a mode is always cached; a NoTrade passes through without occupying the
// cache, so it can never suppress a later genuine signal. A cached signal is
// replaced only when any of these hold: its minimum age has elapsed, price has
// moved past the mode threshold, the cached stop or target has been touched,
// or confidence dropped by more than the mode threshold. A contradictory
// fresh signal alone does not replace a young cache; that is the anti-flicker
// guarantee.
func (m *Manager) Evaluate(mode confluence.Mode, fresh confluence.RawSignal, currentPrice float64) Result {
	state := m.state(mode)
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.cached == nil {
		if !fresh.IsActionable() {
			return Result{Signal: fresh, Reason: "no actionable signal to cache"}
		}
		state.cached = &CachedSignal{
			Signal:       fresh,
			PriceAtCache: currentPrice,
			CachedAt:     m.now(),
		}
		return Result{Signal: fresh, Replaced: true, Reason: "first signal cached"}
	}

	cfg := m.modeConfig(mode)
	cached := state.cached

	if reason, pass := m.gate(cfg, cached, fresh, currentPrice); pass {
		m.logger.Debug().
			Str("mode", string(mode)).
			Str("reason", reason).
			Str("old", string(cached.Signal.Direction)).
			Str("new", string(fresh.Direction)).
			Msg("stability gate passed, signal replaced")

		if fresh.IsActionable() {
			state.cached = &CachedSignal{
				Signal:       fresh,
				PriceAtCache: currentPrice,
				CachedAt:     m.now(),
			}
		} else {
			state.cached = nil
		}
		return Result{Signal: fresh, Replaced: true, Reason: reason}
	}

	return Result{
		Signal:    cached.Signal,
		FromCache: true,
		Reason: fmt.Sprintf(
			"cached %s signal held: age %s below %s and price move %.3f%% below %.3f%%",
			cached.Signal.Direction,
			m.now().Sub(cached.CachedAt).Round(time.Second),
			cfg.MinAge,
			priceMovePercent(cached.PriceAtCache, currentPrice),
			cfg.PriceThresholdPercent),
	}
}

// gate checks every replacement condition and names the first one that holds.
func (m *Manager) gate(cfg ModeConfig, cached *CachedSignal, fresh confluence.RawSignal, currentPrice float64) (string, bool) {
	age := m.now().Sub(cached.CachedAt)
	if age >= cfg.MinAge {
		return fmt.Sprintf("cached signal aged out (%s >= %s)", age.Round(time.Second), cfg.MinAge), true
	}

	if move := priceMovePercent(cached.PriceAtCache, currentPrice); move >= cfg.PriceThresholdPercent {
		return fmt.Sprintf("price displaced %.3f%% (threshold %.3f%%)", move, cfg.PriceThresholdPercent), true
	}

	if touched, which := stopOrTargetTouched(cached.Signal, currentPrice); touched {
		return fmt.Sprintf("cached %s touched at %.4f", which, currentPrice), true
	}

	if drop := cached.Signal.RawConfidence - fresh.RawConfidence; drop > cfg.ConfidenceDropPoints {
		return fmt.Sprintf("confidence dropped %.1f points (threshold %.1f)", drop, cfg.ConfidenceDropPoints), true
	}

	return "", false
}

// Cached returns a copy of the cached signal for a mode, if any.
func (m *Manager) Cached(mode confluence.Mode) (CachedSignal, bool) {
	state := m.state(mode)
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.cached == nil {
		return CachedSignal{}, false
	}
	return *state.cached, true
}

// Reset clears all cached state unconditionally.
func (m *Manager) Reset() {
	m.statesMu.Lock()
	defer m.statesMu.Unlock()

	for mode, state := range m.states {
		state.mu.Lock()
		state.cached = nil
		state.mu.Unlock()
		m.logger.Debug().Str("mode", string(mode)).Msg("stability cache cleared")
	}
}

func (m *Manager) state(mode confluence.Mode) *modeState {
	m.statesMu.Lock()
	defer m.statesMu.Unlock()

	state, ok := m.states[mode]
	if !ok {
		state = &modeState{}
		m.states[mode] = state
	}
	return state
}

func (m *Manager) modeConfig(mode confluence.Mode) ModeConfig {
	if cfg, ok := m.cfg[mode]; ok {
		return cfg
	}
	return DefaultConfig()[confluence.ModeScalp]
}

// stopOrTargetTouched checks whether price has reached the cached stop or any
// target.
func stopOrTargetTouched(signal confluence.RawSignal, currentPrice float64) (bool, string) {
	if !signal.IsActionable() {
		return false, ""
	}

	if signal.Direction == confluence.DirectionBuy {
		if signal.StopLoss > 0 && currentPrice <= signal.StopLoss {
			return true, "stop"
		}
		for _, tp := range signal.TakeProfits {
			if currentPrice >= tp {
				return true, "target"
			}
		}
	} else {
		if signal.StopLoss > 0 && currentPrice >= signal.StopLoss {
			return true, "stop"
		}
		for _, tp := range signal.TakeProfits {
			if currentPrice <= tp {
				return true, "target"
			}
		}
	}

	return false, ""
}

func priceMovePercent(cachedPrice, currentPrice float64) float64 {
	if cachedPrice == 0 {
		return 0
	}
	return math.Abs(currentPrice-cachedPrice) / cachedPrice * 100
}
