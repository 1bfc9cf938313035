package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full advisor configuration
type Config struct {
	LoggingConfig   LoggingConfig   `json:"logging"`
	AnalysisConfig  AnalysisConfig  `json:"analysis"`
	RiskConfig      RiskConfig      `json:"risk"`
	StabilityConfig StabilityConfig `json:"stability"`
}

// LoggingConfig controls zerolog output
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Pretty bool   `json:"pretty"` // console writer instead of JSON
}

// AnalysisConfig holds the pipeline tuning knobs
type AnalysisConfig struct {
	MinCandles          int     `json:"min_candles"`           // below this everything degrades to NoTrade
	ATRFloor            float64 `json:"atr_floor"`             // domain minimum ATR in price units
	SwingWindow         int     `json:"swing_window"`          // symmetric swing lookback
	MinConfluenceScore  float64 `json:"min_confluence_score"`  // 0-100
	StopMultiplierShort float64 `json:"stop_multiplier_short"` // ATR multiple, short horizon
	StopMultiplierLong  float64 `json:"stop_multiplier_long"`  // ATR multiple, long horizon
	RSIExtremityBound   float64 `json:"rsi_extremity_bound"`
	MinStructureQuality float64 `json:"min_structure_quality"`
	BullRSIThreshold    float64 `json:"bull_rsi_threshold"`
	BearRSIThreshold    float64 `json:"bear_rsi_threshold"`
	// RiskRewardTable maps market phase to the reward multiple, 1.5-5.0.
	RiskRewardTable map[string]float64 `json:"risk_reward_table"`
}

// RiskConfig holds sizing and fusion thresholds
type RiskConfig struct {
	BaseRiskPercent     float64 `json:"base_risk_percent"`     // fraction of capital, e.g. 0.02
	SizingModel         string  `json:"sizing_model"`          // "multiplicative" or "half_kelly"
	DollarsPerLot       float64 `json:"dollars_per_lot"`       // instrument lot divisor
	MinPositionPercent  float64 `json:"min_position_percent"`  // floor 0.005
	MaxPositionPercent  float64 `json:"max_position_percent"`  // ceiling 0.10
	ChaosAbortThreshold float64 `json:"chaos_abort_threshold"` // abort above this chaos level
}

// StabilityModeConfig holds one mode's hysteresis thresholds
type StabilityModeConfig struct {
	MinAgeMinutes         int     `json:"min_age_minutes"`
	PriceThresholdPercent float64 `json:"price_threshold_percent"`
	ConfidenceDropPoints  float64 `json:"confidence_drop_points"`
}

// StabilityConfig holds both trading modes' thresholds
type StabilityConfig struct {
	Scalp StabilityModeConfig `json:"scalp"`
	Swing StabilityModeConfig `json:"swing"`
}

// MinAge returns the mode's minimum signal age
func (c StabilityModeConfig) MinAge() time.Duration {
	return time.Duration(c.MinAgeMinutes) * time.Minute
}

// DefaultConfig returns the reference configuration
func DefaultConfig() *Config {
	return &Config{
		LoggingConfig: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
		AnalysisConfig: AnalysisConfig{
			MinCandles:          50,
			ATRFloor:            5.0,
			SwingWindow:         5,
			MinConfluenceScore:  65,
			StopMultiplierShort: 1.0,
			StopMultiplierLong:  3.5,
			RSIExtremityBound:   80,
			MinStructureQuality: 0.30,
			BullRSIThreshold:    55,
			BearRSIThreshold:    45,
			RiskRewardTable: map[string]float64{
				"markup":       3.0,
				"markdown":     3.0,
				"accumulation": 1.5,
				"distribution": 1.5,
				"transitional": 2.0,
			},
		},
		RiskConfig: RiskConfig{
			BaseRiskPercent:     0.02,
			SizingModel:         "multiplicative",
			DollarsPerLot:       1000,
			MinPositionPercent:  0.005,
			MaxPositionPercent:  0.10,
			ChaosAbortThreshold: 0.8,
		},
		StabilityConfig: StabilityConfig{
			Scalp: StabilityModeConfig{
				MinAgeMinutes:         15,
				PriceThresholdPercent: 0.1,
				ConfidenceDropPoints:  15,
			},
			Swing: StabilityModeConfig{
				MinAgeMinutes:         240,
				PriceThresholdPercent: 0.3,
				ConfidenceDropPoints:  20,
			},
		},
	}
}

// LoadConfig reads configuration from a JSON file, then applies environment
// overrides and validation. A missing file is not an error: defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides lets deployment environments adjust hot knobs without a
// config file edit.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ADVISOR_LOG_LEVEL"); v != "" {
		cfg.LoggingConfig.Level = v
	}
	if v := os.Getenv("ADVISOR_MIN_CONFLUENCE_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.AnalysisConfig.MinConfluenceScore = f
		}
	}
	if v := os.Getenv("ADVISOR_BASE_RISK_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RiskConfig.BaseRiskPercent = f
		}
	}
	if v := os.Getenv("ADVISOR_CHAOS_ABORT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RiskConfig.ChaosAbortThreshold = f
		}
	}
	if v := os.Getenv("ADVISOR_SIZING_MODEL"); v != "" {
		cfg.RiskConfig.SizingModel = v
	}
}

// Validate enforces the numeric contracts the pipeline depends on
func (c *Config) Validate() error {
	a := &c.AnalysisConfig
	if a.MinCandles <= 0 {
		a.MinCandles = 50
	}
	if a.ATRFloor <= 0 {
		return fmt.Errorf("analysis.atr_floor must be positive, got %v", a.ATRFloor)
	}
	if a.MinConfluenceScore <= 0 || a.MinConfluenceScore > 100 {
		return fmt.Errorf("analysis.min_confluence_score must be in (0,100], got %v", a.MinConfluenceScore)
	}
	if a.StopMultiplierShort <= 0 || a.StopMultiplierLong <= 0 {
		return fmt.Errorf("stop multipliers must be positive")
	}
	for phase, rr := range a.RiskRewardTable {
		if rr < 1.0 || rr > 5.0 {
			return fmt.Errorf("risk_reward_table[%s] must be in [1.0,5.0], got %v", phase, rr)
		}
	}

	r := &c.RiskConfig
	if r.MinPositionPercent < 0.005 {
		r.MinPositionPercent = 0.005
	}
	if r.MaxPositionPercent > 0.10 || r.MaxPositionPercent <= 0 {
		r.MaxPositionPercent = 0.10
	}
	if r.MinPositionPercent > r.MaxPositionPercent {
		return fmt.Errorf("risk.min_position_percent %v exceeds max_position_percent %v",
			r.MinPositionPercent, r.MaxPositionPercent)
	}
	if r.BaseRiskPercent <= 0 {
		return fmt.Errorf("risk.base_risk_percent must be positive, got %v", r.BaseRiskPercent)
	}
	if r.ChaosAbortThreshold <= 0 || r.ChaosAbortThreshold > 1 {
		return fmt.Errorf("risk.chaos_abort_threshold must be in (0,1], got %v", r.ChaosAbortThreshold)
	}

	s := &c.StabilityConfig
	if s.Scalp.MinAgeMinutes <= 0 || s.Swing.MinAgeMinutes <= 0 {
		return fmt.Errorf("stability min ages must be positive")
	}
	if s.Scalp.PriceThresholdPercent <= 0 || s.Swing.PriceThresholdPercent <= 0 {
		return fmt.Errorf("stability price thresholds must be positive")
	}

	return nil
}
