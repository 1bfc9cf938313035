package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig tests the reference values the pipeline depends on
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.AnalysisConfig.MinCandles != 50 {
		t.Errorf("expected 50 minimum candles, got %d", cfg.AnalysisConfig.MinCandles)
	}
	if cfg.AnalysisConfig.MinConfluenceScore != 65 {
		t.Errorf("expected minimum confluence 65, got %f", cfg.AnalysisConfig.MinConfluenceScore)
	}
	if cfg.RiskConfig.MinPositionPercent != 0.005 || cfg.RiskConfig.MaxPositionPercent != 0.10 {
		t.Errorf("position bounds wrong: %f / %f",
			cfg.RiskConfig.MinPositionPercent, cfg.RiskConfig.MaxPositionPercent)
	}
	if got := cfg.StabilityConfig.Scalp.MinAge(); got != 15*time.Minute {
		t.Errorf("expected 15m scalp min age, got %s", got)
	}
	if got := cfg.StabilityConfig.Swing.MinAge(); got != 4*time.Hour {
		t.Errorf("expected 4h swing min age, got %s", got)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

// TestLoadConfigMissingFile tests that a missing file falls back to defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.AnalysisConfig.MinConfluenceScore != 65 {
		t.Errorf("expected defaults, got %f", cfg.AnalysisConfig.MinConfluenceScore)
	}
}

// TestLoadConfigFromFile tests JSON overrides on top of defaults
func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.json")
	data := `{
		"analysis": {
			"min_candles": 100,
			"atr_floor": 2.5,
			"min_confluence_score": 70,
			"stop_multiplier_short": 1.2,
			"stop_multiplier_long": 4.0,
			"risk_reward_table": {"markup": 3.5}
		},
		"stability": {
			"scalp": {"min_age_minutes": 10, "price_threshold_percent": 0.5, "confidence_drop_points": 10},
			"swing": {"min_age_minutes": 120, "price_threshold_percent": 1.0, "confidence_drop_points": 25}
		}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.AnalysisConfig.MinCandles != 100 {
		t.Errorf("expected min candles 100, got %d", cfg.AnalysisConfig.MinCandles)
	}
	if cfg.AnalysisConfig.RiskRewardTable["markup"] != 3.5 {
		t.Errorf("expected markup RR 3.5, got %f", cfg.AnalysisConfig.RiskRewardTable["markup"])
	}
	// The loose stability tuning is expressible purely through config.
	if cfg.StabilityConfig.Scalp.PriceThresholdPercent != 0.5 {
		t.Errorf("expected scalp threshold 0.5%%, got %f", cfg.StabilityConfig.Scalp.PriceThresholdPercent)
	}
	if cfg.StabilityConfig.Swing.MinAge() != 2*time.Hour {
		t.Errorf("expected 2h swing min age, got %s", cfg.StabilityConfig.Swing.MinAge())
	}
	// Untouched sections keep defaults.
	if cfg.RiskConfig.BaseRiskPercent != 0.02 {
		t.Errorf("expected default base risk, got %f", cfg.RiskConfig.BaseRiskPercent)
	}
}

// TestLoadConfigEnvOverrides tests the deployment environment knobs
func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ADVISOR_LOG_LEVEL", "debug")
	t.Setenv("ADVISOR_MIN_CONFLUENCE_SCORE", "75")
	t.Setenv("ADVISOR_SIZING_MODEL", "half_kelly")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.LoggingConfig.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.LoggingConfig.Level)
	}
	if cfg.AnalysisConfig.MinConfluenceScore != 75 {
		t.Errorf("expected confluence 75, got %f", cfg.AnalysisConfig.MinConfluenceScore)
	}
	if cfg.RiskConfig.SizingModel != "half_kelly" {
		t.Errorf("expected half_kelly, got %s", cfg.RiskConfig.SizingModel)
	}
}

// TestValidateRejectsBadValues tests the numeric contract enforcement
func TestValidateRejectsBadValues(t *testing.T) {
	mutations := []func(*Config){
		func(c *Config) { c.AnalysisConfig.ATRFloor = -1 },
		func(c *Config) { c.AnalysisConfig.MinConfluenceScore = 120 },
		func(c *Config) { c.AnalysisConfig.StopMultiplierShort = 0 },
		func(c *Config) { c.AnalysisConfig.RiskRewardTable["markup"] = 9 },
		func(c *Config) { c.RiskConfig.BaseRiskPercent = 0 },
		func(c *Config) { c.RiskConfig.ChaosAbortThreshold = 1.5 },
		func(c *Config) { c.StabilityConfig.Scalp.MinAgeMinutes = 0 },
		func(c *Config) { c.StabilityConfig.Swing.PriceThresholdPercent = -0.3 },
	}

	for i, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("mutation %d: expected a validation error", i)
		}
	}
}

// TestValidateClampsPositionBounds tests that out-of-range position bounds
// are clamped rather than rejected
func TestValidateClampsPositionBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RiskConfig.MinPositionPercent = 0.001
	cfg.RiskConfig.MaxPositionPercent = 0.5

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected clamping, got error: %v", err)
	}
	if cfg.RiskConfig.MinPositionPercent != 0.005 {
		t.Errorf("expected min clamped to 0.005, got %f", cfg.RiskConfig.MinPositionPercent)
	}
	if cfg.RiskConfig.MaxPositionPercent != 0.10 {
		t.Errorf("expected max clamped to 0.10, got %f", cfg.RiskConfig.MaxPositionPercent)
	}
}
