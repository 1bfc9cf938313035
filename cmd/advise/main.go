// Command advise runs the trading-decision pipeline over a candle history
// file and prints the recommendation as JSON.
//
// Usage:
//
//	advise -candles history.json -mode swing -balance 25000 [-config advisor.json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"trading-advisor/config"
	"trading-advisor/internal/advisor"
	"trading-advisor/internal/confluence"
	"trading-advisor/internal/market"
)

func main() {
	configPath := flag.String("config", "", "path to advisor config JSON (optional)")
	candlesPath := flag.String("candles", "", "path to candle history JSON (required)")
	modeFlag := flag.String("mode", "swing", "trading mode: scalp or swing")
	balance := flag.Float64("balance", 10000, "account balance for position sizing")
	flag.Parse()

	if *candlesPath == "" {
		fmt.Fprintln(os.Stderr, "error: -candles is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.LoggingConfig)

	mode := confluence.Mode(*modeFlag)
	if mode != confluence.ModeScalp && mode != confluence.ModeSwing {
		fmt.Fprintf(os.Stderr, "error: unknown mode %q (want scalp or swing)\n", *modeFlag)
		os.Exit(2)
	}

	candles, err := loadCandles(*candlesPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load candles")
		os.Exit(1)
	}

	analyzer := advisor.New(cfg, logger)
	recommendation := analyzer.Analyze(candles, mode, *balance)

	out, err := json.MarshalIndent(recommendation, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode recommendation")
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// buildLogger configures zerolog from the logging config.
func buildLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}

// loadCandles reads an ordered candle sequence from a JSON array file.
func loadCandles(path string) ([]market.Candle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candles %s: %w", path, err)
	}

	var candles []market.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("parse candles %s: %w", path, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("candle file %s is empty", path)
	}

	return candles, nil
}
