package advisor

import (
	"fmt"

	"github.com/rs/zerolog"

	"trading-advisor/config"
	"trading-advisor/internal/analysis"
	"trading-advisor/internal/bayesian"
	"trading-advisor/internal/confluence"
	"trading-advisor/internal/fusion"
	"trading-advisor/internal/indicators"
	"trading-advisor/internal/market"
	"trading-advisor/internal/risk"
	"trading-advisor/internal/stability"
	"trading-advisor/internal/structure"
	"trading-advisor/internal/trend"
)

// microTrendWindow is the candle count used for the short-window trend read.
const microTrendWindow = 60

// Recommendation is the full externally observable output of one analysis
// cycle: the final decision plus every intermediate result for logging.
type Recommendation struct {
	Decision   fusion.Decision          `json:"decision"`
	Signal     confluence.RawSignal     `json:"signal"` // post stability gate
	Bayesian   bayesian.Analysis        `json:"bayesian"`
	Sizing     risk.Result              `json:"sizing"`
	Chaos      analysis.ChaosAssessment `json:"chaos"`
	MacroTrend trend.Assessment         `json:"macro_trend"`
	MicroTrend trend.Assessment         `json:"micro_trend"`
	Phase      trend.Phase              `json:"phase"`
	Structure  structure.Assessment     `json:"structure"`
	FromCache  bool                     `json:"from_cache"`
	GateReason string                   `json:"gate_reason"`
}

// Analyzer runs the multi-stage decision pipeline. The pipeline stages are
// pure; only the stability manager holds mutable state, behind its own locks,
// so one Analyzer is safe for concurrent use.
type Analyzer struct {
	cfg    *config.Config
	logger zerolog.Logger

	detector   *structure.Detector
	classifier *trend.Classifier
	volume     *analysis.VolumeAnalyzer
	timeframes *analysis.TimeframeAnalyzer
	chaos      *analysis.ChaosMeter
	scorer     *confluence.Scorer
	bayes      *bayesian.Engine
	sizer      *risk.Engine
	fuser      *fusion.Engine
	stability  *stability.Manager
}

// New wires the full pipeline from configuration
func New(cfg *config.Config, logger zerolog.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	confluenceCfg := confluence.Config{
		MinScore:            cfg.AnalysisConfig.MinConfluenceScore,
		MinTrendStrength:    trend.StrengthModerate,
		RSIExtremityBound:   cfg.AnalysisConfig.RSIExtremityBound,
		MinStructureQuality: cfg.AnalysisConfig.MinStructureQuality,
		MinADX:              20,
		StopATRMultiples: map[confluence.Mode]float64{
			confluence.ModeScalp: cfg.AnalysisConfig.StopMultiplierShort,
			confluence.ModeSwing: cfg.AnalysisConfig.StopMultiplierLong,
		},
		RiskRewardTable: riskRewardTable(cfg.AnalysisConfig.RiskRewardTable),
	}

	riskCfg := risk.Config{
		BaseRiskPercent:    cfg.RiskConfig.BaseRiskPercent,
		Model:              risk.SizingModel(cfg.RiskConfig.SizingModel),
		DollarsPerLot:      cfg.RiskConfig.DollarsPerLot,
		MinPositionPercent: cfg.RiskConfig.MinPositionPercent,
		MaxPositionPercent: cfg.RiskConfig.MaxPositionPercent,
	}

	fusionCfg := fusion.DefaultConfig()
	fusionCfg.ChaosAbortThreshold = cfg.RiskConfig.ChaosAbortThreshold

	stabilityCfg := stability.Config{
		confluence.ModeScalp: {
			MinAge:                cfg.StabilityConfig.Scalp.MinAge(),
			PriceThresholdPercent: cfg.StabilityConfig.Scalp.PriceThresholdPercent,
			ConfidenceDropPoints:  cfg.StabilityConfig.Scalp.ConfidenceDropPoints,
		},
		confluence.ModeSwing: {
			MinAge:                cfg.StabilityConfig.Swing.MinAge(),
			PriceThresholdPercent: cfg.StabilityConfig.Swing.PriceThresholdPercent,
			ConfidenceDropPoints:  cfg.StabilityConfig.Swing.ConfidenceDropPoints,
		},
	}

	trendCfg := trend.Config{
		BullRSIThreshold: cfg.AnalysisConfig.BullRSIThreshold,
		BearRSIThreshold: cfg.AnalysisConfig.BearRSIThreshold,
	}

	return &Analyzer{
		cfg:        cfg,
		logger:     logger,
		detector:   structure.NewDetector(cfg.AnalysisConfig.SwingWindow, logger),
		classifier: trend.NewClassifier(trendCfg, logger),
		volume:     analysis.NewVolumeAnalyzer(20),
		timeframes: analysis.NewTimeframeAnalyzer(),
		chaos:      analysis.NewChaosMeter(),
		scorer:     confluence.NewScorer(confluenceCfg, logger),
		bayes:      bayesian.NewEngine(logger),
		sizer:      risk.NewEngine(riskCfg, logger),
		fuser:      fusion.NewEngine(fusionCfg, logger),
		stability:  stability.NewManager(stabilityCfg, logger),
	}
}

// Stability exposes the stability manager for forced resets and inspection.
func (a *Analyzer) Stability() *stability.Manager {
	return a.stability
}

// Analyze runs the full pipeline over an ordered candle sequence and returns
// the vetted recommendation. Histories below the configured minimum degrade
// to a NoTrade recommendation with a reason; Analyze never returns an error
// for data-quality problems.
func (a *Analyzer) Analyze(candles []market.Candle, mode confluence.Mode, accountBalance float64) Recommendation {
	candles, corrections := market.Repair(candles, a.logger)
	if corrections > 0 {
		a.logger.Warn().Int("corrections", corrections).Msg("candle history repaired before analysis")
	}

	if len(candles) < a.cfg.AnalysisConfig.MinCandles {
		return a.insufficientData(candles, mode)
	}

	// Stage 1: indicators.
	ind := indicators.Snapshot(candles, a.cfg.AnalysisConfig.ATRFloor)

	// Stage 2: structure and trend.
	st := a.detector.Assess(candles)

	macroTrend := a.classifier.Classify(candles, ind, st)
	microTrend := macroTrend
	if len(candles) > microTrendWindow {
		microCandles := candles[len(candles)-microTrendWindow:]
		microInd := indicators.Snapshot(microCandles, a.cfg.AnalysisConfig.ATRFloor)
		microSt := a.detector.Assess(microCandles)
		microTrend = a.classifier.Classify(microCandles, microInd, microSt)
	}

	phase := trend.DetectPhase(candles, macroTrend)

	// Stage 3: context.
	volumeProfile := a.volume.AnalyzeVolume(candles)
	alignment := a.timeframes.Analyze(candles)
	chaosAssessment := a.chaos.Assess(candles)

	// Stage 4: confluence scoring.
	fresh, _ := a.scorer.Score(confluence.Input{
		Candles:    candles,
		Indicators: ind,
		Structure:  st,
		MicroTrend: microTrend,
		MacroTrend: macroTrend,
		Phase:      phase,
		Volume:     volumeProfile,
		Alignment:  alignment,
		Mode:       mode,
	})

	// Stage 5: Bayesian confidence.
	factors := bayesian.Factors{
		SignalStrength:     fresh.RawConfidence / 100,
		TrendStrength:      signedScore(macroTrend),
		Momentum:           clampSigned(ind.Momentum10 / 5),
		Volatility:         chaosAssessment.Volatility,
		VolumeProfile:      volumeProfile.Score(),
		TimeframeAlignment: alignment.Score,
		StructureQuality:   st.Quality,
		ChaosRiskLevel:     chaosAssessment.Level,
	}
	bayes := a.bayes.Analyze(factors)

	// Stage 6: position sizing.
	sizing := a.sizer.Size(risk.Input{
		Posterior:      bayes.Posterior,
		Confidence:     bayes.ConfidenceLevel,
		ChaosRiskLevel: chaosAssessment.Level,
		Volatility:     chaosAssessment.Volatility,
		RiskReward:     bayes.RiskRewardRatio,
		AccountBalance: accountBalance,
	})

	// Stage 7: decision fusion.
	decision := a.fuser.Decide(bayes, chaosAssessment.Level, sizing, fusion.Factors{
		TrendStrength:      factors.TrendStrength,
		Momentum:           factors.Momentum,
		VolumeProfile:      factors.VolumeProfile,
		StructureQuality:   factors.StructureQuality,
		TimeframeAlignment: factors.TimeframeAlignment,
	})

	// A NoTrade signal can never execute, whatever the context scores say.
	if !fresh.IsActionable() && decision.Action == fusion.ActionExecute {
		decision.Action = fusion.ActionWait
		decision.Reasons = append(decision.Reasons, fresh.Reason)
	}

	// Stage 8: stability gate.
	gate := a.stability.Evaluate(mode, fresh, market.LastClose(candles))

	a.logger.Info().
		Str("mode", string(mode)).
		Str("action", string(decision.Action)).
		Str("direction", string(gate.Signal.Direction)).
		Bool("from_cache", gate.FromCache).
		Float64("quality_score", decision.QualityScore).
		Msg("analysis complete")

	return Recommendation{
		Decision:   decision,
		Signal:     gate.Signal,
		Bayesian:   bayes,
		Sizing:     sizing,
		Chaos:      chaosAssessment,
		MacroTrend: macroTrend,
		MicroTrend: microTrend,
		Phase:      phase,
		Structure:  st,
		FromCache:  gate.FromCache,
		GateReason: gate.Reason,
	}
}

// insufficientData builds the defaulted NoTrade recommendation required when
// history is too short for any stage to run.
func (a *Analyzer) insufficientData(candles []market.Candle, mode confluence.Mode) Recommendation {
	reason := fmt.Sprintf("insufficient data: %d candles supplied, %d required",
		len(candles), a.cfg.AnalysisConfig.MinCandles)

	a.logger.Warn().Str("mode", string(mode)).Msg(reason)

	signal := confluence.NoTradeSignal(mode, reason)

	return Recommendation{
		Decision: fusion.Decision{
			Action:    fusion.ActionWait,
			RiskLevel: "medium",
			Reasons:   []string{reason},
		},
		Signal:     signal,
		MacroTrend: trend.Assessment{Direction: trend.DirectionNeutral, Strength: trend.StrengthNone},
		MicroTrend: trend.Assessment{Direction: trend.DirectionNeutral, Strength: trend.StrengthNone},
		Phase:      trend.PhaseTransitional,
		Chaos:      analysis.ChaosAssessment{Level: 0.5, Volatility: 0.5, Regime: analysis.RegimeMedium},
		GateReason: reason,
	}
}

// signedScore normalizes the trend score to [-1,1].
func signedScore(t trend.Assessment) float64 {
	return clampSigned(float64(t.Score) / 10)
}

func clampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// riskRewardTable converts the string-keyed config table to phase keys.
func riskRewardTable(table map[string]float64) map[trend.Phase]float64 {
	converted := make(map[trend.Phase]float64, len(table))
	for phase, rr := range table {
		converted[trend.Phase(phase)] = rr
	}
	return converted
}
