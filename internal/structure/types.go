package structure

// Polarity marks whether a structural feature favors buyers or sellers
type Polarity string

const (
	PolarityBullish Polarity = "bullish"
	PolarityBearish Polarity = "bearish"
)

// SwingPoint represents a significant price extreme
type SwingPoint struct {
	Price       float64 `json:"price"`
	CandleIndex int     `json:"candle_index"`
	Type        string  `json:"type"` // "high" or "low"
	Confirmed   bool    `json:"confirmed"`
}

// PriceRange is an inclusive price band
type PriceRange struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether price falls inside the range
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Bottom && price <= r.Top
}

// OrderBlock marks a candle showing large directional commitment
type OrderBlock struct {
	Range       PriceRange `json:"range"`
	Polarity    Polarity   `json:"polarity"`
	CandleIndex int        `json:"candle_index"`
}

// FairValueGap is an untraded gap left between non-overlapping candle extremes
type FairValueGap struct {
	Range       PriceRange `json:"range"`
	Polarity    Polarity   `json:"polarity"`
	CandleIndex int        `json:"candle_index"`
	Filled      bool       `json:"filled"`
}

// BreakKind distinguishes continuation breaks from reversals
type BreakKind string

const (
	BreakOfStructure  BreakKind = "BOS"
	ChangeOfCharacter BreakKind = "CHoCH"
)

// StructureBreak describes a close beyond the most recent major swing
type StructureBreak struct {
	Detected  bool      `json:"detected"`
	Direction Polarity  `json:"direction,omitempty"`
	Kind      BreakKind `json:"kind,omitempty"`
}

// Zone is a supply or demand area anchored to an oversized candle
type Zone struct {
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Strength    float64 `json:"strength"`
	CandleIndex int     `json:"candle_index"`
}

// LiquiditySweep records a stop-hunt beyond recent extremes
type LiquiditySweep struct {
	SweptHighs bool    `json:"swept_highs"`
	SweptLows  bool    `json:"swept_lows"`
	Score      float64 `json:"score"` // 0-1
}

// Assessment is the full structural read of a candle sequence
type Assessment struct {
	SwingHighs      []SwingPoint        `json:"swing_highs"`
	SwingLows       []SwingPoint        `json:"swing_lows"`
	OrderBlocks     []OrderBlock        `json:"order_blocks"`
	FairValueGaps   []FairValueGap      `json:"fair_value_gaps"`
	Liquidity       LiquiditySweep      `json:"liquidity"`
	Break           StructureBreak      `json:"structure_break"`
	FibonacciLevels map[float64]float64 `json:"fibonacci_levels"`
	DemandZones     []Zone              `json:"demand_zones"`
	SupplyZones     []Zone              `json:"supply_zones"`

	HigherHighs int `json:"higher_highs"`
	HigherLows  int `json:"higher_lows"`
	LowerHighs  int `json:"lower_highs"`
	LowerLows   int `json:"lower_lows"`

	// Quality summarizes how tradeable the structure looks, 0-1.
	Quality float64 `json:"quality"`
}
