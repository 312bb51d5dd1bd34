package domain

import (
	"errors"
	"time"
)

var (
	// ErrMissingData means the price series for a ticker is entirely empty.
	// Individual nil indicators are not an error; see the layer scorers.
	ErrMissingData = errors.New("missing price data")
	// ErrInvalidMode means an unknown analysis mode was requested.
	ErrInvalidMode = errors.New("invalid analysis mode")
	// ErrUnsupportedTicker means the ticker is not on the watchlist.
	ErrUnsupportedTicker = errors.New("unsupported ticker")
)

type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetStock  AssetType = "stock"
)

type AnalysisMode string

const (
	ModeLongTerm AnalysisMode = "long_term"
	ModeSwing    AnalysisMode = "swing"
	ModeDayTrade AnalysisMode = "day_trade"
)

var SupportedModes = []AnalysisMode{ModeLongTerm, ModeSwing, ModeDayTrade}

func (m AnalysisMode) IsValid() bool {
	switch m {
	case ModeLongTerm, ModeSwing, ModeDayTrade:
		return true
	}
	return false
}

type MarketRegime string

const (
	RegimeBull  MarketRegime = "bull"
	RegimeBear  MarketRegime = "bear"
	RegimeRange MarketRegime = "range"
)

type Tier string

const (
	TierStrongBuy     Tier = "strong_buy"
	TierBuy           Tier = "buy"
	TierNeutral       Tier = "neutral"
	TierTakeProfit    Tier = "take_profit"
	TierStrongSell    Tier = "strong_sell"
	TierHighRiskAvoid Tier = "high_risk_avoid"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierStrongBuy, TierBuy, TierNeutral, TierTakeProfit, TierStrongSell, TierHighRiskAvoid:
		return true
	}
	return false
}

type SuggestedAction string

const (
	ActionBuy               SuggestedAction = "buy"
	ActionHold              SuggestedAction = "hold"
	ActionTakePartialProfit SuggestedAction = "take_partial_profit"
	ActionSell              SuggestedAction = "sell"
	ActionAvoid             SuggestedAction = "avoid"
	ActionWait              SuggestedAction = "wait"
)

// PriceSample is one point of a price series, time-ascending, no duplicate timestamps.
type PriceSample struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

type PriceSeries []PriceSample

func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Price
	}
	return out
}

func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Volume
	}
	return out
}

func (s PriceSeries) Last() (PriceSample, bool) {
	if len(s) == 0 {
		return PriceSample{}, false
	}
	return s[len(s)-1], true
}

// IndicatorSet holds the derived indicators for one analysis call.
// A nil field means insufficient history, never zero.
type IndicatorSet struct {
	RSI14        *float64 `json:"rsi14,omitempty"`
	SMA20        *float64 `json:"sma20,omitempty"`
	SMA50        *float64 `json:"sma50,omitempty"`
	SMASlope     *float64 `json:"sma_slope,omitempty"`
	MACDLine     *float64 `json:"macd_line,omitempty"`
	MACDSignal   *float64 `json:"macd_signal,omitempty"`
	ATRPct       *float64 `json:"atr_pct,omitempty"`
	VolumeZScore *float64 `json:"volume_zscore,omitempty"`
	MaxDrawdown  *float64 `json:"max_drawdown,omitempty"`
}

type FactorImpact string

const (
	ImpactPositive FactorImpact = "positive"
	ImpactNegative FactorImpact = "negative"
	ImpactNeutral  FactorImpact = "neutral"
)

// Factor describes one contribution to a layer score. Contribution is the
// signed score delta the factor applied; reasoning text sorts on its magnitude.
type Factor struct {
	Layer        string       `json:"layer"`
	Name         string       `json:"factor"`
	Impact       FactorImpact `json:"impact"`
	Contribution float64      `json:"contribution"`
	Description  string       `json:"description"`
}

const (
	LayerTrend      = "trend"
	LayerMomentum   = "momentum"
	LayerVolatility = "volatility"
	LayerVolume     = "volume"
)

var LayerNames = []string{LayerTrend, LayerMomentum, LayerVolatility, LayerVolume}

// LayerScore is one analytical axis scored on [0,10], 10 = maximally bullish.
type LayerScore struct {
	Layer   string   `json:"layer"`
	Score   float64  `json:"score"`
	Factors []Factor `json:"contributing_factors"`
}

// AnalysisResult is the aggregate engine output. Immutable once constructed.
// Buy and sell scores are on [0,10]; risk is on a separate [0,100] scale.
type AnalysisResult struct {
	ID              int64              `json:"id,omitempty"`
	Ticker          string             `json:"ticker"`
	AssetType       AssetType          `json:"asset_type"`
	Mode            AnalysisMode       `json:"mode"`
	CurrentPrice    float64            `json:"current_price"`
	MarketRegime    MarketRegime       `json:"market_regime"`
	BuyScore        float64            `json:"buy_score"`
	SellScore       float64            `json:"sell_score"`
	RiskScore       float64            `json:"risk_score"`
	LayerBreakdown  map[string]float64 `json:"layer_breakdown"`
	KeyFactors      []Factor           `json:"key_factors"`
	Tier            Tier               `json:"tier"`
	SuggestedAction SuggestedAction    `json:"suggested_action"`
	Explanation     string             `json:"explanation"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// UserPosition is caller-supplied holdings context. The engine only reads it.
type UserPosition struct {
	Ticker       string  `json:"ticker"`
	AverageEntry float64 `json:"average_entry"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"current_price"`
	PnL          float64 `json:"pnl"`
	PnLPercent   float64 `json:"pnl_percent"`
}

type AnalysisFilter struct {
	Ticker string
	Mode   AnalysisMode
	Tier   Tier
	Limit  int
}

// PriceSnapshot is the latest quote for a ticker.
type PriceSnapshot struct {
	Ticker       string    `json:"ticker"`
	PriceUSD     float64   `json:"price_usd"`
	Change24hPct float64   `json:"change_24h_pct"`
	Volume24h    float64   `json:"volume_24h"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// CoinGeckoID maps watchlist tickers to CoinGecko asset ids.
var CoinGeckoID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
}

var SupportedTickers = []string{"BTC", "ETH", "SOL", "ADA", "DOT", "LINK", "AVAX", "MATIC"}

func IsSupportedTicker(ticker string) bool {
	_, ok := CoinGeckoID[ticker]
	return ok
}
