package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/indicator"
)

// lookbackSamples is the history window requested per analysis call.
const lookbackSamples = 200

// DataProvider supplies prices and derived indicators for a ticker. All I/O
// lives behind this interface; the engine itself is pure and stateless.
type DataProvider interface {
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	GetHistoricalSeries(ctx context.Context, ticker string, window int) (domain.PriceSeries, error)
	GetIndicators(ctx context.Context, ticker string) (domain.IndicatorSet, error)
}

// Engine is the rule-based multi-factor scoring core. It holds no cross-call
// state, so concurrent Analyze calls need no coordination.
type Engine struct {
	provider  DataProvider
	assetType domain.AssetType
	now       func() time.Time
}

func NewEngine(provider DataProvider, now func() time.Time) (*Engine, error) {
	if err := ValidateWeights(); err != nil {
		return nil, fmt.Errorf("mode weight table: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{provider: provider, assetType: domain.AssetCrypto, now: now}, nil
}

// Analyze runs the full scoring pipeline for one ticker: indicators → layer
// scores → regime → aggregate → tier → position adjustment. Apart from
// GeneratedAt, identical inputs yield an identical result.
func (e *Engine) Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	weights, err := WeightsFor(mode)
	if err != nil {
		return nil, err
	}
	if e.provider == nil {
		return nil, fmt.Errorf("engine has no data provider")
	}

	raw, err := e.provider.GetHistoricalSeries(ctx, ticker, lookbackSamples)
	if err != nil {
		return nil, fmt.Errorf("historical series for %s: %w", ticker, err)
	}
	series := indicator.Normalize(raw)
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty price series for %s", domain.ErrMissingData, ticker)
	}

	price, err := e.provider.GetCurrentPrice(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("current price for %s: %w", ticker, err)
	}
	if price <= 0 {
		last, _ := series.Last()
		price = last.Price
	}

	ind, err := e.provider.GetIndicators(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("indicators for %s: %w", ticker, err)
	}

	layers := ScoreLayers(ind, series)
	regime := ClassifyRegime(ind, price)
	agg := AggregateScores(layers, regime, weights, ind)

	verdict := EvaluatePlaybook(PlaybookInput{
		BuyScore:  agg.BuyScore,
		SellScore: agg.SellScore,
		RiskScore: agg.RiskScore,
		Regime:    regime,
		Position:  pos,
	})
	keyFactors := KeyFactors(layers)

	breakdown := make(map[string]float64, len(layers))
	for _, l := range layers {
		breakdown[l.Layer] = l.Score
	}

	return &domain.AnalysisResult{
		Ticker:          ticker,
		AssetType:       e.assetType,
		Mode:            mode,
		CurrentPrice:    price,
		MarketRegime:    regime,
		BuyScore:        agg.BuyScore,
		SellScore:       agg.SellScore,
		RiskScore:       agg.RiskScore,
		LayerBreakdown:  breakdown,
		KeyFactors:      keyFactors,
		Tier:            verdict.Tier,
		SuggestedAction: AdjustForPosition(verdict, pos),
		Explanation:     BuildExplanation(regime, verdict, keyFactors),
		GeneratedAt:     e.now().UTC(),
	}, nil
}
