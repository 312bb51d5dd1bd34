package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/indicator"
)

type fakeProvider struct {
	series   domain.PriceSeries
	price    float64
	ind      domain.IndicatorSet
	computed bool

	priceErr  error
	seriesErr error
	indErr    error
}

func (f *fakeProvider) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	return f.price, f.priceErr
}

func (f *fakeProvider) GetHistoricalSeries(ctx context.Context, ticker string, window int) (domain.PriceSeries, error) {
	return f.series, f.seriesErr
}

func (f *fakeProvider) GetIndicators(ctx context.Context, ticker string) (domain.IndicatorSet, error) {
	if f.indErr != nil {
		return domain.IndicatorSet{}, f.indErr
	}
	if f.computed {
		return indicator.Compute(f.series), nil
	}
	return f.ind, nil
}

func fixedNow() time.Time { return time.Unix(1700000000, 0).UTC() }

func bullProvider() *fakeProvider {
	return &fakeProvider{
		series: risingSeries(60),
		price:  160,
		ind: domain.IndicatorSet{
			RSI14:        fptr(65),
			SMA20:        fptr(149),
			SMA50:        fptr(134),
			SMASlope:     fptr(0.01),
			MACDLine:     fptr(1.0),
			MACDSignal:   fptr(0.6),
			ATRPct:       fptr(3.0),
			VolumeZScore: fptr(1.2),
			MaxDrawdown:  fptr(0.05),
		},
	}
}

func TestAnalyzeBullScenario(t *testing.T) {
	// price above both averages with positive slope, rsi 65, normal atr,
	// volume z-score +1.2, swing mode
	eng, err := NewEngine(bullProvider(), fixedNow)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := eng.Analyze(context.Background(), "btc", domain.ModeSwing, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if got.Ticker != "BTC" {
		t.Fatalf("expected normalized ticker BTC, got %s", got.Ticker)
	}
	if got.MarketRegime != domain.RegimeBull {
		t.Fatalf("expected bull regime, got %s", got.MarketRegime)
	}
	if got.BuyScore <= 6 {
		t.Fatalf("expected buy score in upper half, got %f", got.BuyScore)
	}
	if got.SellScore >= 4 {
		t.Fatalf("expected sell score in lower half, got %f", got.SellScore)
	}
	if got.RiskScore >= 50 {
		t.Fatalf("expected moderate risk, got %f", got.RiskScore)
	}
	if got.Tier != domain.TierBuy && got.Tier != domain.TierStrongBuy {
		t.Fatalf("expected buy-side tier, got %s", got.Tier)
	}
	if len(got.LayerBreakdown) != 4 {
		t.Fatalf("expected 4 layers in breakdown, got %d", len(got.LayerBreakdown))
	}
	if len(got.KeyFactors) == 0 || got.Explanation == "" {
		t.Fatal("expected key factors and explanation")
	}
	if !got.GeneratedAt.Equal(fixedNow()) {
		t.Fatalf("expected injected clock, got %s", got.GeneratedAt)
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	eng, err := NewEngine(bullProvider(), fixedNow)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	first, err := eng.Analyze(context.Background(), "ETH", domain.ModeSwing, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := eng.Analyze(context.Background(), "ETH", domain.ModeSwing, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must yield identical results:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeEmptySeriesIsMissingData(t *testing.T) {
	eng, _ := NewEngine(&fakeProvider{series: nil, price: 100}, fixedNow)
	_, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, nil)
	if !errors.Is(err, domain.ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
}

func TestAnalyzeInvalidMode(t *testing.T) {
	eng, _ := NewEngine(bullProvider(), fixedNow)
	_, err := eng.Analyze(context.Background(), "BTC", domain.AnalysisMode("scalp"), nil)
	if !errors.Is(err, domain.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestAnalyzePartialDataStillCompletes(t *testing.T) {
	p := bullProvider()
	p.ind.RSI14 = nil
	p.ind.MACDLine = nil
	p.ind.MACDSignal = nil

	eng, _ := NewEngine(p, fixedNow)
	got, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, nil)
	if err != nil {
		t.Fatalf("partial data must not error: %v", err)
	}
	if got.LayerBreakdown[domain.LayerMomentum] != neutralScore {
		t.Fatalf("expected neutral momentum fallback, got %f", got.LayerBreakdown[domain.LayerMomentum])
	}
}

func TestAnalyzeProviderErrorsPropagate(t *testing.T) {
	boom := fmt.Errorf("upstream down")

	eng, _ := NewEngine(&fakeProvider{seriesErr: boom}, fixedNow)
	if _, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, nil); !errors.Is(err, boom) {
		t.Fatalf("expected series error to propagate, got %v", err)
	}

	p := bullProvider()
	p.priceErr = boom
	eng, _ = NewEngine(p, fixedNow)
	if _, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, nil); !errors.Is(err, boom) {
		t.Fatalf("expected price error to propagate, got %v", err)
	}

	p = bullProvider()
	p.indErr = boom
	eng, _ = NewEngine(p, fixedNow)
	if _, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, nil); !errors.Is(err, boom) {
		t.Fatalf("expected indicator error to propagate, got %v", err)
	}
}

func TestAnalyzeZeroPriceFallsBackToSeries(t *testing.T) {
	p := bullProvider()
	p.price = 0
	eng, _ := NewEngine(p, fixedNow)

	got, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	last := p.series[len(p.series)-1]
	if got.CurrentPrice != last.Price {
		t.Fatalf("expected fallback to last sample price %f, got %f", last.Price, got.CurrentPrice)
	}
}

func TestAnalyzeWithComputedIndicators(t *testing.T) {
	// end-to-end over the real indicator pipeline on a synthetic uptrend
	p := &fakeProvider{series: risingSeries(120), price: 220, computed: true}
	eng, _ := NewEngine(p, fixedNow)

	got, err := eng.Analyze(context.Background(), "SOL", domain.ModeLongTerm, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.MarketRegime != domain.RegimeBull {
		t.Fatalf("expected bull regime on a steady uptrend, got %s", got.MarketRegime)
	}
	if got.BuyScore <= got.SellScore {
		t.Fatalf("expected buy dominance on an uptrend: buy=%f sell=%f", got.BuyScore, got.SellScore)
	}
}

func TestAnalyzePositionChangesActionOnly(t *testing.T) {
	eng, _ := NewEngine(bullProvider(), fixedNow)

	without, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	pos := &domain.UserPosition{Ticker: "BTC", Quantity: 2, PnLPercent: 80}
	with, err := eng.Analyze(context.Background(), "BTC", domain.ModeSwing, pos)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if with.Tier != without.Tier || with.BuyScore != without.BuyScore {
		t.Fatal("position must not change scores or tier")
	}
	if with.SuggestedAction != domain.ActionTakePartialProfit {
		t.Fatalf("expected deep-profit downgrade, got %s", with.SuggestedAction)
	}
}
