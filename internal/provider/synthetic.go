package provider

import (
	"context"
	"math"
	"strings"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/indicator"
)

// SyntheticProvider generates deterministic price series for development and
// tests: same ticker, same output, no network. The shape is a drifting sine
// wave whose phase and drift derive from the ticker name.
type SyntheticProvider struct {
	origin time.Time
}

func NewSyntheticProvider() *SyntheticProvider {
	return &SyntheticProvider{origin: time.Unix(1700000000, 0).UTC()}
}

func (p *SyntheticProvider) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	series, err := p.GetHistoricalSeries(ctx, ticker, 1)
	if err != nil {
		return 0, err
	}
	last, _ := series.Last()
	return last.Price, nil
}

func (p *SyntheticProvider) GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error) {
	series, err := p.GetHistoricalSeries(ctx, ticker, 25)
	if err != nil {
		return nil, err
	}
	last, _ := series.Last()
	first := series[0]
	change := 0.0
	if first.Price > 0 {
		change = (last.Price - first.Price) / first.Price * 100
	}
	var vol float64
	for _, s := range series {
		vol += s.Volume
	}
	return &domain.PriceSnapshot{
		Ticker:       strings.ToUpper(ticker),
		PriceUSD:     last.Price,
		Change24hPct: change,
		Volume24h:    vol,
		FetchedAt:    last.Timestamp,
	}, nil
}

func (p *SyntheticProvider) GetHistoricalSeries(ctx context.Context, ticker string, window int) (domain.PriceSeries, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !domain.IsSupportedTicker(ticker) {
		return nil, domain.ErrUnsupportedTicker
	}
	if window < 1 {
		window = 1
	}

	seed := float64(tickerSeed(ticker))
	base := 50 + math.Mod(seed, 400)
	drift := 0.001 + math.Mod(seed, 7)/2000
	phase := math.Mod(seed, math.Pi*2)

	series := make(domain.PriceSeries, 0, window)
	for i := 0; i < window; i++ {
		step := float64(i)
		price := base * (1 + drift*step/10) * (1 + 0.03*math.Sin(phase+step/8))
		volume := 1000 + 200*math.Sin(phase+step/5) + math.Mod(seed+step, 50)
		series = append(series, domain.PriceSample{
			Timestamp: p.origin.Add(time.Duration(i-window) * time.Hour),
			Price:     price,
			Volume:    volume,
		})
	}
	return series, nil
}

func (p *SyntheticProvider) GetIndicators(ctx context.Context, ticker string) (domain.IndicatorSet, error) {
	series, err := p.GetHistoricalSeries(ctx, ticker, indicatorWindow)
	if err != nil {
		return domain.IndicatorSet{}, err
	}
	return indicator.Compute(series), nil
}

func tickerSeed(ticker string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(ticker); i++ {
		h ^= uint32(ticker[i])
		h *= 16777619
	}
	return h
}
