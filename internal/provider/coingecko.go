package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/indicator"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL  = "https://api.coingecko.com/api/v3"
	requestTimeout  = 10 * time.Second
	maxChartDays    = 90
	samplesPerDay   = 24
	indicatorWindow = 200
)

// CoinGeckoProvider fetches quotes and historical series from the CoinGecko
// public API and derives indicators locally.
type CoinGeckoProvider struct {
	tracer  trace.Tracer
	client  *http.Client
	baseURL string
}

func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		tracer:  tracer,
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: defaultBaseURL,
	}
}

// NewCoinGeckoProviderWithBaseURL exists for tests against a local server.
func NewCoinGeckoProviderWithBaseURL(tracer trace.Tracer, baseURL string) *CoinGeckoProvider {
	p := NewCoinGeckoProvider(tracer)
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

func (p *CoinGeckoProvider) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	snap, err := p.GetSnapshot(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return snap.PriceUSD, nil
}

// GetSnapshot returns the latest quote with 24h change and volume.
func (p *CoinGeckoProvider) GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.get-snapshot")
	defer span.End()

	id, err := assetID(ticker)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("ticker", ticker))

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	q.Set("include_24hr_vol", "true")

	var payload map[string]struct {
		USD          float64 `json:"usd"`
		USD24hChange float64 `json:"usd_24h_change"`
		USD24hVol    float64 `json:"usd_24h_vol"`
	}
	if err := p.getJSON(ctx, "/simple/price?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("simple price for %s: %w", ticker, err)
	}

	quote, ok := payload[id]
	if !ok {
		return nil, fmt.Errorf("%w: no quote for %s", domain.ErrMissingData, ticker)
	}

	return &domain.PriceSnapshot{
		Ticker:       strings.ToUpper(ticker),
		PriceUSD:     quote.USD,
		Change24hPct: quote.USD24hChange,
		Volume24h:    quote.USD24hVol,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

func (p *CoinGeckoProvider) GetHistoricalSeries(ctx context.Context, ticker string, window int) (domain.PriceSeries, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.get-historical-series")
	defer span.End()

	id, err := assetID(ticker)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("ticker", ticker), attribute.Int("window", window))

	days := window / samplesPerDay
	if days < 1 {
		days = 1
	}
	if days > maxChartDays {
		days = maxChartDays
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", fmt.Sprintf("%d", days))

	var payload struct {
		Prices       [][2]float64 `json:"prices"`
		TotalVolumes [][2]float64 `json:"total_volumes"`
	}
	path := fmt.Sprintf("/coins/%s/market_chart?%s", id, q.Encode())
	if err := p.getJSON(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("market chart for %s: %w", ticker, err)
	}

	volumeAt := make(map[int64]float64, len(payload.TotalVolumes))
	for _, v := range payload.TotalVolumes {
		volumeAt[int64(v[0])] = v[1]
	}

	series := make(domain.PriceSeries, 0, len(payload.Prices))
	for _, pt := range payload.Prices {
		ms := int64(pt[0])
		series = append(series, domain.PriceSample{
			Timestamp: time.UnixMilli(ms).UTC(),
			Price:     pt[1],
			Volume:    volumeAt[ms],
		})
	}
	if len(series) > window {
		series = series[len(series)-window:]
	}
	return series, nil
}

func (p *CoinGeckoProvider) GetIndicators(ctx context.Context, ticker string) (domain.IndicatorSet, error) {
	series, err := p.GetHistoricalSeries(ctx, ticker, indicatorWindow)
	if err != nil {
		return domain.IndicatorSet{}, err
	}
	return indicator.Compute(series), nil
}

func (p *CoinGeckoProvider) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func assetID(ticker string) (string, error) {
	id, ok := domain.CoinGeckoID[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedTicker, ticker)
	}
	return id, nil
}
