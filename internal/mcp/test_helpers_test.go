package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketpulse/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubPriceService struct {
	snapshots map[string]*domain.PriceSnapshot
	series    map[string]domain.PriceSeries

	lastSeriesLimit int
}

func (s *stubPriceService) GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error) {
	if snap, ok := s.snapshots[ticker]; ok {
		copy := *snap
		return &copy, nil
	}
	return nil, nil
}

func (s *stubPriceService) GetSeries(ctx context.Context, ticker string, limit int) (domain.PriceSeries, error) {
	s.lastSeriesLimit = limit
	series := s.series[ticker]
	if len(series) > limit {
		series = series[:limit]
	}
	return append(domain.PriceSeries(nil), series...), nil
}

type stubAnalysisService struct {
	analyzed *domain.AnalysisResult
	listed   []domain.AnalysisResult
	latest   *domain.AnalysisResult

	lastAnalyzeTicker string
	lastAnalyzeMode   domain.AnalysisMode
	lastPosition      *domain.UserPosition
	lastFilter        domain.AnalysisFilter
}

func (s *stubAnalysisService) Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error) {
	s.lastAnalyzeTicker = ticker
	s.lastAnalyzeMode = mode
	s.lastPosition = pos
	return s.analyzed, nil
}

func (s *stubAnalysisService) ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error) {
	s.lastFilter = filter
	return append([]domain.AnalysisResult(nil), s.listed...), nil
}

func (s *stubAnalysisService) LatestAnalysis(ctx context.Context, ticker string, mode domain.AnalysisMode) (*domain.AnalysisResult, error) {
	if s.latest == nil {
		return nil, nil
	}
	copy := *s.latest
	return &copy, nil
}

func sampleResult(id int64) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:              id,
		Ticker:          "BTC",
		AssetType:       domain.AssetCrypto,
		Mode:            domain.ModeSwing,
		CurrentPrice:    65000,
		MarketRegime:    domain.RegimeBull,
		BuyScore:        8.1,
		SellScore:       1.9,
		RiskScore:       23,
		LayerBreakdown:  map[string]float64{domain.LayerTrend: 9.2},
		Tier:            domain.TierStrongBuy,
		SuggestedAction: domain.ActionBuy,
		GeneratedAt:     time.Unix(0, 0).UTC(),
	}
}

func testServer() (*sdkmcp.Server, *stubPriceService, *stubAnalysisService) {
	prices := &stubPriceService{
		snapshots: map[string]*domain.PriceSnapshot{
			"BTC": {Ticker: "BTC", PriceUSD: 65000, Change24hPct: 2.1, Volume24h: 1000, FetchedAt: time.Unix(0, 0).UTC()},
		},
		series: map[string]domain.PriceSeries{
			"BTC": {{Timestamp: time.Unix(0, 0).UTC(), Price: 64000, Volume: 900}},
		},
	}
	analyses := &stubAnalysisService{
		analyzed: sampleResult(1),
		listed:   []domain.AnalysisResult{*sampleResult(2)},
		latest:   sampleResult(3),
	}

	srv := NewServer(nil, prices, analyses, ServerConfig{RequestTimeout: time.Second})
	return srv, prices, analyses
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
