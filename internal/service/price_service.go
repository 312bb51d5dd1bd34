package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"marketpulse/internal/cache"
	"marketpulse/internal/domain"
	"marketpulse/internal/indicator"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	historyWindow      = 200
	defaultSeriesLimit = 200
	maxSeriesLimit     = 1000
)

type PriceProvider interface {
	GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error)
	GetHistoricalSeries(ctx context.Context, ticker string, window int) (domain.PriceSeries, error)
}

type PriceStore interface {
	UpsertSamples(ctx context.Context, ticker string, series domain.PriceSeries) error
	GetSeries(ctx context.Context, ticker string, limit int) (domain.PriceSeries, error)
}

type PriceService struct {
	tracer   trace.Tracer
	provider PriceProvider
	store    PriceStore
	cache    *cache.AnalysisCache
}

func NewPriceService(
	tracer trace.Tracer,
	provider PriceProvider,
	store PriceStore,
	redisClient *redis.Client,
) *PriceService {
	return &PriceService{
		tracer:   tracer,
		provider: provider,
		store:    store,
		cache:    cache.NewAnalysisCache(redisClient),
	}
}

// GetSnapshot returns the latest quote, served from cache inside the TTL.
func (s *PriceService) GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error) {
	_, span := s.tracer.Start(ctx, "price-service.get-snapshot")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !domain.IsSupportedTicker(ticker) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedTicker, ticker)
	}
	if s.provider == nil {
		return nil, fmt.Errorf("price service is not fully initialized")
	}

	if cached, err := s.cache.GetSnapshot(ctx, ticker); err == nil && cached != nil {
		return cached, nil
	}

	snap, err := s.provider.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetSnapshot(ctx, snap); err != nil {
		log.Printf("snapshot cache write for %s: %v", ticker, err)
	}
	return snap, nil
}

// RefreshHistory pulls the recent series from the provider and persists it.
// It returns the number of samples written.
func (s *PriceService) RefreshHistory(ctx context.Context, ticker string) (int, error) {
	_, span := s.tracer.Start(ctx, "price-service.refresh-history")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !domain.IsSupportedTicker(ticker) {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedTicker, ticker)
	}
	if s.provider == nil || s.store == nil {
		return 0, fmt.Errorf("price service is not fully initialized")
	}

	series, err := s.provider.GetHistoricalSeries(ctx, ticker, historyWindow)
	if err != nil {
		return 0, fmt.Errorf("fetch history for %s: %w", ticker, err)
	}
	series = indicator.Normalize(series)
	if len(series) == 0 {
		return 0, nil
	}
	if err := s.store.UpsertSamples(ctx, ticker, series); err != nil {
		return 0, fmt.Errorf("persist history for %s: %w", ticker, err)
	}
	return len(series), nil
}

func (s *PriceService) GetSeries(ctx context.Context, ticker string, limit int) (domain.PriceSeries, error) {
	_, span := s.tracer.Start(ctx, "price-service.get-series")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !domain.IsSupportedTicker(ticker) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedTicker, ticker)
	}
	if s.store == nil {
		return nil, fmt.Errorf("price service is not fully initialized")
	}

	if limit <= 0 {
		limit = defaultSeriesLimit
	}
	if limit > maxSeriesLimit {
		limit = maxSeriesLimit
	}
	return s.store.GetSeries(ctx, ticker, limit)
}
