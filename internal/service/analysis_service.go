package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"marketpulse/internal/cache"
	"marketpulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const analysisSeriesWindow = 200

type Analyzer interface {
	Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error)
}

type AnalysisStore interface {
	InsertAnalysis(ctx context.Context, result *domain.AnalysisResult) (*domain.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error)
	LatestAnalysis(ctx context.Context, ticker string, mode domain.AnalysisMode) (*domain.AnalysisResult, error)
}

type SeriesProvider interface {
	GetHistoricalSeries(ctx context.Context, ticker string, window int) (domain.PriceSeries, error)
}

type AnomalyChecker interface {
	Check(series domain.PriceSeries) (float64, bool)
}

type AlertSink interface {
	Notify(ctx context.Context, result *domain.AnalysisResult, anomalous bool)
}

type AnalysisService struct {
	tracer   trace.Tracer
	engine   Analyzer
	store    AnalysisStore
	cache    *cache.AnalysisCache
	provider SeriesProvider
	detector AnomalyChecker
	alerts   AlertSink
}

func NewAnalysisService(
	tracer trace.Tracer,
	engine Analyzer,
	store AnalysisStore,
	redisClient *redis.Client,
) *AnalysisService {
	return NewAnalysisServiceWithAlerts(tracer, engine, store, redisClient, nil, nil, nil)
}

func NewAnalysisServiceWithAlerts(
	tracer trace.Tracer,
	engine Analyzer,
	store AnalysisStore,
	redisClient *redis.Client,
	provider SeriesProvider,
	detector AnomalyChecker,
	alerts AlertSink,
) *AnalysisService {
	return &AnalysisService{
		tracer:   tracer,
		engine:   engine,
		store:    store,
		cache:    cache.NewAnalysisCache(redisClient),
		provider: provider,
		detector: detector,
		alerts:   alerts,
	}
}

// SetAlertSink attaches the sink used for proactive notifications. The bot
// needs the service to register its handlers, so the sink arrives late.
func (s *AnalysisService) SetAlertSink(sink AlertSink) {
	s.alerts = sink
}

// Analyze runs the scoring engine for one ticker and mode, persists the
// result, and fans out alerts. Results without a position are cached; a
// position makes the result caller specific, so those skip the cache.
func (s *AnalysisService) Analyze(
	ctx context.Context,
	ticker string,
	mode domain.AnalysisMode,
	pos *domain.UserPosition,
) (*domain.AnalysisResult, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.analyze")
	defer span.End()

	if s.engine == nil {
		return nil, fmt.Errorf("analysis service is not fully initialized")
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !domain.IsSupportedTicker(ticker) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedTicker, ticker)
	}
	if mode == "" {
		mode = domain.ModeSwing
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMode, mode)
	}

	if pos == nil {
		if cached, err := s.cache.GetAnalysis(ctx, ticker, mode); err == nil && cached != nil {
			return cached, nil
		}
	}

	result, err := s.engine.Analyze(ctx, ticker, mode, pos)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		stored, err := s.store.InsertAnalysis(ctx, result)
		if err != nil {
			return nil, fmt.Errorf("persist analysis for %s: %w", ticker, err)
		}
		result = stored
	}

	if pos == nil {
		if err := s.cache.SetAnalysis(ctx, result); err != nil {
			log.Printf("analysis cache write for %s: %v", ticker, err)
		}
	}

	s.dispatchAlert(ctx, result)
	return result, nil
}

func (s *AnalysisService) ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.list-analyses")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("analysis service is not fully initialized")
	}

	filter.Ticker = strings.ToUpper(strings.TrimSpace(filter.Ticker))
	if filter.Ticker != "" && !domain.IsSupportedTicker(filter.Ticker) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedTicker, filter.Ticker)
	}
	if filter.Mode != "" && !filter.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMode, filter.Mode)
	}
	if filter.Tier != "" && !filter.Tier.IsValid() {
		return nil, fmt.Errorf("invalid tier: %s", filter.Tier)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	return s.store.ListAnalyses(ctx, filter)
}

func (s *AnalysisService) LatestAnalysis(ctx context.Context, ticker string, mode domain.AnalysisMode) (*domain.AnalysisResult, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.latest-analysis")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("analysis service is not fully initialized")
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !domain.IsSupportedTicker(ticker) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedTicker, ticker)
	}
	if mode == "" {
		mode = domain.ModeSwing
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMode, mode)
	}

	return s.store.LatestAnalysis(ctx, ticker, mode)
}

// dispatchAlert notifies sinks about actionable tiers. Anomalous price
// action is reported even when the tier itself is neutral.
func (s *AnalysisService) dispatchAlert(ctx context.Context, result *domain.AnalysisResult) {
	if s.alerts == nil || result == nil {
		return
	}

	anomalous := false
	if s.provider != nil && s.detector != nil {
		series, err := s.provider.GetHistoricalSeries(ctx, result.Ticker, analysisSeriesWindow)
		if err != nil {
			log.Printf("anomaly series fetch for %s: %v", result.Ticker, err)
		} else {
			_, anomalous = s.detector.Check(series)
		}
	}

	if !anomalous && !isActionableTier(result.Tier) {
		return
	}

	won, err := s.cache.MarkAlerted(ctx, result.Ticker, result.Mode, result.Tier, cache.DefaultAlertDedupTTL)
	if err != nil {
		log.Printf("alert dedup check for %s: %v", result.Ticker, err)
	} else if !won {
		return
	}
	s.alerts.Notify(ctx, result, anomalous)
}

func isActionableTier(tier domain.Tier) bool {
	switch tier {
	case domain.TierStrongBuy, domain.TierBuy, domain.TierStrongSell, domain.TierTakeProfit, domain.TierHighRiskAvoid:
		return true
	default:
		return false
	}
}
