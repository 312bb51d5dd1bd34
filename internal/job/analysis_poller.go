package job

import (
	"context"
	"log"
	"time"

	"marketpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var (
	shortPollModes = []domain.AnalysisMode{domain.ModeSwing, domain.ModeDayTrade}
	longPollModes  = []domain.AnalysisMode{domain.ModeLongTerm}
)

type AnalysisRunner interface {
	Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error)
}

// AnalysisPoller periodically re-scores the watchlist so stored analyses and
// alerts stay fresh without waiting for API traffic.
type AnalysisPoller struct {
	tracer          trace.Tracer
	analysisService AnalysisRunner
	watchlist       []string
}

func NewAnalysisPoller(tracer trace.Tracer, analysisService AnalysisRunner, watchlist []string) *AnalysisPoller {
	if len(watchlist) == 0 {
		watchlist = domain.SupportedTickers
	}
	return &AnalysisPoller{
		tracer:          tracer,
		analysisService: analysisService,
		watchlist:       watchlist,
	}
}

// Start launches background analysis goroutines. Blocks until ctx is cancelled.
func (p *AnalysisPoller) Start(ctx context.Context) {
	if p.analysisService == nil {
		log.Println("Analysis poller disabled: no analysis service")
		<-ctx.Done()
		return
	}

	log.Println("Analysis poller starting...")
	go p.pollShortModes(ctx)
	go p.pollLongModes(ctx)

	<-ctx.Done()
	log.Println("Analysis poller stopped")
}

func (p *AnalysisPoller) pollShortModes(ctx context.Context) {
	coinIndex := 0
	coinsPerTick := 2

	p.runBatch(ctx, &coinIndex, coinsPerTick, shortPollModes)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runBatch(ctx, &coinIndex, coinsPerTick, shortPollModes)
		}
	}
}

func (p *AnalysisPoller) pollLongModes(ctx context.Context) {
	coinIndex := 0

	p.runBatch(ctx, &coinIndex, 1, longPollModes)

	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runBatch(ctx, &coinIndex, 1, longPollModes)
		}
	}
}

func (p *AnalysisPoller) runBatch(ctx context.Context, coinIndex *int, count int, modes []domain.AnalysisMode) {
	for i := 0; i < count; i++ {
		ticker := p.watchlist[*coinIndex%len(p.watchlist)]
		*coinIndex++

		for _, mode := range modes {
			if _, err := p.analysisService.Analyze(ctx, ticker, mode, nil); err != nil {
				log.Printf("scheduled analysis error for %s %s: %v", ticker, mode, err)
			}
		}
	}
}
