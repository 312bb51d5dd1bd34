package job

import (
	"context"
	"log"
	"time"

	"marketpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const defaultRefreshSecs = 300

type HistoryRefresher interface {
	RefreshHistory(ctx context.Context, ticker string) (int, error)
}

// PricePoller keeps the stored price history current by pulling the recent
// series for each watchlist ticker in turn.
type PricePoller struct {
	tracer       trace.Tracer
	priceService HistoryRefresher
	watchlist    []string
	interval     time.Duration
}

func NewPricePoller(tracer trace.Tracer, priceService HistoryRefresher, watchlist []string, pollSecs int) *PricePoller {
	if len(watchlist) == 0 {
		watchlist = domain.SupportedTickers
	}
	if pollSecs <= 0 {
		pollSecs = defaultRefreshSecs
	}
	return &PricePoller{
		tracer:       tracer,
		priceService: priceService,
		watchlist:    watchlist,
		interval:     time.Duration(pollSecs) * time.Second,
	}
}

// Start refreshes one ticker per tick. Blocks until ctx is cancelled.
func (p *PricePoller) Start(ctx context.Context) {
	if p.priceService == nil {
		log.Println("Price poller disabled: no price service")
		<-ctx.Done()
		return
	}

	log.Println("Price poller starting...")
	coinIndex := 0
	p.refreshNext(ctx, &coinIndex)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Price poller stopped")
			return
		case <-ticker.C:
			p.refreshNext(ctx, &coinIndex)
		}
	}
}

func (p *PricePoller) refreshNext(ctx context.Context, coinIndex *int) {
	if p.tracer != nil {
		_, span := p.tracer.Start(ctx, "price-poller.refresh")
		defer span.End()
	}

	ticker := p.watchlist[*coinIndex%len(p.watchlist)]
	*coinIndex++

	n, err := p.priceService.RefreshHistory(ctx, ticker)
	if err != nil {
		log.Printf("history refresh error for %s: %v", ticker, err)
		return
	}
	if n > 0 {
		log.Printf("history refresh stored %d sample(s) for %s", n, ticker)
	}
}
