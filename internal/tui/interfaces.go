package tui

import (
	"context"

	"marketpulse/internal/domain"
)

// PriceQuerier provides price data to the TUI.
type PriceQuerier interface {
	GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error)
}

// AnalysisQuerier provides scoring engine access to the TUI.
type AnalysisQuerier interface {
	Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error)
}

// Services bundles the service dependencies injected into the TUI.
type Services struct {
	Prices    PriceQuerier
	Analyses  AnalysisQuerier
	Watchlist []string
	Username  string
}

func (s Services) watchlist() []string {
	if len(s.Watchlist) == 0 {
		return domain.SupportedTickers
	}
	return s.Watchlist
}
