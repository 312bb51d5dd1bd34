package mcp

import (
	"context"

	"marketpulse/internal/domain"
)

// PriceReader exposes read operations for market data.
type PriceReader interface {
	GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error)
	GetSeries(ctx context.Context, ticker string, limit int) (domain.PriceSeries, error)
}

// AnalysisReaderWriter exposes read/run operations for the scoring engine.
type AnalysisReaderWriter interface {
	Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error)
	LatestAnalysis(ctx context.Context, ticker string, mode domain.AnalysisMode) (*domain.AnalysisResult, error)
}
