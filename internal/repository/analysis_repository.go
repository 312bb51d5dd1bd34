package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketpulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type AnalysisRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAnalysisRepository(pool PgxPool, tracer trace.Tracer) *AnalysisRepository {
	return &AnalysisRepository{pool: pool, tracer: tracer}
}

func (r *AnalysisRepository) RunMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id BIGSERIAL PRIMARY KEY,
			ticker TEXT NOT NULL,
			asset_type TEXT NOT NULL,
			mode TEXT NOT NULL,
			current_price DOUBLE PRECISION NOT NULL,
			market_regime TEXT NOT NULL,
			buy_score DOUBLE PRECISION NOT NULL,
			sell_score DOUBLE PRECISION NOT NULL,
			risk_score DOUBLE PRECISION NOT NULL,
			layer_breakdown JSONB NOT NULL DEFAULT '{}',
			key_factors JSONB NOT NULL DEFAULT '[]',
			tier TEXT NOT NULL,
			suggested_action TEXT NOT NULL,
			explanation TEXT NOT NULL DEFAULT '',
			generated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ticker_time ON analyses (ticker, generated_at DESC)`)
	return err
}

// InsertAnalysis persists one result and returns a copy with the row id set.
func (r *AnalysisRepository) InsertAnalysis(ctx context.Context, result *domain.AnalysisResult) (*domain.AnalysisResult, error) {
	if result == nil {
		return nil, nil
	}

	_, span := r.tracer.Start(ctx, "analysis-repo.insert-analysis")
	defer span.End()

	breakdown, err := json.Marshal(result.LayerBreakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal layer breakdown: %w", err)
	}
	factors, err := json.Marshal(result.KeyFactors)
	if err != nil {
		return nil, fmt.Errorf("marshal key factors: %w", err)
	}

	out := *result
	err = r.pool.QueryRow(ctx,
		`INSERT INTO analyses (
			ticker, asset_type, mode, current_price, market_regime,
			buy_score, sell_score, risk_score, layer_breakdown, key_factors,
			tier, suggested_action, explanation, generated_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		result.Ticker,
		string(result.AssetType),
		string(result.Mode),
		result.CurrentPrice,
		string(result.MarketRegime),
		result.BuyScore,
		result.SellScore,
		result.RiskScore,
		breakdown,
		factors,
		string(result.Tier),
		string(result.SuggestedAction),
		result.Explanation,
		result.GeneratedAt.UTC(),
	).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AnalysisRepository) ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error) {
	_, span := r.tracer.Start(ctx, "analysis-repo.list-analyses")
	defer span.End()

	args := make([]any, 0, 4)
	var sb strings.Builder
	sb.WriteString(`SELECT id, ticker, asset_type, mode, current_price, market_regime,
		buy_score, sell_score, risk_score, layer_breakdown, key_factors,
		tier, suggested_action, explanation, generated_at
		FROM analyses
		WHERE 1=1`)

	if filter.Ticker != "" {
		args = append(args, strings.ToUpper(filter.Ticker))
		sb.WriteString(fmt.Sprintf(" AND ticker = $%d", len(args)))
	}
	if filter.Mode != "" {
		args = append(args, string(filter.Mode))
		sb.WriteString(fmt.Sprintf(" AND mode = $%d", len(args)))
	}
	if filter.Tier != "" {
		args = append(args, string(filter.Tier))
		sb.WriteString(fmt.Sprintf(" AND tier = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY generated_at DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.AnalysisResult, 0, limit)
	for rows.Next() {
		res, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

// LatestAnalysis returns the newest stored result for a ticker/mode pair, or
// nil when none exists yet.
func (r *AnalysisRepository) LatestAnalysis(ctx context.Context, ticker string, mode domain.AnalysisMode) (*domain.AnalysisResult, error) {
	_, span := r.tracer.Start(ctx, "analysis-repo.latest-analysis")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, ticker, asset_type, mode, current_price, market_regime,
			buy_score, sell_score, risk_score, layer_breakdown, key_factors,
			tier, suggested_action, explanation, generated_at
		 FROM analyses
		 WHERE ticker = $1 AND mode = $2
		 ORDER BY generated_at DESC
		 LIMIT 1`,
		strings.ToUpper(ticker), string(mode),
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanAnalysis(rows)
}

func scanAnalysis(rows pgx.Rows) (*domain.AnalysisResult, error) {
	var res domain.AnalysisResult
	var assetType, mode, regime, tier, action string
	var breakdown, factors []byte
	var generatedAt time.Time

	if err := rows.Scan(
		&res.ID,
		&res.Ticker,
		&assetType,
		&mode,
		&res.CurrentPrice,
		&regime,
		&res.BuyScore,
		&res.SellScore,
		&res.RiskScore,
		&breakdown,
		&factors,
		&tier,
		&action,
		&res.Explanation,
		&generatedAt,
	); err != nil {
		return nil, err
	}

	res.AssetType = domain.AssetType(assetType)
	res.Mode = domain.AnalysisMode(mode)
	res.MarketRegime = domain.MarketRegime(regime)
	res.Tier = domain.Tier(tier)
	res.SuggestedAction = domain.SuggestedAction(action)
	res.GeneratedAt = generatedAt.UTC()

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &res.LayerBreakdown); err != nil {
			return nil, fmt.Errorf("unmarshal layer breakdown: %w", err)
		}
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &res.KeyFactors); err != nil {
			return nil, fmt.Errorf("unmarshal key factors: %w", err)
		}
	}
	return &res, nil
}
