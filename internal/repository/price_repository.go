package repository

import (
	"context"

	"marketpulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PriceRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPriceRepository(pool PgxPool, tracer trace.Tracer) *PriceRepository {
	return &PriceRepository{pool: pool, tracer: tracer}
}

func (r *PriceRepository) RunMigrations(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS price_samples (
			ticker TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (ticker, ts)
		)`)
	return err
}

func (r *PriceRepository) UpsertSamples(ctx context.Context, ticker string, series domain.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "price-repo.upsert-samples")
	defer span.End()

	batch := &pgx.Batch{}
	for _, s := range series {
		batch.Queue(
			`INSERT INTO price_samples (ticker, ts, price, volume)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (ticker, ts) DO UPDATE SET
			     price = EXCLUDED.price,
			     volume = EXCLUDED.volume`,
			ticker, s.Timestamp.UTC(), s.Price, s.Volume,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range series {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetSeries returns up to limit newest samples for a ticker, time-ascending.
func (r *PriceRepository) GetSeries(ctx context.Context, ticker string, limit int) (domain.PriceSeries, error) {
	_, span := r.tracer.Start(ctx, "price-repo.get-series")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT ts, price, volume FROM (
		     SELECT ts, price, volume
		     FROM price_samples
		     WHERE ticker = $1
		     ORDER BY ts DESC
		     LIMIT $2
		 ) newest
		 ORDER BY ts ASC`,
		ticker, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := make(domain.PriceSeries, 0, limit)
	for rows.Next() {
		var s domain.PriceSample
		if err := rows.Scan(&s.Timestamp, &s.Price, &s.Volume); err != nil {
			return nil, err
		}
		s.Timestamp = s.Timestamp.UTC()
		series = append(series, s)
	}
	return series, rows.Err()
}
