package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketpulse/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultAnalysisTTL   = 5 * time.Minute
	DefaultSnapshotTTL   = 30 * time.Second
	DefaultAlertDedupTTL = 30 * time.Minute
)

// AnalysisCache stores recent engine results and price snapshots in Redis so
// repeated requests inside the TTL skip the provider round trip. A nil client
// degrades to a cache that always misses.
type AnalysisCache struct {
	client      *redis.Client
	analysisTTL time.Duration
	snapshotTTL time.Duration
}

func NewAnalysisCache(client *redis.Client) *AnalysisCache {
	return &AnalysisCache{
		client:      client,
		analysisTTL: DefaultAnalysisTTL,
		snapshotTTL: DefaultSnapshotTTL,
	}
}

func analysisKey(ticker string, mode domain.AnalysisMode) string {
	return fmt.Sprintf("analysis:%s:%s", strings.ToUpper(ticker), mode)
}

func snapshotKey(ticker string) string {
	return fmt.Sprintf("snapshot:%s", strings.ToUpper(ticker))
}

func (c *AnalysisCache) GetAnalysis(ctx context.Context, ticker string, mode domain.AnalysisMode) (*domain.AnalysisResult, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, analysisKey(ticker, mode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	return &result, nil
}

func (c *AnalysisCache) SetAnalysis(ctx context.Context, result *domain.AnalysisResult) error {
	if c == nil || c.client == nil || result == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return c.client.Set(ctx, analysisKey(result.Ticker, result.Mode), raw, c.analysisTTL).Err()
}

func (c *AnalysisCache) GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, snapshotKey(ticker)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap domain.PriceSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &snap, nil
}

// MarkAlerted claims the dedup window for a ticker/mode/tier alert and reports
// whether this caller won it. Without Redis every alert wins.
func (c *AnalysisCache) MarkAlerted(ctx context.Context, ticker string, mode domain.AnalysisMode, tier domain.Tier, ttl time.Duration) (bool, error) {
	if c == nil || c.client == nil {
		return true, nil
	}
	key := fmt.Sprintf("alert:%s:%s:%s", strings.ToUpper(ticker), mode, tier)
	return c.client.SetNX(ctx, key, 1, ttl).Result()
}

func (c *AnalysisCache) SetSnapshot(ctx context.Context, snap *domain.PriceSnapshot) error {
	if c == nil || c.client == nil || snap == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(snap.Ticker), raw, c.snapshotTTL).Err()
}
