package mcp

import (
	"fmt"
	"strings"

	"marketpulse/internal/domain"
)

const (
	defaultSeriesLimit   = 200
	maxSeriesLimit       = 1000
	defaultAnalysisLimit = 50
	maxAnalysisLimit     = 200
)

type pricesGetByTickerInput struct {
	Ticker string `json:"ticker" jsonschema:"asset ticker (e.g. BTC, ETH)"`
}

type pricesGetByTickerOutput struct {
	Price *domain.PriceSnapshot `json:"price"`
}

type pricesHistoryInput struct {
	Ticker string `json:"ticker" jsonschema:"asset ticker (e.g. BTC, ETH)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"number of samples to return, max 1000"`
}

type pricesHistoryOutput struct {
	Ticker  string             `json:"ticker"`
	Samples domain.PriceSeries `json:"samples"`
}

type analyzeTickerInput struct {
	Ticker   string               `json:"ticker" jsonschema:"asset ticker (e.g. BTC, ETH)"`
	Mode     string               `json:"mode,omitempty" jsonschema:"analysis mode: long_term, swing, day_trade (default swing)"`
	Position *domain.UserPosition `json:"position,omitempty" jsonschema:"optional holdings context used to adjust the suggested action"`
}

type analyzeTickerOutput struct {
	Result *domain.AnalysisResult `json:"result"`
}

type analysesListInput struct {
	Ticker string `json:"ticker,omitempty" jsonschema:"optional asset ticker (e.g. BTC, ETH)"`
	Mode   string `json:"mode,omitempty" jsonschema:"optional analysis mode: long_term, swing, day_trade"`
	Tier   string `json:"tier,omitempty" jsonschema:"optional tier: strong_buy, buy, neutral, take_profit, strong_sell, high_risk_avoid"`
	Limit  int    `json:"limit,omitempty" jsonschema:"number of analyses to return, max 200"`
}

type analysesListOutput struct {
	Analyses []domain.AnalysisResult `json:"analyses"`
}

type analysisLatestInput struct {
	Ticker string `json:"ticker" jsonschema:"asset ticker (e.g. BTC, ETH)"`
	Mode   string `json:"mode,omitempty" jsonschema:"analysis mode: long_term, swing, day_trade (default swing)"`
}

type analysisLatestOutput struct {
	Result *domain.AnalysisResult `json:"result"`
}

func normalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if !domain.IsSupportedTicker(ticker) {
		return "", fmt.Errorf("unsupported ticker: %s", ticker)
	}
	return ticker, nil
}

func normalizeMode(raw string) (domain.AnalysisMode, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return domain.ModeSwing, nil
	}
	mode := domain.AnalysisMode(raw)
	if !mode.IsValid() {
		return "", fmt.Errorf("unsupported mode: %s", raw)
	}
	return mode, nil
}

func normalizeTier(raw string) (domain.Tier, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", nil
	}
	tier := domain.Tier(raw)
	if !tier.IsValid() {
		return "", fmt.Errorf("unsupported tier: %s", raw)
	}
	return tier, nil
}

func normalizeSeriesLimit(limit int) int {
	if limit <= 0 {
		return defaultSeriesLimit
	}
	if limit > maxSeriesLimit {
		return maxSeriesLimit
	}
	return limit
}

func normalizeAnalysisLimit(limit int) int {
	if limit <= 0 {
		return defaultAnalysisLimit
	}
	if limit > maxAnalysisLimit {
		return maxAnalysisLimit
	}
	return limit
}

func normalizeAnalysisFilter(in analysesListInput) (domain.AnalysisFilter, error) {
	filter := domain.AnalysisFilter{Limit: normalizeAnalysisLimit(in.Limit)}

	if strings.TrimSpace(in.Ticker) != "" {
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return domain.AnalysisFilter{}, err
		}
		filter.Ticker = ticker
	}

	if strings.TrimSpace(in.Mode) != "" {
		mode, err := normalizeMode(in.Mode)
		if err != nil {
			return domain.AnalysisFilter{}, err
		}
		filter.Mode = mode
	}

	tier, err := normalizeTier(in.Tier)
	if err != nil {
		return domain.AnalysisFilter{}, err
	}
	filter.Tier = tier

	return filter, nil
}
