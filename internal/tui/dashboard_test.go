package tui

import (
	"testing"

	"marketpulse/internal/domain"
)

func TestDashboardUpdatePricesMsg(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)

	prices := []*domain.PriceSnapshot{
		{Ticker: "BTC", PriceUSD: 98000, Change24hPct: 2.3, Volume24h: 28e9},
		{Ticker: "ETH", PriceUSD: 3456, Change24hPct: -1.2, Volume24h: 15e9},
	}

	updated, _ := m.Update(pricesMsg(prices))
	if len(updated.Prices()) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(updated.Prices()))
	}
	if updated.Prices()[0].Ticker != "BTC" {
		t.Fatalf("expected BTC, got %s", updated.Prices()[0].Ticker)
	}
}

func TestDashboardUpdateAnalysesMsg(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(analysesMsg([]domain.AnalysisResult{*testResult()}))
	if len(updated.Analyses()) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(updated.Analyses()))
	}
}

func TestDashboardViewEmpty(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)
	m.loading = false

	view := m.View()
	if view == "" {
		t.Fatal("expected non-empty view")
	}
}

func TestDashboardViewWithData(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)

	m.prices = []*domain.PriceSnapshot{
		{Ticker: "BTC", PriceUSD: 98000, Change24hPct: 2.3, Volume24h: 28e9},
	}
	m.analyses = []domain.AnalysisResult{*testResult()}
	m.loading = false

	view := m.View()
	if view == "" {
		t.Fatal("expected non-empty view with data")
	}
}
