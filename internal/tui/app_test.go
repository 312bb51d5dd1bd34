package tui

import (
	"context"
	"testing"
	"time"

	"marketpulse/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

// --- stub services ---

type stubPriceQuerier struct {
	snapshots map[string]*domain.PriceSnapshot
	err       error
}

func (s *stubPriceQuerier) GetSnapshot(ctx context.Context, ticker string) (*domain.PriceSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	if snap, ok := s.snapshots[ticker]; ok {
		return snap, nil
	}
	return &domain.PriceSnapshot{Ticker: ticker}, nil
}

type stubAnalysisQuerier struct {
	result   *domain.AnalysisResult
	analyses []domain.AnalysisResult
	err      error

	lastTicker string
	lastMode   domain.AnalysisMode
}

func (s *stubAnalysisQuerier) Analyze(ctx context.Context, ticker string, mode domain.AnalysisMode, pos *domain.UserPosition) (*domain.AnalysisResult, error) {
	s.lastTicker = ticker
	s.lastMode = mode
	return s.result, s.err
}

func (s *stubAnalysisQuerier) ListAnalyses(ctx context.Context, filter domain.AnalysisFilter) ([]domain.AnalysisResult, error) {
	return s.analyses, s.err
}

func testResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:              1,
		Ticker:          "BTC",
		Mode:            domain.ModeSwing,
		CurrentPrice:    65000,
		MarketRegime:    domain.RegimeBull,
		BuyScore:        8.1,
		SellScore:       1.9,
		RiskScore:       23,
		LayerBreakdown:  map[string]float64{domain.LayerTrend: 9.2, domain.LayerMomentum: 7.0},
		Tier:            domain.TierStrongBuy,
		SuggestedAction: domain.ActionBuy,
		GeneratedAt:     time.Unix(0, 0).UTC(),
	}
}

func testServices() Services {
	return Services{
		Prices:    &stubPriceQuerier{},
		Analyses:  &stubAnalysisQuerier{result: testResult()},
		Watchlist: []string{"BTC", "ETH"},
		Username:  "testuser",
	}
}

func TestAppModelInitialTab(t *testing.T) {
	m := NewAppModel(testServices())
	if m.ActiveTab() != TabDashboard {
		t.Fatalf("expected TabDashboard, got %d", m.ActiveTab())
	}
}

func TestAppModelTabSwitchByNumber(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	app := updated.(AppModel)
	if app.ActiveTab() != TabAnalysis {
		t.Fatalf("expected TabAnalysis after pressing 2, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	app = updated.(AppModel)
	if app.ActiveTab() != TabDashboard {
		t.Fatalf("expected TabDashboard after pressing 1, got %d", app.ActiveTab())
	}
}

func TestAppModelTabSwitchByTab(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	app := updated.(AppModel)
	if app.ActiveTab() != TabAnalysis {
		t.Fatalf("expected TabAnalysis after Tab, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app = updated.(AppModel)
	if app.ActiveTab() != TabDashboard {
		t.Fatalf("expected TabDashboard after Shift+Tab, got %d", app.ActiveTab())
	}
}

func TestAppModelWindowResize(t *testing.T) {
	m := NewAppModel(testServices())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	app := updated.(AppModel)
	if app.width != 100 || app.height != 50 {
		t.Fatalf("expected 100x50, got %dx%d", app.width, app.height)
	}
}

func TestAppModelViewRendersWithoutPanic(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	for _, tab := range []Tab{TabDashboard, TabAnalysis} {
		m.activeTab = tab
		view := m.View()
		if view == "" {
			t.Fatalf("expected non-empty view for tab %d", tab)
		}
	}
}
