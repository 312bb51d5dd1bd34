package tui

import (
	"strings"
	"testing"

	"marketpulse/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

func TestAnalysisCycleTickerAndMode(t *testing.T) {
	m := NewAnalysisModel(testServices())

	if m.Ticker() != "BTC" {
		t.Fatalf("expected initial ticker BTC, got %s", m.Ticker())
	}
	if m.Mode() != domain.ModeLongTerm {
		t.Fatalf("expected initial mode long_term, got %s", m.Mode())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if m.Ticker() != "ETH" {
		t.Fatalf("expected ETH after cycle, got %s", m.Ticker())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if m.Ticker() != "BTC" {
		t.Fatalf("expected wraparound to BTC, got %s", m.Ticker())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	if m.Mode() != domain.ModeSwing {
		t.Fatalf("expected swing after cycle, got %s", m.Mode())
	}
}

func TestAnalysisRunCommand(t *testing.T) {
	svc := testServices()
	analyses := svc.Analyses.(*stubAnalysisQuerier)

	m := NewAnalysisModel(svc)
	m.SetSize(120, 40)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected run command")
	}
	if !m.running {
		t.Fatal("expected running state")
	}

	msg := cmd()
	if analyses.lastTicker != "BTC" {
		t.Fatalf("expected analyze BTC, got %s", analyses.lastTicker)
	}
	if analyses.lastMode != domain.ModeLongTerm {
		t.Fatalf("expected long_term mode, got %s", analyses.lastMode)
	}

	m, _ = m.Update(msg)
	if m.running {
		t.Fatal("expected running to clear")
	}
	if m.Result() == nil || m.Result().Ticker != "BTC" {
		t.Fatalf("unexpected result: %+v", m.Result())
	}
}

func TestAnalysisViewShowsResult(t *testing.T) {
	m := NewAnalysisModel(testServices())
	m.SetSize(120, 40)
	m.result = testResult()

	view := m.View()
	for _, want := range []string{"BTC", "STRONG_BUY", "Buy", "Risk", "trend"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
