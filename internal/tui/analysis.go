package tui

import (
	"context"
	"fmt"
	"strings"

	"marketpulse/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Analysis explorer message types.
type analysisMsg *domain.AnalysisResult
type analysisErrMsg struct{ err error }

// AnalysisModel is the Bubble Tea model for the on-demand analysis screen.
// The selected ticker and mode are cycled with key bindings and an analysis
// runs only when requested, so the screen never polls on its own.
type AnalysisModel struct {
	services    Services
	tickerIndex int
	modeIndex   int
	result      *domain.AnalysisResult
	running     bool
	err         error
	width       int
	height      int
}

// NewAnalysisModel creates a new analysis explorer model.
func NewAnalysisModel(svc Services) AnalysisModel {
	return AnalysisModel{services: svc}
}

// Init is a no-op; the screen waits for an explicit run.
func (m AnalysisModel) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages.
func (m AnalysisModel) Update(msg tea.Msg) (AnalysisModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.CycleTicker):
			m.tickerIndex = (m.tickerIndex + 1) % len(m.services.watchlist())
			return m, nil

		case key.Matches(msg, DefaultKeyMap.CycleMode):
			m.modeIndex = (m.modeIndex + 1) % len(domain.SupportedModes)
			return m, nil

		case key.Matches(msg, DefaultKeyMap.RunAnalysis):
			if m.running {
				return m, nil
			}
			m.running = true
			m.err = nil
			return m, m.runAnalysisCmd()
		}

	case analysisMsg:
		m.result = (*domain.AnalysisResult)(msg)
		m.running = false
		m.err = nil
		return m, nil

	case analysisErrMsg:
		m.err = msg.err
		m.running = false
		return m, nil
	}

	return m, nil
}

// View renders the analysis screen.
func (m AnalysisModel) View() string {
	var sections []string

	selection := fmt.Sprintf("  Ticker: %s  Mode: %s  (s: ticker, m: mode, enter: run)",
		HeaderStyle.Render(m.Ticker()),
		HeaderStyle.Render(string(m.Mode())),
	)
	sections = append(sections, selection)

	switch {
	case m.running:
		sections = append(sections, SubtextStyle.Render("  Running analysis..."))
	case m.err != nil:
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	case m.result == nil:
		sections = append(sections, SubtextStyle.Render("  Press enter to analyze"))
	default:
		body := m.renderResult()
		sections = append(sections, BorderStyle.Width(m.width-2).Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *AnalysisModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Ticker returns the currently selected ticker.
func (m AnalysisModel) Ticker() string {
	watchlist := m.services.watchlist()
	return watchlist[m.tickerIndex%len(watchlist)]
}

// Mode returns the currently selected analysis mode.
func (m AnalysisModel) Mode() domain.AnalysisMode {
	return domain.SupportedModes[m.modeIndex%len(domain.SupportedModes)]
}

// Result returns the last analysis result (for testing).
func (m AnalysisModel) Result() *domain.AnalysisResult { return m.result }

func (m AnalysisModel) renderResult() string {
	r := m.result

	var lines []string
	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("  %s  %s  (%s market)", r.Ticker, formatUSD(r.CurrentPrice), r.MarketRegime)))
	lines = append(lines, fmt.Sprintf("  Verdict: %s  action: %s",
		tierStyle(r.Tier).Render(strings.ToUpper(string(r.Tier))),
		r.SuggestedAction,
	))
	lines = append(lines, "")
	lines = append(lines, "  "+RenderScoreBar("Buy", r.BuyScore, 10, 20, false))
	lines = append(lines, "  "+RenderScoreBar("Sell", r.SellScore, 10, 20, false))
	lines = append(lines, "  "+RenderScoreBar("Risk", r.RiskScore, 100, 20, true))
	lines = append(lines, "")

	lines = append(lines, HeaderStyle.Render("  Layers"))
	for _, layer := range domain.LayerNames {
		score, ok := r.LayerBreakdown[layer]
		if !ok {
			continue
		}
		lines = append(lines, "  "+RenderScoreBar(layer, score, 10, 20, false))
	}

	if len(r.KeyFactors) > 0 {
		lines = append(lines, "")
		lines = append(lines, HeaderStyle.Render("  Key Factors"))
		for _, f := range r.KeyFactors {
			lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  - [%s] %s", f.Layer, f.Description)))
		}
	}

	if r.Explanation != "" {
		lines = append(lines, "")
		lines = append(lines, "  "+r.Explanation)
	}

	return strings.Join(lines, "\n")
}

func (m AnalysisModel) runAnalysisCmd() tea.Cmd {
	ticker := m.Ticker()
	mode := m.Mode()
	return func() tea.Msg {
		if m.services.Analyses == nil {
			return analysisErrMsg{err: fmt.Errorf("analysis service not available")}
		}
		result, err := m.services.Analyses.Analyze(context.Background(), ticker, mode, nil)
		if err != nil {
			return analysisErrMsg{err: err}
		}
		return analysisMsg(result)
	}
}
