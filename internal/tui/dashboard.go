package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketpulse/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dashboard message types.
type pricesMsg []*domain.PriceSnapshot
type pricesErrMsg struct{ err error }
type analysesMsg []domain.AnalysisResult
type analysesErrMsg struct{ err error }
type dashTickMsg time.Time

// DashboardModel is the Bubble Tea model for the live dashboard screen.
type DashboardModel struct {
	services Services
	prices   []*domain.PriceSnapshot
	analyses []domain.AnalysisResult
	loading  bool
	err      error
	width    int
	height   int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial data fetch commands.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchPricesCmd(),
		m.fetchAnalysesCmd(),
		m.tickCmd(),
	)
}

// Update handles incoming messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pricesMsg:
		m.prices = []*domain.PriceSnapshot(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case pricesErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case analysesMsg:
		m.analyses = []domain.AnalysisResult(msg)
		return m, nil

	case analysesErrMsg:
		// Non-critical; prices are more important.
		return m, nil

	case dashTickMsg:
		return m, tea.Batch(
			m.fetchPricesCmd(),
			m.fetchAnalysesCmd(),
			m.tickCmd(),
		)
	}

	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.loading && len(m.prices) == 0 {
		return SubtextStyle.Render("Loading prices...")
	}
	if m.err != nil && len(m.prices) == 0 {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var sections []string

	priceTable := m.renderPriceTable()
	heatMap := m.renderHeatMapSection()

	priceWidth := m.width*2/3 - 2
	if priceWidth < 40 {
		priceWidth = 40
	}
	heatWidth := m.width - priceWidth - 4
	if heatWidth < 15 {
		heatWidth = 15
	}

	priceBox := BorderStyle.Width(priceWidth).Render(priceTable)
	heatBox := BorderStyle.Width(heatWidth).Render(heatMap)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, priceBox, heatBox)
	sections = append(sections, topRow)

	analysisSection := m.renderAnalyses()
	analysisBox := BorderStyle.Width(m.width - 2).Render(analysisSection)
	sections = append(sections, analysisBox)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Prices returns the current prices (for testing).
func (m DashboardModel) Prices() []*domain.PriceSnapshot { return m.prices }

// Analyses returns the current analyses (for testing).
func (m DashboardModel) Analyses() []domain.AnalysisResult { return m.analyses }

func (m DashboardModel) renderPriceTable() string {
	header := HeaderStyle.Render("  Live Prices")
	var lines []string
	lines = append(lines, header)
	lines = append(lines, SubtextStyle.Render("  Ticker       Price      24h       Volume"))
	lines = append(lines, SubtextStyle.Render(strings.Repeat("─", 55)))

	for _, p := range m.prices {
		lines = append(lines, "  "+FormatPrice(p))
	}

	if len(m.prices) == 0 {
		lines = append(lines, SubtextStyle.Render("  No price data available"))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderHeatMapSection() string {
	header := HeaderStyle.Render("  Heat Map")
	heatWidth := m.width/3 - 4
	if heatWidth < 15 {
		heatWidth = 15
	}
	heatMap := RenderHeatMap(m.prices, heatWidth)
	return header + "\n" + heatMap
}

func (m DashboardModel) renderAnalyses() string {
	header := HeaderStyle.Render("  Recent Analyses")
	var lines []string
	lines = append(lines, header)

	count := len(m.analyses)
	if count > 10 {
		count = 10
	}

	for i := 0; i < count; i++ {
		lines = append(lines, "  "+FormatAnalysisRow(m.analyses[i]))
	}

	if len(m.analyses) == 0 {
		lines = append(lines, SubtextStyle.Render("  No stored analyses"))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) fetchPricesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Prices == nil {
			return pricesErrMsg{err: fmt.Errorf("price service not available")}
		}

		var prices []*domain.PriceSnapshot
		var lastErr error
		for _, ticker := range m.services.watchlist() {
			snap, err := m.services.Prices.GetSnapshot(context.Background(), ticker)
			if err != nil {
				lastErr = err
				continue
			}
			prices = append(prices, snap)
		}
		if len(prices) == 0 && lastErr != nil {
			return pricesErrMsg{err: lastErr}
		}
		return pricesMsg(prices)
	}
}

func (m DashboardModel) fetchAnalysesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Analyses == nil {
			return analysesErrMsg{err: fmt.Errorf("analysis service not available")}
		}
		analyses, err := m.services.Analyses.ListAnalyses(context.Background(), domain.AnalysisFilter{Limit: 10})
		if err != nil {
			return analysesErrMsg{err: err}
		}
		return analysesMsg(analyses)
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}
