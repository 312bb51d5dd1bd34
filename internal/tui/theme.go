package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Price colors
	PriceUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	PriceDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	PriceZeroStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Tier colors
	TierBuyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	TierSellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	TierNeutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))

	// Risk colors
	RiskLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	RiskMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	RiskHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// Heat map colors
	HeatGreen   = lipgloss.Color("#00FF00")
	HeatRed     = lipgloss.Color("#FF0000")
	HeatNeutral = lipgloss.Color("#555555")

	// Score bar colors
	ScoreGoodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	ScoreOkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	ScoreBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)
