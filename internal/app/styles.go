package app

import "github.com/charmbracelet/lipgloss/v2"

const (
	bubblePaddingVertical   = 0
	bubblePaddingHorizontal = 1
)

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dividerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	selectedRowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	taskRowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	taskActiveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	taskFailedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	liveDotStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	staleDotStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	metaStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	pendingMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	userBubbleStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Background(lipgloss.Color("236")).Padding(bubblePaddingVertical, bubblePaddingHorizontal)
	agentBubbleStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(bubblePaddingVertical, bubblePaddingHorizontal)
	composePromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
)
