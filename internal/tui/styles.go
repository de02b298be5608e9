package tui

import "github.com/charmbracelet/lipgloss"

var (
	docStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	selectedStyle = cellStyle.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	rejectedStyle = cellStyle.Foreground(lipgloss.Color("203"))
	pendingStyle  = cellStyle.Foreground(lipgloss.Color("78"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	errorModalStyle = modalStyle.BorderForeground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
