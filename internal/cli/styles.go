package cli

import "github.com/charmbracelet/lipgloss"

var (
	// headerStyle styles the column header row of cache tables.
	headerStyle = lipgloss.NewStyle().Bold(true)

	// idStyle highlights package ids.
	idStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	// dimStyle de-emphasizes secondary columns.
	dimStyle = lipgloss.NewStyle().Faint(true)
)
