package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("62"))

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	selectedCardStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62"))

	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	progressBarFull  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	progressBarEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderBar pinta una barra de progreso textual de ancho fijo.
func renderBar(progress, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := progress * width / 100
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += progressBarFull.Render("█")
		} else {
			bar += progressBarEmpty.Render("░")
		}
	}
	return bar
}
