package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFA500"))

	abortedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A40000"))
)

// renderPrompt renders the prompt line, or nothing once answered
func renderPrompt(m PromptModel) string {
	switch {
	case m.Aborted:
		return abortedStyle.Render("Aborted.") + "\n"
	case m.Done:
		return ""
	default:
		return promptStyle.Render(m.Message)
	}
}
