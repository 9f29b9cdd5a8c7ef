package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	err      lipgloss.Style
	status   lipgloss.Style
	disabled lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:    lipgloss.NewStyle().Faint(true),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		disabled: lipgloss.NewStyle().Faint(true).Strikethrough(true),
	}
}
