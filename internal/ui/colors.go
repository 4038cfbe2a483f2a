package ui

import "github.com/charmbracelet/lipgloss"

// palette is the stylesheet for the export workflow. Spotify's brand green
// anchors the accent; errors and warnings keep conventional terminal hues.
type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = palette{
	title: accent().MarginBottom(1),
	ok:    accent(),
	err:   fg("#FF5F56").Bold(true),
	warn:  fg("#FFBD2E"),
	help:  fg("#626262").Italic(true),
}

func accent() lipgloss.Style {
	return fg("#1DB954").Bold(true)
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
