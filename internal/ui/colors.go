package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Report colors, chosen to read on both dark and light backgrounds.
const (
	colorAccent = "#7D56F4"
	colorOK     = "#04B575"
	colorWarn   = "#FFA500"
	colorErr    = "#FF5F87"
	colorMuted  = "#626262"
)

// Palette is the stylesheet shared by every report renderer.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	help  lipgloss.Style
}

var styles = Palette{
	title: bold(colorAccent).MarginBottom(1),
	ok:    bold(colorOK),
	warn:  fg(colorWarn),
	err:   bold(colorErr),
	help:  fg(colorMuted).Italic(true),
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func bold(c string) lipgloss.Style {
	return fg(c).Bold(true)
}
