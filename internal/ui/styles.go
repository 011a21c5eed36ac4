// Package ui renders CLI output with lipgloss.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("205")
	ColorSecondary = lipgloss.Color("241")
	ColorSuccess   = lipgloss.Color("42")
	ColorError     = lipgloss.Color("160")
	ColorWarning   = lipgloss.Color("214")
	ColorText      = lipgloss.Color("252")
	ColorCyan      = lipgloss.Color("87")

	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)

	// StyleResultBox frames a generated branch/commit pair.
	StyleResultBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleLabel = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
)
