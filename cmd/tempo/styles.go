package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pevans/tempo/runs"
)

var (
	accentColor  = lipgloss.Color("#2DA44E")
	warningColor = lipgloss.Color("#D29922")
	errorColor   = lipgloss.Color("#CF222E")
	dimColor     = lipgloss.Color("#6E7681")
	linkColor    = lipgloss.Color("#58A6FF")

	HeaderStyle = lipgloss.NewStyle().
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	LinkStyle = lipgloss.NewStyle().
			Foreground(linkColor)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case runs.StatusCompleted:
		return SuccessStyle
	case runs.StatusPartial:
		return WarningStyle
	default:
		return ErrorStyle
	}
}
