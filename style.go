package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	keyword = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Render

	paragraph = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 0, 2).
			Render

	faint = lipgloss.NewStyle().Faint(true).Render

	startStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A56E0"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
)
