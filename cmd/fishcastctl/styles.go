package main

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Shared output styles. Scores use a traffic-light palette so a glance
// at the table tells the day's story.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	noGoStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	scoreGood = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	scoreMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	scoreLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func styleScore(score int) string {
	s := strconv.Itoa(score)
	switch {
	case score >= 70:
		return scoreGood.Render(s)
	case score >= 40:
		return scoreMid.Render(s)
	default:
		return scoreLow.Render(s)
	}
}
