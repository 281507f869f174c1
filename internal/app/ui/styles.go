package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/MOYARU/apiprobe/internal/report"
)

var (
	Critical = lipgloss.Color("#FF0000")
	High     = lipgloss.Color("#FF6B6B")
	Medium   = lipgloss.Color("#FFD93D")
	Low      = lipgloss.Color("#4D96FF")

	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)
)

// StatusStyle returns the style for a finding status.
func StatusStyle(s report.Status) lipgloss.Style {
	switch s {
	case report.StatusPassed:
		return PassStyle
	case report.StatusFailed:
		return FailStyle
	case report.StatusWarning:
		return WarnStyle
	}
	return MutedStyle
}

// SeverityStyle returns the style for a finding severity.
func SeverityStyle(s report.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case report.SeverityCritical:
		return base.Foreground(Critical)
	case report.SeverityHigh:
		return base.Foreground(High)
	case report.SeverityMedium:
		return base.Foreground(Medium)
	case report.SeverityLow:
		return base.Foreground(Low)
	}
	return MutedStyle
}
