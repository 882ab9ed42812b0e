package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dayglow/internal/push"
)

var (
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true).
			MarginBottom(1)
)

// OK renders a success line.
func OK(msg string) string {
	return okStyle.Render("✓") + " " + msg
}

// Fail renders a failure line.
func Fail(msg string) string {
	return failStyle.Render("✗") + " " + msg
}

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Field renders an aligned "label value" row.
func Field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

// StateLabel describes a reminder state for humans.
func StateLabel(s push.State) string {
	switch s {
	case push.StateUnsupported:
		return "not supported here"
	case push.StateInsecure:
		return "blocked: insecure API URL"
	case push.StatePermissionPrompt:
		return "permission not requested"
	case push.StatePermissionDenied:
		return "permission denied"
	case push.StateNotSubscribed:
		return "allowed, not subscribed"
	case push.StateSubscribed:
		return "subscribed"
	}
	return string(s)
}
