// Package ui holds the terminal styles shared by the CLI commands.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formset/pkg/notify"
)

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	ColorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}

	StyleSuccess     lipgloss.Style
	StyleError       lipgloss.Style
	StyleInfo        lipgloss.Style
	StyleWarning     lipgloss.Style
	StyleMuted       lipgloss.Style
	StyleTableHeader lipgloss.Style
	StyleTableBorder lipgloss.Style

	IconSuccess = "✔"
	IconError   = "✘"
	IconInfo    = "ℹ"
	IconWarning = "⚠"
)

func init() {
	SetTheme("auto")
}

// SetTheme applies "auto", "dark" or "light".
func SetTheme(theme string) {
	switch theme {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleTableHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleTableBorder = lipgloss.NewStyle().Foreground(ColorMuted)
}

func FormatSuccess(msg string) string {
	return StyleSuccess.Render(IconSuccess + " " + msg)
}

func FormatError(msg string) string {
	return StyleError.Render(IconError + " " + msg)
}

func FormatInfo(msg string) string {
	return StyleInfo.Render(IconInfo + " " + msg)
}

func FormatWarning(msg string) string {
	return StyleWarning.Render(IconWarning + " " + msg)
}

func FormatMuted(text string) string {
	return StyleMuted.Render(text)
}

// FormatNotice picks the style matching the notice level. Blocking notices
// always render as errors.
func FormatNotice(n notify.Notice) string {
	if n.Blocking {
		return FormatError(n.Message)
	}
	switch n.Level {
	case notify.LevelError:
		return FormatError(n.Message)
	case notify.LevelWarning:
		return FormatWarning(n.Message)
	case notify.LevelSuccess:
		return FormatSuccess(n.Message)
	default:
		return FormatInfo(n.Message)
	}
}
