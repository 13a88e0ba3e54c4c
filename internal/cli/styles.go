// Package cli provides styled terminal output and prompts for the bento
// command line.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette, shared with the dashboard's default theme.
var (
	PrimaryColor = lipgloss.Color("#2563EB")
	SuccessColor = lipgloss.Color("#16A34A")
	WarningColor = lipgloss.Color("#F59E0B")
	ErrorColor   = lipgloss.Color("#DC2626")
	InfoColor    = lipgloss.Color("#60A5FA")
	SubtleColor  = lipgloss.Color("#6B7280")
	borderColor  = lipgloss.Color("#334155")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// Text styles.
var (
	TitleStyle    = fg(PrimaryColor).Bold(true).MarginBottom(1)
	SubtitleStyle = fg(SubtleColor)
	SuccessStyle  = fg(SuccessColor)
	WarningStyle  = fg(WarningColor)
	ErrorStyle    = fg(ErrorColor)
	InfoStyle     = fg(InfoColor)
	SubtleStyle   = fg(SubtleColor)
	BoldStyle     = lipgloss.NewStyle().Bold(true)
	PromptStyle   = fg(PrimaryColor).Bold(true)

	// IncomeStyle and ExpenseStyle color signed amounts.
	IncomeStyle  = fg(SuccessColor)
	ExpenseStyle = fg(ErrorColor)
)

// Block styles.
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
	TableHeaderStyle = fg(PrimaryColor).Bold(true).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BentoIcon   = "🍱"
	WalletIcon  = "👛"
	ChartIcon   = "📊"
	TargetIcon  = "🎯"
	DebtIcon    = "🧾"
)

func iconLine(style lipgloss.Style, icon, msg string) string {
	return style.Render(icon + " " + msg)
}

// FormatSuccess renders a confirmation line.
func FormatSuccess(message string) string { return iconLine(SuccessStyle, SuccessIcon, message) }

// FormatError renders a failure line.
func FormatError(message string) string { return iconLine(ErrorStyle, ErrorIcon, message) }

// FormatWarning renders a warning line.
func FormatWarning(message string) string { return iconLine(WarningStyle, WarningIcon, message) }

// FormatInfo renders a neutral note.
func FormatInfo(message string) string { return iconLine(InfoStyle, InfoIcon, message) }

// FormatTitle renders a section heading.
func FormatTitle(title string) string { return iconLine(TitleStyle, BentoIcon, title) }

// FormatPrompt renders the question part of a prompt.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox draws content under a title inside a rounded border.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
