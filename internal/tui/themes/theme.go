// Package themes holds the dashboard color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Faint         lipgloss.Style
	Selected      lipgloss.Style
	Card          lipgloss.Style
	Panel         lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	Income        lipgloss.Style
	Expense       lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	BarIncome     lipgloss.Style
	BarExpense    lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
}

type palette struct {
	primary, secondary, fg, subtle, muted, border, success, warning, errorC, info, tabFg string
}

func build(p palette) Theme {
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }
	return Theme{
		Primary:   c(p.primary),
		Secondary: c(p.secondary),
		Muted:     c(p.muted),
		Border:    c(p.border),
		Success:   c(p.success),
		Warning:   c(p.warning),
		Error:     c(p.errorC),

		Title:    lipgloss.NewStyle().Bold(true).Foreground(c(p.primary)),
		Subtitle: lipgloss.NewStyle().Foreground(c(p.subtle)),
		Normal:   lipgloss.NewStyle().Foreground(c(p.fg)),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(c(p.fg)),
		Faint:    lipgloss.NewStyle().Foreground(c(p.muted)),
		Selected: lipgloss.NewStyle().Background(c(p.primary)).Foreground(c(p.tabFg)).Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(p.border)).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(c(p.border)).
			Padding(0, 1),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(c(p.tabFg)).Background(c(p.primary)).Padding(0, 2),
		TabInactive: lipgloss.NewStyle().Foreground(c(p.muted)).Padding(0, 2),

		Income:  lipgloss.NewStyle().Foreground(c(p.success)),
		Expense: lipgloss.NewStyle().Foreground(c(p.errorC)),

		StatusSuccess: lipgloss.NewStyle().Foreground(c(p.success)).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(c(p.warning)).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(c(p.errorC)).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(c(p.info)).Bold(true),

		BarIncome:  lipgloss.NewStyle().Foreground(c(p.success)),
		BarExpense: lipgloss.NewStyle().Foreground(c(p.errorC)),
	}
}

// Bento is the default theme, built around the statement blue.
var Bento = build(palette{
	primary:   "#2563eb",
	secondary: "#60a5fa",
	fg:        "#fafafa",
	subtle:    "#a3a3a3",
	muted:     "#737373",
	border:    "#404040",
	success:   "#10b981",
	warning:   "#f59e0b",
	errorC:    "#ef4444",
	info:      "#3b82f6",
	tabFg:     "#fafafa",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:   "#89b4fa",
	secondary: "#cba6f7",
	fg:        "#cdd6f4",
	subtle:    "#a6adc8",
	muted:     "#6c7086",
	border:    "#45475a",
	success:   "#a6e3a1",
	warning:   "#f9e2af",
	errorC:    "#f38ba8",
	info:      "#89dceb",
	tabFg:     "#1e1e2e",
})

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Bento
	}
}

// CategoryIcons maps categories to emoji icons.
var CategoryIcons = map[string]string{
	"Makan":     "🍜",
	"Jajan":     "🧋",
	"Belanja":   "🛒",
	"Hiburan":   "🎬",
	"Transport": "🛵",
	"Kesehatan": "💊",
	"Tagihan":   "🧾",
	"Amal":      "🤲",
	"Gaji":      "💼",
	"Bonus":     "🎉",
	"Hadiah":    "🎁",
	"Investasi": "📈",
	"Penjualan": "🏷️",
	"Lainnya":   "📦",
}

// GetCategoryIcon returns an icon for a category.
func GetCategoryIcon(category string) string {
	if icon, ok := CategoryIcons[category]; ok {
		return icon
	}
	return "📦"
}
