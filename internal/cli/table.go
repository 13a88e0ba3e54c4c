package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderTable draws rows under headers. Columns listed in right are right
// aligned, which suits amounts.
func RenderTable(headers []string, rows [][]string, right ...int) string {
	alignRight := make(map[int]bool, len(right))
	for _, c := range right {
		alignRight[c] = true
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle
			if row == table.HeaderRow {
				style = TableHeaderStyle
			}
			if alignRight[col] {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
	return t.Render()
}
