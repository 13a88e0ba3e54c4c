// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts ...Option) error {
	m := NewModel(opts...)
	if m.config.Ledger == nil {
		return fmt.Errorf("ledger is required")
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
