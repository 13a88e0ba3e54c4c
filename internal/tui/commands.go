package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/bento/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// loadSnapshot reads the ledger.
func (m Model) loadSnapshot() tea.Cmd {
	l, timeout := m.config.Ledger, m.config.Timeout
	return func() tea.Msg {
		if l == nil {
			return snapshotLoadedMsg{err: fmt.Errorf("ledger not configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := l.Snapshot(ctx)
		return snapshotLoadedMsg{snapshot: snap, err: err}
	}
}

// reload drops the cached snapshot before reading again.
func (m Model) reload() tea.Cmd {
	if m.config.Ledger != nil {
		m.config.Ledger.Invalidate()
	}
	return m.loadSnapshot()
}

// addTransaction appends tx to the ledger.
func (m Model) addTransaction(tx model.Transaction) tea.Cmd {
	l, timeout := m.config.Ledger, m.config.Timeout
	return func() tea.Msg {
		if l == nil {
			return transactionAddedMsg{err: fmt.Errorf("ledger not configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		saved, err := l.AddTransaction(ctx, tx)
		return transactionAddedMsg{tx: saved, err: err}
	}
}
