package tui

import (
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
)

// Data loading messages.
type snapshotLoadedMsg struct {
	err      error
	snapshot *ledger.Snapshot
}

type transactionAddedMsg struct {
	err error
	tx  model.Transaction
}

// Screen identifies one dashboard tab.
type Screen int

// Screens in tab order.
const (
	ScreenDashboard Screen = iota
	ScreenWallets
	ScreenBudget
	ScreenTargets
	ScreenTransactions
	ScreenDebts
	screenCount
)

var screenTitles = [screenCount]string{"Dashboard", "Dompet", "Budget", "Target", "Transaksi", "Utang"}

func (s Screen) String() string {
	if s < 0 || s >= screenCount {
		return "?"
	}
	return screenTitles[s]
}
