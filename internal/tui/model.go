package tui

import (
	"fmt"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/Veraticus/bento/internal/tui/components"
	"github.com/Veraticus/bento/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the dashboard state.
type Model struct {
	theme     themes.Theme
	lastError error
	snapshot  *ledger.Snapshot
	status    string
	help      help.Model
	form      components.QuickAddModel
	txTable   table.Model
	debtTable table.Model
	bar       progress.Model
	keymap    KeyMap
	config    Config
	period    model.Period
	screen    Screen
	width     int
	height    int
	adding    bool
	ready     bool
	quitting  bool
}

// NewModel creates a dashboard model.
func NewModel(opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	bar := progress.New(progress.WithSolidFill(string(cfg.Theme.Primary)))
	bar.ShowPercentage = false

	m := Model{
		config:    cfg,
		theme:     cfg.Theme,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		bar:       bar,
		width:     cfg.Width,
		height:    cfg.Height,
		txTable:   newTable(transactionColumns),
		debtTable: newTable(debtColumns),
	}
	m.handleResize()
	return m
}

// Init loads the ledger.
func (m Model) Init() tea.Cmd {
	return m.loadSnapshot()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.snapshot = msg.snapshot
		if m.period.IsZero() {
			m.period = report.DefaultPeriod(m.snapshot.Transactions, m.config.Now())
		}
		m.ready = true
		m.refreshTables()
		return m, nil

	case transactionAddedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.status = fmt.Sprintf("Tersimpan: %s (%s)", msg.tx.Item, report.FormatMoney(msg.tx.Amount))
		m.period = model.PeriodOf(msg.tx.Date)
		return m, m.loadSnapshot()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.adding {
			return m.updateForm(msg)
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	m.form = form
	switch {
	case form.IsComplete():
		m.adding = false
		m.status = "Menyimpan…"
		return m, m.addTransaction(form.GetResult())
	case form.IsCancelled():
		m.adding = false
		return m, nil
	}
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.NextScreen):
		m.screen = (m.screen + 1) % screenCount

	case key.Matches(msg, m.keymap.PrevScreen):
		m.screen = (m.screen + screenCount - 1) % screenCount

	case key.Matches(msg, m.keymap.PrevMonth):
		m.period = m.period.Prev()
		m.refreshTables()

	case key.Matches(msg, m.keymap.NextMonth):
		m.period = m.period.Next()
		m.refreshTables()

	case key.Matches(msg, m.keymap.Reload):
		m.status = "Memuat ulang…"
		return m, m.reload()

	case key.Matches(msg, m.keymap.Add):
		m.adding = true
		m.form = components.NewQuickAddModel(m.categories(), m.config.PaymentMethods, m.config.Now(), m.theme)

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	default:
		var cmd tea.Cmd
		switch m.screen {
		case ScreenTransactions:
			m.txTable, cmd = m.txTable.Update(msg)
		case ScreenDebts:
			m.debtTable, cmd = m.debtTable.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) categories() model.Categories {
	if m.config.Ledger == nil {
		return model.DefaultCategories()
	}
	return m.config.Ledger.Categories()
}

// Screen returns the active screen.
func (m Model) Screen() Screen { return m.screen }

// Period returns the month on display.
func (m Model) Period() model.Period { return m.period }

// Adding reports whether the quick-add form is open.
func (m Model) Adding() bool { return m.adding }

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	h := max(m.height-10, 5)
	m.txTable.SetHeight(h)
	m.debtTable.SetHeight(h)
	m.bar.Width = min(max(m.width/3, 10), 40)
	m.help.Width = m.width
}

func (m Model) monthly() []model.Transaction {
	if m.snapshot == nil {
		return nil
	}
	return report.Filter(m.snapshot.Transactions, m.period)
}
