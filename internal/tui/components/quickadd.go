package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/tui/themes"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Quick-add fields in tab order.
const (
	fieldDate = iota
	fieldItem
	fieldAmount
	fieldDirection
	fieldCategory
	fieldStatus
	fieldMethod
	fieldNote
	fieldCount
)

var fieldLabels = [fieldCount]string{"Tanggal", "Item", "Nominal", "Tipe", "Kategori", "Status", "Metode", "Catatan"}

var (
	directions = []model.TransactionDirection{model.DirectionExpense, model.DirectionIncome}
	statuses   = []model.SettlementStatus{model.StatusSettled, model.StatusUnsettled}
)

// QuickAddModel is the form for recording one transaction.
type QuickAddModel struct {
	theme      themes.Theme
	err        error
	categories model.Categories
	methods    []string
	inputs     map[int]*textinput.Model
	result     model.Transaction
	focus      int
	direction  int
	category   int
	status     int
	method     int
	complete   bool
	cancelled  bool
}

// NewQuickAddModel creates a form dated today.
func NewQuickAddModel(categories model.Categories, methods []string, today time.Time, theme themes.Theme) QuickAddModel {
	m := QuickAddModel{
		theme:      theme,
		categories: categories,
		methods:    methods,
		inputs:     make(map[int]*textinput.Model),
	}
	for _, f := range []int{fieldDate, fieldItem, fieldAmount, fieldNote} {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 120
		m.inputs[f] = &ti
	}
	m.inputs[fieldDate].SetValue(today.Format(model.DateLayout))
	m.inputs[fieldAmount].Placeholder = "50000"
	m.inputs[fieldItem].Placeholder = "Nasi Padang"
	m.inputs[fieldDate].Focus()
	return m
}

// Update handles messages.
func (m QuickAddModel) Update(msg tea.Msg) (QuickAddModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc":
		m.cancelled = true
		return m, nil
	case "enter":
		m.submit()
		return m, nil
	case "tab", "down":
		m.move(1)
		return m, nil
	case "shift+tab", "up":
		m.move(-1)
		return m, nil
	case "left", "right":
		if m.isChoice(m.focus) {
			step := 1
			if key.String() == "left" {
				step = -1
			}
			m.cycle(step)
			return m, nil
		}
	}

	if in, ok := m.inputs[m.focus]; ok {
		updated, cmd := in.Update(msg)
		*in = updated
		return m, cmd
	}
	return m, nil
}

// IsComplete reports whether a valid transaction was submitted.
func (m QuickAddModel) IsComplete() bool { return m.complete }

// IsCancelled reports whether the user closed the form.
func (m QuickAddModel) IsCancelled() bool { return m.cancelled }

// GetResult returns the submitted transaction.
func (m QuickAddModel) GetResult() model.Transaction { return m.result }

// Err returns the last validation error.
func (m QuickAddModel) Err() error { return m.err }

// Focused returns the label of the focused field.
func (m QuickAddModel) Focused() string { return fieldLabels[m.focus] }

func (m QuickAddModel) isChoice(f int) bool {
	return f == fieldDirection || f == fieldCategory || f == fieldStatus || f == fieldMethod
}

// methodDisabled is true for unsettled entries, which carry no method.
func (m QuickAddModel) methodDisabled() bool {
	return statuses[m.status] == model.StatusUnsettled
}

func (m *QuickAddModel) move(step int) {
	if in, ok := m.inputs[m.focus]; ok {
		in.Blur()
	}
	for {
		m.focus = (m.focus + step + fieldCount) % fieldCount
		if m.focus != fieldMethod || !m.methodDisabled() {
			break
		}
	}
	if in, ok := m.inputs[m.focus]; ok {
		in.Focus()
	}
}

func (m *QuickAddModel) cycle(step int) {
	wrap := func(i, n int) int {
		if n == 0 {
			return 0
		}
		return (i + step + n) % n
	}
	switch m.focus {
	case fieldDirection:
		m.direction = wrap(m.direction, len(directions))
		m.category = 0
	case fieldCategory:
		m.category = wrap(m.category, len(m.categoryOptions()))
	case fieldStatus:
		m.status = wrap(m.status, len(statuses))
	case fieldMethod:
		m.method = wrap(m.method, len(m.methods))
	}
}

func (m QuickAddModel) categoryOptions() []string {
	return m.categories.For(directions[m.direction])
}

func pick(list []string, i int) string {
	if i < 0 || i >= len(list) {
		return ""
	}
	return list[i]
}

func (m *QuickAddModel) submit() {
	tx := model.Transaction{
		Date:      ledger.ParseDate(m.inputs[fieldDate].Value()),
		Item:      m.inputs[fieldItem].Value(),
		Amount:    ledger.ParseAmount(m.inputs[fieldAmount].Value()),
		Direction: directions[m.direction],
		Category:  pick(m.categoryOptions(), m.category),
		Status:    statuses[m.status],
		Note:      strings.TrimSpace(m.inputs[fieldNote].Value()),
	}
	if !m.methodDisabled() {
		tx.PaymentMethod = pick(m.methods, m.method)
	}
	tx.Normalize()
	if err := tx.Validate(m.categories); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.result = tx
	m.complete = true
}

// View renders the form.
func (m QuickAddModel) View() string {
	var rows []string
	rows = append(rows, m.theme.Title.Render("Catat Transaksi"), "")
	for f := 0; f < fieldCount; f++ {
		label := fmt.Sprintf("%-9s", fieldLabels[f])
		if f == m.focus {
			label = m.theme.Selected.Render(label)
		} else {
			label = m.theme.Subtitle.Render(label)
		}
		rows = append(rows, label+"  "+m.fieldValue(f))
	}
	rows = append(rows, "")
	if m.err != nil {
		rows = append(rows, m.theme.StatusError.Render("✗ "+m.err.Error()), "")
	}
	rows = append(rows, m.theme.Faint.Render("[Tab/↑↓] field | [←→] choose | [Enter] save | [Esc] cancel"))
	return m.theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m QuickAddModel) fieldValue(f int) string {
	if in, ok := m.inputs[f]; ok {
		return in.View()
	}
	var value string
	switch f {
	case fieldDirection:
		value = directions[m.direction].Wire()
	case fieldCategory:
		c := pick(m.categoryOptions(), m.category)
		value = themes.GetCategoryIcon(c) + " " + c
	case fieldStatus:
		value = statuses[m.status].Wire()
	case fieldMethod:
		if m.methodDisabled() {
			return m.theme.Faint.Render(model.UnsettledMethod + " (belum lunas)")
		}
		value = pick(m.methods, m.method)
	}
	return "‹ " + value + " ›"
}
