// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the date format used in every worksheet.
const DateLayout = "2006-01-02"

// UnsettledMethod is the placeholder payment method carried by unsettled rows.
const UnsettledMethod = "-"

// Validation errors.
var (
	ErrEmptyItem        = errors.New("item is required")
	ErrNonPositive      = errors.New("amount must be greater than zero")
	ErrUnknownCategory  = errors.New("category not allowed for direction")
	ErrMissingMethod    = errors.New("payment method is required for settled transactions")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrMissingDate      = errors.New("date is required")
)

// TransactionDirection indicates whether money came in or went out.
type TransactionDirection string

const (
	// DirectionIncome marks money received.
	DirectionIncome TransactionDirection = "income"
	// DirectionExpense marks money spent.
	DirectionExpense TransactionDirection = "expense"
)

// Wire values for the Tipe column.
const (
	wireIncome  = "Pemasukan"
	wireExpense = "Pengeluaran"
)

// Wire returns the spreadsheet value for the direction. Unknown values are
// passed through so rewriting a sheet never alters them.
func (d TransactionDirection) Wire() string {
	switch d {
	case DirectionIncome:
		return wireIncome
	case DirectionExpense:
		return wireExpense
	}
	return string(d)
}

// ParseDirection accepts either the spreadsheet value or the English name.
func ParseDirection(s string) (TransactionDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pemasukan", "income", "in":
		return DirectionIncome, nil
	case "pengeluaran", "expense", "out":
		return DirectionExpense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// SettlementStatus indicates whether an obligation has been paid.
type SettlementStatus string

const (
	// StatusSettled marks a paid transaction.
	StatusSettled SettlementStatus = "settled"
	// StatusUnsettled marks an outstanding debt.
	StatusUnsettled SettlementStatus = "unsettled"
)

const (
	wireSettled   = "Lunas"
	wireUnsettled = "Belum Lunas"
)

// Wire returns the spreadsheet value for the status.
func (s SettlementStatus) Wire() string {
	switch s {
	case StatusSettled:
		return wireSettled
	case StatusUnsettled:
		return wireUnsettled
	}
	return string(s)
}

// ParseStatus accepts either the spreadsheet value or the English name.
func ParseStatus(s string) (SettlementStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lunas", "settled", "paid":
		return StatusSettled, nil
	case "belum lunas", "unsettled", "unpaid":
		return StatusUnsettled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Transaction is a single row of the Transaksi worksheet.
type Transaction struct {
	Date          time.Time
	Amount        decimal.Decimal
	ID            string
	Item          string
	Category      string
	Note          string
	PaymentMethod string
	Direction     TransactionDirection
	Status        SettlementStatus
}

// Normalize applies the row invariants: unsettled rows carry the placeholder
// method and the date is truncated to the day.
func (t *Transaction) Normalize() {
	t.Item = strings.TrimSpace(t.Item)
	if t.Status == StatusUnsettled {
		t.PaymentMethod = UnsettledMethod
	}
	if !t.Date.IsZero() {
		y, m, d := t.Date.Date()
		t.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// Validate checks the rules applied to user input.
func (t *Transaction) Validate(cats Categories) error {
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(t.Item) == "" {
		return ErrEmptyItem
	}
	if !t.Amount.IsPositive() {
		return ErrNonPositive
	}
	switch t.Direction {
	case DirectionIncome, DirectionExpense:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDirection, t.Direction)
	}
	switch t.Status {
	case StatusSettled:
		if t.PaymentMethod == "" || t.PaymentMethod == UnsettledMethod {
			return ErrMissingMethod
		}
	case StatusUnsettled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !cats.Allows(t.Direction, t.Category) {
		return fmt.Errorf("%w: %s (%s)", ErrUnknownCategory, t.Category, t.Direction.Wire())
	}
	return nil
}

// Signed returns the amount with expenses negated. Rows with an unknown
// direction count as zero.
func (t Transaction) Signed() decimal.Decimal {
	switch t.Direction {
	case DirectionIncome:
		return t.Amount
	case DirectionExpense:
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// IsIncome reports whether the transaction is income.
func (t Transaction) IsIncome() bool { return t.Direction == DirectionIncome }

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool { return t.Direction == DirectionExpense }

// IsUnsettled reports whether the transaction is an outstanding debt.
func (t Transaction) IsUnsettled() bool { return t.Status == StatusUnsettled }

// Hash creates a stable fingerprint for duplicate detection on import.
func (t Transaction) Hash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.Date.Format(DateLayout),
		t.Amount.StringFixed(2),
		strings.ToLower(t.Item),
		t.Direction,
		t.PaymentMethod)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
