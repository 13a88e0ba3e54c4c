package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring rule fires.
type Frequency string

// Supported frequencies.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ParseFrequency accepts English or Indonesian spellings.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "harian":
		return FrequencyDaily, nil
	case "weekly", "mingguan":
		return FrequencyWeekly, nil
	case "monthly", "bulanan", "":
		return FrequencyMonthly, nil
	case "yearly", "annual", "tahunan":
		return FrequencyYearly, nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// RecurringRule is a row of the Rutin worksheet.
type RecurringRule struct {
	StartDate     time.Time
	NextRun       time.Time
	Amount        decimal.Decimal
	Name          string
	Category      string
	PaymentMethod string
	Direction     TransactionDirection
	Frequency     Frequency
	Active        bool
}

// Advance returns the run date following current. Monthly and yearly rules
// stay anchored to the start day, clamped to the month length.
func (r RecurringRule) Advance(current time.Time) time.Time {
	switch r.Frequency {
	case FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyYearly:
		return addMonthsAnchored(current, 12, r.anchorDay(current))
	default:
		return addMonthsAnchored(current, 1, r.anchorDay(current))
	}
}

func (r RecurringRule) anchorDay(current time.Time) int {
	if r.StartDate.IsZero() {
		return current.Day()
	}
	return r.StartDate.Day()
}

// Due returns every run date on or before now, starting at NextRun.
func (r RecurringRule) Due(now time.Time) []time.Time {
	if !r.Active || r.NextRun.IsZero() {
		return nil
	}
	var runs []time.Time
	for next := r.NextRun; !next.After(now); next = r.Advance(next) {
		runs = append(runs, next)
	}
	return runs
}

// Transaction builds the transaction generated for a run date.
func (r RecurringRule) Transaction(on time.Time) Transaction {
	return Transaction{
		Date:          on,
		Item:          r.Name,
		Category:      r.Category,
		Amount:        r.Amount,
		Direction:     r.Direction,
		Status:        StatusSettled,
		PaymentMethod: r.PaymentMethod,
		Note:          "Rutin (" + string(r.Frequency) + ")",
	}
}

func addMonthsAnchored(current time.Time, months, anchorDay int) time.Time {
	year, month, _ := current.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, current.Location())
	day := min(anchorDay, DaysIn(target.Year(), target.Month()))
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, current.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
