package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurringRule_AdvanceMonthlyClampsToMonthEnd(t *testing.T) {
	rule := RecurringRule{Frequency: FrequencyMonthly, StartDate: date(2026, 1, 31)}

	feb := rule.Advance(date(2026, 1, 31))
	assert.Equal(t, date(2026, 2, 28), feb)

	mar := rule.Advance(feb)
	assert.Equal(t, date(2026, 3, 31), mar, "anchor day is restored after a short month")
}

func TestRecurringRule_AdvanceOtherFrequencies(t *testing.T) {
	start := date(2024, 2, 29)
	assert.Equal(t, date(2024, 3, 1), RecurringRule{Frequency: FrequencyDaily}.Advance(start))
	assert.Equal(t, date(2024, 3, 7), RecurringRule{Frequency: FrequencyWeekly}.Advance(start))
	assert.Equal(t, date(2025, 2, 28),
		RecurringRule{Frequency: FrequencyYearly, StartDate: start}.Advance(start))
}

func TestRecurringRule_Due(t *testing.T) {
	rule := RecurringRule{
		Name:      "Kos",
		Frequency: FrequencyMonthly,
		StartDate: date(2026, 1, 5),
		NextRun:   date(2026, 1, 5),
		Active:    true,
		Amount:    decimal.NewFromInt(1_500_000),
	}

	runs := rule.Due(date(2026, 3, 10))
	require.Len(t, runs, 3)
	assert.Equal(t, date(2026, 3, 5), runs[2])

	rule.Active = false
	assert.Empty(t, rule.Due(date(2026, 3, 10)))
}

func TestRecurringRule_Transaction(t *testing.T) {
	rule := RecurringRule{
		Name:          "Netflix",
		Category:      "Hiburan",
		Amount:        decimal.NewFromInt(54000),
		Direction:     DirectionExpense,
		PaymentMethod: "Octo (CIMB)",
		Frequency:     FrequencyMonthly,
	}
	tx := rule.Transaction(date(2026, 4, 1))

	assert.Equal(t, "Netflix", tx.Item)
	assert.Equal(t, StatusSettled, tx.Status)
	assert.NoError(t, tx.Validate(DefaultCategories()))
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("Mingguan")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)

	f, err = ParseFrequency("")
	require.NoError(t, err)
	assert.Equal(t, FrequencyMonthly, f)

	_, err = ParseFrequency("fortnightly")
	assert.Error(t, err)
}
