package model

import (
	"fmt"
	"time"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod accepts "2006-01".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// Contains reports whether t falls inside the month. The zero time is never
// inside any period.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Year() == p.Year && t.Month() == p.Month
}

// First returns the first day of the month.
func (p Period) First() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns the last day of the month.
func (p Period) Last() time.Time {
	return time.Date(p.Year, p.Month, DaysIn(p.Year, p.Month), 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (p Period) Next() Period {
	return PeriodOf(p.First().AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	return PeriodOf(p.First().AddDate(0, -1, 0))
}

// Before reports whether p is earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MonthName is the English month name used in labels and file names.
func (p Period) MonthName() string {
	return p.Month.String()
}
