// Package report holds the pure aggregation functions behind the dashboard,
// the exports and the API. Nothing here performs I/O.
package report

import (
	"slices"
	"time"

	"github.com/Veraticus/bento/internal/model"
)

// Years returns the distinct years present in txs, newest first. Rows with
// an unparsable date are ignored.
func Years(txs []model.Transaction) []int {
	seen := make(map[int]bool)
	var years []int
	for _, tx := range txs {
		if tx.Date.IsZero() || seen[tx.Date.Year()] {
			continue
		}
		seen[tx.Date.Year()] = true
		years = append(years, tx.Date.Year())
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}

// MonthsOf returns the months of year that have transactions, in calendar
// order.
func MonthsOf(txs []model.Transaction, year int) []time.Month {
	var present [13]bool
	for _, tx := range txs {
		if !tx.Date.IsZero() && tx.Date.Year() == year {
			present[tx.Date.Month()] = true
		}
	}
	var months []time.Month
	for m := time.January; m <= time.December; m++ {
		if present[m] {
			months = append(months, m)
		}
	}
	return months
}

// Periods returns every month with data, newest first.
func Periods(txs []model.Transaction) []model.Period {
	var out []model.Period
	for _, y := range Years(txs) {
		months := MonthsOf(txs, y)
		for i := len(months) - 1; i >= 0; i-- {
			out = append(out, model.Period{Year: y, Month: months[i]})
		}
	}
	return out
}

// DefaultPeriod picks the month shown first: the current year when it has
// data (otherwise the latest year), then the current month when present in
// that year (otherwise the latest month of it). Without data it is now.
func DefaultPeriod(txs []model.Transaction, now time.Time) model.Period {
	years := Years(txs)
	if len(years) == 0 {
		return model.PeriodOf(now)
	}
	year := years[0]
	if slices.Contains(years, now.Year()) {
		year = now.Year()
	}
	months := MonthsOf(txs, year)
	if slices.Contains(months, now.Month()) {
		return model.Period{Year: year, Month: now.Month()}
	}
	return model.Period{Year: year, Month: months[len(months)-1]}
}

// Filter returns the transactions dated inside p, in their original order.
func Filter(txs []model.Transaction, p model.Period) []model.Transaction {
	var out []model.Transaction
	for _, tx := range txs {
		if p.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// Unsettled returns the outstanding debts across all periods.
func Unsettled(txs []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, tx := range txs {
		if tx.IsUnsettled() {
			out = append(out, tx)
		}
	}
	return out
}

// SortByDate orders txs chronologically, newest first when desc is set.
// Ties keep their original order.
func SortByDate(txs []model.Transaction, desc bool) []model.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		c := a.Date.Compare(b.Date)
		if desc {
			return -c
		}
		return c
	})
	return out
}
