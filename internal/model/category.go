package model

import "slices"

// Categories holds the fixed category lists per direction.
type Categories struct {
	Income  []string
	Expense []string
}

// DefaultCategories returns the built-in category lists.
func DefaultCategories() Categories {
	return Categories{
		Income:  []string{"Gaji", "Bonus", "Hadiah", "Investasi", "Penjualan", "Lainnya"},
		Expense: []string{"Makan", "Jajan", "Belanja", "Hiburan", "Transport", "Kesehatan", "Tagihan", "Amal", "Lainnya"},
	}
}

// DefaultPaymentMethods returns the built-in wallet names.
func DefaultPaymentMethods() []string {
	return []string{"Cash", "Livin (Mandiri)", "Octo (CIMB)", "DANA", "Shopeepay", "Kartu Kredit"}
}

// For returns the category list for a direction.
func (c Categories) For(d TransactionDirection) []string {
	if d == DirectionIncome {
		return c.Income
	}
	return c.Expense
}

// Allows reports whether category belongs to the list for direction.
func (c Categories) Allows(d TransactionDirection, category string) bool {
	return slices.Contains(c.For(d), category)
}

// All returns income then expense categories with duplicates removed.
func (c Categories) All() []string {
	seen := make(map[string]bool, len(c.Income)+len(c.Expense))
	out := make([]string, 0, len(c.Income)+len(c.Expense))
	for _, list := range [][]string{c.Income, c.Expense} {
		for _, name := range list {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
