package report

import (
	"fmt"
	"strings"

	"github.com/Veraticus/bento/internal/model"
	"github.com/shopspring/decimal"
)

// BudgetMode says how allocation inputs are read.
type BudgetMode string

// Allocation modes.
const (
	BudgetNominal BudgetMode = "nominal"
	BudgetPercent BudgetMode = "percent"
)

// ParseBudgetMode accepts "nominal"/"rupiah" or "percent"/"persen"/"%".
func ParseBudgetMode(s string) (BudgetMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nominal", "rupiah":
		return BudgetNominal, nil
	case "percent", "persen", "%":
		return BudgetPercent, nil
	}
	return "", fmt.Errorf("unknown budget mode %q", s)
}

// BudgetInput is one category's raw allocation: rupiah in nominal mode,
// percent of income in percent mode.
type BudgetInput struct {
	Value    decimal.Decimal
	Category string
}

// BudgetPlan splits an income across expense categories.
type BudgetPlan struct {
	Income decimal.Decimal
	Mode   BudgetMode
	Inputs []BudgetInput
}

// Allocation is a resolved category budget.
type Allocation struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BudgetResult is the outcome of Allocate. Remaining is negative when the
// plan allocates more than the income.
type BudgetResult struct {
	Income      decimal.Decimal `json:"income"`
	Allocated   decimal.Decimal `json:"allocated"`
	Remaining   decimal.Decimal `json:"remaining"`
	Allocations []Allocation    `json:"allocations"`
}

// Allocate resolves every input into rupiah and totals them. Negative
// inputs count as zero; percentages are clamped to 100.
func (p BudgetPlan) Allocate() BudgetResult {
	res := BudgetResult{Income: p.Income}
	hundred := decimal.NewFromInt(100)
	for _, in := range p.Inputs {
		v := in.Value
		if v.IsNegative() {
			v = decimal.Zero
		}
		if p.Mode == BudgetPercent {
			v = p.Income.Mul(decimal.Min(v, hundred)).Div(hundred)
		}
		res.Allocations = append(res.Allocations, Allocation{Category: in.Category, Amount: v})
		res.Allocated = res.Allocated.Add(v)
	}
	res.Remaining = p.Income.Sub(res.Allocated)
	return res
}

// VarianceLine compares one category's budget with its actual spend.
type VarianceLine struct {
	Category  string          `json:"category"`
	Budget    decimal.Decimal `json:"budget"`
	Actual    decimal.Decimal `json:"actual"`
	Remaining decimal.Decimal `json:"remaining"`
	UsedPct   int             `json:"used_pct"`
	Over      bool            `json:"over"`
}

// Variance compares the plan's allocations with the expenses of txs. Spend
// in categories without an allocation is listed after the planned ones.
func Variance(plan BudgetPlan, txs []model.Transaction) []VarianceLine {
	actual := make(map[string]decimal.Decimal)
	var unplanned []string
	planned := make(map[string]bool)
	for _, in := range plan.Inputs {
		planned[in.Category] = true
	}
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		if _, ok := actual[tx.Category]; !ok && !planned[tx.Category] {
			unplanned = append(unplanned, tx.Category)
		}
		actual[tx.Category] = actual[tx.Category].Add(tx.Amount)
	}

	var lines []VarianceLine
	for _, a := range plan.Allocate().Allocations {
		lines = append(lines, varianceLine(a.Category, a.Amount, actual[a.Category]))
	}
	for _, c := range unplanned {
		lines = append(lines, varianceLine(c, decimal.Zero, actual[c]))
	}
	return lines
}

func varianceLine(category string, budget, spent decimal.Decimal) VarianceLine {
	line := VarianceLine{
		Category:  category,
		Budget:    budget,
		Actual:    spent,
		Remaining: budget.Sub(spent),
		Over:      spent.GreaterThan(budget),
	}
	if budget.IsPositive() {
		line.UsedPct = int(spent.Div(budget).Shift(2).Floor().IntPart())
	} else if spent.IsPositive() {
		line.UsedPct = 100
	}
	return line
}
