package report

import (
	"time"

	"github.com/Veraticus/bento/internal/model"
	"github.com/shopspring/decimal"
)

// StatementRow is one line of an account statement. Exactly one of Debit
// (money out) and Credit (money in) is non-zero for known directions.
type StatementRow struct {
	Date        time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
	Description string
	Category    string
	Method      string
}

// Statement is a month of transactions in bank statement form.
type Statement struct {
	From        time.Time
	To          time.Time
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Net         decimal.Decimal
	Rows        []StatementRow
	Period      model.Period
}

// BuildStatement lists the transactions of p chronologically with a running
// balance that starts at zero.
func BuildStatement(txs []model.Transaction, p model.Period) Statement {
	st := Statement{Period: p, From: p.First(), To: p.Last()}
	running := decimal.Zero
	for _, tx := range SortByDate(Filter(txs, p), false) {
		row := StatementRow{
			Date:        tx.Date,
			Description: tx.Item + " (" + tx.PaymentMethod + ")",
			Category:    tx.Category,
			Method:      tx.PaymentMethod,
		}
		switch tx.Direction {
		case model.DirectionExpense:
			row.Debit = tx.Amount
			st.TotalDebit = st.TotalDebit.Add(tx.Amount)
		case model.DirectionIncome:
			row.Credit = tx.Amount
			st.TotalCredit = st.TotalCredit.Add(tx.Amount)
		}
		running = running.Add(tx.Signed())
		row.Balance = running
		st.Rows = append(st.Rows, row)
	}
	st.Net = running
	return st
}
