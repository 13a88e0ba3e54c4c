package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/shopspring/decimal"
)

// transactionDTO is the JSON form of a transaction. Direction and status
// accept either the worksheet values or their English names.
type transactionDTO struct {
	ID        string          `json:"id,omitempty"`
	Date      string          `json:"date"`
	Item      string          `json:"item"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
	Status    string          `json:"status"`
	Method    string          `json:"method"`
	Note      string          `json:"note,omitempty"`
}

func toTransactionDTO(tx model.Transaction) transactionDTO {
	return transactionDTO{
		ID:        tx.ID,
		Date:      ledger.FormatDate(tx.Date),
		Item:      tx.Item,
		Category:  tx.Category,
		Amount:    tx.Amount,
		Direction: string(tx.Direction),
		Status:    string(tx.Status),
		Method:    tx.PaymentMethod,
		Note:      tx.Note,
	}
}

func toTransactionDTOs(txs []model.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	return out
}

func (d transactionDTO) model() (model.Transaction, error) {
	date, err := parseDate(d.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	direction, err := model.ParseDirection(d.Direction)
	if err != nil {
		return model.Transaction{}, err
	}
	status := model.StatusSettled
	if strings.TrimSpace(d.Status) != "" {
		if status, err = model.ParseStatus(d.Status); err != nil {
			return model.Transaction{}, err
		}
	}
	return model.Transaction{
		ID:            d.ID,
		Date:          date,
		Item:          d.Item,
		Category:      d.Category,
		Amount:        d.Amount,
		Direction:     direction,
		Status:        status,
		PaymentMethod: d.Method,
		Note:          d.Note,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	t := ledger.ParseDate(s)
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrMissingDate, s)
	}
	return t, nil
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type deleteResponse struct {
	Removed int `json:"removed"`
}

type replaceResponse struct {
	Period   string `json:"period"`
	Replaced int    `json:"replaced"`
	Saved    int    `json:"saved"`
}

type settlementDTO struct {
	Date   string          `json:"date"`
	Item   string          `json:"item"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type skippedDTO struct {
	settlementDTO
	Reason string `json:"reason"`
}

type settleResponse struct {
	Skipped     []skippedDTO `json:"skipped"`
	Applied     int          `json:"applied"`
	RowsChanged int          `json:"rows_changed"`
}

type walletDTO struct {
	Name      string          `json:"name"`
	Opening   decimal.Decimal `json:"opening"`
	ResetDate string          `json:"reset_date,omitempty"`
}

func (d walletDTO) model() (model.Wallet, error) {
	w := model.Wallet{Name: strings.TrimSpace(d.Name), OpeningBalance: d.Opening}
	if strings.TrimSpace(d.ResetDate) != "" {
		t, err := parseDate(d.ResetDate)
		if err != nil {
			return model.Wallet{}, err
		}
		w.ResetDate = t
	}
	return w, nil
}

type targetDTO struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Accumulated decimal.Decimal `json:"accumulated"`
}

type summaryResponse struct {
	report.Summary
	Period     string                 `json:"period"`
	Assets     decimal.Decimal        `json:"assets"`
	Wallets    []report.WalletBalance `json:"wallets"`
	ByCategory []report.Slice         `json:"by_category"`
	ByMethod   []report.Slice         `json:"by_method"`
	Daily      []report.DailyTotal    `json:"daily"`
}

type budgetResponse struct {
	Period   string                `json:"period"`
	Plan     report.BudgetResult   `json:"plan"`
	Variance []report.VarianceLine `json:"variance"`
}

func (d settlementDTO) settlement() (ledger.Settlement, error) {
	date, err := parseDate(d.Date)
	if err != nil {
		return ledger.Settlement{}, err
	}
	return ledger.Settlement{Date: date, Item: d.Item, Amount: d.Amount, Method: d.Method}, nil
}

func fromSettlement(s ledger.Settlement) settlementDTO {
	return settlementDTO{Date: ledger.FormatDate(s.Date), Item: s.Item, Amount: s.Amount, Method: s.Method}
}

type recurringResponse struct {
	Generated []transactionDTO `json:"generated"`
}
