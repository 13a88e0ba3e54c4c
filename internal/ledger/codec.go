package ledger

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaksi columns.
const (
	ColDate     = "Tanggal"
	ColItem     = "Item"
	ColCategory = "Kategori"
	ColAmount   = "Nominal"
	ColType     = "Tipe"
	ColStatus   = "Status"
	ColNote     = "Keterangan"
	ColMethod   = "Metode Pembayaran"
	ColID       = "ID"
)

// Dompet columns.
const (
	ColWallet    = "Wallet"
	ColOpening   = "Saldo Awal"
	ColResetDate = "Tanggal Reset"
)

// Target columns.
const (
	ColTargetName   = "Nama Impian"
	ColTargetAmount = "Target Harga"
	ColTargetSaved  = "Dana Terkumpul"
)

// Rutin columns.
const (
	ColRuleName   = "Nama"
	ColRuleFreq   = "Frekuensi"
	ColRuleStart  = "Mulai"
	ColRuleNext   = "Berikutnya"
	ColRuleActive = "Aktif"
)

// TransactionColumns is the canonical Transaksi header.
var TransactionColumns = []string{ColDate, ColItem, ColCategory, ColAmount, ColType, ColStatus, ColNote, ColMethod, ColID}

// WalletColumns is the canonical Dompet header.
var WalletColumns = []string{ColWallet, ColOpening, ColResetDate}

// TargetColumns is the canonical Target header.
var TargetColumns = []string{ColTargetName, ColTargetAmount, ColTargetSaved}

// RecurringColumns is the canonical Rutin header.
var RecurringColumns = []string{ColRuleName, ColCategory, ColAmount, ColType, ColMethod, ColRuleFreq, ColRuleStart, ColRuleNext, ColRuleActive}

var dateLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-01-2006",
	"1/2/2006",
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate coerces a cell into a date. Unparsable cells yield the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 200000 {
		return sheetsEpoch.AddDate(0, 0, int(serial))
	}
	return time.Time{}
}

// FormatDate renders a date cell; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

// ParseAmount coerces a cell into a non-negative amount. Currency prefixes
// and thousands separators are stripped; anything unparsable is zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"Rp.", "Rp", "IDR"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		d, err = decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
		if err != nil {
			return decimal.Zero
		}
	}
	if d.IsNegative() {
		slog.Warn("Negative amount coerced to zero", "value", s)
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount cell without trailing zeros.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "ya", "yes", "1", "y":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func requireColumns(t Table, sheet string, cols ...string) error {
	if len(t.Header) == 0 {
		return nil
	}
	for _, c := range cols {
		if t.Column(c) < 0 {
			return fmt.Errorf("%w: %s.%s", common.ErrMissingColumn, sheet, c)
		}
	}
	return nil
}

// extras holds non-canonical cells keyed by column name.
type extras map[string]string

func rowExtras(t Table, row int, canonical []string) extras {
	var out extras
	for _, h := range t.Header {
		if h == "" || containsFold(canonical, h) {
			continue
		}
		if v := t.Cell(row, h); v != "" {
			if out == nil {
				out = make(extras)
			}
			out[h] = v
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

// rowNamespace seeds ids for rows that were typed straight into the sheet.
var rowNamespace = uuid.MustParse("6f1c3a0e-5b7d-4e52-9a57-2f3c8b1d0e44")

// rowID derives an id from the row position and contents so repeated loads
// of an unchanged sheet agree on it.
func rowID(index int, row []string) string {
	key := strconv.Itoa(index) + "\x1f" + strings.Join(row, "\x1f")
	return uuid.NewSHA1(rowNamespace, []byte(key)).String()
}

// DecodeTransactions converts the Transaksi worksheet into transactions.
// Rows without an id are given a stable one, and the returned bool reports
// whether that happened. Blank rows are dropped.
func DecodeTransactions(t Table) ([]model.Transaction, map[string]extras, bool, error) {
	if err := requireColumns(t, SheetTransactions, ColDate, ColItem, ColAmount, ColType); err != nil {
		return nil, nil, false, err
	}
	txs := make([]model.Transaction, 0, len(t.Rows))
	extra := make(map[string]extras)
	assigned := false
	for i, row := range t.Rows {
		if isBlankRow(row) {
			continue
		}
		tx := model.Transaction{
			ID:            t.Cell(i, ColID),
			Date:          ParseDate(t.Cell(i, ColDate)),
			Item:          t.Cell(i, ColItem),
			Category:      t.Cell(i, ColCategory),
			Amount:        ParseAmount(t.Cell(i, ColAmount)),
			Note:          t.Cell(i, ColNote),
			PaymentMethod: t.Cell(i, ColMethod),
		}
		raw := t.Cell(i, ColType)
		if d, err := model.ParseDirection(raw); err == nil {
			tx.Direction = d
		} else {
			tx.Direction = model.TransactionDirection(raw)
		}
		rawStatus := t.Cell(i, ColStatus)
		switch s, err := model.ParseStatus(rawStatus); {
		case err == nil:
			tx.Status = s
		case rawStatus == "":
			tx.Status = model.StatusSettled
		default:
			tx.Status = model.SettlementStatus(rawStatus)
		}
		if tx.ID == "" {
			tx.ID = rowID(i, row)
			assigned = true
		}
		if e := rowExtras(t, i, TransactionColumns); e != nil {
			extra[tx.ID] = e
		}
		txs = append(txs, tx)
	}
	return txs, extra, assigned, nil
}

// EncodeTransactions renders transactions as the Transaksi worksheet.
func EncodeTransactions(txs []model.Transaction, extra map[string]extras) Table {
	header := extendHeader(TransactionColumns, extra)
	out := Table{Header: header, Rows: make([][]string, 0, len(txs))}
	for _, tx := range txs {
		row := []string{
			FormatDate(tx.Date),
			tx.Item,
			tx.Category,
			FormatAmount(tx.Amount),
			tx.Direction.Wire(),
			tx.Status.Wire(),
			tx.Note,
			tx.PaymentMethod,
			tx.ID,
		}
		row = appendExtras(row, header[len(TransactionColumns):], extra[tx.ID])
		out.Rows = append(out.Rows, row)
	}
	return out
}

func extendHeader(canonical []string, extra map[string]extras) []string {
	header := append([]string(nil), canonical...)
	for _, e := range extra {
		for k := range e {
			if !containsFold(header, k) {
				header = append(header, k)
			}
		}
	}
	slices.Sort(header[len(canonical):])
	return header
}

func appendExtras(row []string, cols []string, e extras) []string {
	for _, c := range cols {
		row = append(row, e[c])
	}
	return row
}

// DecodeWallets converts the Dompet worksheet.
func DecodeWallets(t Table) ([]model.Wallet, error) {
	if err := requireColumns(t, SheetWallets, ColWallet, ColOpening); err != nil {
		return nil, err
	}
	wallets := make([]model.Wallet, 0, len(t.Rows))
	for i, row := range t.Rows {
		if isBlankRow(row) {
			continue
		}
		wallets = append(wallets, model.Wallet{
			Name:           t.Cell(i, ColWallet),
			OpeningBalance: ParseAmount(t.Cell(i, ColOpening)),
			ResetDate:      ParseDate(t.Cell(i, ColResetDate)),
		})
	}
	return wallets, nil
}

// EncodeWallets renders the Dompet worksheet.
func EncodeWallets(wallets []model.Wallet) Table {
	out := Table{Header: append([]string(nil), WalletColumns...)}
	for _, w := range wallets {
		out.Rows = append(out.Rows, []string{w.Name, FormatAmount(w.OpeningBalance), FormatDate(w.ResetDate)})
	}
	return out
}

// DecodeTargets converts the Target worksheet. Names are always text.
func DecodeTargets(t Table) ([]model.Target, error) {
	if err := requireColumns(t, SheetTargets, ColTargetName); err != nil {
		return nil, err
	}
	targets := make([]model.Target, 0, len(t.Rows))
	for i, row := range t.Rows {
		if isBlankRow(row) {
			continue
		}
		targets = append(targets, model.Target{
			Name:        t.Cell(i, ColTargetName),
			Amount:      ParseAmount(t.Cell(i, ColTargetAmount)),
			Accumulated: ParseAmount(t.Cell(i, ColTargetSaved)),
		})
	}
	return targets, nil
}

// EncodeTargets renders the Target worksheet.
func EncodeTargets(targets []model.Target) Table {
	out := Table{Header: append([]string(nil), TargetColumns...)}
	for _, tg := range targets {
		out.Rows = append(out.Rows, []string{tg.Name, FormatAmount(tg.Amount), FormatAmount(tg.Accumulated)})
	}
	return out
}

// DecodeRules converts the Rutin worksheet. Rules with an unknown frequency
// are kept inactive.
func DecodeRules(t Table) ([]model.RecurringRule, error) {
	if err := requireColumns(t, SheetRecurring, ColRuleName, ColAmount); err != nil {
		return nil, err
	}
	rules := make([]model.RecurringRule, 0, len(t.Rows))
	for i, row := range t.Rows {
		if isBlankRow(row) {
			continue
		}
		r := model.RecurringRule{
			Name:          t.Cell(i, ColRuleName),
			Category:      t.Cell(i, ColCategory),
			Amount:        ParseAmount(t.Cell(i, ColAmount)),
			PaymentMethod: t.Cell(i, ColMethod),
			StartDate:     ParseDate(t.Cell(i, ColRuleStart)),
			NextRun:       ParseDate(t.Cell(i, ColRuleNext)),
			Active:        parseBool(t.Cell(i, ColRuleActive)),
		}
		d, err := model.ParseDirection(t.Cell(i, ColType))
		if err != nil {
			d = model.DirectionExpense
		}
		r.Direction = d
		raw := t.Cell(i, ColRuleFreq)
		f, err := model.ParseFrequency(raw)
		if err != nil {
			// Keep the cell text so a rewrite leaves it for the user to fix.
			slog.Warn("Recurring rule has unknown frequency, disabling", "rule", r.Name, "error", err)
			f = model.Frequency(raw)
			r.Active = false
		}
		r.Frequency = f
		if r.NextRun.IsZero() {
			r.NextRun = r.StartDate
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// EncodeRules renders the Rutin worksheet.
func EncodeRules(rules []model.RecurringRule) Table {
	out := Table{Header: append([]string(nil), RecurringColumns...)}
	for _, r := range rules {
		out.Rows = append(out.Rows, []string{
			r.Name,
			r.Category,
			FormatAmount(r.Amount),
			r.Direction.Wire(),
			r.PaymentMethod,
			string(r.Frequency),
			FormatDate(r.StartDate),
			FormatDate(r.NextRun),
			formatBool(r.Active),
		})
	}
	return out
}
