// Package ofx converts OFX/QFX bank exports into ledger transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/bento/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// FallbackCategory is used when a transaction type has no mapping or the
// mapped category is not configured.
const FallbackCategory = "Lainnya"

// DefaultTypeCategories maps OFX transaction types to categories.
var DefaultTypeCategories = map[string]string{
	"INT":         "Investasi",
	"DIV":         "Investasi",
	"DIRECTDEP":   "Gaji",
	"FEE":         "Tagihan",
	"SRVCHG":      "Tagihan",
	"PAYMENT":     "Tagihan",
	"DIRECTDEBIT": "Tagihan",
	"REPEATPMT":   "Tagihan",
	"POS":         "Belanja",
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct {
	typeCategories map[string]string
	categories     model.Categories
	method         string
}

// NewParser creates a parser that books every transaction against the
// wallet named method.
func NewParser(method string, categories model.Categories) *Parser {
	return &Parser{
		method:         method,
		categories:     categories,
		typeCategories: DefaultTypeCategories,
	}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns settled transactions.
// Zero-amount entries are dropped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	if strings.TrimSpace(p.method) == "" {
		return nil, fmt.Errorf("a wallet is required to import OFX transactions")
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList != nil {
				transactions = append(transactions, p.convertAll(stmt.BankTranList.Transactions)...)
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList != nil {
				transactions = append(transactions, p.convertAll(stmt.BankTranList.Transactions)...)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

func (p *Parser) convertAll(list []ofxgo.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(list))
	for _, ofxTx := range list {
		tx, ok := p.convertTransaction(ofxTx)
		if !ok {
			slog.Debug("Skipping zero-amount OFX transaction", "fitid", string(ofxTx.FiTID))
			continue
		}
		out = append(out, tx)
	}
	return out
}

// convertTransaction maps one OFX entry. OFX signs debits negative.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.Transaction, bool) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil || amount.IsZero() {
		return model.Transaction{}, false
	}

	direction := model.DirectionIncome
	if amount.IsNegative() {
		direction = model.DirectionExpense
		amount = amount.Neg()
	}

	posted := ofxTx.DtPosted.Time
	y, m, d := posted.Date()

	tx := model.Transaction{
		Date:          time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Item:          p.extractMerchantName(ofxTx),
		Amount:        amount,
		Direction:     direction,
		Status:        model.StatusSettled,
		PaymentMethod: p.method,
	}
	tx.Category = p.category(ofxTx.TrnType.String(), direction)
	if tx.Item == "" {
		tx.Item = ofxTx.TrnType.String()
	}
	if ofxTx.FiTID != "" {
		tx.Note = "OFX " + string(ofxTx.FiTID)
	}
	if ofxTx.CheckNum != "" {
		tx.Note = strings.TrimSpace(tx.Note + " cek " + string(ofxTx.CheckNum))
	}
	return tx, true
}

func (p *Parser) category(trnType string, direction model.TransactionDirection) string {
	if c, ok := p.typeCategories[strings.ToUpper(trnType)]; ok && p.categories.Allows(direction, c) {
		return c
	}
	return FallbackCategory
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && (isGenericDescription(name) || strings.TrimSpace(name) == "") {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"TRSF E-BANKING DB ",
		"TRSF E-BANKING CR ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps at the start.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id ofxgo.String) {
		if id != "" && !seen[string(id)] {
			seen[string(id)] = true
			accounts = append(accounts, string(id))
		}
	}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankAcctFrom.AcctID)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.CCAcctFrom.AcctID)
		}
	}
	return accounts, nil
}
