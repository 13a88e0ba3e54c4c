package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/model"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCacheTTL is how long a loaded snapshot is served before the
	// workbook is read again.
	DefaultCacheTTL = 10 * time.Minute

	snapshotKey = "snapshot"
)

// Planner income row values.
const (
	PlannerIncomeItem     = "Gaji Bulanan"
	PlannerIncomeCategory = "Gaji"
	PlannerIncomeMethod   = "Livin (Mandiri)"
	PlannerIncomeNote     = "Budget Planner"
)

// DefaultMonitoringStart is the date wallet balances are counted from when a
// wallet has no reset date of its own.
var DefaultMonitoringStart = time.Date(2026, time.February, 18, 0, 0, 0, 0, time.UTC)

// Options configures a Store.
type Options struct {
	Now        func() time.Time
	Categories model.Categories
	CacheTTL   time.Duration
}

// Snapshot is a consistent view of every worksheet. Callers must treat the
// slices as read-only.
type Snapshot struct {
	LoadedAt     time.Time
	Transactions []model.Transaction
	Wallets      []model.Wallet
	Targets      []model.Target
	Rules        []model.RecurringRule
}

// Settlement asks for the unsettled rows matching Date, Item and Amount to be
// marked paid from Method.
type Settlement struct {
	Date   time.Time
	Amount decimal.Decimal
	Item   string
	Method string
}

// SkippedSettlement is a settlement that was not applied.
type SkippedSettlement struct {
	Reason     string
	Settlement Settlement
}

// SettleResult reports the outcome of SettleDebts.
type SettleResult struct {
	Skipped     []SkippedSettlement
	Applied     int
	RowsChanged int
}

// ImportResult reports the outcome of ImportTransactions.
type ImportResult struct {
	Added      int
	Duplicates int
}

// ProgressFunc is called after each unit of work.
type ProgressFunc func(done, total int)

// Store is the data-access shim over a Workbook. Reads are cached; every
// mutation reads the fresh worksheet, edits it and writes it back whole.
type Store struct {
	wb    Workbook
	cache *cache.Cache
	now   func() time.Time
	cats  model.Categories
	ttl   time.Duration
	mu    sync.Mutex

	// gen counts invalidations; a load only fills the cache when no
	// invalidation happened while it was reading.
	cacheMu sync.Mutex
	gen     uint64
}

// NewStore creates a Store over wb.
func NewStore(wb Workbook, opts Options) *Store {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Categories.Income) == 0 && len(opts.Categories.Expense) == 0 {
		opts.Categories = model.DefaultCategories()
	}
	return &Store{
		wb:    wb,
		cache: cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		now:   opts.Now,
		cats:  opts.Categories,
		ttl:   opts.CacheTTL,
	}
}

// Categories returns the category lists used for validation.
func (s *Store) Categories() model.Categories {
	return s.cats
}

// Snapshot returns every worksheet, served from cache when fresh.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached, ok := s.cache.Get(snapshotKey); ok {
		if snap, ok := cached.(*Snapshot); ok {
			return snap, nil
		}
	}

	s.cacheMu.Lock()
	gen := s.gen
	s.cacheMu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	if s.gen == gen {
		s.cache.Set(snapshotKey, snap, s.ttl)
	}
	s.cacheMu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot and any load still in flight.
func (s *Store) Invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.gen++
	s.cache.Delete(snapshotKey)
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	txs, _, err := s.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	wallets, err := s.readWallets(ctx)
	if err != nil {
		return nil, err
	}
	targets, err := s.readTargets(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.readRules(ctx)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded workbook",
		"transactions", len(txs),
		"wallets", len(wallets),
		"targets", len(targets),
		"rules", len(rules))

	return &Snapshot{
		LoadedAt:     s.now(),
		Transactions: txs,
		Wallets:      wallets,
		Targets:      targets,
		Rules:        rules,
	}, nil
}

// transactionSheet holds a decoded Transaksi worksheet plus the extra cells
// that must survive a rewrite.
type transactionSheet struct {
	extra map[string]extras
	txs   []model.Transaction
}

func (s *Store) readTransactions(ctx context.Context) ([]model.Transaction, map[string]extras, error) {
	table, err := s.wb.Read(ctx, SheetTransactions)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", SheetTransactions, err)
	}
	txs, extra, _, err := DecodeTransactions(table)
	if err != nil {
		return nil, nil, err
	}
	return txs, extra, nil
}

func (s *Store) loadTransactionSheet(ctx context.Context) (*transactionSheet, error) {
	txs, extra, err := s.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return &transactionSheet{txs: txs, extra: extra}, nil
}

func (s *Store) writeTransactions(ctx context.Context, sheet *transactionSheet) error {
	if err := s.wb.Write(ctx, SheetTransactions, EncodeTransactions(sheet.txs, sheet.extra)); err != nil {
		return fmt.Errorf("write %s: %w", SheetTransactions, err)
	}
	return nil
}

func (s *Store) readWallets(ctx context.Context) ([]model.Wallet, error) {
	table, err := s.wb.Read(ctx, SheetWallets)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SheetWallets, err)
	}
	return DecodeWallets(table)
}

// readOptional reads a worksheet that may not exist yet.
func (s *Store) readOptional(ctx context.Context, sheet string) (Table, error) {
	table, err := s.wb.Read(ctx, sheet)
	if errors.Is(err, common.ErrSheetNotFound) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", sheet, err)
	}
	return table, nil
}

func (s *Store) readTargets(ctx context.Context) ([]model.Target, error) {
	table, err := s.readOptional(ctx, SheetTargets)
	if err != nil {
		return nil, err
	}
	return DecodeTargets(table)
}

func (s *Store) readRules(ctx context.Context) ([]model.RecurringRule, error) {
	table, err := s.readOptional(ctx, SheetRecurring)
	if err != nil {
		return nil, err
	}
	return DecodeRules(table)
}

// mutate runs fn under the store lock and drops the cache afterwards, even
// when fn fails part way through a multi-sheet write.
func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.Invalidate()
	return fn()
}

// AddTransaction validates tx and appends it to the Transaksi worksheet.
func (s *Store) AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	tx.Normalize()
	if err := tx.Validate(s.cats); err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	err := s.mutate(func() error {
		sheet, err := s.loadTransactionSheet(ctx)
		if err != nil {
			return err
		}
		sheet.txs = append(sheet.txs, tx)
		return s.writeTransactions(ctx, sheet)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	slog.Info("Transaction recorded", "id", tx.ID, "item", tx.Item, "amount", tx.Amount.String())
	return tx, nil
}

// RecordIncome appends the budget planner's monthly salary row.
func (s *Store) RecordIncome(ctx context.Context, amount decimal.Decimal, method string, date time.Time) (model.Transaction, error) {
	if method == "" {
		method = PlannerIncomeMethod
	}
	if date.IsZero() {
		date = s.now()
	}
	return s.AddTransaction(ctx, model.Transaction{
		Date:          date,
		Item:          PlannerIncomeItem,
		Category:      PlannerIncomeCategory,
		Amount:        amount,
		Direction:     model.DirectionIncome,
		Status:        model.StatusSettled,
		PaymentMethod: method,
		Note:          PlannerIncomeNote,
	})
}

// ReplacePeriod keeps every row outside period and replaces the rows inside
// it with edited. Rows missing from edited are deleted. Categories already
// present in the worksheet stay valid so old rows can be saved unchanged.
func (s *Store) ReplacePeriod(ctx context.Context, period model.Period, edited []model.Transaction) (int, error) {
	replaced := 0
	err := s.mutate(func() error {
		sheet, err := s.loadTransactionSheet(ctx)
		if err != nil {
			return err
		}

		cats := s.withExistingCategories(sheet.txs)
		rows := make([]model.Transaction, 0, len(edited))
		for i, tx := range edited {
			tx.Normalize()
			if err := tx.Validate(cats); err != nil {
				return fmt.Errorf("%w: row %d: %w", common.ErrInvalidInput, i+1, err)
			}
			if tx.ID == "" {
				tx.ID = uuid.NewString()
			}
			rows = append(rows, tx)
		}

		kept := make([]model.Transaction, 0, len(sheet.txs))
		for _, tx := range sheet.txs {
			if period.Contains(tx.Date) {
				replaced++
				continue
			}
			kept = append(kept, tx)
		}
		sheet.txs = append(kept, rows...)
		return s.writeTransactions(ctx, sheet)
	})
	if err != nil {
		return 0, err
	}
	slog.Info("Period saved", "period", period.String(), "replaced", replaced, "rows", len(edited))
	return replaced, nil
}

func (s *Store) withExistingCategories(txs []model.Transaction) model.Categories {
	cats := model.Categories{
		Income:  slices.Clone(s.cats.Income),
		Expense: slices.Clone(s.cats.Expense),
	}
	for _, tx := range txs {
		if tx.Category == "" || cats.Allows(tx.Direction, tx.Category) {
			continue
		}
		switch tx.Direction {
		case model.DirectionIncome:
			cats.Income = append(cats.Income, tx.Category)
		case model.DirectionExpense:
			cats.Expense = append(cats.Expense, tx.Category)
		}
	}
	return cats
}

// UpdateTransaction applies fn to the row with the given id.
func (s *Store) UpdateTransaction(ctx context.Context, id string, fn func(*model.Transaction) error) (model.Transaction, error) {
	var updated model.Transaction
	err := s.mutate(func() error {
		sheet, err := s.loadTransactionSheet(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(sheet.txs, func(tx model.Transaction) bool { return tx.ID == id })
		if idx < 0 {
			return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
		}

		tx := sheet.txs[idx]
		if err := fn(&tx); err != nil {
			return err
		}
		tx.ID = id
		tx.Normalize()
		if err := tx.Validate(s.withExistingCategories(sheet.txs)); err != nil {
			return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
		}
		sheet.txs[idx] = tx
		updated = tx
		return s.writeTransactions(ctx, sheet)
	})
	return updated, err
}

// DeleteTransactions removes the rows with the given ids and returns how
// many were removed. Nothing is written when no id matched.
func (s *Store) DeleteTransactions(ctx context.Context, ids []string) (int, error) {
	removed := 0
	err := s.mutate(func() error {
		sheet, err := s.loadTransactionSheet(ctx)
		if err != nil {
			return err
		}
		before := len(sheet.txs)
		sheet.txs = slices.DeleteFunc(sheet.txs, func(tx model.Transaction) bool {
			return slices.Contains(ids, tx.ID)
		})
		removed = before - len(sheet.txs)
		if removed == 0 {
			return nil
		}
		for _, id := range ids {
			delete(sheet.extra, id)
		}
		return s.writeTransactions(ctx, sheet)
	})
	return removed, err
}

// SettleDebts marks matching unsettled rows as paid. Settlements without a
// real payment method are skipped. The worksheet is written only when at
// least one row changed.
func (s *Store) SettleDebts(ctx context.Context, settlements []Settlement) (SettleResult, error) {
	var result SettleResult
	err := s.mutate(func() error {
		sheet, err := s.loadTransactionSheet(ctx)
		if err != nil {
			return err
		}

		for _, st := range settlements {
			method := strings.TrimSpace(st.Method)
			if method == "" || method == model.UnsettledMethod {
				slog.Warn("Settlement skipped, no payment method", "item", st.Item)
				result.Skipped = append(result.Skipped, SkippedSettlement{
					Settlement: st,
					Reason:     "payment method required",
				})
				continue
			}

			matched := 0
			for i := range sheet.txs {
				tx := &sheet.txs[i]
				if !tx.IsUnsettled() || !sameDay(tx.Date, st.Date) ||
					tx.Item != strings.TrimSpace(st.Item) || !tx.Amount.Equal(st.Amount) {
					continue
				}
				tx.Status = model.StatusSettled
				tx.PaymentMethod = method
				matched++
			}
			if matched == 0 {
				result.Skipped = append(result.Skipped, SkippedSettlement{
					Settlement: st,
					Reason:     "no matching unsettled row",
				})
				continue
			}
			result.Applied++
			result.RowsChanged += matched
		}

		if result.RowsChanged == 0 {
			return nil
		}
		return s.writeTransactions(ctx, sheet)
	})
	if err != nil {
		return SettleResult{}, err
	}
	slog.Info("Debts settled", "applied", result.Applied, "rows", result.RowsChanged, "skipped", len(result.Skipped))
	return result, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ImportTransactions appends txs, skipping rows whose hash already exists in
// the worksheet or earlier in the batch.
func (s *Store) ImportTransactions(ctx context.Context, txs []model.Transaction, progress ProgressFunc) (ImportResult, error) {
	var result ImportResult
	err := s.mutate(func() error {
		sheet, err := s.loadTransactionSheet(ctx)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(sheet.txs)+len(txs))
		for _, tx := range sheet.txs {
			seen[tx.Hash()] = true
		}

		for i, tx := range txs {
			tx.Normalize()
			if err := tx.Validate(s.cats); err != nil {
				return fmt.Errorf("%w: import row %d: %w", common.ErrInvalidInput, i+1, err)
			}
			h := tx.Hash()
			if seen[h] {
				result.Duplicates++
			} else {
				seen[h] = true
				if tx.ID == "" {
					tx.ID = uuid.NewString()
				}
				sheet.txs = append(sheet.txs, tx)
				result.Added++
			}
			if progress != nil {
				progress(i+1, len(txs))
			}
		}

		if result.Added == 0 {
			return nil
		}
		return s.writeTransactions(ctx, sheet)
	})
	return result, err
}

// SaveWallets overwrites the Dompet worksheet.
func (s *Store) SaveWallets(ctx context.Context, wallets []model.Wallet) error {
	if err := validateWallets(wallets); err != nil {
		return err
	}
	return s.mutate(func() error {
		if err := s.wb.Write(ctx, SheetWallets, EncodeWallets(wallets)); err != nil {
			return fmt.Errorf("write %s: %w", SheetWallets, err)
		}
		return nil
	})
}

func validateWallets(wallets []model.Wallet) error {
	seen := make(map[string]bool, len(wallets))
	for _, w := range wallets {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return fmt.Errorf("%w: wallet name is required", common.ErrInvalidInput)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate wallet %q", common.ErrInvalidInput, name)
		}
		if w.OpeningBalance.IsNegative() {
			return fmt.Errorf("%w: wallet %q has a negative opening balance", common.ErrInvalidInput, name)
		}
		seen[name] = true
	}
	return nil
}

// ResetWallet sets a wallet's opening balance as of date, adding the wallet
// when it does not exist yet.
func (s *Store) ResetWallet(ctx context.Context, name string, balance decimal.Decimal, date time.Time) error {
	name = strings.TrimSpace(name)
	if date.IsZero() {
		date = s.now()
	}
	y, m, d := date.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return s.mutate(func() error {
		wallets, err := s.readWallets(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(wallets, func(w model.Wallet) bool { return w.Name == name })
		if idx < 0 {
			wallets = append(wallets, model.Wallet{Name: name})
			idx = len(wallets) - 1
		}
		wallets[idx].OpeningBalance = balance
		wallets[idx].ResetDate = date
		if err := validateWallets(wallets); err != nil {
			return err
		}
		if err := s.wb.Write(ctx, SheetWallets, EncodeWallets(wallets)); err != nil {
			return fmt.Errorf("write %s: %w", SheetWallets, err)
		}
		return nil
	})
}

// SaveTargets overwrites the Target worksheet.
func (s *Store) SaveTargets(ctx context.Context, targets []model.Target) error {
	for _, t := range targets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: target name is required", common.ErrInvalidInput)
		}
		if t.Amount.IsNegative() || t.Accumulated.IsNegative() {
			return fmt.Errorf("%w: target %q has a negative amount", common.ErrInvalidInput, t.Name)
		}
	}
	return s.mutate(func() error {
		return s.writeTargets(ctx, targets)
	})
}

func (s *Store) writeTargets(ctx context.Context, targets []model.Target) error {
	if err := s.wb.Write(ctx, SheetTargets, EncodeTargets(targets)); err != nil {
		return fmt.Errorf("write %s: %w", SheetTargets, err)
	}
	return nil
}

// SetTarget adds a target or updates the amount of an existing one.
func (s *Store) SetTarget(ctx context.Context, name string, amount decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" || amount.IsNegative() {
		return fmt.Errorf("%w: target needs a name and a non-negative amount", common.ErrInvalidInput)
	}
	return s.mutate(func() error {
		targets, err := s.readTargets(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(targets, func(t model.Target) bool { return t.Name == name })
		if idx < 0 {
			targets = append(targets, model.Target{Name: name})
			idx = len(targets) - 1
		}
		targets[idx].Amount = amount
		return s.writeTargets(ctx, targets)
	})
}

// Contribute adds amount to a target's accumulated savings.
func (s *Store) Contribute(ctx context.Context, name string, amount decimal.Decimal) (model.Target, error) {
	if !amount.IsPositive() {
		return model.Target{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, model.ErrNonPositive)
	}
	var updated model.Target
	err := s.mutate(func() error {
		targets, err := s.readTargets(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(targets, func(t model.Target) bool { return t.Name == name })
		if idx < 0 {
			return fmt.Errorf("target %q: %w", name, common.ErrNotFound)
		}
		targets[idx].Accumulated = targets[idx].Accumulated.Add(amount)
		updated = targets[idx]
		return s.writeTargets(ctx, targets)
	})
	return updated, err
}

// DeleteTarget removes a target by name.
func (s *Store) DeleteTarget(ctx context.Context, name string) error {
	return s.mutate(func() error {
		targets, err := s.readTargets(ctx)
		if err != nil {
			return err
		}
		before := len(targets)
		targets = slices.DeleteFunc(targets, func(t model.Target) bool { return t.Name == name })
		if len(targets) == before {
			return fmt.Errorf("target %q: %w", name, common.ErrNotFound)
		}
		return s.writeTargets(ctx, targets)
	})
}

// SaveRules overwrites the Rutin worksheet.
func (s *Store) SaveRules(ctx context.Context, rules []model.RecurringRule) error {
	for i := range rules {
		if err := s.validateRule(&rules[i]); err != nil {
			return err
		}
	}
	return s.mutate(func() error {
		return s.writeRules(ctx, rules)
	})
}

// AddRule appends a recurring rule.
func (s *Store) AddRule(ctx context.Context, rule model.RecurringRule) (model.RecurringRule, error) {
	if err := s.validateRule(&rule); err != nil {
		return model.RecurringRule{}, err
	}
	err := s.mutate(func() error {
		rules, err := s.readRules(ctx)
		if err != nil {
			return err
		}
		return s.writeRules(ctx, append(rules, rule))
	})
	return rule, err
}

func (s *Store) validateRule(rule *model.RecurringRule) error {
	if rule.NextRun.IsZero() {
		rule.NextRun = rule.StartDate
	}
	if rule.StartDate.IsZero() {
		return fmt.Errorf("%w: rule %q: %w", common.ErrInvalidInput, rule.Name, model.ErrMissingDate)
	}
	// The generated row must itself be a valid transaction.
	tx := rule.Transaction(rule.StartDate)
	tx.Normalize()
	if err := tx.Validate(s.cats); err != nil {
		return fmt.Errorf("%w: rule %q: %w", common.ErrInvalidInput, rule.Name, err)
	}
	return nil
}

func (s *Store) writeRules(ctx context.Context, rules []model.RecurringRule) error {
	if err := s.wb.Write(ctx, SheetRecurring, EncodeRules(rules)); err != nil {
		return fmt.Errorf("write %s: %w", SheetRecurring, err)
	}
	return nil
}

// ApplyRecurring generates one transaction per elapsed run of every active
// rule up to now, then advances each rule's next run date. Transactions are
// written before rules so a failure in between repeats runs rather than
// losing them.
func (s *Store) ApplyRecurring(ctx context.Context, now time.Time, progress ProgressFunc) ([]model.Transaction, error) {
	var generated []model.Transaction
	err := s.mutate(func() error {
		rules, err := s.readRules(ctx)
		if err != nil {
			return err
		}
		sheet, err := s.loadTransactionSheet(ctx)
		if err != nil {
			return err
		}

		cats := s.withExistingCategories(sheet.txs)
		changed := false
		for i := range rules {
			rule := &rules[i]
			runs := rule.Due(now)
			batch := make([]model.Transaction, 0, len(runs))
			for _, run := range runs {
				tx := rule.Transaction(run)
				tx.ID = uuid.NewString()
				tx.Normalize()
				if err := tx.Validate(cats); err != nil {
					slog.Warn("Recurring rule skipped, generated row is invalid", "rule", rule.Name, "error", err)
					batch, runs = nil, nil
					break
				}
				batch = append(batch, tx)
			}
			generated = append(generated, batch...)
			if len(runs) > 0 {
				rule.NextRun = rule.Advance(runs[len(runs)-1])
				changed = true
			}
			if progress != nil {
				progress(i+1, len(rules))
			}
		}
		if !changed {
			return nil
		}

		sheet.txs = append(sheet.txs, generated...)
		if err := s.writeTransactions(ctx, sheet); err != nil {
			return err
		}
		return s.writeRules(ctx, rules)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Recurring rules applied", "generated", len(generated))
	return generated, nil
}
