package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/export"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func sendJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context()).Error("Failed to encode response", "error", err)
	}
}

func sendJSONError(w http.ResponseWriter, r *http.Request, message string, status int) {
	loggerFrom(r.Context()).Warn("Sending JSON error to client", "message", message, "status", status)
	sendJSON(w, r, status, map[string]string{"error": message})
}

// sendError maps err onto a status code.
func sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrInvalidPeriod):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrBackendUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		loggerFrom(r.Context()).Error("Request failed", "error", err)
	}
	sendJSONError(w, r, err.Error(), status)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
}

// period resolves the ?period= parameter, defaulting to the latest month
// with data.
func (s *Server) period(r *http.Request, snap *ledger.Snapshot) (model.Period, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		return report.DefaultPeriod(snap.Transactions, s.now()), nil
	}
	p, err := model.ParsePeriod(raw)
	if err != nil {
		return model.Period{}, fmt.Errorf("%w: %q", common.ErrInvalidPeriod, raw)
	}
	return p, nil
}

func (s *Server) snapshotAndPeriod(w http.ResponseWriter, r *http.Request) (*ledger.Snapshot, model.Period, bool) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		sendError(w, r, err)
		return nil, model.Period{}, false
	}
	p, err := s.period(r, snap)
	if err != nil {
		sendError(w, r, err)
		return nil, model.Period{}, false
	}
	return snap, p, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, p, ok := s.snapshotAndPeriod(w, r)
	if !ok {
		return
	}
	monthly := report.Filter(snap.Transactions, p)
	wallets, total := report.WalletBalances(snap.Wallets, snap.Transactions, s.opts.ResetFallback)
	sendJSON(w, r, http.StatusOK, summaryResponse{
		Summary:    report.Summarize(snap.Transactions, p),
		Period:     p.String(),
		Assets:     total,
		Wallets:    wallets,
		ByCategory: report.ExpenseByCategory(monthly),
		ByMethod:   report.ExpenseByMethod(monthly),
		Daily:      report.DailyTotals(monthly),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	txs := snap.Transactions
	if r.URL.Query().Get("period") != "" {
		p, err := s.period(r, snap)
		if err != nil {
			sendError(w, r, err)
			return
		}
		txs = report.Filter(txs, p)
	}
	txs = report.SortByDate(txs, true)
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	sendJSON(w, r, http.StatusOK, toTransactionDTOs(txs))
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionDTO
	if err := decode(w, r, &in); err != nil {
		sendError(w, r, err)
		return
	}
	tx, err := in.model()
	if err != nil {
		sendError(w, r, invalid(err))
		return
	}
	saved, err := s.ledger.AddTransaction(r.Context(), tx)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, r, http.StatusCreated, toTransactionDTO(saved))
}

func (s *Server) handleReplacePeriod(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "period")
	p, err := model.ParsePeriod(raw)
	if err != nil {
		sendError(w, r, fmt.Errorf("%w: %q", common.ErrInvalidPeriod, raw))
		return
	}
	var in []transactionDTO
	if err := decode(w, r, &in); err != nil {
		sendError(w, r, err)
		return
	}
	edited := make([]model.Transaction, 0, len(in))
	for i, dto := range in {
		tx, err := dto.model()
		if err != nil {
			sendError(w, r, invalid(fmt.Errorf("row %d: %w", i+1, err)))
			return
		}
		if !p.Contains(tx.Date) {
			sendError(w, r, invalid(fmt.Errorf("row %d: date %s outside %s", i+1, dto.Date, p)))
			return
		}
		edited = append(edited, tx)
	}
	replaced, err := s.ledger.ReplacePeriod(r.Context(), p, edited)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, r, http.StatusOK, replaceResponse{Period: p.String(), Replaced: replaced, Saved: len(edited)})
}

func (s *Server) handleDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	var in deleteRequest
	if err := decode(w, r, &in); err != nil {
		sendError(w, r, err)
		return
	}
	if len(in.IDs) == 0 {
		sendError(w, r, invalid(errors.New("ids are required")))
		return
	}
	removed, err := s.ledger.DeleteTransactions(r.Context(), in.IDs)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, r, http.StatusOK, deleteResponse{Removed: removed})
}

func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, r, http.StatusOK, toTransactionDTOs(report.SortByDate(report.Unsettled(snap.Transactions), false)))
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var in []settlementDTO
	if err := decode(w, r, &in); err != nil {
		sendError(w, r, err)
		return
	}
	settlements := make([]ledger.Settlement, 0, len(in))
	for i, dto := range in {
		st, err := dto.settlement()
		if err != nil {
			sendError(w, r, invalid(fmt.Errorf("settlement %d: %w", i+1, err)))
			return
		}
		settlements = append(settlements, st)
	}
	res, err := s.ledger.SettleDebts(r.Context(), settlements)
	if err != nil {
		sendError(w, r, err)
		return
	}
	out := settleResponse{Applied: res.Applied, RowsChanged: res.RowsChanged, Skipped: []skippedDTO{}}
	for _, sk := range res.Skipped {
		out.Skipped = append(out.Skipped, skippedDTO{settlementDTO: fromSettlement(sk.Settlement), Reason: sk.Reason})
	}
	sendJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	wallets, total := report.WalletBalances(snap.Wallets, snap.Transactions, s.opts.ResetFallback)
	sendJSON(w, r, http.StatusOK, map[string]any{"wallets": wallets, "total": total})
}

func (s *Server) handleSaveWallets(w http.ResponseWriter, r *http.Request) {
	var in []walletDTO
	if err := decode(w, r, &in); err != nil {
		sendError(w, r, err)
		return
	}
	wallets := make([]model.Wallet, 0, len(in))
	for i, dto := range in {
		wallet, err := dto.model()
		if err != nil {
			sendError(w, r, invalid(fmt.Errorf("wallet %d: %w", i+1, err)))
			return
		}
		wallets = append(wallets, wallet)
	}
	if err := s.ledger.SaveWallets(r.Context(), wallets); err != nil {
		sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, r, http.StatusOK, report.TargetProgress(snap.Targets))
}

func (s *Server) handleSaveTargets(w http.ResponseWriter, r *http.Request) {
	var in []targetDTO
	if err := decode(w, r, &in); err != nil {
		sendError(w, r, err)
		return
	}
	targets := make([]model.Target, 0, len(in))
	for _, dto := range in {
		targets = append(targets, model.Target{
			Name:        strings.TrimSpace(dto.Name),
			Amount:      dto.Amount,
			Accumulated: dto.Accumulated,
		})
	}
	if err := s.ledger.SaveTargets(r.Context(), targets); err != nil {
		sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	snap, p, ok := s.snapshotAndPeriod(w, r)
	if !ok {
		return
	}
	sendJSON(w, r, http.StatusOK, budgetResponse{
		Period:   p.String(),
		Plan:     s.opts.Budget.Allocate(),
		Variance: report.Variance(s.opts.Budget, report.Filter(snap.Transactions, p)),
	})
}

func (s *Server) handleApplyRecurring(w http.ResponseWriter, r *http.Request) {
	generated, err := s.ledger.ApplyRecurring(r.Context(), s.now(), nil)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, r, http.StatusOK, recurringResponse{Generated: toTransactionDTOs(generated)})
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	snap, p, ok := s.snapshotAndPeriod(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, report.BuildStatement(snap.Transactions, p), s.opts.Account); err != nil {
		sendError(w, r, err)
		return
	}
	sendFile(w, "application/pdf", export.StatementFileName(p), buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, p, ok := s.snapshotAndPeriod(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	rep := export.NewReport(snap, p, s.opts.Budget, s.opts.ResetFallback)
	if err := export.WriteXLSX(&buf, rep); err != nil {
		sendError(w, r, err)
		return
	}
	sendFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WorkbookFileName(p), buf.Bytes())
}

func sendFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
