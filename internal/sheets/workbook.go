package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Workbook implements ledger.Workbook on top of a Google spreadsheet. Each
// worksheet maps to one tab whose first row is the header.
type Workbook struct {
	service       *sheets.Service
	limiter       *rate.Limiter
	logger        *slog.Logger
	tabs          map[string]int64
	spreadsheetID string
	config        Config
	mu            sync.Mutex
}

// NewWorkbook connects to the configured spreadsheet, creating one when no
// spreadsheet id is set.
func NewWorkbook(ctx context.Context, config Config, logger *slog.Logger) (*Workbook, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	w := &Workbook{
		config:  config,
		service: service,
		logger:  logger,
		limiter: newLimiter(config.RequestsPerMinute),
	}

	id, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return nil, err
	}
	w.spreadsheetID = id
	return w, nil
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5)
}

// SpreadsheetID returns the id of the backing spreadsheet.
func (w *Workbook) SpreadsheetID() string {
	return w.spreadsheetID
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	mode, err := config.Auth()
	if err != nil {
		return nil, err
	}

	var tokenSource oauth2.TokenSource
	if mode == AuthServiceAccount {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// call runs one API request through the rate limiter and the retry policy.
func (w *Workbook) call(ctx context.Context, op string, fn func() error) error {
	opts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts + 1,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	err := common.WithRetry(ctx, func() error {
		if err := w.limiter.Wait(ctx); err != nil {
			return common.Permanent(err)
		}
		return classifyError(fn())
	}, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// classifyError marks quota, server and network failures as transient.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return common.Transient(fmt.Errorf("%w: %w", common.ErrRateLimit, err))
		case apiErr.Code >= http.StatusInternalServerError:
			return common.Transient(fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err))
		case apiErr.Code == http.StatusNotFound:
			return common.Permanent(fmt.Errorf("%w: %w", common.ErrNotFound, err))
		}
		return common.Permanent(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return common.Transient(fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return common.Permanent(err)
	}
	return common.Transient(err)
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one
// holding an empty tab per worksheet.
func (w *Workbook) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		var ss *sheets.Spreadsheet
		err := w.call(ctx, "get spreadsheet", func() error {
			var err error
			ss, err = w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
			return err
		})
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		w.rememberTabs(ss)
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}
	for _, name := range []string{ledger.SheetTransactions, ledger.SheetWallets, ledger.SheetTargets, ledger.SheetRecurring} {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: name},
		})
	}

	var created *sheets.Spreadsheet
	err := w.call(ctx, "create spreadsheet", func() error {
		var err error
		created, err = w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	w.rememberTabs(created)
	return created.SpreadsheetId, nil
}

func (w *Workbook) rememberTabs(ss *sheets.Spreadsheet) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tabs = make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			w.tabs[s.Properties.Title] = s.Properties.SheetId
		}
	}
}

func (w *Workbook) tabID(name string) (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, ok := w.tabs[name]
	return id, ok
}

// Read implements ledger.Workbook.
func (w *Workbook) Read(ctx context.Context, sheet string) (ledger.Table, error) {
	if _, ok := w.tabID(sheet); !ok {
		return ledger.Table{}, fmt.Errorf("%s: %w", sheet, common.ErrSheetNotFound)
	}

	var resp *sheets.ValueRange
	err := w.call(ctx, "read "+sheet, func() error {
		var err error
		resp, err = w.service.Spreadsheets.Values.Get(w.spreadsheetID, quoteSheet(sheet)).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return ledger.Table{}, err
	}

	table := fromValues(resp.Values)
	w.logger.Debug("read worksheet", "sheet", sheet, "rows", len(table.Rows))
	return table, nil
}

// Write implements ledger.Workbook. The tab is cleared and rewritten.
func (w *Workbook) Write(ctx context.Context, sheet string, table ledger.Table) error {
	if err := w.ensureTab(ctx, sheet); err != nil {
		return err
	}

	err := w.call(ctx, "clear "+sheet, func() error {
		_, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, quoteSheet(sheet), &sheets.ClearValuesRequest{}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}

	values := toValues(table)
	if err := w.writeData(ctx, sheet, values); err != nil {
		return err
	}

	if w.config.EnableFormatting {
		if err := w.applyFormatting(ctx, sheet, len(table.Header)); err != nil {
			w.logger.Warn("failed to apply formatting", "sheet", sheet, "error", err)
		}
	}

	w.logger.Info("worksheet written", "sheet", sheet, "rows", len(table.Rows))
	return nil
}

func (w *Workbook) ensureTab(ctx context.Context, sheet string) error {
	if _, ok := w.tabID(sheet); ok {
		return nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheet},
			},
		}},
	}
	var resp *sheets.BatchUpdateSpreadsheetResponse
	err := w.call(ctx, "add sheet "+sheet, func() error {
		var err error
		resp, err = w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			w.tabs[sheet] = r.AddSheet.Properties.SheetId
		}
	}
	w.logger.Info("created worksheet", "sheet", sheet)
	return nil
}

// writeData writes the values in batches to stay under request size limits.
func (w *Workbook) writeData(ctx context.Context, sheet string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]
		valueRange := &sheets.ValueRange{Values: batch}
		rangeStr := fmt.Sprintf("%s!A%d", quoteSheet(sheet), i+1)

		err := w.call(ctx, "write "+sheet, func() error {
			_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, rangeStr, valueRange).
				ValueInputOption("USER_ENTERED").
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "sheet", sheet, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

// applyFormatting bolds and freezes the header row.
func (w *Workbook) applyFormatting(ctx context.Context, sheet string, columns int) error {
	tabID, ok := w.tabID(sheet)
	if !ok {
		return nil
	}
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          tabID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: tabID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	return w.call(ctx, "format "+sheet, func() error {
		_, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		return err
	})
}

// quoteSheet returns an A1 range covering the whole tab.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// fromValues converts an API value grid into a table. Ragged rows are padded
// to the header width.
func fromValues(values [][]any) ledger.Table {
	if len(values) == 0 {
		return ledger.Table{}
	}
	table := ledger.Table{Header: make([]string, len(values[0]))}
	for i, v := range values[0] {
		table.Header[i] = cellString(v)
	}
	for _, raw := range values[1:] {
		row := make([]string, max(len(table.Header), len(raw)))
		for i, v := range raw {
			row[i] = cellString(v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	}
	return fmt.Sprint(v)
}

func toValues(table ledger.Table) [][]any {
	values := make([][]any, 0, len(table.Rows)+1)
	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	values = append(values, header)
	for _, row := range table.Rows {
		out := make([]any, len(row))
		for i, c := range row {
			out[i] = c
		}
		values = append(values, out)
	}
	return values
}
