package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage is a local workbook: every worksheet is a header plus
// ordered JSON rows, and every overwrite is recorded in write_log.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// WriteRecord is one entry of the write log.
type WriteRecord struct {
	WrittenAt time.Time
	Sheet     string
	Rows      int
	Columns   int
	ID        int64
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases
	// alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Open creates the storage and applies pending migrations.
func Open(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	s, err := NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Read implements ledger.Workbook.
func (s *SQLiteStorage) Read(ctx context.Context, sheet string) (ledger.Table, error) {
	if err := validateContext(ctx); err != nil {
		return ledger.Table{}, err
	}
	if err := validateSheetName(sheet); err != nil {
		return ledger.Table{}, err
	}

	var headerJSON string
	err := s.db.QueryRowContext(ctx, `SELECT header FROM worksheets WHERE name = ?`, sheet).Scan(&headerJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Table{}, fmt.Errorf("%s: %w", sheet, common.ErrSheetNotFound)
	}
	if err != nil {
		return ledger.Table{}, fmt.Errorf("failed to read worksheet %s: %w", sheet, err)
	}

	var table ledger.Table
	if err := json.Unmarshal([]byte(headerJSON), &table.Header); err != nil {
		return ledger.Table{}, fmt.Errorf("corrupt header for %s: %w", sheet, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cells FROM worksheet_rows
		WHERE sheet = ?
		ORDER BY position`, sheet)
	if err != nil {
		return ledger.Table{}, fmt.Errorf("failed to query rows of %s: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return ledger.Table{}, fmt.Errorf("failed to scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return ledger.Table{}, fmt.Errorf("corrupt row in %s: %w", sheet, err)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return ledger.Table{}, fmt.Errorf("error iterating rows: %w", err)
	}

	return table, nil
}

// Write implements ledger.Workbook. The worksheet is replaced in a single
// database transaction.
func (s *SQLiteStorage) Write(ctx context.Context, sheet string, table ledger.Table) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSheetName(sheet); err != nil {
		return err
	}

	headerJSON, err := json.Marshal(nonNil(table.Header))
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO worksheets (name, header, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET header = excluded.header, updated_at = excluded.updated_at`,
		sheet, string(headerJSON)); err != nil {
		return fmt.Errorf("failed to save header of %s: %w", sheet, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM worksheet_rows WHERE sheet = ?`, sheet); err != nil {
		return fmt.Errorf("failed to clear %s: %w", sheet, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO worksheet_rows (sheet, position, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range table.Rows {
		cellsJSON, err := json.Marshal(nonNil(row))
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, sheet, i, string(cellsJSON)); err != nil {
			return fmt.Errorf("failed to insert row %d of %s: %w", i, sheet, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO write_log (sheet, row_count, column_count) VALUES (?, ?, ?)`,
		sheet, len(table.Rows), len(table.Header)); err != nil {
		return fmt.Errorf("failed to record write: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit write of %s: %w", sheet, err)
	}

	slog.Debug("Worksheet saved", "sheet", sheet, "rows", len(table.Rows))
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// History returns the most recent overwrites, newest first. An empty sheet
// name lists every worksheet.
func (s *SQLiteStorage) History(ctx context.Context, sheet string, limit int) ([]WriteRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, sheet, row_count, column_count, written_at FROM write_log`
	args := []any{}
	if sheet != "" {
		query += ` WHERE sheet = ?`
		args = append(args, sheet)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query write log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []WriteRecord
	for rows.Next() {
		var r WriteRecord
		if err := rows.Scan(&r.ID, &r.Sheet, &r.Rows, &r.Columns, &r.WrittenAt); err != nil {
			return nil, fmt.Errorf("failed to scan write log: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Sheets lists the stored worksheet names.
func (s *SQLiteStorage) Sheets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM worksheets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
