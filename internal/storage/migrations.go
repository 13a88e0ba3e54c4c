package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/bento/internal/ledger"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Worksheets and rows",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS worksheets (
					name TEXT PRIMARY KEY,
					header TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS worksheet_rows (
					sheet TEXT NOT NULL,
					position INTEGER NOT NULL,
					cells TEXT NOT NULL,
					PRIMARY KEY (sheet, position),
					FOREIGN KEY (sheet) REFERENCES worksheets(name) ON DELETE CASCADE
				)`,
			}
			return execAll(tx, queries)
		},
	},
	{
		Version:     2,
		Description: "Write log",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS write_log (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					sheet TEXT NOT NULL,
					row_count INTEGER NOT NULL,
					column_count INTEGER NOT NULL,
					written_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_write_log_sheet ON write_log(sheet, id)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Seed required worksheets",
		Up: func(tx *sql.Tx) error {
			seeds := map[string][]string{
				ledger.SheetTransactions: ledger.TransactionColumns,
				ledger.SheetWallets:      ledger.WalletColumns,
			}
			for name, header := range seeds {
				headerJSON, err := json.Marshal(header)
				if err != nil {
					return err
				}
				if _, err := tx.Exec(`INSERT OR IGNORE INTO worksheets (name, header) VALUES (?, ?)`,
					name, string(headerJSON)); err != nil {
					return fmt.Errorf("failed to seed %s: %w", name, err)
				}
			}
			return nil
		},
	},
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
