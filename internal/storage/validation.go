// Package storage keeps the ledger workbook in a local SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidSheet = errors.New("invalid worksheet name")
)

const maxSheetNameRunes = 100

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSheetName applies the same limits a hosted spreadsheet does.
func validateSheetName(name string) error {
	if err := validateString(name, "sheet"); err != nil {
		return err
	}
	if len([]rune(name)) > maxSheetNameRunes || strings.ContainsAny(name, "[]*?/\\:") {
		return fmt.Errorf("%w: %q", ErrInvalidSheet, name)
	}
	return nil
}
