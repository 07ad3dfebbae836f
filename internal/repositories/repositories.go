// package repositories provides persistence layer implementations for the match cache and sync history.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// nullString stores empty strings as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanError maps [sql.ErrNoRows] onto sentinel and wraps anything else as a scan failure.
func scanError(err error, sentinel error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", sentinel, what)
	}
	return fmt.Errorf("failed to scan %s: %w", what, err)
}
