package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Storage error classes. Stores wrap driver errors so callers can use errors.Is.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrConstraint = errors.New("constraint violation")
)

// Classify maps a driver error onto ErrNotFound, ErrDuplicate or ErrConstraint.
// Unknown errors are returned unchanged; nil stays nil.
// POST: errors.Is(result, original) holds for every classified error
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(se.Error(), "UNIQUE constraint") {
				return fmt.Errorf("%w: %w", ErrDuplicate, err)
			}
			return fmt.Errorf("%w: %w", ErrConstraint, err)
		}
	}
	return err
}
