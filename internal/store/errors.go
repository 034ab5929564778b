package store

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-game-config/configuration"
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a store-enforced uniqueness
// failure from either supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}

// storeError passes classified errors through and wraps everything else,
// context cancellation included, as a StoreError.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, configuration.ErrNotFound) || errors.Is(err, configuration.ErrDuplicateName) {
		return err
	}
	return &configuration.StoreError{Op: op, Err: err}
}
