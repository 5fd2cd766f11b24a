package main

import (
	"database/sql"
	"fmt"
)

// TransactionFunc represents a function that operates within a catalog
// transaction
type TransactionFunc func(*sql.Tx) error

// WithTransaction executes a function within a database transaction.
// It automatically handles commit/rollback based on whether the function
// returns an error. The sync engine relies on this to keep the
// deactivate/reactivate/stats sequence atomic per person.
func (s *CatalogStore) WithTransaction(fn TransactionFunc) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	// Ensure transaction is always closed
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %v)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}
