package dao

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductNameExists = errors.New("product name already exists")
	ErrBatchNotFound     = errors.New("stock batch not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLockUnavailable   = errors.New("stock rows are locked by another transaction")
)

// ShortageError reports which batch could not cover a decrement. It matches
// ErrInsufficientStock with errors.Is.
type ShortageError struct {
	BatchID   uint
	Requested int
	Available int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("batch %d: requested %d, available %d", e.BatchID, e.Requested, e.Available)
}

func (e *ShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// MissingBatchError names the batch that could not be found. It matches
// ErrBatchNotFound with errors.Is.
type MissingBatchError struct {
	BatchID uint
}

func (e *MissingBatchError) Error() string {
	return fmt.Sprintf("stock batch %d not found", e.BatchID)
}

func (e *MissingBatchError) Is(target error) bool {
	return target == ErrBatchNotFound
}

const productNameConstraint = "idx_products_name"

// translatePgError maps postgres error codes onto the DAO sentinels.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == productNameConstraint {
			return ErrProductNameExists
		}
	case pgerrcode.LockNotAvailable, pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure:
		return fmt.Errorf("%w: %s", ErrLockUnavailable, pgErr.Message)
	case pgerrcode.ForeignKeyViolation:
		return ErrProductNotFound
	case pgerrcode.CheckViolation:
		return fmt.Errorf("%w: %s", ErrInsufficientStock, pgErr.Message)
	}

	return err
}
