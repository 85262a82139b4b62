package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrEntryNotFound  = errors.New("ledger entry not found")

	// ErrDuplicateWallet is returned when the unique constraint on
	// wallets.user_id rejects a second wallet for the same user.
	ErrDuplicateWallet = errors.New("wallet already exists for user")

	// ErrDuplicateIdempotencyKey is returned when an entry insert loses the
	// race on the unique index over ledger_entries.idempotency_key. Callers
	// convert this into a duplicate-replay outcome, never a write error.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

	// ErrSerializationFailure signals a transaction that must be retried
	// (serialization conflict or deadlock under serializable isolation).
	ErrSerializationFailure = errors.New("transaction serialization failure")

	ErrDatabaseOperation = errors.New("database operation failed")
)

// Postgres SQLSTATE codes used for error classification.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classifyError maps driver-level errors onto repository sentinels. The
// unique index on the idempotency key is the actual correctness linchpin:
// two racing inserts both pass any application-level lookup, but only one
// can win here.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if strings.Contains(pgErr.ConstraintName, "idempotency_key") {
			return ErrDuplicateIdempotencyKey
		}
		if strings.Contains(pgErr.ConstraintName, "user_id") {
			return ErrDuplicateWallet
		}
		return err
	case pgSerializationFailure, pgDeadlockDetected:
		return ErrSerializationFailure
	default:
		return err
	}
}
