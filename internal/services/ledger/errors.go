package ledger

import "errors"

// Service errors
var (
	// Validation errors: rejected before any durable write
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidScale          = errors.New("amount scale must be exactly 2 decimal places")
	ErrAmountTooLarge        = errors.New("amount exceeds maximum limit")
	ErrInvalidIdempotencyKey = errors.New("idempotency key is required and must be at most 255 characters")
	ErrInvalidSource         = errors.New("source is required and must be at most 50 characters")
	ErrInvalidCurrency       = errors.New("currency must be a 3-letter ISO code")
	ErrInvalidPagination     = errors.New("page must be >= 0 and page size between 1 and 100")
	ErrSelfTransfer          = errors.New("cannot transfer to self")

	// Lookup errors: no write attempted
	ErrUserNotFound   = errors.New("user not found")
	ErrWalletNotFound = errors.New("wallet not found")

	// Business-rule rejection: debit aborted, no entry written
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConflictRetryExhausted is returned when a debit kept losing
	// serialization conflicts after the bounded internal retries.
	// The operation had no durable effect and is safe to retry.
	ErrConflictRetryExhausted = errors.New("transaction conflict, retry the operation")
)
