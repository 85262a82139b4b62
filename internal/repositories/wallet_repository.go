package repositories

import (
	"context"
	"time"

	"ledgerpay/internal/models"

	"github.com/shopspring/decimal"
)

// WalletRepository is the durable-store surface the ledger engine runs on:
// wallets, their append-only entries, and the idempotency replay records.
type WalletRepository interface {
	// Wallet operations
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	GetWalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	// LockWalletByID reads a wallet row FOR UPDATE. Only meaningful inside
	// ExecuteSerializable; the lock is held until the transaction commits.
	LockWalletByID(ctx context.Context, walletID uint) (*models.Wallet, error)
	// TouchWallet bumps the wallet's version counter and refreshes the
	// advisory balance column. The ledger remains the source of truth.
	TouchWallet(ctx context.Context, walletID uint, balance decimal.Decimal) error

	// Ledger entry operations (append-only: no update, no delete)
	AppendEntry(ctx context.Context, entry *models.LedgerEntry) error
	GetEntryByKey(ctx context.Context, idempotencyKey string) (*models.LedgerEntry, error)
	SumEntries(ctx context.Context, walletID uint) (decimal.Decimal, error)
	ListEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, error)
	CountEntries(ctx context.Context, walletID uint) (int64, error)

	// Idempotency replay records
	SaveIdempotencyRecord(ctx context.Context, record *models.IdempotencyRecord) error
	PurgeIdempotencyRecords(ctx context.Context, cutoff time.Time) (int64, error)

	// Transactional composition
	ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error
	// ExecuteSerializable runs fn under SERIALIZABLE isolation. A conflicting
	// commit surfaces as ErrSerializationFailure and must be retried.
	ExecuteSerializable(ctx context.Context, fn func(WalletRepository) error) error
}
