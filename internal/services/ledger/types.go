package ledger

import (
	"context"
	"time"

	"ledgerpay/internal/models"

	"github.com/shopspring/decimal"
)

// Status tags the outcome of a credit/debit. DUPLICATE is not a failure: it
// is a deterministic replay of the original operation's effect.
type Status string

const (
	StatusSuccess   Status = "SUCCESS"
	StatusDuplicate Status = "DUPLICATE"
)

// WalletDescriptor is the result of wallet provisioning.
type WalletDescriptor struct {
	WalletID    uint   `json:"wallet_id"`
	UserID      uint   `json:"user_id"`
	Currency    string `json:"currency"`
	IsNewWallet bool   `json:"is_new_wallet"`
	Message     string `json:"message"`
}

// CreditRequest carries the caller-supplied fields of a credit operation.
type CreditRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key"`
	Source         string          `json:"source"`
	Reference      string          `json:"reference,omitempty"`
}

// DebitRequest carries the caller-supplied fields of a debit operation.
type DebitRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key"`
	Reference      string          `json:"reference,omitempty"`
}

// TransactionResult is the outcome of a credit, debit or transfer. On a
// DUPLICATE the entry fields describe the original entry while NewBalance is
// the wallet's current (not entry-time) balance.
type TransactionResult struct {
	Status        Status          `json:"status"`
	LedgerEntryID uint            `json:"ledger_entry_id"`
	WalletID      uint            `json:"wallet_id"`
	Kind          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	Reference     string          `json:"reference,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Message       string          `json:"message"`
}

// BalanceResult reports a wallet's derived balance.
type BalanceResult struct {
	WalletID uint            `json:"wallet_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// EntryPage is one page of a wallet's ledger history, ordered by
// (timestamp, id) descending.
type EntryPage struct {
	Entries      []models.LedgerEntry `json:"entries"`
	PageNumber   int                  `json:"page_number"`
	PageSize     int                  `json:"page_size"`
	TotalEntries int64                `json:"total_entries"`
	TotalPages   int                  `json:"total_pages"`
	HasMore      bool                 `json:"has_more"`
}

// Config holds configuration for the ledger engine
type Config struct {
	DefaultCurrency      string
	MaxConflictRetries   int
	ReplayCacheTTL       time.Duration
	IdempotencyRetention time.Duration
}

// Cache is the replay fast-path consulted before hitting the database for
// idempotency lookups. Implemented by the redis cache service.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GenerateKey(entityType, keyType string, value interface{}) string
}
