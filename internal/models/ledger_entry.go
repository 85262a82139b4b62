package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry kinds. Amount is always positive; the kind carries the direction.
const (
	EntryKindCredit = "CREDIT"
	EntryKindDebit  = "DEBIT"
)

// LedgerEntry is the immutable record of one monetary movement. Entries are
// append-only: no field is ever updated or deleted after creation. Corrections
// are modeled as new entries, never as edits.
type LedgerEntry struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	WalletID       uint            `gorm:"not null;index:idx_wallet_timestamp,priority:1" json:"wallet_id"`
	Kind           string          `gorm:"type:varchar(10);not null" json:"kind"`
	Amount         decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	IdempotencyKey string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"idempotency_key"`
	Source         string          `gorm:"type:varchar(50);not null" json:"source"`
	Reference      string          `gorm:"type:varchar(255)" json:"reference,omitempty"`
	Timestamp      time.Time       `gorm:"not null;index:idx_wallet_timestamp,priority:2" json:"timestamp"`
}

// Signed returns the entry's contribution to the wallet balance:
// positive for credits, negative for debits.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Kind == EntryKindDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
