package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds one user's account. The Balance column is advisory: the
// authoritative balance is always the sum of the wallet's ledger entries.
type Wallet struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Balance   decimal.Decimal `gorm:"type:numeric(19,2);not null;default:0" json:"balance"`
	Version   uint64          `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Ensure the advisory balance starts at 0 no matter what the caller set
	w.Balance = decimal.Zero
	return nil
}
