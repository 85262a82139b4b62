package models

import "time"

// IdempotencyRecord maps an idempotency key to the ledger entry it produced
// and the response that was returned the first time, so duplicate callers get
// an identical replay without recomputation.
//
// Records are purged after a retention window; purging only drops the replay
// cache, never the ledger entry itself.
type IdempotencyRecord struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	IdempotencyKey string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"idempotency_key"`
	LedgerEntryID  uint      `gorm:"not null" json:"ledger_entry_id"`
	ResponseStatus int       `gorm:"not null" json:"response_status"`
	ResponseBody   string    `gorm:"type:text" json:"response_body"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
