package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopicEntryRecorded is published after every successful credit or debit.
const TopicEntryRecorded = "ledger.entry.recorded"

type EntryRecorded struct {
	EventID        string          `json:"event_id"`
	LedgerEntryID  uint            `json:"ledger_entry_id"`
	WalletID       uint            `json:"wallet_id"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key"`
	Reference      string          `json:"reference,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
