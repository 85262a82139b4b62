package ledger

import "time"

// Entry sources recorded for engine-originated operations
const (
	SourceDebit    = "DEBIT"
	SourceTransfer = "TRANSFER"
)

// Default configuration values
const (
	DefaultCurrency             = "USD"
	DefaultMaxConflictRetries   = 3
	DefaultReplayCacheTTL       = 24 * time.Hour
	DefaultIdempotencyRetention = 24 * time.Hour
)

// Pagination bounds for ledger history queries
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// Cache key namespaces
const (
	entryCachePrefix = "entry"
)
