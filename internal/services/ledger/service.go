package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ledgerpay/internal/events"
	"ledgerpay/internal/models"
	eventmodels "ledgerpay/internal/models/events"
	"ledgerpay/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the transaction engine over the append-only ledger.
type Service interface {
	// Wallet lifecycle
	ProvisionWallet(ctx context.Context, userID uint, currency string) (*WalletDescriptor, error)

	// Monetary operations
	Credit(ctx context.Context, userID uint, req CreditRequest) (*TransactionResult, error)
	Debit(ctx context.Context, userID uint, req DebitRequest) (*TransactionResult, error)
	Transfer(ctx context.Context, fromUserID, toUserID uint, amount decimal.Decimal, idempotencyKey string) (*TransactionResult, error)

	// Read operations
	GetBalance(ctx context.Context, userID uint) (*BalanceResult, error)
	ListEntries(ctx context.Context, userID uint, page, pageSize int) (*EntryPage, error)

	// Maintenance
	PurgeIdempotencyRecords(ctx context.Context) (int64, error)
}

type service struct {
	repo     repositories.WalletRepository
	userRepo repositories.UserRepository
	cache    Cache
	pub      events.Publisher
	metrics  MetricsCollector
	config   Config
	now      func() time.Time
}

// NewService creates a new ledger service
func NewService(
	repo repositories.WalletRepository,
	userRepo repositories.UserRepository,
	cache Cache,
	pub events.Publisher,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("wallet repository is required")
	}
	if userRepo == nil {
		panic("user repository is required")
	}

	if config.DefaultCurrency == "" {
		config.DefaultCurrency = DefaultCurrency
	}
	if config.MaxConflictRetries == 0 {
		config.MaxConflictRetries = DefaultMaxConflictRetries
	}
	if config.ReplayCacheTTL == 0 {
		config.ReplayCacheTTL = DefaultReplayCacheTTL
	}
	if config.IdempotencyRetention == 0 {
		config.IdempotencyRetention = DefaultIdempotencyRetention
	}

	// Cache and publisher are optional, metrics defaults to no-op
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:     repo,
		userRepo: userRepo,
		cache:    cache,
		pub:      pub,
		metrics:  metrics,
		config:   config,
		now:      time.Now,
	}
}

// ProvisionWallet creates the user's wallet if it does not exist yet.
// Idempotent by the unique constraint on wallets.user_id: concurrent
// creators race on the constraint and the loser observes the winner's row.
func (s *service) ProvisionWallet(ctx context.Context, userID uint, currency string) (*WalletDescriptor, error) {
	currency, err := resolveCurrency(currency)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	existing, err := s.repo.GetWalletByUserID(ctx, userID)
	if err == nil {
		return existingWalletDescriptor(existing), nil
	}
	if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}

	wallet := &models.Wallet{
		UserID:   userID,
		Currency: currency,
	}
	if err := s.repo.CreateWallet(ctx, wallet); err != nil {
		if errors.Is(err, repositories.ErrDuplicateWallet) {
			// Lost the provisioning race; return the winner's wallet.
			winner, err := s.repo.GetWalletByUserID(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to load wallet after create race: %w", err)
			}
			return existingWalletDescriptor(winner), nil
		}
		return nil, err
	}

	log.Printf("wallet %d provisioned for user %d (%s)", wallet.ID, userID, currency)
	return &WalletDescriptor{
		WalletID:    wallet.ID,
		UserID:      userID,
		Currency:    currency,
		IsNewWallet: true,
		Message:     "Wallet created successfully",
	}, nil
}

func existingWalletDescriptor(wallet *models.Wallet) *WalletDescriptor {
	return &WalletDescriptor{
		WalletID:    wallet.ID,
		UserID:      wallet.UserID,
		Currency:    wallet.Currency,
		IsNewWallet: false,
		Message:     "Wallet already exists for this user",
	}
}

// Credit appends a CREDIT entry. Credits are purely additive and
// order-independent, so they run under the store's default isolation; only
// the idempotency key uniqueness must hold across concurrent attempts.
func (s *service) Credit(ctx context.Context, userID uint, req CreditRequest) (*TransactionResult, error) {
	start := s.now()
	defer func() { s.metrics.RecordOperationDuration("credit", time.Since(start)) }()

	amount, err := normalizeAmount(req.Amount)
	if err != nil {
		s.metrics.RecordError("credit", "validation")
		return nil, err
	}
	if err := validateIdempotencyKey(req.IdempotencyKey); err != nil {
		s.metrics.RecordError("credit", "validation")
		return nil, err
	}
	if err := validateSource(req.Source); err != nil {
		s.metrics.RecordError("credit", "validation")
		return nil, err
	}

	if existing, err := s.lookupEntry(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return s.duplicateResult(ctx, existing, "Duplicate credit request (idempotent)")
	}

	wallet, err := s.resolveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		WalletID:       wallet.ID,
		Kind:           models.EntryKindCredit,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
		Source:         req.Source,
		Reference:      req.Reference,
		Timestamp:      s.now(),
	}

	var newBalance decimal.Decimal
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return err
		}
		balance, err := tx.SumEntries(ctx, wallet.ID)
		if err != nil {
			return err
		}
		newBalance = balance
		return tx.TouchWallet(ctx, wallet.ID, balance)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateIdempotencyKey) {
			// Lost the insert race on the unique key: the other request's
			// entry is the operation's one durable effect.
			return s.replayAfterInsertRace(ctx, req.IdempotencyKey, "Duplicate credit request (idempotent)")
		}
		s.metrics.RecordError("credit", "store")
		return nil, err
	}

	result := s.successResult(entry, newBalance, "Credit successful")
	s.finalize(ctx, "credit", entry, result)
	return result, nil
}

// Debit appends a DEBIT entry after an atomic balance check. The wallet row
// is locked FOR UPDATE inside a SERIALIZABLE transaction so two concurrent
// debits can never both observe sufficient funds; losers surface as
// serialization failures and are retried a bounded number of times.
func (s *service) Debit(ctx context.Context, userID uint, req DebitRequest) (*TransactionResult, error) {
	start := s.now()
	defer func() { s.metrics.RecordOperationDuration("debit", time.Since(start)) }()

	amount, err := normalizeAmount(req.Amount)
	if err != nil {
		s.metrics.RecordError("debit", "validation")
		return nil, err
	}
	if err := validateIdempotencyKey(req.IdempotencyKey); err != nil {
		s.metrics.RecordError("debit", "validation")
		return nil, err
	}

	if existing, err := s.lookupEntry(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return s.duplicateResult(ctx, existing, "Duplicate debit request (idempotent)")
	}

	wallet, err := s.resolveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	var newBalance decimal.Decimal
	for attempt := 0; ; attempt++ {
		entry, newBalance, err = s.tryDebit(ctx, wallet.ID, amount, req)
		if err == nil {
			break
		}
		if errors.Is(err, repositories.ErrDuplicateIdempotencyKey) {
			return s.replayAfterInsertRace(ctx, req.IdempotencyKey, "Duplicate debit request (idempotent)")
		}
		if errors.Is(err, ErrInsufficientFunds) {
			s.metrics.RecordOperationResult("debit", "insufficient_funds")
			return nil, err
		}
		if !errors.Is(err, repositories.ErrSerializationFailure) {
			s.metrics.RecordError("debit", "store")
			return nil, err
		}
		if attempt >= s.config.MaxConflictRetries {
			s.metrics.RecordError("debit", "conflict_retry_exhausted")
			return nil, ErrConflictRetryExhausted
		}
		s.metrics.RecordOperationResult("debit", "conflict_retry")
		log.Printf("debit conflict on wallet %d, retrying (attempt %d)", wallet.ID, attempt+1)
	}

	result := s.successResult(entry, newBalance, "Debit successful")
	s.finalize(ctx, "debit", entry, result)
	return result, nil
}

// tryDebit runs one serializable check-then-append attempt. The balance is
// read and compared under the wallet row lock; insufficient funds aborts the
// transaction with no durable effect.
func (s *service) tryDebit(ctx context.Context, walletID uint, amount decimal.Decimal, req DebitRequest) (*models.LedgerEntry, decimal.Decimal, error) {
	var entry *models.LedgerEntry
	var newBalance decimal.Decimal
	err := s.repo.ExecuteSerializable(ctx, func(tx repositories.WalletRepository) error {
		wallet, err := tx.LockWalletByID(ctx, walletID)
		if err != nil {
			return err
		}
		balance, err := tx.SumEntries(ctx, wallet.ID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		entry = &models.LedgerEntry{
			WalletID:       wallet.ID,
			Kind:           models.EntryKindDebit,
			Amount:         amount,
			IdempotencyKey: req.IdempotencyKey,
			Source:         SourceDebit,
			Reference:      req.Reference,
			Timestamp:      s.now(),
		}
		if err := tx.AppendEntry(ctx, entry); err != nil {
			return err
		}
		newBalance, err = tx.SumEntries(ctx, wallet.ID)
		if err != nil {
			return err
		}
		return tx.TouchWallet(ctx, wallet.ID, newBalance)
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return entry, newBalance, nil
}

// Transfer moves funds between two users as a debit leg and a credit leg
// sharing a generated reference, appended in one serializable transaction.
// Idempotent via the debit leg's key; the credit leg key is derived from it.
func (s *service) Transfer(ctx context.Context, fromUserID, toUserID uint, amount decimal.Decimal, idempotencyKey string) (*TransactionResult, error) {
	start := s.now()
	defer func() { s.metrics.RecordOperationDuration("transfer", time.Since(start)) }()

	normalized, err := normalizeAmount(amount)
	if err != nil {
		s.metrics.RecordError("transfer", "validation")
		return nil, err
	}
	if err := validateIdempotencyKey(idempotencyKey); err != nil {
		s.metrics.RecordError("transfer", "validation")
		return nil, err
	}
	if fromUserID == toUserID {
		s.metrics.RecordError("transfer", "validation")
		return nil, ErrSelfTransfer
	}

	if existing, err := s.lookupEntry(ctx, idempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return s.duplicateResult(ctx, existing, "Duplicate transfer request (idempotent)")
	}

	fromWallet, err := s.resolveWallet(ctx, fromUserID)
	if err != nil {
		return nil, err
	}
	toWallet, err := s.resolveWallet(ctx, toUserID)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	var debitEntry, creditEntry *models.LedgerEntry
	var senderBalance decimal.Decimal

	for attempt := 0; ; attempt++ {
		debitEntry, creditEntry, senderBalance, err = s.tryTransfer(ctx, fromWallet.ID, toWallet.ID, normalized, idempotencyKey, reference)
		if err == nil {
			break
		}
		if errors.Is(err, repositories.ErrDuplicateIdempotencyKey) {
			return s.replayAfterInsertRace(ctx, idempotencyKey, "Duplicate transfer request (idempotent)")
		}
		if errors.Is(err, ErrInsufficientFunds) {
			s.metrics.RecordOperationResult("transfer", "insufficient_funds")
			return nil, err
		}
		if !errors.Is(err, repositories.ErrSerializationFailure) {
			s.metrics.RecordError("transfer", "store")
			return nil, err
		}
		if attempt >= s.config.MaxConflictRetries {
			s.metrics.RecordError("transfer", "conflict_retry_exhausted")
			return nil, ErrConflictRetryExhausted
		}
		s.metrics.RecordOperationResult("transfer", "conflict_retry")
	}

	result := s.successResult(debitEntry, senderBalance, "Transfer successful")
	s.finalize(ctx, "transfer", debitEntry, result)
	s.finalize(ctx, "transfer", creditEntry, nil)
	return result, nil
}

func (s *service) tryTransfer(ctx context.Context, fromWalletID, toWalletID uint, amount decimal.Decimal, idempotencyKey, reference string) (*models.LedgerEntry, *models.LedgerEntry, decimal.Decimal, error) {
	var debitEntry, creditEntry *models.LedgerEntry
	var senderBalance decimal.Decimal
	err := s.repo.ExecuteSerializable(ctx, func(tx repositories.WalletRepository) error {
		// Lock both rows in wallet-id order to avoid deadlocks between
		// opposing transfers.
		firstID, secondID := fromWalletID, toWalletID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}
		if _, err := tx.LockWalletByID(ctx, firstID); err != nil {
			return err
		}
		if _, err := tx.LockWalletByID(ctx, secondID); err != nil {
			return err
		}

		balance, err := tx.SumEntries(ctx, fromWalletID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		now := s.now()
		debitEntry = &models.LedgerEntry{
			WalletID:       fromWalletID,
			Kind:           models.EntryKindDebit,
			Amount:         amount,
			IdempotencyKey: idempotencyKey,
			Source:         SourceTransfer,
			Reference:      reference,
			Timestamp:      now,
		}
		creditEntry = &models.LedgerEntry{
			WalletID:       toWalletID,
			Kind:           models.EntryKindCredit,
			Amount:         amount,
			IdempotencyKey: idempotencyKey + ":credit",
			Source:         SourceTransfer,
			Reference:      reference,
			Timestamp:      now,
		}
		if err := tx.AppendEntry(ctx, debitEntry); err != nil {
			return err
		}
		if err := tx.AppendEntry(ctx, creditEntry); err != nil {
			return err
		}

		senderBalance, err = tx.SumEntries(ctx, fromWalletID)
		if err != nil {
			return err
		}
		if err := tx.TouchWallet(ctx, fromWalletID, senderBalance); err != nil {
			return err
		}
		receiverBalance, err := tx.SumEntries(ctx, toWalletID)
		if err != nil {
			return err
		}
		return tx.TouchWallet(ctx, toWalletID, receiverBalance)
	})
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	return debitEntry, creditEntry, senderBalance, nil
}

// GetBalance computes the wallet balance from its entries. The stored
// balance column is never consulted.
func (s *service) GetBalance(ctx context.Context, userID uint) (*BalanceResult, error) {
	wallet, err := s.resolveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance, err := s.repo.SumEntries(ctx, wallet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return &BalanceResult{
		WalletID: wallet.ID,
		Balance:  balance,
		Currency: wallet.Currency,
	}, nil
}

// ListEntries returns one page of the wallet's history, newest first.
// Ordering ties on timestamp are broken by id descending so pagination is
// stable under concurrent inserts.
func (s *service) ListEntries(ctx context.Context, userID uint, page, pageSize int) (*EntryPage, error) {
	if err := validatePagination(page, pageSize); err != nil {
		return nil, err
	}
	wallet, err := s.resolveWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountEntries(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, wallet.ID, pageSize, page*pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int(total / int64(pageSize))
	if total%int64(pageSize) > 0 {
		totalPages++
	}

	return &EntryPage{
		Entries:      entries,
		PageNumber:   page,
		PageSize:     pageSize,
		TotalEntries: total,
		TotalPages:   totalPages,
		HasMore:      int64(page+1)*int64(pageSize) < total,
	}, nil
}

// PurgeIdempotencyRecords drops replay records older than the retention
// window. Ledger entries are never touched.
func (s *service) PurgeIdempotencyRecords(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.config.IdempotencyRetention)
	return s.repo.PurgeIdempotencyRecords(ctx, cutoff)
}

// Helper methods

func (s *service) resolveWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

// lookupEntry is the idempotency guard: cache fast-path first, then the
// database. Entries are immutable, so a cached copy never goes stale.
func (s *service) lookupEntry(ctx context.Context, idempotencyKey string) (*models.LedgerEntry, error) {
	if s.cache != nil {
		var cached models.LedgerEntry
		key := s.cache.GenerateKey(entryCachePrefix, "key", idempotencyKey)
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	entry, err := s.repo.GetEntryByKey(ctx, idempotencyKey)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}
	return entry, nil
}

// duplicateResult builds the deterministic replay outcome: the original
// entry's identity and amount with the wallet's current balance.
func (s *service) duplicateResult(ctx context.Context, entry *models.LedgerEntry, message string) (*TransactionResult, error) {
	balance, err := s.repo.SumEntries(ctx, entry.WalletID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return &TransactionResult{
		Status:        StatusDuplicate,
		LedgerEntryID: entry.ID,
		WalletID:      entry.WalletID,
		Kind:          entry.Kind,
		Amount:        entry.Amount,
		NewBalance:    balance,
		Reference:     entry.Reference,
		Timestamp:     entry.Timestamp,
		Message:       message,
	}, nil
}

// replayAfterInsertRace converts a lost unique-key insert race into the
// winner's duplicate outcome.
func (s *service) replayAfterInsertRace(ctx context.Context, idempotencyKey, message string) (*TransactionResult, error) {
	winner, err := s.repo.GetEntryByKey(ctx, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry after insert race: %w", err)
	}
	return s.duplicateResult(ctx, winner, message)
}

func (s *service) successResult(entry *models.LedgerEntry, newBalance decimal.Decimal, message string) *TransactionResult {
	return &TransactionResult{
		Status:        StatusSuccess,
		LedgerEntryID: entry.ID,
		WalletID:      entry.WalletID,
		Kind:          entry.Kind,
		Amount:        entry.Amount,
		NewBalance:    newBalance,
		Reference:     entry.Reference,
		Timestamp:     entry.Timestamp,
		Message:       message,
	}
}

// finalize records the post-commit artifacts of a successful append: the
// durable replay record, the cache fast-path, the domain event, and metrics.
// None of these can fail the already-committed operation.
func (s *service) finalize(ctx context.Context, operation string, entry *models.LedgerEntry, result *TransactionResult) {
	record := &models.IdempotencyRecord{
		IdempotencyKey: entry.IdempotencyKey,
		LedgerEntryID:  entry.ID,
		ResponseStatus: 200,
		CreatedAt:      s.now(),
	}
	if result != nil {
		if body, err := json.Marshal(result); err == nil {
			record.ResponseBody = string(body)
		}
	}
	if err := s.repo.SaveIdempotencyRecord(ctx, record); err != nil {
		log.Printf("failed to save idempotency record for key %q: %v", entry.IdempotencyKey, err)
	}

	if s.cache != nil {
		key := s.cache.GenerateKey(entryCachePrefix, "key", entry.IdempotencyKey)
		if err := s.cache.SetWithTTL(ctx, key, entry, s.config.ReplayCacheTTL); err != nil {
			log.Printf("failed to cache ledger entry %d: %v", entry.ID, err)
		}
	}

	event := eventmodels.EntryRecorded{
		EventID:        uuid.NewString(),
		LedgerEntryID:  entry.ID,
		WalletID:       entry.WalletID,
		Kind:           entry.Kind,
		Amount:         entry.Amount,
		IdempotencyKey: entry.IdempotencyKey,
		Reference:      entry.Reference,
		OccurredAt:     entry.Timestamp,
	}
	if err := s.pub.Publish(eventmodels.TopicEntryRecorded, event); err != nil {
		log.Printf("failed to publish entry event for entry %d: %v", entry.ID, err)
	}

	s.metrics.RecordOperationResult(operation, string(StatusSuccess))
	s.metrics.RecordEntryAmount(entry.Kind, entry.Amount)
}
