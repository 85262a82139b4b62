/*
Package ledger implements the wallet transaction engine over an append-only
ledger.

A wallet's balance is never stored as ground truth: it is derived on demand
as the sum of the wallet's CREDIT entries minus its DEBIT entries. The
wallets.balance column is an advisory cache refreshed alongside writes and
reconstructible from the entry log at any time.

The engine handles:
- Idempotent wallet provisioning (one wallet per user)
- Credit/debit operations guarded by idempotency keys
- Funds transfers (debit leg + credit leg sharing a reference)
- Derived balance reads and paginated ledger history
- Idempotency replay-record retention

Concurrency model:
- Credits run under default isolation; they are purely additive and
  order-independent for balance correctness.
- Debits run under SERIALIZABLE isolation with the wallet row locked FOR
  UPDATE across the read-balance -> append-entry window, so two concurrent
  debits can never both observe sufficient funds. Serialization losers are
  retried internally a bounded number of times, then surfaced as
  ErrConflictRetryExhausted.
- Duplicate detection is a two-tier guard: an application-level lookup
  (cache, then database) short-circuits the common case, but the unique
  index on ledger_entries.idempotency_key is what actually guarantees
  at-most-one durable effect; an insert losing that race is converted into
  the DUPLICATE outcome.

Usage:

	svc := ledger.NewService(walletRepo, userRepo, cache, publisher, ledger.Config{}, nil)

	desc, err := svc.ProvisionWallet(ctx, userID, "USD")

	res, err := svc.Credit(ctx, userID, ledger.CreditRequest{
	    Amount:         decimal.RequireFromString("50.00"),
	    IdempotencyKey: "k1",
	    Source:         "DEPOSIT",
	})

	res, err = svc.Debit(ctx, userID, ledger.DebitRequest{
	    Amount:         decimal.RequireFromString("20.00"),
	    IdempotencyKey: "k2",
	})
*/
package ledger
