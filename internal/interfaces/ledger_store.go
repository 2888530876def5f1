package interfaces

import (
	"context"

	"github.com/communityhq/coin-ledger/internal/models"
)

// LedgerStore is the durable append-only log of ledger entries. The
// steady-state API has no update or delete; corrections are expressed
// as new compensating entries.
type LedgerStore interface {
	// Append persists one entry and returns it with its assigned ID.
	Append(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error)

	// AppendPair persists a debit and a credit in one storage
	// transaction: both entries are committed or neither is. The debit
	// is assigned the lower ID.
	AppendPair(ctx context.Context, debit, credit models.LedgerEntry) (models.LedgerEntry, models.LedgerEntry, error)

	// Latest returns the entry with the maximum ID for the account, or
	// nil if the account has no entries.
	Latest(ctx context.Context, accountID string) (*models.LedgerEntry, error)

	// LatestPerAccount returns, for every account with at least one
	// entry, its latest entry, ordered by BalanceAfter descending with
	// ties broken by AccountID ascending, truncated to limit.
	LatestPerAccount(ctx context.Context, limit int) ([]models.LedgerEntry, error)
}
