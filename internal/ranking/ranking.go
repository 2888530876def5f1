// Package ranking answers "top N accounts by balance" straight from
// the append-only log, with no separate mutable index to keep in sync.
package ranking

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/communityhq/coin-ledger/internal/interfaces"
)

// Standing is one row of the ranking: an account and its current
// balance at query time.
type Standing struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type Index struct {
	store interfaces.LedgerStore
}

func New(store interfaces.LedgerStore) *Index {
	return &Index{store: store}
}

// TopByBalance returns at most n standings, ordered by balance
// descending with ties broken by account ID ascending. The result is
// eventually consistent with writes landing during the query, but an
// account that does appear always carries its latest balance, never a
// superseded one.
func (ix *Index) TopByBalance(ctx context.Context, n int) ([]Standing, error) {
	if n <= 0 {
		return []Standing{}, nil
	}

	entries, err := ix.store.LatestPerAccount(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("rank by balance: %w", err)
	}

	standings := make([]Standing, 0, len(entries))
	for _, e := range entries {
		standings = append(standings, Standing{
			AccountID: e.AccountID,
			Balance:   e.BalanceAfter,
		})
	}
	return standings, nil
}
