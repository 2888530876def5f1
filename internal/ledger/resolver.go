package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/communityhq/coin-ledger/internal/interfaces"
)

// Resolver derives an account's current balance from the store. The
// balance is never stored as mutable state: it is the BalanceAfter
// snapshot of the account's latest committed entry, or zero for an
// account with no entries.
type Resolver struct {
	store interfaces.LedgerStore
}

func NewResolver(store interfaces.LedgerStore) *Resolver {
	return &Resolver{store: store}
}

// Balance is a pure read and reflects committed entries only.
func (r *Resolver) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	latest, err := r.store.Latest(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve balance for %s: %w", accountID, err)
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.BalanceAfter, nil
}
