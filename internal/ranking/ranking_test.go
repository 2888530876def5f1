package ranking_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhq/coin-ledger/internal/ledger"
	"github.com/communityhq/coin-ledger/internal/ranking"
	"github.com/communityhq/coin-ledger/internal/storage/memory"
)

func seedLedger(t *testing.T) (*ledger.Ledger, *ranking.Index) {
	t.Helper()
	store := memory.NewMemoryLedgerStore()
	l := ledger.NewLedger(store, nil, nil)
	ix := ranking.New(store)

	ctx := context.Background()
	for account, amount := range map[string]int64{
		"alice": 300,
		"bob":   150,
		"carol": 500,
		"dave":  150,
	} {
		_, err := l.Credit(ctx, account, decimal.NewFromInt(amount), "seed")
		require.NoError(t, err)
	}
	return l, ix
}

func TestTopByBalanceOrdersDescending(t *testing.T) {
	_, ix := seedLedger(t)

	standings, err := ix.TopByBalance(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	assert.Equal(t, "carol", standings[0].AccountID)
	assert.Equal(t, "alice", standings[1].AccountID)
	// bob and dave tie at 150; ties resolve by account ID ascending.
	assert.Equal(t, "bob", standings[2].AccountID)
	assert.Equal(t, "dave", standings[3].AccountID)
}

func TestTopByBalanceTruncatesToLimit(t *testing.T) {
	_, ix := seedLedger(t)

	standings, err := ix.TopByBalance(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, "carol", standings[0].AccountID)
	assert.Equal(t, "alice", standings[1].AccountID)
}

func TestTopByBalanceZeroLimit(t *testing.T) {
	_, ix := seedLedger(t)

	standings, err := ix.TopByBalance(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, standings)
}

func TestTopByBalanceNeverReturnsSupersededEntries(t *testing.T) {
	ctx := context.Background()
	l, ix := seedLedger(t)

	// carol drops from first place to last; only her latest entry may
	// be reflected.
	_, err := l.Debit(ctx, "carol", decimal.NewFromInt(499), "spend")
	require.NoError(t, err)

	standings, err := ix.TopByBalance(ctx, 10)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	assert.Equal(t, "alice", standings[0].AccountID)
	assert.Equal(t, "carol", standings[3].AccountID)
	assert.True(t, standings[3].Balance.Equal(decimal.NewFromInt(1)))

	// Every returned balance matches a live GetBalance read.
	for _, s := range standings {
		balance, err := l.GetBalance(ctx, s.AccountID)
		require.NoError(t, err)
		assert.True(t, s.Balance.Equal(balance), "stale balance for %s", s.AccountID)
	}
}
