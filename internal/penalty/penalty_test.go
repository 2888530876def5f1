package penalty_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhq/coin-ledger/internal/ledger"
	"github.com/communityhq/coin-ledger/internal/models"
	"github.com/communityhq/coin-ledger/internal/penalty"
	"github.com/communityhq/coin-ledger/internal/storage/memory"
)

type recorderSpy struct {
	accountID string
	points    int
	calls     int
}

func (r *recorderSpy) AddPenaltyPoints(ctx context.Context, accountID string, points int) error {
	r.accountID = accountID
	r.points = points
	r.calls++
	return nil
}

func newTestEngine(t *testing.T, seed int64) (*penalty.Engine, *ledger.Ledger, *recorderSpy) {
	t.Helper()
	l := ledger.NewLedger(memory.NewMemoryLedgerStore(), nil, nil)
	if seed > 0 {
		_, err := l.Credit(context.Background(), "A", decimal.NewFromInt(seed), "seed")
		require.NoError(t, err)
	}
	spy := &recorderSpy{}
	return penalty.NewEngine(l, spy), l, spy
}

func TestPenaltyFivePointsAtSeventy(t *testing.T) {
	ctx := context.Background()
	engine, l, spy := newTestEngine(t, 70)

	// floor(100/50) = 2 coins cut: 70 -> 68.
	result, err := engine.ApplyInfractionPenalty(ctx, "A", 5, "spam")
	require.NoError(t, err)

	assert.Equal(t, 5, spy.points)
	assert.Equal(t, "A", spy.accountID)
	assert.True(t, result.Deducted.Equal(decimal.NewFromInt(2)))
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(68)))

	require.NotNil(t, result.Entry)
	assert.Equal(t, models.OperationDebit, result.Entry.Operation)
	assert.Equal(t, "Infraction penalty - spam", result.Entry.Reference)

	balance, err := l.GetBalance(ctx, "A")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(68)))
}

func TestPenaltyFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	engine, l, _ := newTestEngine(t, 3)

	// One point cuts floor(100/10) = 10 coins, more than the account
	// holds: the balance bottoms out at zero.
	result, err := engine.ApplyInfractionPenalty(ctx, "A", 1, "flood")
	require.NoError(t, err)

	assert.True(t, result.Deducted.Equal(decimal.NewFromInt(3)))
	assert.True(t, result.NewBalance.IsZero())

	balance, err := l.GetBalance(ctx, "A")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestPenaltyOnEmptyAccountWritesNothing(t *testing.T) {
	ctx := context.Background()
	engine, l, spy := newTestEngine(t, 0)

	result, err := engine.ApplyInfractionPenalty(ctx, "A", 3, "spam")
	require.NoError(t, err)

	// Points still land with the directory even when no coins move.
	assert.Equal(t, 1, spy.calls)
	assert.Nil(t, result.Entry)
	assert.True(t, result.Deducted.IsZero())

	balance, err := l.GetBalance(ctx, "A")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestPenaltyHighSeverityWipesKeepNothing(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t, 200)

	// Eleven points: floor(100/110) = 0, the whole balance goes.
	result, err := engine.ApplyInfractionPenalty(ctx, "A", 11, "ban evasion")
	require.NoError(t, err)
	assert.True(t, result.Deducted.Equal(decimal.NewFromInt(200)))
	assert.True(t, result.NewBalance.IsZero())
}

func TestPenaltyRejectsZeroSeverity(t *testing.T) {
	ctx := context.Background()
	engine, l, spy := newTestEngine(t, 70)

	_, err := engine.ApplyInfractionPenalty(ctx, "A", 0, "typo")
	require.ErrorIs(t, err, penalty.ErrZeroSeverity)
	_, err = engine.ApplyInfractionPenalty(ctx, "A", -2, "typo")
	require.ErrorIs(t, err, penalty.ErrZeroSeverity)

	assert.Zero(t, spy.calls)
	balance, err := l.GetBalance(ctx, "A")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)))
}
