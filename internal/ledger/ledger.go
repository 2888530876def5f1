package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/communityhq/coin-ledger/internal/interfaces"
	"github.com/communityhq/coin-ledger/internal/models"
	"github.com/communityhq/coin-ledger/internal/models/events"
)

// Ledger coordinates all writes to the append-only entry log. The
// read-balance, invariant-check, append sequence runs under a
// per-account lock, so two concurrent operations on the same account
// can never both base their BalanceAfter on the same stale balance.
type Ledger struct {
	store    interfaces.LedgerStore
	resolver *Resolver
	events   interfaces.EventPublisher // optional, best-effort
	log      *zap.Logger

	muMap map[string]*sync.Mutex // one lock per account
	mapMu sync.Mutex             // protects muMap itself
}

// NewLedger wires the coordinator over a store. The publisher may be
// nil; events are then skipped. A nil logger falls back to a no-op.
func NewLedger(store interfaces.LedgerStore, publisher interfaces.EventPublisher, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		store:    store,
		resolver: NewResolver(store),
		events:   publisher,
		log:      log,
		muMap:    make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(accountID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// GetBalance returns the account's current balance, zero if the
// account has no entries.
func (l *Ledger) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return l.resolver.Balance(ctx, accountID)
}

// Apply validates and appends one entry for the account. It returns
// ErrInvalidAmount for amount <= 0 and ErrInsufficientFunds for a
// debit exceeding the current balance; in both cases nothing is
// written.
func (l *Ledger) Apply(ctx context.Context, accountID string, op models.Operation, amount decimal.Decimal, reference string) (models.LedgerEntry, error) {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	return l.applyLocked(ctx, accountID, op, amount, reference)
}

// applyLocked is Apply without lock acquisition; the caller must hold
// the account's lock.
func (l *Ledger) applyLocked(ctx context.Context, accountID string, op models.Operation, amount decimal.Decimal, reference string) (models.LedgerEntry, error) {
	if amount.Sign() <= 0 {
		return models.LedgerEntry{}, ErrInvalidAmount
	}

	balance, err := l.resolver.Balance(ctx, accountID)
	if err != nil {
		return models.LedgerEntry{}, err
	}

	var newBalance decimal.Decimal
	switch op {
	case models.OperationCredit:
		newBalance = balance.Add(amount)
	case models.OperationDebit:
		if amount.GreaterThan(balance) {
			return models.LedgerEntry{}, ErrInsufficientFunds
		}
		newBalance = balance.Sub(amount)
	default:
		return models.LedgerEntry{}, fmt.Errorf("ledger: unknown operation %q", op)
	}

	entry := models.LedgerEntry{
		AccountID:    accountID,
		Operation:    op,
		Amount:       amount,
		BalanceAfter: newBalance,
		Reference:    reference,
		CreatedAt:    time.Now().UTC(),
	}

	stored, err := l.store.Append(ctx, entry)
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("append entry for %s: %w", accountID, err)
	}

	l.publishEntry(stored)
	return stored, nil
}

// Credit adds amount to the account's balance.
func (l *Ledger) Credit(ctx context.Context, accountID string, amount decimal.Decimal, reference string) (models.LedgerEntry, error) {
	return l.Apply(ctx, accountID, models.OperationCredit, amount, reference)
}

// Debit subtracts amount from the account's balance, failing with
// ErrInsufficientFunds if the balance would go negative.
func (l *Ledger) Debit(ctx context.Context, accountID string, amount decimal.Decimal, reference string) (models.LedgerEntry, error) {
	return l.Apply(ctx, accountID, models.OperationDebit, amount, reference)
}

// SetBalance moves the account to target with a single compensating
// entry. When the balance already equals target it succeeds without
// writing anything and returns a nil entry.
func (l *Ledger) SetBalance(ctx context.Context, accountID string, target decimal.Decimal, reference string) (*models.LedgerEntry, error) {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	entry, wrote, err := l.adjustLocked(ctx, accountID, target, reference)
	if err != nil || !wrote {
		return nil, err
	}
	return &entry, nil
}

// AdjustToTarget is SetBalance with one behavioral difference: a
// target equal to the current balance fails with ErrNoopAdjustment
// instead of succeeding silently. Both entry points exist upstream and
// unifying them would change caller-visible behavior, so the
// divergence is kept.
func (l *Ledger) AdjustToTarget(ctx context.Context, accountID string, target decimal.Decimal, reference string) (models.LedgerEntry, error) {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	entry, wrote, err := l.adjustLocked(ctx, accountID, target, reference)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if !wrote {
		return models.LedgerEntry{}, ErrNoopAdjustment
	}
	return entry, nil
}

// adjustLocked writes the single CREDIT or DEBIT that moves the
// account to target. wrote reports whether an entry was appended; a
// zero delta appends nothing.
func (l *Ledger) adjustLocked(ctx context.Context, accountID string, target decimal.Decimal, reference string) (models.LedgerEntry, bool, error) {
	balance, err := l.resolver.Balance(ctx, accountID)
	if err != nil {
		return models.LedgerEntry{}, false, err
	}

	delta := target.Sub(balance)
	if delta.IsZero() {
		return models.LedgerEntry{}, false, nil
	}

	op := models.OperationCredit
	if delta.Sign() < 0 {
		op = models.OperationDebit
	}
	entry, err := l.applyLocked(ctx, accountID, op, delta.Abs(), reference)
	if err != nil {
		return models.LedgerEntry{}, false, err
	}
	return entry, true, nil
}

// Transfer debits fromID and credits toID as one unit: either both
// entries commit or neither does. Locks are taken in ascending
// account-ID order so two opposite-direction transfers cannot
// deadlock.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (models.Transfer, error) {
	if fromID == toID {
		return models.Transfer{}, ErrSameAccountTransfer
	}
	if amount.Sign() <= 0 {
		return models.Transfer{}, ErrInvalidAmount
	}

	fromMu := l.accountLock(fromID)
	toMu := l.accountLock(toID)

	if fromID < toID {
		fromMu.Lock()
		toMu.Lock()
	} else {
		toMu.Lock()
		fromMu.Lock()
	}
	defer fromMu.Unlock()
	defer toMu.Unlock()

	fromBalance, err := l.resolver.Balance(ctx, fromID)
	if err != nil {
		return models.Transfer{}, err
	}
	if amount.GreaterThan(fromBalance) {
		return models.Transfer{}, ErrInsufficientFunds
	}

	toBalance, err := l.resolver.Balance(ctx, toID)
	if err != nil {
		return models.Transfer{}, err
	}

	transferID := uuid.New().String()
	now := time.Now().UTC()
	reference := fmt.Sprintf("Transfer %s", transferID)

	debit := models.LedgerEntry{
		AccountID:    fromID,
		Operation:    models.OperationDebit,
		Amount:       amount,
		BalanceAfter: fromBalance.Sub(amount),
		Reference:    reference,
		CreatedAt:    now,
	}
	credit := models.LedgerEntry{
		AccountID:    toID,
		Operation:    models.OperationCredit,
		Amount:       amount,
		BalanceAfter: toBalance.Add(amount),
		Reference:    reference,
		CreatedAt:    now,
	}

	storedDebit, storedCredit, err := l.store.AppendPair(ctx, debit, credit)
	if err != nil {
		return models.Transfer{}, fmt.Errorf("transfer %s -> %s: %w", fromID, toID, err)
	}

	l.publish(events.TopicTransferCompleted, events.TransferCompleted{
		TransferID:  transferID,
		FromAccount: fromID,
		ToAccount:   toID,
		Amount:      amount,
		OccurredAt:  now,
	})

	return models.Transfer{
		ID:          transferID,
		FromAccount: fromID,
		ToAccount:   toID,
		Amount:      amount,
		FromEntry:   storedDebit,
		ToEntry:     storedCredit,
		CreatedAt:   now,
	}, nil
}

func (l *Ledger) publishEntry(entry models.LedgerEntry) {
	l.publish(events.TopicEntryRecorded, events.EntryRecorded{
		EntryID:      entry.ID,
		AccountID:    entry.AccountID,
		Operation:    string(entry.Operation),
		Amount:       entry.Amount,
		BalanceAfter: entry.BalanceAfter,
		Reference:    entry.Reference,
		OccurredAt:   entry.CreatedAt,
	})
}

// publish is best-effort: a broker failure is logged and never fails
// the committed write.
func (l *Ledger) publish(topic string, event any) {
	if l.events == nil {
		return
	}
	if err := l.events.Publish(topic, event); err != nil {
		l.log.Warn("publish event failed",
			zap.String("topic", topic),
			zap.Error(err))
	}
}
