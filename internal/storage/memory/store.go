// Package memory implements the ledger store as an in-process slice.
// It backs the test suites and local runs without a database; the
// contract (assigned sequence IDs, atomic pairs, latest-per-account
// ordering) matches the postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/communityhq/coin-ledger/internal/interfaces"
	"github.com/communityhq/coin-ledger/internal/models"
)

type MemoryLedgerStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []models.LedgerEntry
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		nextID:  1,
		entries: make([]models.LedgerEntry, 0),
	}
}

func (m *MemoryLedgerStore) Append(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.appendLocked(entry), nil
}

func (m *MemoryLedgerStore) AppendPair(ctx context.Context, debit, credit models.LedgerEntry) (models.LedgerEntry, models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Both appends happen under one lock hold, so no reader can observe
	// the debit without the credit.
	storedDebit := m.appendLocked(debit)
	storedCredit := m.appendLocked(credit)
	return storedDebit, storedCredit, nil
}

func (m *MemoryLedgerStore) appendLocked(entry models.LedgerEntry) models.LedgerEntry {
	entry.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, entry)
	return entry
}

func (m *MemoryLedgerStore) Latest(ctx context.Context, accountID string) (*models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Entries are stored in ID order; scan backwards for the account's
	// highest-ID entry.
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].AccountID == accountID {
			entry := m.entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}

func (m *MemoryLedgerStore) LatestPerAccount(ctx context.Context, limit int) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latest := make(map[string]models.LedgerEntry)
	for _, e := range m.entries {
		if cur, ok := latest[e.AccountID]; !ok || e.ID > cur.ID {
			latest[e.AccountID] = e
		}
	}

	result := make([]models.LedgerEntry, 0, len(latest))
	for _, e := range latest {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].BalanceAfter.Equal(result[j].BalanceAfter) {
			return result[i].BalanceAfter.GreaterThan(result[j].BalanceAfter)
		}
		return result[i].AccountID < result[j].AccountID
	})

	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Entries returns a copy of the full log in ID order, for tests and
// audit views.
func (m *MemoryLedgerStore) Entries() []models.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.LedgerEntry, len(m.entries))
	copy(copied, m.entries)
	return copied
}

var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
