package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is the direction of a ledger entry.
type Operation string

const (
	OperationCredit Operation = "CREDIT"
	OperationDebit  Operation = "DEBIT"
)

// LedgerEntry is the only persisted entity of the ledger. Entries are
// immutable and append-only; corrections are new compensating entries,
// never edits.
type LedgerEntry struct {
	// ID is a monotonically increasing sequence number assigned by the
	// store at insertion. An account's current balance is the
	// BalanceAfter of its entry with the largest ID, not the largest
	// CreatedAt, so same-timestamp entries stay unambiguous.
	ID           int64           `json:"id"`
	AccountID    string          `json:"account_id"`
	Operation    Operation       `json:"operation"`
	Amount       decimal.Decimal `json:"amount"`        // strictly positive
	BalanceAfter decimal.Decimal `json:"balance_after"` // snapshot taken at write time
	Reference    string          `json:"reference"`     // free-text audit label
	CreatedAt    time.Time       `json:"created_at"`
}
