// Package events holds the payloads published after a ledger write
// commits. They are emitted best-effort and never affect the outcome
// of the write itself.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicEntryRecorded     = "ledger.entry_recorded"
	TopicTransferCompleted = "ledger.transfer_completed"
)

type EntryRecorded struct {
	EntryID      int64           `json:"entry_id"`
	AccountID    string          `json:"account_id"`
	Operation    string          `json:"operation"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reference    string          `json:"reference"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type TransferCompleted struct {
	TransferID  string          `json:"transfer_id"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
