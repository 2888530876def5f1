package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is the result of a paired debit+credit across two accounts,
// committed as a unit.
type Transfer struct {
	ID          string          `json:"id"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	FromEntry   LedgerEntry     `json:"from_entry"`
	ToEntry     LedgerEntry     `json:"to_entry"`
	CreatedAt   time.Time       `json:"created_at"`
}
