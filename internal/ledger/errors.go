package ledger

import "errors"

// Validation and invariant failures are returned as sentinel errors so
// callers can match them with errors.Is and translate them into
// user-facing messages. Storage failures are wrapped and surfaced
// as-is; they are retryable by the caller, never by the ledger itself.
var (
	// ErrInvalidAmount rejects zero or negative amounts.
	ErrInvalidAmount = errors.New("ledger: amount must be positive")

	// ErrInsufficientFunds rejects a debit larger than the current
	// balance; nothing is written.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrSameAccountTransfer rejects a transfer where both sides are
	// the same account.
	ErrSameAccountTransfer = errors.New("ledger: cannot transfer to the same account")

	// ErrNoopAdjustment is returned by AdjustToTarget when the target
	// equals the current balance. SetBalance treats the same condition
	// as a silent no-op; the divergence is intentional.
	ErrNoopAdjustment = errors.New("ledger: balance already at target")
)
