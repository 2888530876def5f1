package interfaces

import "context"

// PenaltyPointRecorder is implemented by the account directory
// collaborator, which owns the per-account penalty-point counter. The
// ledger only triggers the coupled coin deduction.
type PenaltyPointRecorder interface {
	AddPenaltyPoints(ctx context.Context, accountID string, points int) error
}
