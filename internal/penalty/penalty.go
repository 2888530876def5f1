// Package penalty converts infraction severity points into a coin
// deduction on the offender's ledger balance. The point counter itself
// belongs to the account directory; this engine only records the
// points through it and applies the coupled balance cut.
package penalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/communityhq/coin-ledger/internal/interfaces"
	"github.com/communityhq/coin-ledger/internal/models"
)

// ErrZeroSeverity rejects infractions with no positive severity before
// they reach the penalty formula, which divides by severityPoints*10.
// The formula's output for positive severities is load-bearing for
// existing balances and is kept exactly as is.
var ErrZeroSeverity = errors.New("penalty: severity points must be positive")

// coordinator is the slice of the transaction coordinator the engine
// needs.
type coordinator interface {
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, accountID string, target decimal.Decimal, reference string) (*models.LedgerEntry, error)
}

type Engine struct {
	coord  coordinator
	points interfaces.PenaltyPointRecorder
}

func NewEngine(coord coordinator, points interfaces.PenaltyPointRecorder) *Engine {
	return &Engine{coord: coord, points: points}
}

// Result reports what an infraction cost the account.
type Result struct {
	PointsAdded int                 `json:"points_added"`
	Deducted    decimal.Decimal     `json:"deducted"`
	NewBalance  decimal.Decimal     `json:"new_balance"`
	Entry       *models.LedgerEntry `json:"entry,omitempty"` // nil when no coins were lost
}

// ApplyInfractionPenalty records severityPoints with the account
// directory and cuts the balance down to
// max(0, balance - floor(100/(severityPoints*10))). An account already
// at zero stays at zero and no entry is written.
func (e *Engine) ApplyInfractionPenalty(ctx context.Context, accountID string, severityPoints int, reason string) (Result, error) {
	if severityPoints <= 0 {
		return Result{}, ErrZeroSeverity
	}

	if err := e.points.AddPenaltyPoints(ctx, accountID, severityPoints); err != nil {
		return Result{}, fmt.Errorf("record penalty points for %s: %w", accountID, err)
	}

	balance, err := e.coord.GetBalance(ctx, accountID)
	if err != nil {
		return Result{}, err
	}

	// Integer division floors for positive operands, matching the
	// floor(100 / (points * 10)) the economy was built on.
	cut := decimal.NewFromInt(100 / (int64(severityPoints) * 10))
	target := balance.Sub(cut)
	if target.Sign() < 0 {
		target = decimal.Zero
	}

	deducted := balance.Sub(target)
	result := Result{
		PointsAdded: severityPoints,
		Deducted:    deducted,
		NewBalance:  balance,
	}
	if deducted.Sign() <= 0 {
		return result, nil
	}

	reference := fmt.Sprintf("Infraction penalty - %s", reason)
	entry, err := e.coord.SetBalance(ctx, accountID, target, reference)
	if err != nil {
		return Result{}, err
	}
	result.Entry = entry
	result.NewBalance = target
	return result, nil
}

// NopRecorder satisfies PenaltyPointRecorder when no account directory
// is attached, e.g. in local runs.
type NopRecorder struct{}

func (NopRecorder) AddPenaltyPoints(ctx context.Context, accountID string, points int) error {
	return nil
}

var _ interfaces.PenaltyPointRecorder = NopRecorder{}
