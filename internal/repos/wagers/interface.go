package wagers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

var (
	ErrWagerNotFound  = fmt.Errorf("wager %w", model.ErrNotFound)
	ErrDuplicateWager = fmt.Errorf("one ticket per round: %w", model.ErrDuplicateWager)
	ErrWagerSettled   = fmt.Errorf("wager %w", model.ErrAlreadySettled)
)

// Result is the terminal state written once per wager.
type Result struct {
	Status         model.WagerStatus
	Payout         int64
	PayoutCurrency model.Currency
	Tier           string
}

type Wagers interface {
	Insert(tx *sql.Tx, w model.Wager) (model.Wager, error)
	Get(ctx context.Context, id uuid.UUID) (model.Wager, error)
	ListByRound(ctx context.Context, roundID uuid.UUID) ([]model.Wager, error)
	// ListByUser returns the wagers of one user in a round, any status.
	ListByUser(tx *sql.Tx, roundID uuid.UUID, userID uint64) ([]model.Wager, error)
	CountByRound(tx *sql.Tx, roundID uuid.UUID) (int, error)
	// ListPending locks and returns every pending wager of the round.
	ListPending(tx *sql.Tx, roundID uuid.UUID) ([]model.Wager, error)
	// MarkSettled moves a pending wager to its terminal state. A wager that is
	// no longer pending yields ErrWagerSettled.
	MarkSettled(tx *sql.Tx, id uuid.UUID, res Result) error
}
