package rounds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrRoundNotFound = fmt.Errorf("round %w", model.ErrNotFound)
	// ErrStatusChanged means a conditional status write lost against another
	// writer.
	ErrStatusChanged        = fmt.Errorf("round status changed: %w", model.ErrConcurrentModification)
	ErrRematchExists        = errors.New("rematch round already exists")
	ErrNumberAlreadyCalled  = fmt.Errorf("number already called: %w", model.ErrValidation)
	ErrMoveAlreadySubmitted = fmt.Errorf("move already submitted: %w", model.ErrValidation)
)

type ListFilter struct {
	GameType model.GameType
	Status   model.RoundStatus
	Limit    int
}

type Rounds interface {
	Insert(tx *sql.Tx, rnd model.Round) (model.Round, error)
	Get(ctx context.Context, id uuid.UUID) (model.Round, error)
	List(ctx context.Context, f ListFilter) ([]model.Round, error)
	LockForUpdate(tx *sql.Tx, id uuid.UUID) (model.Round, error)
	// UpdateStatus moves the round from one status to another and fails with
	// ErrStatusChanged when the round is no longer in from.
	UpdateStatus(tx *sql.Tx, id uuid.UUID, from, to model.RoundStatus) error
	// AddStake moves stakes_total by delta and returns the new total.
	AddStake(tx *sql.Tx, id uuid.UUID, delta int64) (int64, error)
	SaveResult(tx *sql.Tx, id uuid.UUID, outcome *model.Outcome, summary *model.SettlementSummary) error
	// FindChild locks the rematch round of parentID.
	FindChild(tx *sql.Tx, parentID uuid.UUID) (model.Round, error)

	// two-outcome market sides
	InitSelections(tx *sql.Tx, id uuid.UUID, odds decimal.Decimal) error
	LockSelections(tx *sql.Tx, id uuid.UUID) ([]model.SelectionTotal, error)
	AddSelectionStake(tx *sql.Tx, id uuid.UUID, selection int, delta int64) error
	SetSelectionOdds(tx *sql.Tx, id uuid.UUID, selection int, odds decimal.Decimal) error
	ListSelections(ctx context.Context, id uuid.UUID) ([]model.SelectionTotal, error)

	// bingo
	AddCall(tx *sql.Tx, id uuid.UUID, number int) error
	Calls(tx *sql.Tx, id uuid.UUID) ([]int, error)
	ListCalls(ctx context.Context, id uuid.UUID) ([]int, error)

	// duels
	AddMove(tx *sql.Tx, id uuid.UUID, userID uint64, move model.Move) error
	Moves(tx *sql.Tx, id uuid.UUID) (map[uint64]model.Move, error)
}
