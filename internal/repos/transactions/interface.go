package transactions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

var (
	// ErrDuplicateTransaction is a reused idempotency reference.
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	// ErrDuplicateHouseEntry is a second admin_profit entry for one round
	// and currency.
	ErrDuplicateHouseEntry = errors.New("house entry already recorded for round")
)

// Periods are the start times the house profit is summed from.
type Periods struct {
	Day   time.Time
	Week  time.Time
	Month time.Time
}

// ProfitRow is the house result of one currency and game.
type ProfitRow struct {
	Currency model.Currency
	GameType model.GameType
	Total    int64
	Today    int64
	Week     int64
	Month    int64
}

// Transactions is the append-only audit log. Rows are never updated.
type Transactions interface {
	Insert(tx *sql.Tx, t model.Transaction) (model.Transaction, error)
	// ListByUser returns the newest entries first. A positive beforeID pages
	// past entries already seen.
	ListByUser(ctx context.Context, userID uint64, limit int, beforeID int64) ([]model.Transaction, error)
	ListByRound(ctx context.Context, roundID uuid.UUID) ([]model.Transaction, error)
	SumByUser(ctx context.Context, userID uint64) (map[model.Currency]int64, error)
	// HouseProfit sums the admin_profit entries per currency and game.
	HouseProfit(ctx context.Context, p Periods) ([]ProfitRow, error)
}
