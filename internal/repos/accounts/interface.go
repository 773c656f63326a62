package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
)

var (
	ErrAccountNotFound   = fmt.Errorf("account %w", model.ErrNotFound)
	ErrInsufficientFunds = fmt.Errorf("account balance: %w", model.ErrInsufficientFunds)
	ErrAccountExists     = errors.New("account already exists")
	ErrUnknownCurrency   = errors.New("unknown currency")
)

// Accounts holds the two balances of every user. Balances only move by
// delta; there is no way to assign a balance.
type Accounts interface {
	Create(ctx context.Context, a model.Account) (model.Account, error)
	Get(ctx context.Context, userID uint64) (model.Account, error)
	Exists(tx *sql.Tx, userID uint64) error
	GetBalances(ctx context.Context, userID uint64) (model.Balances, error)
	LockAndGetBalances(tx *sql.Tx, userID uint64) (model.Balances, error)
	// Increase adds amount and returns the resulting balance.
	Increase(tx *sql.Tx, userID uint64, c model.Currency, amount int64) (int64, error)
	// Decrease subtracts amount only if the balance covers it and returns the
	// resulting balance.
	Decrease(tx *sql.Tx, userID uint64, c model.Currency, amount int64) (int64, error)
}
