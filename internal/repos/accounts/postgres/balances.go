package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/accounts"
)

func (r *accountsRepo) GetBalances(ctx context.Context, userID uint64) (model.Balances, error) {
	b := model.Balances{UserID: userID}

	err := r.db.QueryRowContext(ctx, `
		SELECT points, cash
		FROM accounts
		WHERE id = $1
	`, userID).Scan(&b.Points, &b.Cash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Balances{}, accounts.ErrAccountNotFound
		}

		return model.Balances{}, fmt.Errorf("get balances: %w", err)
	}

	return b, nil
}

func (r *accountsRepo) LockAndGetBalances(tx *sql.Tx, userID uint64) (model.Balances, error) {
	b := model.Balances{UserID: userID}

	err := tx.QueryRow(`
		SELECT points, cash
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&b.Points, &b.Cash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Balances{}, accounts.ErrAccountNotFound
		}

		return model.Balances{}, fmt.Errorf("lock/get balances: %w", err)
	}

	return b, nil
}
