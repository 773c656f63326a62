package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/accounts"
)

func (r *accountsRepo) Increase(tx *sql.Tx, userID uint64, c model.Currency, amount int64) (int64, error) {
	col, err := balanceColumn(c)
	if err != nil {
		return 0, err
	}

	var after int64

	//nolint:gosec // col comes from balanceColumn
	err = tx.QueryRow(fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s + $2, updated_at = now()
		WHERE id = $1
		RETURNING %[1]s
	`, col), userID, amount).Scan(&after)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrAccountNotFound
		}

		return 0, fmt.Errorf("increase %s: %w", col, err)
	}

	return after, nil
}

// Decrease cannot tell a missing account from a short balance; callers lock
// the account first, which reports a missing one.
func (r *accountsRepo) Decrease(tx *sql.Tx, userID uint64, c model.Currency, amount int64) (int64, error) {
	col, err := balanceColumn(c)
	if err != nil {
		return 0, err
	}

	var after int64

	//nolint:gosec // col comes from balanceColumn
	err = tx.QueryRow(fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s - $2, updated_at = now()
		WHERE id = $1
		  AND %[1]s >= $2
		RETURNING %[1]s
	`, col), userID, amount).Scan(&after)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrInsufficientFunds
		}

		return 0, fmt.Errorf("decrease %s: %w", col, err)
	}

	return after, nil
}
