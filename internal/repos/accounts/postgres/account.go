package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/accounts"
)

func (r *accountsRepo) Create(ctx context.Context, a model.Account) (model.Account, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, username, referral_code, referred_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, a.ID, a.Username, a.ReferralCode, a.ReferredBy).Scan(&a.CreatedAt)
	if err != nil {
		if _, dup := pgutils.UniqueViolation(err); dup {
			return model.Account{}, accounts.ErrAccountExists
		}

		return model.Account{}, fmt.Errorf("insert account: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) Get(ctx context.Context, userID uint64) (model.Account, error) {
	a := model.Account{ID: userID}

	err := r.db.QueryRowContext(ctx, `
		SELECT username, referral_code, referred_by, created_at
		FROM accounts
		WHERE id = $1
	`, userID).Scan(&a.Username, &a.ReferralCode, &a.ReferredBy, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, accounts.ErrAccountNotFound
		}

		return model.Account{}, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) Exists(tx *sql.Tx, userID uint64) error {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return accounts.ErrAccountNotFound
	}

	return nil
}
