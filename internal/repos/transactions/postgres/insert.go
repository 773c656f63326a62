package transactions

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/transactions"
)

const (
	referenceKey  = "transactions_reference_key"
	houseRoundKey = "transactions_house_round_key"
)

func (r *transactionsRepo) Insert(tx *sql.Tx, t model.Transaction) (model.Transaction, error) {
	var userID, balanceAfter sql.NullInt64
	if t.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*t.UserID), Valid: true} //nolint:gosec // ids are positive
	}
	if t.BalanceAfter != nil {
		balanceAfter = sql.NullInt64{Int64: *t.BalanceAfter, Valid: true}
	}

	reference := sql.NullString{String: t.Reference, Valid: t.Reference != ""}

	err := tx.QueryRow(`
		INSERT INTO transactions (
			user_id, round_id, wager_id, currency, amount, type,
			description, balance_after, game_type, reference
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, userID, t.RoundID, t.WagerID, t.Currency, t.Amount, t.Type,
		t.Description, balanceAfter, t.GameType, reference,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		constraint, dup := pgutils.UniqueViolation(err)
		switch {
		case dup && constraint == houseRoundKey:
			return model.Transaction{}, transactions.ErrDuplicateHouseEntry
		case dup && constraint == referenceKey:
			return model.Transaction{}, transactions.ErrDuplicateTransaction
		}

		return model.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return t, nil
}
