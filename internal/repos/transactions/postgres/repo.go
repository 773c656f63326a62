package transactions

import (
	"database/sql"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/transactions"
)

var _ transactions.Transactions = (*transactionsRepo)(nil)

type transactionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *transactionsRepo {
	return &transactionsRepo{db: db}
}

const selectColumns = `
	id, user_id, round_id, wager_id, currency, amount, type,
	description, balance_after, game_type, reference, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		t            model.Transaction
		userID       sql.NullInt64
		balanceAfter sql.NullInt64
		reference    sql.NullString
	)

	err := row.Scan(
		&t.ID, &userID, &t.RoundID, &t.WagerID, &t.Currency, &t.Amount, &t.Type,
		&t.Description, &balanceAfter, &t.GameType, &reference, &t.CreatedAt,
	)
	if err != nil {
		return model.Transaction{}, err
	}

	if userID.Valid {
		id := uint64(userID.Int64) //nolint:gosec // ids are positive
		t.UserID = &id
	}
	if balanceAfter.Valid {
		b := balanceAfter.Int64
		t.BalanceAfter = &b
	}
	t.Reference = reference.String

	return t, nil
}
