package transactions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

const maxPage = 500

func (r *transactionsRepo) ListByUser(ctx context.Context, userID uint64, limit int, beforeID int64) ([]model.Transaction, error) {
	if limit <= 0 || limit > maxPage {
		limit = maxPage
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM transactions
		WHERE user_id = $1
		  AND ($2::BIGINT <= 0 OR id < $2::BIGINT)
		ORDER BY id DESC
		LIMIT $3
	`, userID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user transactions: %w", err)
	}

	return collect(rows)
}

func (r *transactionsRepo) ListByRound(ctx context.Context, roundID uuid.UUID) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM transactions
		WHERE round_id = $1
		ORDER BY id
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("query round transactions: %w", err)
	}

	return collect(rows)
}

// SumByUser totals the signed amounts per currency. Together with the
// account balances this is the audit check of the ledger.
func (r *transactionsRepo) SumByUser(ctx context.Context, userID uint64) (map[model.Currency]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT currency, COALESCE(SUM(amount), 0)::BIGINT
		FROM transactions
		WHERE user_id = $1
		GROUP BY currency
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("sum user transactions: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	sums := map[model.Currency]int64{model.CurrencyPoints: 0, model.CurrencyCash: 0}
	for rows.Next() {
		var (
			c   model.Currency
			sum int64
		)

		err = rows.Scan(&c, &sum)
		if err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}

		sums[c] = sum
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate sums: %w", err)
	}

	return sums, nil
}

func collect(rows *sql.Rows) ([]model.Transaction, error) {
	//nolint:errcheck
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		out = append(out, t)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}
