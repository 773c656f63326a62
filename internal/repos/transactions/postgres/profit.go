package transactions

import (
	"context"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/repos/transactions"
)

func (r *transactionsRepo) HouseProfit(ctx context.Context, p transactions.Periods) ([]transactions.ProfitRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT currency, game_type,
		       COALESCE(SUM(amount), 0)::BIGINT,
		       COALESCE(SUM(amount) FILTER (WHERE created_at >= $1), 0)::BIGINT,
		       COALESCE(SUM(amount) FILTER (WHERE created_at >= $2), 0)::BIGINT,
		       COALESCE(SUM(amount) FILTER (WHERE created_at >= $3), 0)::BIGINT
		FROM transactions
		WHERE type = 'admin_profit'
		GROUP BY currency, game_type
		ORDER BY currency, game_type
	`, p.Day, p.Week, p.Month)
	if err != nil {
		return nil, fmt.Errorf("sum house profit: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []transactions.ProfitRow
	for rows.Next() {
		var row transactions.ProfitRow

		err = rows.Scan(&row.Currency, &row.GameType, &row.Total, &row.Today, &row.Week, &row.Month)
		if err != nil {
			return nil, fmt.Errorf("scan profit: %w", err)
		}

		out = append(out, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate profit: %w", err)
	}

	return out, nil
}
