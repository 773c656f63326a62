package wagers

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/wagers"
)

var _ wagers.Wagers = (*wagersRepo)(nil)

type wagersRepo struct{ db *sql.DB }

func New(db *sql.DB) *wagersRepo {
	return &wagersRepo{db: db}
}

const selectColumns = `
	id, round_id, user_id, game_type, stake, currency, selection, single_ticket,
	locked_odds, status, payout, payout_currency, tier, created_at, settled_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWager(row rowScanner) (model.Wager, error) {
	var (
		w              model.Wager
		selection      []byte
		payoutCurrency sql.NullString
		settledAt      sql.NullTime
	)

	err := row.Scan(
		&w.ID, &w.RoundID, &w.UserID, &w.GameType, &w.Stake, &w.Currency, &selection, &w.SingleTicket,
		&w.LockedOdds, &w.Status, &w.Payout, &payoutCurrency, &w.Tier, &w.CreatedAt, &settledAt,
	)
	if err != nil {
		return model.Wager{}, err
	}

	err = json.Unmarshal(selection, &w.Selection)
	if err != nil {
		return model.Wager{}, fmt.Errorf("decode selection: %w", err)
	}

	w.PayoutCurrency = model.Currency(payoutCurrency.String)
	if settledAt.Valid {
		at := settledAt.Time
		w.SettledAt = &at
	}

	return w, nil
}

func collect(rows *sql.Rows) ([]model.Wager, error) {
	//nolint:errcheck
	defer rows.Close()

	var out []model.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wager: %w", err)
		}

		out = append(out, w)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate wagers: %w", err)
	}

	return out, nil
}
