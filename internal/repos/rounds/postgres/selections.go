package rounds

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (r *roundsRepo) InitSelections(tx *sql.Tx, id uuid.UUID, odds decimal.Decimal) error {
	_, err := tx.Exec(`
		INSERT INTO round_selections (round_id, selection, odds)
		VALUES ($1, 1, $2), ($1, 2, $2)
	`, id, odds)
	if err != nil {
		return fmt.Errorf("init selections: %w", err)
	}

	return nil
}

func (r *roundsRepo) LockSelections(tx *sql.Tx, id uuid.UUID) ([]model.SelectionTotal, error) {
	rows, err := tx.Query(`
		SELECT selection, stake_total, odds
		FROM round_selections
		WHERE round_id = $1
		ORDER BY selection
		FOR UPDATE
	`, id)
	if err != nil {
		return nil, fmt.Errorf("lock selections: %w", err)
	}

	return collectSelections(rows)
}

func (r *roundsRepo) ListSelections(ctx context.Context, id uuid.UUID) ([]model.SelectionTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT selection, stake_total, odds
		FROM round_selections
		WHERE round_id = $1
		ORDER BY selection
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}

	return collectSelections(rows)
}

func (r *roundsRepo) AddSelectionStake(tx *sql.Tx, id uuid.UUID, selection int, delta int64) error {
	res, err := tx.Exec(`
		UPDATE round_selections
		SET stake_total = stake_total + $3, updated_at = now()
		WHERE round_id = $1
		  AND selection = $2
	`, id, selection, delta)
	if err != nil {
		return fmt.Errorf("add selection stake: %w", err)
	}

	return expectOne(res, "selection")
}

func (r *roundsRepo) SetSelectionOdds(tx *sql.Tx, id uuid.UUID, selection int, odds decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE round_selections
		SET odds = $3, updated_at = now()
		WHERE round_id = $1
		  AND selection = $2
	`, id, selection, odds)
	if err != nil {
		return fmt.Errorf("set selection odds: %w", err)
	}

	return expectOne(res, "selection")
}

func collectSelections(rows *sql.Rows) ([]model.SelectionTotal, error) {
	//nolint:errcheck
	defer rows.Close()

	var out []model.SelectionTotal
	for rows.Next() {
		var s model.SelectionTotal

		err := rows.Scan(&s.Selection, &s.StakeTotal, &s.Odds)
		if err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}

		out = append(out, s)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}

	return out, nil
}

func expectOne(res sql.Result, what string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w", what, rounds.ErrRoundNotFound)
	}

	return nil
}
