package wagers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/wagers"
	"github.com/google/uuid"
)

func (r *wagersRepo) Get(ctx context.Context, id uuid.UUID) (model.Wager, error) {
	w, err := scanWager(r.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM wagers
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Wager{}, wagers.ErrWagerNotFound
		}

		return model.Wager{}, fmt.Errorf("get wager: %w", err)
	}

	return w, nil
}

func (r *wagersRepo) ListByRound(ctx context.Context, roundID uuid.UUID) ([]model.Wager, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM wagers
		WHERE round_id = $1
		ORDER BY created_at, id
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list round wagers: %w", err)
	}

	return collect(rows)
}

func (r *wagersRepo) ListByUser(tx *sql.Tx, roundID uuid.UUID, userID uint64) ([]model.Wager, error) {
	rows, err := tx.Query(`
		SELECT `+selectColumns+`
		FROM wagers
		WHERE round_id = $1
		  AND user_id = $2
		ORDER BY created_at, id
	`, roundID, userID)
	if err != nil {
		return nil, fmt.Errorf("list user wagers: %w", err)
	}

	return collect(rows)
}

func (r *wagersRepo) CountByRound(tx *sql.Tx, roundID uuid.UUID) (int, error) {
	var n int

	err := tx.QueryRow(`
		SELECT COUNT(*) FROM wagers WHERE round_id = $1 AND status <> 'refunded'
	`, roundID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count round wagers: %w", err)
	}

	return n, nil
}

func (r *wagersRepo) ListPending(tx *sql.Tx, roundID uuid.UUID) ([]model.Wager, error) {
	rows, err := tx.Query(`
		SELECT `+selectColumns+`
		FROM wagers
		WHERE round_id = $1
		  AND status = 'pending'
		ORDER BY created_at, id
		FOR UPDATE
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("lock pending wagers: %w", err)
	}

	return collect(rows)
}

func (r *wagersRepo) MarkSettled(tx *sql.Tx, id uuid.UUID, res wagers.Result) error {
	payoutCurrency := sql.NullString{String: string(res.PayoutCurrency), Valid: res.PayoutCurrency != ""}

	result, err := tx.Exec(`
		UPDATE wagers
		SET status = $2, payout = $3, payout_currency = $4, tier = $5, settled_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`, id, res.Status, res.Payout, payoutCurrency, res.Tier)
	if err != nil {
		return fmt.Errorf("mark wager settled: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return wagers.ErrWagerSettled
	}

	return nil
}
