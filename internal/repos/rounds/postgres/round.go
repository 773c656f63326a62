package rounds

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	"github.com/google/uuid"
)

const parentKey = "rounds_parent_round_id_key"

func (r *roundsRepo) Insert(tx *sql.Tx, rnd model.Round) (model.Round, error) {
	settings, err := json.Marshal(rnd.Settings)
	if err != nil {
		return model.Round{}, fmt.Errorf("encode settings: %w", err)
	}

	err = tx.QueryRow(`
		INSERT INTO rounds (id, game_type, status, settings, parent_round_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, rnd.ID, rnd.GameType, rnd.Status, settings, rnd.ParentID).Scan(&rnd.CreatedAt, &rnd.UpdatedAt)
	if err != nil {
		if constraint, dup := pgutils.UniqueViolation(err); dup && constraint == parentKey {
			return model.Round{}, rounds.ErrRematchExists
		}

		return model.Round{}, fmt.Errorf("insert round: %w", err)
	}

	return rnd, nil
}

func (r *roundsRepo) Get(ctx context.Context, id uuid.UUID) (model.Round, error) {
	rnd, err := scanRound(r.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM rounds
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Round{}, rounds.ErrRoundNotFound
		}

		return model.Round{}, fmt.Errorf("get round: %w", err)
	}

	return rnd, nil
}

func (r *roundsRepo) List(ctx context.Context, f rounds.ListFilter) ([]model.Round, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM rounds
		WHERE ($1 = '' OR game_type = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, string(f.GameType), string(f.Status), limit)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []model.Round
	for rows.Next() {
		rnd, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}

		out = append(out, rnd)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}

	return out, nil
}

func (r *roundsRepo) LockForUpdate(tx *sql.Tx, id uuid.UUID) (model.Round, error) {
	rnd, err := scanRound(tx.QueryRow(`
		SELECT `+selectColumns+`
		FROM rounds
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Round{}, rounds.ErrRoundNotFound
		}

		return model.Round{}, fmt.Errorf("lock round: %w", err)
	}

	return rnd, nil
}

func (r *roundsRepo) FindChild(tx *sql.Tx, parentID uuid.UUID) (model.Round, error) {
	rnd, err := scanRound(tx.QueryRow(`
		SELECT `+selectColumns+`
		FROM rounds
		WHERE parent_round_id = $1
		FOR UPDATE
	`, parentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Round{}, rounds.ErrRoundNotFound
		}

		return model.Round{}, fmt.Errorf("find child round: %w", err)
	}

	return rnd, nil
}

func (r *roundsRepo) UpdateStatus(tx *sql.Tx, id uuid.UUID, from, to model.RoundStatus) error {
	res, err := tx.Exec(`
		UPDATE rounds
		SET status = $3, updated_at = now()
		WHERE id = $1
		  AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("update round status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return rounds.ErrStatusChanged
	}

	return nil
}

func (r *roundsRepo) AddStake(tx *sql.Tx, id uuid.UUID, delta int64) (int64, error) {
	var total int64

	err := tx.QueryRow(`
		UPDATE rounds
		SET stakes_total = stakes_total + $2, updated_at = now()
		WHERE id = $1
		RETURNING stakes_total
	`, id, delta).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, rounds.ErrRoundNotFound
		}

		return 0, fmt.Errorf("add round stake: %w", err)
	}

	return total, nil
}

func (r *roundsRepo) SaveResult(tx *sql.Tx, id uuid.UUID, outcome *model.Outcome, summary *model.SettlementSummary) error {
	o, err := nullJSON(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	s, err := nullJSON(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE rounds
		SET outcome = $2, summary = $3, updated_at = now()
		WHERE id = $1
	`, id, o, s)
	if err != nil {
		return fmt.Errorf("save round result: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return rounds.ErrRoundNotFound
	}

	return nil
}
