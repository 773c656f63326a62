package rounds

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	"github.com/google/uuid"
)

func (r *roundsRepo) AddCall(tx *sql.Tx, id uuid.UUID, number int) error {
	_, err := tx.Exec(`
		INSERT INTO bingo_calls (round_id, number)
		VALUES ($1, $2)
	`, id, number)
	if err != nil {
		if _, dup := pgutils.UniqueViolation(err); dup {
			return rounds.ErrNumberAlreadyCalled
		}

		return fmt.Errorf("add call: %w", err)
	}

	return nil
}

func (r *roundsRepo) Calls(tx *sql.Tx, id uuid.UUID) ([]int, error) {
	rows, err := tx.Query(`
		SELECT number FROM bingo_calls WHERE round_id = $1 ORDER BY called_at, number
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}

	return collectInts(rows)
}

func (r *roundsRepo) ListCalls(ctx context.Context, id uuid.UUID) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number FROM bingo_calls WHERE round_id = $1 ORDER BY called_at, number
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}

	return collectInts(rows)
}

func (r *roundsRepo) AddMove(tx *sql.Tx, id uuid.UUID, userID uint64, move model.Move) error {
	_, err := tx.Exec(`
		INSERT INTO duel_moves (round_id, user_id, move)
		VALUES ($1, $2, $3)
	`, id, userID, move)
	if err != nil {
		if _, dup := pgutils.UniqueViolation(err); dup {
			return rounds.ErrMoveAlreadySubmitted
		}

		return fmt.Errorf("add move: %w", err)
	}

	return nil
}

func (r *roundsRepo) Moves(tx *sql.Tx, id uuid.UUID) (map[uint64]model.Move, error) {
	rows, err := tx.Query(`
		SELECT user_id, move FROM duel_moves WHERE round_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	moves := make(map[uint64]model.Move)
	for rows.Next() {
		var (
			userID uint64
			move   model.Move
		)

		err = rows.Scan(&userID, &move)
		if err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}

		moves[userID] = move
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}

	return moves, nil
}

func collectInts(rows *sql.Rows) ([]int, error) {
	//nolint:errcheck
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int

		err := rows.Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("scan number: %w", err)
		}

		out = append(out, n)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate numbers: %w", err)
	}

	return out, nil
}
