package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/requests"
	"github.com/google/uuid"
)

const maxList = 200

func (r *requestsRepo) Insert(tx *sql.Tx, req model.Request) (model.Request, error) {
	out, err := scanRequest(tx.QueryRow(`
		INSERT INTO requests (id, user_id, kind, currency, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+selectColumns,
		req.ID, req.UserID, req.Kind, req.Currency, req.Amount, req.Status,
	))
	if err != nil {
		return model.Request{}, fmt.Errorf("insert request: %w", err)
	}

	return out, nil
}

func (r *requestsRepo) List(ctx context.Context, f requests.ListFilter) ([]model.Request, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxList {
		limit = maxList
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM requests
		WHERE ($1::BIGINT = 0 OR user_id = $1::BIGINT)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at, id
		LIMIT $3
	`, f.UserID, string(f.Status), limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}

		out = append(out, req)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return out, nil
}

func (r *requestsRepo) LockForUpdate(tx *sql.Tx, id uuid.UUID) (model.Request, error) {
	req, err := scanRequest(tx.QueryRow(`
		SELECT `+selectColumns+`
		FROM requests
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, requests.ErrRequestNotFound
		}

		return model.Request{}, fmt.Errorf("lock request: %w", err)
	}

	return req, nil
}

func (r *requestsRepo) Resolve(tx *sql.Tx, id uuid.UUID, to model.RequestStatus) (model.Request, error) {
	req, err := scanRequest(tx.QueryRow(`
		UPDATE requests
		SET status = $2, processed_at = now()
		WHERE id = $1
		  AND status = 'pending'
		RETURNING `+selectColumns,
		id, to,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, requests.ErrStatusChanged
		}

		return model.Request{}, fmt.Errorf("resolve request: %w", err)
	}

	return req, nil
}
