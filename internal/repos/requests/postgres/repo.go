package requests

import (
	"database/sql"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/requests"
)

var _ requests.Requests = (*requestsRepo)(nil)

type requestsRepo struct{ db *sql.DB }

func New(db *sql.DB) *requestsRepo {
	return &requestsRepo{db: db}
}

const selectColumns = `id, user_id, kind, currency, amount, status, created_at, processed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (model.Request, error) {
	var (
		r           model.Request
		processedAt sql.NullTime
	)

	err := row.Scan(&r.ID, &r.UserID, &r.Kind, &r.Currency, &r.Amount, &r.Status, &r.CreatedAt, &processedAt)
	if err != nil {
		return model.Request{}, err
	}

	if processedAt.Valid {
		at := processedAt.Time
		r.ProcessedAt = &at
	}

	return r, nil
}
