package requests

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

var (
	ErrRequestNotFound = fmt.Errorf("request %w", model.ErrNotFound)
	// ErrStatusChanged means the request was resolved by another writer.
	ErrStatusChanged = fmt.Errorf("request status changed: %w", model.ErrConcurrentModification)
)

type ListFilter struct {
	UserID uint64
	Status model.RequestStatus
	Limit  int
}

type Requests interface {
	Insert(tx *sql.Tx, r model.Request) (model.Request, error)
	List(ctx context.Context, f ListFilter) ([]model.Request, error)
	LockForUpdate(tx *sql.Tx, id uuid.UUID) (model.Request, error)
	// Resolve moves a pending request to its final status and stamps it.
	// A request that is no longer pending yields ErrStatusChanged.
	Resolve(tx *sql.Tx, id uuid.UUID, to model.RequestStatus) (model.Request, error)
}
