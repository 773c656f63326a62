package oddscache

import (
	"context"
	"errors"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

var ErrCacheMiss = errors.New("odds cache miss")

// OddsCache keeps the latest published price of each two-outcome market.
// Postgres stays the source of truth; the cache only serves reads.
type OddsCache interface {
	Get(ctx context.Context, roundID uuid.UUID) (model.MarketOdds, error)
	Set(ctx context.Context, odds model.MarketOdds) error
	Delete(ctx context.Context, roundID uuid.UUID) error
}
