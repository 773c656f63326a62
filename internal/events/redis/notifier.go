package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fastprodman/wagerledger/internal/events"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ events.Publisher = (*Notifier)(nil)

// Notifier pushes every event onto the pub/sub channel of its round.
type Notifier struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Channel is the pub/sub channel subscribers of one round listen on.
func Channel(roundID uuid.UUID) string {
	return "wagerledger:rounds:" + roundID.String()
}

func (n *Notifier) Name() string { return "redis" }

func (n *Notifier) Publish(ctx context.Context, e events.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = n.rdb.Publish(ctx, Channel(e.RoundID), b).Err()
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", e.Type, err)
	}

	return nil
}
