package oddscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/oddscache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ oddscache.OddsCache = (*oddsCache)(nil)

type oddsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *oddsCache {
	return &oddsCache{rdb: rdb, ttl: ttl}
}

func key(roundID uuid.UUID) string { return "wagerledger:odds:" + roundID.String() }

func (c *oddsCache) Get(ctx context.Context, roundID uuid.UUID) (model.MarketOdds, error) {
	b, err := c.rdb.Get(ctx, key(roundID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.MarketOdds{}, oddscache.ErrCacheMiss
		}

		return model.MarketOdds{}, fmt.Errorf("redis get odds: %w", err)
	}

	var odds model.MarketOdds

	err = json.Unmarshal(b, &odds)
	if err != nil {
		return model.MarketOdds{}, fmt.Errorf("decode cached odds: %w", err)
	}

	return odds, nil
}

func (c *oddsCache) Set(ctx context.Context, odds model.MarketOdds) error {
	b, err := json.Marshal(odds)
	if err != nil {
		return fmt.Errorf("encode odds: %w", err)
	}

	err = c.rdb.Set(ctx, key(odds.RoundID), b, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set odds: %w", err)
	}

	return nil
}

func (c *oddsCache) Delete(ctx context.Context, roundID uuid.UUID) error {
	err := c.rdb.Del(ctx, key(roundID)).Err()
	if err != nil {
		return fmt.Errorf("redis del odds: %w", err)
	}

	return nil
}
