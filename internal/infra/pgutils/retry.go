package pgutils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/fastprodman/wagerledger/internal/config"
	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/model"
)

// RetryPolicy bounds the retries of a contended transaction.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 20 * time.Millisecond, MaxDelay: 500 * time.Millisecond}
}

func PolicyFrom(cfg config.WageringConfig) RetryPolicy {
	p := RetryPolicy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay, MaxDelay: cfg.RetryMaxDelay}
	if p.Attempts < 3 {
		p.Attempts = 3
	}

	return p
}

// IsRetryable reports whether err is a transient contention abort.
func IsRetryable(err error) bool {
	if errors.Is(err, model.ErrConcurrentModification) {
		return true
	}

	switch PgCode(err) {
	case CodeSerializationFailure, CodeDeadlockDetected, CodeLockNotAvailable:
		return true
	default:
		return false
	}
}

// Retry runs fn until it succeeds or fails with a non-retryable error. After
// the last attempt a retryable error is returned wrapped in
// model.ErrConcurrentModification.
func Retry(ctx context.Context, p RetryPolicy, op string, fn func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil || !IsRetryable(err) {
			return err
		}

		if attempt >= attempts {
			if errors.Is(err, model.ErrConcurrentModification) {
				return fmt.Errorf("%s: %d attempts: %w", op, attempts, err)
			}

			return fmt.Errorf("%s: %d attempts: %w: %w", op, attempts, model.ErrConcurrentModification, err)
		}

		metrics.IncRetry(op)
		slog.WarnContext(ctx, "retrying contended transaction", "op", op, "attempt", attempt, "error", err)

		t := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
}

// backoff is exponential with half-range jitter.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 10 * time.Millisecond
	}

	d := base << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}

	half := d / 2

	return half + rand.N(half+1)
}
