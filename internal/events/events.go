// Package events carries round and wager state changes to read-only
// subscribers once the ledger transaction has committed.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

type Type string

const (
	RoundOpened  Type = "round.opened"
	RoundClosed  Type = "round.closed"
	RoundSettled Type = "round.settled"
	RoundReset   Type = "round.reset"
	WagerPlaced  Type = "wager.placed"
	OddsUpdated  Type = "odds.updated"
)

type Event struct {
	ID       uuid.UUID      `json:"id"`
	Type     Type           `json:"type"`
	RoundID  uuid.UUID      `json:"roundId"`
	WagerID  *uuid.UUID     `json:"wagerId,omitempty"`
	UserID   *uint64        `json:"userId,omitempty"`
	GameType model.GameType `json:"gameType"`
	Status   string         `json:"status,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	At       time.Time      `json:"at"`
}

// New stamps an event with an id and the current time.
func New(t Type, rnd model.Round, payload any) Event {
	return Event{
		ID:       uuid.New(),
		Type:     t,
		RoundID:  rnd.ID,
		GameType: rnd.GameType,
		Status:   string(rnd.Status),
		Payload:  payload,
		At:       time.Now().UTC(),
	}
}

// ForWager attaches the wager and its owner.
func (e Event) ForWager(w model.Wager) Event {
	id, user := w.ID, w.UserID
	e.WagerID = &id
	e.UserID = &user

	return e
}

type Publisher interface {
	// Name labels the sink in logs and metrics.
	Name() string
	Publish(ctx context.Context, e Event) error
}

const (
	publishTimeout = 2 * time.Second
	queueSize      = 1024
)

// Emitter fans events out to every sink from a single background worker, so
// callers never wait on a broker and subscribers see events in emit order.
// Delivery is best effort: a failing sink is logged and counted, and events
// that do not fit the queue are dropped and counted. A nil Emitter drops
// everything.
type Emitter struct {
	sinks []Publisher
	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewEmitter starts the publishing worker. Close drains it.
func NewEmitter(sinks ...Publisher) *Emitter {
	em := &Emitter{
		sinks: sinks,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}

	go em.run()

	return em
}

// Emit queues evs for publishing and returns at once.
func (em *Emitter) Emit(ctx context.Context, evs ...Event) {
	if em == nil || len(em.sinks) == 0 {
		return
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	for _, e := range evs {
		if em.closed {
			em.drop(ctx, e, "emitter closed")
			continue
		}

		select {
		case em.queue <- e:
		default:
			em.drop(ctx, e, "publish queue full")
		}
	}
}

// Close stops accepting events and waits until the queued ones are
// published or ctx ends.
func (em *Emitter) Close(ctx context.Context) error {
	if em == nil {
		return nil
	}

	em.mu.Lock()
	if !em.closed {
		em.closed = true
		close(em.queue)
	}
	em.mu.Unlock()

	select {
	case <-em.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}

func (em *Emitter) run() {
	defer close(em.done)

	for e := range em.queue {
		em.publish(e)
	}
}

// publish runs detached from any request: the ledger change behind e is
// already committed.
func (em *Emitter) publish(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	for _, sink := range em.sinks {
		err := sink.Publish(ctx, e)
		if err != nil {
			metrics.IncPublishFailure(sink.Name())
			slog.WarnContext(ctx, "event publish failed",
				"sink", sink.Name(),
				"type", e.Type,
				"round_id", e.RoundID,
				"error", err,
			)
		}
	}
}

func (em *Emitter) drop(ctx context.Context, e Event, reason string) {
	metrics.IncEventDropped()
	slog.WarnContext(ctx, "event dropped", "reason", reason, "type", e.Type, "round_id", e.RoundID)
}
