// Package lifecycle opens, closes and resets rounds and serves their read
// views. Settlement lives in its own package and moves rounds to completed.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fastprodman/wagerledger/internal/events"
	"github.com/fastprodman/wagerledger/internal/games"
	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/oddscache"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	pgrounds "github.com/fastprodman/wagerledger/internal/repos/rounds/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/wagers"
	pgwagers "github.com/fastprodman/wagerledger/internal/repos/wagers/postgres"
	"github.com/fastprodman/wagerledger/internal/services/ledger"
	"github.com/fastprodman/wagerledger/internal/services/odds"
	"github.com/google/uuid"
)

type Service struct {
	db     *sql.DB
	ledger *ledger.Service
	rounds rounds.Rounds
	wagers wagers.Wagers
	cache  oddscache.OddsCache
	events *events.Emitter
	retry  pgutils.RetryPolicy
}

// New wires the service. cache and em may be nil.
func New(
	dbx *sql.DB,
	ldg *ledger.Service,
	em *events.Emitter,
	cache oddscache.OddsCache,
	retry pgutils.RetryPolicy,
) *Service {
	return &Service{
		db:     dbx,
		ledger: ldg,
		rounds: pgrounds.New(dbx),
		wagers: pgwagers.New(dbx),
		cache:  cache,
		events: em,
		retry:  retry,
	}
}

// RoundView is a round with the live data of its game type.
type RoundView struct {
	model.Round
	Odds  *model.MarketOdds `json:"odds,omitempty"`
	Calls []int             `json:"calls,omitempty"`
}

// Open creates a round of g with in overlaid on the game defaults.
func (s *Service) Open(ctx context.Context, g model.GameType, in model.Settings) (model.Round, error) {
	var rnd model.Round

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		rnd, err = s.OpenInTx(tx, g, in, uuid.NullUUID{})

		return err
	})
	if err != nil {
		return model.Round{}, fmt.Errorf("open round: %w", err)
	}

	slog.InfoContext(ctx, "round opened", "round_id", rnd.ID, "game_type", rnd.GameType)
	s.Opened(ctx, rnd)

	return rnd, nil
}

// OpenInTx inserts a round inside the caller's transaction. The caller
// reports it with Opened after commit.
func (s *Service) OpenInTx(tx *sql.Tx, g model.GameType, in model.Settings, parent uuid.NullUUID) (model.Round, error) {
	settings, err := games.Normalize(g, in)
	if err != nil {
		return model.Round{}, err
	}

	rnd, err := s.rounds.Insert(tx, model.Round{
		ID:       uuid.New(),
		GameType: g,
		Status:   model.RoundOpen,
		Settings: settings,
		ParentID: parent,
	})
	if err != nil {
		return model.Round{}, fmt.Errorf("insert round: %w", err)
	}

	rules, _ := games.For(g)
	if rules.TwoOutcome {
		err = s.rounds.InitSelections(tx, rnd.ID, odds.DefaultOdds)
		if err != nil {
			return model.Round{}, fmt.Errorf("init market: %w", err)
		}
	}

	return rnd, nil
}

// Opened publishes a committed round and seeds its odds cache.
func (s *Service) Opened(ctx context.Context, rnd model.Round) {
	rules, _ := games.For(rnd.GameType)
	if rules.TwoOutcome {
		s.PublishOdds(ctx, rnd, odds.Market(rnd.ID, nil))
	}

	s.events.Emit(ctx, events.New(events.RoundOpened, rnd, rnd.Settings))
}

// PublishOdds refreshes the cached price of a market and announces it.
func (s *Service) PublishOdds(ctx context.Context, rnd model.Round, m model.MarketOdds) {
	if s.cache != nil {
		err := s.cache.Set(ctx, m)
		if err != nil {
			slog.WarnContext(ctx, "odds cache refresh failed", "round_id", rnd.ID, "error", err)
		}
	}

	s.events.Emit(ctx, events.New(events.OddsUpdated, rnd, m))
}

// Close stops a round from taking further wagers.
func (s *Service) Close(ctx context.Context, id uuid.UUID) (model.Round, error) {
	var rnd model.Round

	err := pgutils.Retry(ctx, s.retry, "close_round", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			var err error
			rnd, err = s.CloseInTx(tx, id)

			return err
		})
	})
	if err != nil {
		return model.Round{}, fmt.Errorf("close round: %w", err)
	}

	slog.InfoContext(ctx, "round closed", "round_id", rnd.ID, "game_type", rnd.GameType)
	s.events.Emit(ctx, events.New(events.RoundClosed, rnd, nil))

	return rnd, nil
}

func (s *Service) CloseInTx(tx *sql.Tx, id uuid.UUID) (model.Round, error) {
	rnd, err := s.rounds.LockForUpdate(tx, id)
	if err != nil {
		return model.Round{}, err
	}

	next, err := NextState(rnd.Status, EventClose, false)
	if err != nil {
		return model.Round{}, err
	}

	err = s.rounds.UpdateStatus(tx, id, rnd.Status, next)
	if err != nil {
		return model.Round{}, err
	}

	rnd.Status = next

	return rnd, nil
}

// Reset refunds every pending wager of an open or closed round and moves it
// to reset. Nothing is deleted.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (model.ResetSummary, error) {
	var (
		rnd     model.Round
		summary model.ResetSummary
	)

	err := pgutils.Retry(ctx, s.retry, "reset_round", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			var err error
			rnd, summary, err = s.ResetInTx(tx, id)

			return err
		})
	})
	if err != nil {
		return model.ResetSummary{}, fmt.Errorf("reset round: %w", err)
	}

	slog.InfoContext(ctx, "round reset",
		"round_id", id,
		"game_type", rnd.GameType,
		"refunded", summary.Refunded,
		"refunds", summary.Refunds,
	)
	s.Finished(ctx, rnd, events.RoundReset, summary)

	return summary, nil
}

// ResetInTx refunds and resets inside the caller's transaction. The round row
// is locked before any account.
func (s *Service) ResetInTx(tx *sql.Tx, id uuid.UUID) (model.Round, model.ResetSummary, error) {
	rnd, err := s.rounds.LockForUpdate(tx, id)
	if err != nil {
		return model.Round{}, model.ResetSummary{}, err
	}

	next, err := NextState(rnd.Status, EventReset, false)
	if err != nil {
		return model.Round{}, model.ResetSummary{}, err
	}

	pending, err := s.wagers.ListPending(tx, id)
	if err != nil {
		return model.Round{}, model.ResetSummary{}, fmt.Errorf("list pending wagers: %w", err)
	}

	summary := model.ResetSummary{RoundID: id}
	rules, _ := games.For(rnd.GameType)

	for _, w := range pending {
		err = s.refund(tx, rnd, w)
		if err != nil {
			return model.Round{}, model.ResetSummary{}, err
		}

		if rules.TwoOutcome {
			err = s.rounds.AddSelectionStake(tx, id, w.Selection.Team, -w.Stake)
			if err != nil {
				return model.Round{}, model.ResetSummary{}, fmt.Errorf("release selection stake: %w", err)
			}
		}

		summary.Refunded++
		summary.Refunds += w.Stake
	}

	if summary.Refunds > 0 {
		rnd.StakesTotal, err = s.rounds.AddStake(tx, id, -summary.Refunds)
		if err != nil {
			return model.Round{}, model.ResetSummary{}, fmt.Errorf("release pool: %w", err)
		}
	}

	err = s.rounds.UpdateStatus(tx, id, rnd.Status, next)
	if err != nil {
		return model.Round{}, model.ResetSummary{}, err
	}

	rnd.Status = next

	return rnd, summary, nil
}

func (s *Service) refund(tx *sql.Tx, rnd model.Round, w model.Wager) error {
	_, err := s.ledger.Credit(tx, ledger.Entry{
		UserID:      w.UserID,
		Currency:    w.Currency,
		Amount:      w.Stake,
		Type:        model.RefundType(rnd.GameType),
		Description: games.Describe(rnd.GameType, "refund, round %s reset", rnd.ID),
		RoundID:     uuid.NullUUID{UUID: rnd.ID, Valid: true},
		WagerID:     uuid.NullUUID{UUID: w.ID, Valid: true},
		GameType:    rnd.GameType,
	})
	if err != nil {
		return fmt.Errorf("refund wager %s: %w", w.ID, err)
	}

	err = s.wagers.MarkSettled(tx, w.ID, wagers.Result{
		Status:         model.WagerRefunded,
		Payout:         w.Stake,
		PayoutCurrency: w.Currency,
	})
	if err != nil {
		return fmt.Errorf("mark wager %s refunded: %w", w.ID, err)
	}

	return nil
}

// Finished announces a round that reached a terminal status and drops its
// cached price.
func (s *Service) Finished(ctx context.Context, rnd model.Round, t events.Type, payload any) {
	if s.cache != nil {
		err := s.cache.Delete(ctx, rnd.ID)
		if err != nil {
			slog.WarnContext(ctx, "odds cache eviction failed", "round_id", rnd.ID, "error", err)
		}
	}

	s.events.Emit(ctx, events.New(t, rnd, payload))
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (RoundView, error) {
	rnd, err := s.rounds.Get(ctx, id)
	if err != nil {
		return RoundView{}, fmt.Errorf("get round: %w", err)
	}

	view := RoundView{Round: rnd}

	rules, _ := games.For(rnd.GameType)
	switch {
	case rules.TwoOutcome:
		m, err := s.marketOdds(ctx, rnd)
		if err != nil {
			return RoundView{}, err
		}

		view.Odds = &m
	case rnd.GameType == model.GameBingo:
		view.Calls, err = s.rounds.ListCalls(ctx, id)
		if err != nil {
			return RoundView{}, fmt.Errorf("list calls: %w", err)
		}
	}

	return view, nil
}

// Odds serves the current price of a two-outcome market, from the cache when
// it holds one.
func (s *Service) Odds(ctx context.Context, id uuid.UUID) (model.MarketOdds, error) {
	if s.cache != nil {
		m, err := s.cache.Get(ctx, id)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, oddscache.ErrCacheMiss) {
			slog.WarnContext(ctx, "odds cache read failed", "round_id", id, "error", err)
		}
	}

	rnd, err := s.rounds.Get(ctx, id)
	if err != nil {
		return model.MarketOdds{}, fmt.Errorf("get round: %w", err)
	}

	rules, _ := games.For(rnd.GameType)
	if !rules.TwoOutcome {
		return model.MarketOdds{}, model.Invalid("roundId", "%s rounds have no market odds", rnd.GameType)
	}

	m, err := s.marketOdds(ctx, rnd)
	if err != nil {
		return model.MarketOdds{}, err
	}

	if s.cache != nil && rnd.Status == model.RoundOpen {
		err = s.cache.Set(ctx, m)
		if err != nil {
			slog.WarnContext(ctx, "odds cache fill failed", "round_id", id, "error", err)
		}
	}

	return m, nil
}

func (s *Service) marketOdds(ctx context.Context, rnd model.Round) (model.MarketOdds, error) {
	sides, err := s.rounds.ListSelections(ctx, rnd.ID)
	if err != nil {
		return model.MarketOdds{}, fmt.Errorf("list selections: %w", err)
	}

	return odds.Market(rnd.ID, sides), nil
}

// CallNumber records a called ball of an open bingo round and returns every
// number called so far.
func (s *Service) CallNumber(ctx context.Context, id uuid.UUID, n int) ([]int, error) {
	err := games.ValidateCall(n)
	if err != nil {
		return nil, err
	}

	var called []int

	err = pgutils.Retry(ctx, s.retry, "call_number", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			rnd, err := s.rounds.LockForUpdate(tx, id)
			if err != nil {
				return err
			}
			if rnd.GameType != model.GameBingo {
				return model.Invalid("roundId", "numbers are only called in bingo rounds")
			}
			if !AcceptsBets(rnd.Status) {
				return fmt.Errorf("round is %s: %w", rnd.Status, model.ErrMarketClosed)
			}

			err = s.rounds.AddCall(tx, id, n)
			if err != nil {
				return err
			}

			called, err = s.rounds.Calls(tx, id)

			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("call number: %w", err)
	}

	slog.InfoContext(ctx, "bingo number called", "round_id", id, "number", n, "count", len(called))

	return called, nil
}

func (s *Service) List(ctx context.Context, f rounds.ListFilter) ([]model.Round, error) {
	list, err := s.rounds.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	return list, nil
}

// Wagers lists every wager of a round.
func (s *Service) Wagers(ctx context.Context, id uuid.UUID) ([]model.Wager, error) {
	_, err := s.rounds.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get round: %w", err)
	}

	list, err := s.wagers.ListByRound(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list wagers: %w", err)
	}

	return list, nil
}
