// Package settlement resolves a round's outcome against its pending wagers
// and moves the round to completed. Crediting winners, marking every wager,
// recording the house entry and the status change commit together.
package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/wagerledger/internal/events"
	"github.com/fastprodman/wagerledger/internal/games"
	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	pgrounds "github.com/fastprodman/wagerledger/internal/repos/rounds/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/wagers"
	pgwagers "github.com/fastprodman/wagerledger/internal/repos/wagers/postgres"
	"github.com/fastprodman/wagerledger/internal/services/ledger"
	"github.com/fastprodman/wagerledger/internal/services/lifecycle"
	"github.com/google/uuid"
)

type Engine struct {
	db        *sql.DB
	ledger    *ledger.Service
	lifecycle *lifecycle.Service
	rounds    rounds.Rounds
	wagers    wagers.Wagers
	retry     pgutils.RetryPolicy
	now       func() time.Time
}

func New(dbx *sql.DB, ldg *ledger.Service, lc *lifecycle.Service, retry pgutils.RetryPolicy) *Engine {
	return &Engine{
		db:        dbx,
		ledger:    ldg,
		lifecycle: lc,
		rounds:    pgrounds.New(dbx),
		wagers:    pgwagers.New(dbx),
		retry:     retry,
		now:       time.Now,
	}
}

// Settled is a settlement ready to be announced after commit. Repeated is
// set when the round had already been settled by an earlier call.
type Settled struct {
	Round    model.Round
	Summary  model.SettlementSummary
	Repeated bool
}

// Settle applies outcome to the round. A round that is already completed
// yields its stored summary together with model.ErrAlreadySettled and
// changes nothing. Persistent contention yields model.ErrSettlementFailed.
func (e *Engine) Settle(ctx context.Context, roundID uuid.UUID, outcome model.Outcome) (model.SettlementSummary, error) {
	started := time.Now()

	var res Settled

	err := pgutils.Retry(ctx, e.retry, "settle_round", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, e.db, func(tx *sql.Tx) error {
			var err error
			res, err = e.SettleInTx(tx, roundID, outcome)

			return err
		})
	})
	if err != nil {
		metrics.RecordSettlement(metrics.ResultFailed, string(res.Round.GameType), started)

		if errors.Is(err, model.ErrConcurrentModification) {
			return model.SettlementSummary{}, fmt.Errorf("%w: %w", model.ErrSettlementFailed, err)
		}

		return model.SettlementSummary{}, fmt.Errorf("settle round: %w", err)
	}

	if res.Repeated {
		metrics.RecordSettlement(metrics.ResultRepeated, string(res.Round.GameType), started)
		slog.WarnContext(ctx, "round already settled", "round_id", roundID)

		return res.Summary, fmt.Errorf("round %s: %w", roundID, model.ErrAlreadySettled)
	}

	metrics.RecordSettlement(metrics.ResultSuccess, string(res.Round.GameType), started)
	e.Announce(ctx, res)

	return res.Summary, nil
}

// Announce records and publishes a committed settlement.
func (e *Engine) Announce(ctx context.Context, res Settled) {
	if res.Repeated {
		return
	}

	for c, amount := range res.Summary.Payouts {
		metrics.AddPayout(string(c), amount)
	}

	slog.InfoContext(ctx, "round settled",
		"round_id", res.Round.ID,
		"game_type", res.Round.GameType,
		"wagers", res.Summary.Wagers,
		"winners", res.Summary.Winners,
		"house_net", res.Summary.HouseNet,
	)
	e.lifecycle.Finished(ctx, res.Round, events.RoundSettled, res.Summary)
}

// SettleInTx settles inside the caller's transaction. The round row is
// locked first, then the pending wagers, then each credited account.
//
//nolint:cyclop,funlen
func (e *Engine) SettleInTx(tx *sql.Tx, roundID uuid.UUID, outcome model.Outcome) (Settled, error) {
	rnd, err := e.rounds.LockForUpdate(tx, roundID)
	if err != nil {
		return Settled{}, err
	}

	if rnd.Status == model.RoundCompleted {
		res := Settled{Round: rnd, Repeated: true}
		if rnd.Summary != nil {
			res.Summary = *rnd.Summary
		}

		return res, nil
	}

	rules, err := games.For(rnd.GameType)
	if err != nil {
		return Settled{Round: rnd}, err
	}

	next, err := lifecycle.NextState(rnd.Status, lifecycle.EventSettle, rules.DirectSettle)
	if err != nil {
		return Settled{Round: rnd}, err
	}

	o, err := e.loadOutcome(tx, rnd, outcome)
	if err != nil {
		return Settled{Round: rnd}, err
	}

	v, err := variantFor(rnd.GameType)
	if err != nil {
		return Settled{Round: rnd}, err
	}

	pending, err := e.wagers.ListPending(tx, roundID)
	if err != nil {
		return Settled{Round: rnd}, fmt.Errorf("list pending wagers: %w", err)
	}

	err = v.Check(rnd, o, pending)
	if err != nil {
		return Settled{Round: rnd}, err
	}

	summary := model.SettlementSummary{
		RoundID:  rnd.ID,
		GameType: rnd.GameType,
		Currency: rnd.Settings.StakeCurrency,
		Wagers:   len(pending),
		Payouts:  make(map[model.Currency]int64),
		HouseNet: map[model.Currency]int64{rnd.Settings.StakeCurrency: 0},
	}

	for _, w := range pending {
		c, err := v.Classify(rnd, o, w)
		if err != nil {
			return Settled{Round: rnd}, fmt.Errorf("classify wager %s: %w", w.ID, err)
		}

		err = e.apply(tx, rnd, w, c)
		if err != nil {
			return Settled{Round: rnd}, err
		}

		summary.Stakes += w.Stake
		summary.FeeWithheld += c.Fee
		summary.HouseNet[w.Currency] += w.Stake

		for _, cr := range c.Credits {
			if cr.Amount > 0 {
				summary.HouseNet[cr.Currency] -= cr.Amount
			}
		}

		switch c.Status {
		case model.WagerWon:
			summary.Winners++
			for _, cr := range c.Credits {
				if cr.Amount > 0 {
					summary.Payouts[cr.Currency] += cr.Amount
				}
			}
		case model.WagerRefunded:
			summary.Refunded++
			summary.Refunds += c.Payout()
		default:
			summary.Losers++
		}
	}

	summary.SettledAt = e.now().UTC()

	err = e.recordHouse(tx, rnd, summary)
	if err != nil {
		return Settled{Round: rnd}, err
	}

	err = e.rounds.SaveResult(tx, rnd.ID, &o, &summary)
	if err != nil {
		return Settled{Round: rnd}, fmt.Errorf("save result: %w", err)
	}

	err = e.rounds.UpdateStatus(tx, rnd.ID, rnd.Status, next)
	if err != nil {
		return Settled{Round: rnd}, err
	}

	rnd.Status = next
	rnd.Outcome = &o
	rnd.Summary = &summary

	return Settled{Round: rnd, Summary: summary}, nil
}

// recordHouse writes one admin_profit entry per currency the round moved.
// The stake currency always gets one, even when it nets to zero.
func (e *Engine) recordHouse(tx *sql.Tx, rnd model.Round, summary model.SettlementSummary) error {
	for _, c := range []model.Currency{model.CurrencyPoints, model.CurrencyCash} {
		net, ok := summary.HouseNet[c]
		if !ok {
			continue
		}

		_, err := e.ledger.RecordHouse(tx, ledger.HouseEntry{
			RoundID:  rnd.ID,
			GameType: rnd.GameType,
			Currency: c,
			Amount:   net,
			Description: games.Describe(rnd.GameType, "round %s settled, house net %d %s, fee withheld %d",
				rnd.ID, net, c, summary.FeeWithheld),
		})
		if err != nil {
			return fmt.Errorf("record %s house entry: %w", c, err)
		}
	}

	return nil
}

// loadOutcome validates the declared outcome and completes it with the parts
// only the store may supply.
func (e *Engine) loadOutcome(tx *sql.Tx, rnd model.Round, in model.Outcome) (model.Outcome, error) {
	o := in
	o.Called, o.Moves = nil, nil

	err := games.ValidateOutcome(rnd.GameType, o)
	if err != nil {
		return model.Outcome{}, err
	}

	switch rnd.GameType {
	case model.GameBingo:
		o.Called, err = e.rounds.Calls(tx, rnd.ID)
		if err != nil {
			return model.Outcome{}, fmt.Errorf("load calls: %w", err)
		}
	case model.GameRPS:
		o.Moves, err = e.rounds.Moves(tx, rnd.ID)
		if err != nil {
			return model.Outcome{}, fmt.Errorf("load moves: %w", err)
		}
	}

	return o, nil
}

// apply credits a classified wager and writes its terminal state.
func (e *Engine) apply(tx *sql.Tx, rnd model.Round, w model.Wager, c Classification) error {
	for _, cr := range c.Credits {
		if cr.Amount <= 0 {
			continue
		}

		_, err := e.ledger.Credit(tx, ledger.Entry{
			UserID:      w.UserID,
			Currency:    cr.Currency,
			Amount:      cr.Amount,
			Type:        games.CreditType(rnd.GameType, cr.Tier),
			Description: games.Describe(rnd.GameType, "%s payout on round %s", cr.Tier, rnd.ID),
			RoundID:     uuid.NullUUID{UUID: rnd.ID, Valid: true},
			WagerID:     uuid.NullUUID{UUID: w.ID, Valid: true},
			GameType:    rnd.GameType,
		})
		if err != nil {
			return fmt.Errorf("credit wager %s: %w", w.ID, err)
		}
	}

	err := e.wagers.MarkSettled(tx, w.ID, wagers.Result{
		Status:         c.Status,
		Payout:         c.Payout(),
		PayoutCurrency: c.Currency(),
		Tier:           c.Tier,
	})
	if err != nil {
		return fmt.Errorf("mark wager %s: %w", w.ID, err)
	}

	return nil
}
