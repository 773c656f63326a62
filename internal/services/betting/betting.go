// Package betting places wagers. A placement debits the bettor, stores the
// wager at the current price, grows the pool and reprices the market in one
// transaction.
package betting

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
	"github.com/fastprodman/wagerledger/internal/services/odds"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	db        *sql.DB
	ledger    *ledger.Service
	lifecycle *lifecycle.Service
	rounds    rounds.Rounds
	wagers    wagers.Wagers
	events    *events.Emitter
	retry     pgutils.RetryPolicy
	now       func() time.Time

	// perm deals bingo cards; nil uses the global source.
	perm func(n int) []int
	// faultAfterDebit lets tests abort a placement between the debit and the
	// wager insert.
	faultAfterDebit func() error
}

func New(
	dbx *sql.DB,
	ldg *ledger.Service,
	lc *lifecycle.Service,
	em *events.Emitter,
	retry pgutils.RetryPolicy,
) *Service {
	return &Service{
		db:        dbx,
		ledger:    ldg,
		lifecycle: lc,
		rounds:    pgrounds.New(dbx),
		wagers:    pgwagers.New(dbx),
		events:    em,
		retry:     retry,
		now:       time.Now,
	}
}

// Bet is one placement request. Stake may be left zero for games whose
// stake follows from the round or the selection.
type Bet struct {
	UserID    uint64
	RoundID   uuid.UUID
	Selection model.Selection
	Stake     int64
}

type WagerReceipt struct {
	Wager        model.Wager       `json:"wager"`
	BalanceAfter int64             `json:"balanceAfter"`
	Odds         *model.MarketOdds `json:"odds,omitempty"`
	PoolTotal    int64             `json:"poolTotal"`
}

// Placed is a committed placement waiting to be announced.
type Placed struct {
	Receipt WagerReceipt
	Round   model.Round
}

// PlaceBet validates and commits a wager. Contention is retried; when it
// persists the error matches model.ErrBetFailed.
func (s *Service) PlaceBet(ctx context.Context, userID uint64, roundID uuid.UUID, sel model.Selection, stake int64) (WagerReceipt, error) {
	started := time.Now()
	bet := Bet{UserID: userID, RoundID: roundID, Selection: sel, Stake: stake}

	var placed Placed

	err := pgutils.Retry(ctx, s.retry, "place_bet", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			var err error
			placed, err = s.place(tx, bet, false)

			return err
		})
	})
	if err != nil {
		metrics.RecordBet(resultOf(err), string(placed.Round.GameType), started)

		if errors.Is(err, model.ErrConcurrentModification) {
			return WagerReceipt{}, fmt.Errorf("%w: %w", model.ErrBetFailed, err)
		}

		return WagerReceipt{}, fmt.Errorf("place bet: %w", err)
	}

	metrics.RecordBet(metrics.ResultSuccess, string(placed.Round.GameType), started)
	slog.InfoContext(ctx, "wager placed",
		"round_id", roundID,
		"wager_id", placed.Receipt.Wager.ID,
		"user_id", userID,
		"stake", placed.Receipt.Wager.Stake,
	)
	s.Announce(ctx, placed)

	return placed.Receipt, nil
}

// PlaceInTx places a wager inside the caller's transaction. Duel seats are
// only taken this way. The caller announces the result after commit.
func (s *Service) PlaceInTx(tx *sql.Tx, bet Bet) (Placed, error) {
	return s.place(tx, bet, true)
}

// Announce publishes a committed placement.
func (s *Service) Announce(ctx context.Context, p Placed) {
	s.events.Emit(ctx, events.New(events.WagerPlaced, p.Round, p.Receipt.Wager).ForWager(p.Receipt.Wager))

	if p.Receipt.Odds != nil {
		s.lifecycle.PublishOdds(ctx, p.Round, *p.Receipt.Odds)
	}
}

//nolint:cyclop,funlen
func (s *Service) place(tx *sql.Tx, bet Bet, duelSeat bool) (Placed, error) {
	rnd, err := s.rounds.LockForUpdate(tx, bet.RoundID)
	if err != nil {
		return Placed{}, err
	}

	placed := Placed{Round: rnd}

	if !lifecycle.AcceptsBets(rnd.Status) {
		return placed, fmt.Errorf("round is %s: %w", rnd.Status, model.ErrMarketClosed)
	}
	if rnd.Settings.ClosesAt != nil && !s.now().Before(*rnd.Settings.ClosesAt) {
		return placed, fmt.Errorf("betting closed at %s: %w", rnd.Settings.ClosesAt.Format(time.RFC3339), model.ErrMarketClosed)
	}
	if rnd.GameType == model.GameRPS && !duelSeat {
		return placed, model.Invalid("roundId", "duel seats are taken through the duel room")
	}

	rules, err := games.For(rnd.GameType)
	if err != nil {
		return placed, err
	}

	amount, err := games.ValidateSelection(rnd.GameType, rnd.Settings, bet.Selection, bet.Stake)
	if err != nil {
		return placed, err
	}

	err = s.checkTickets(tx, rnd, rules, bet)
	if err != nil {
		return placed, err
	}

	sel := bet.Selection
	if rnd.GameType == model.GameBingo {
		sel.Card = games.NewCard(s.perm)
	}

	wagerID := uuid.New()

	debit, err := s.ledger.Debit(tx, ledger.Entry{
		UserID:      bet.UserID,
		Currency:    rnd.Settings.StakeCurrency,
		Amount:      amount,
		Type:        games.BetType(rnd),
		Description: games.Describe(rnd.GameType, "stake on round %s", rnd.ID),
		RoundID:     uuid.NullUUID{UUID: rnd.ID, Valid: true},
		WagerID:     uuid.NullUUID{UUID: wagerID, Valid: true},
		GameType:    rnd.GameType,
	})
	if err != nil {
		return placed, fmt.Errorf("debit stake: %w", err)
	}

	if s.faultAfterDebit != nil {
		err = s.faultAfterDebit()
		if err != nil {
			return placed, err
		}
	}

	var market *model.MarketOdds
	var locked decimal.NullDecimal

	// the wager locks the price that already includes its own stake
	if rules.TwoOutcome {
		sides, err := s.rounds.LockSelections(tx, rnd.ID)
		if err != nil {
			return placed, fmt.Errorf("lock market: %w", err)
		}

		m, err := s.reprice(tx, rnd.ID, sides, sel.Team, amount)
		if err != nil {
			return placed, err
		}

		market = &m
		locked = decimal.NewNullDecimal(m.Team1)
		if sel.Team == 2 {
			locked = decimal.NewNullDecimal(m.Team2)
		}
	}

	w, err := s.wagers.Insert(tx, model.Wager{
		ID:           wagerID,
		RoundID:      rnd.ID,
		UserID:       bet.UserID,
		GameType:     rnd.GameType,
		Stake:        amount,
		Currency:     rnd.Settings.StakeCurrency,
		Selection:    sel,
		SingleTicket: rules.SingleTicket,
		LockedOdds:   locked,
		Status:       model.WagerPending,
	})
	if err != nil {
		return placed, fmt.Errorf("insert wager: %w", err)
	}

	pool, err := s.rounds.AddStake(tx, rnd.ID, amount)
	if err != nil {
		return placed, fmt.Errorf("grow pool: %w", err)
	}

	placed.Round.StakesTotal = pool
	placed.Receipt = WagerReceipt{Wager: w, BalanceAfter: *debit.BalanceAfter, PoolTotal: pool, Odds: market}

	return placed, nil
}

// checkTickets enforces the per-user and per-round wager limits.
func (s *Service) checkTickets(tx *sql.Tx, rnd model.Round, rules games.Rules, bet Bet) error {
	if rnd.Settings.PlayerCap > 0 {
		n, err := s.wagers.CountByRound(tx, rnd.ID)
		if err != nil {
			return fmt.Errorf("count wagers: %w", err)
		}
		if n >= rnd.Settings.PlayerCap {
			return fmt.Errorf("all %d seats taken: %w", rnd.Settings.PlayerCap, model.ErrMarketClosed)
		}
	}

	mine, err := s.wagers.ListByUser(tx, rnd.ID, bet.UserID)
	if err != nil {
		return fmt.Errorf("list own wagers: %w", err)
	}

	if rules.SingleTicket && len(mine) > 0 {
		return wagers.ErrDuplicateWager
	}
	if rnd.Settings.TicketCap > 0 && len(mine) >= rnd.Settings.TicketCap {
		return fmt.Errorf("ticket limit of %d reached: %w", rnd.Settings.TicketCap, model.ErrDuplicateWager)
	}

	if rnd.GameType == model.GameHorseRace {
		backed := make(map[int]struct{})
		for _, w := range mine {
			for _, p := range w.Selection.Picks {
				backed[p.Number] = struct{}{}
			}
		}

		for _, p := range bet.Selection.Picks {
			if _, dup := backed[p.Number]; dup {
				return fmt.Errorf("number %d already backed: %w", p.Number, model.ErrDuplicateWager)
			}
		}
	}

	return nil
}

// reprice adds the new stake to its side and stores the recomputed prices of
// both sides.
func (s *Service) reprice(tx *sql.Tx, roundID uuid.UUID, sides []model.SelectionTotal, team int, amount int64) (model.MarketOdds, error) {
	err := s.rounds.AddSelectionStake(tx, roundID, team, amount)
	if err != nil {
		return model.MarketOdds{}, fmt.Errorf("grow selection: %w", err)
	}

	m := odds.Market(roundID, sides)
	if team == 1 {
		m.Total1 += amount
	} else {
		m.Total2 += amount
	}

	price := odds.Compute(m.Total1, m.Total2)
	m.Team1, m.Team2 = price.Team1, price.Team2

	for i, o := range []decimal.Decimal{price.Team1, price.Team2} {
		err = s.rounds.SetSelectionOdds(tx, roundID, i+1, o)
		if err != nil {
			return model.MarketOdds{}, fmt.Errorf("store odds: %w", err)
		}
	}

	return m, nil
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInsufficientFunds),
		errors.Is(err, model.ErrMarketClosed),
		errors.Is(err, model.ErrDuplicateWager),
		errors.Is(err, model.ErrNotFound):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailed
	}
}
