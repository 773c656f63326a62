// Package duel runs two-seat rock-paper-scissors rooms on top of the round,
// betting and settlement services. A room is an rps round; each seat is a
// wager of the fixed stake.
package duel

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
	"github.com/fastprodman/wagerledger/internal/repos/rounds"
	pgrounds "github.com/fastprodman/wagerledger/internal/repos/rounds/postgres"
	"github.com/fastprodman/wagerledger/internal/repos/wagers"
	pgwagers "github.com/fastprodman/wagerledger/internal/repos/wagers/postgres"
	"github.com/fastprodman/wagerledger/internal/services/betting"
	"github.com/fastprodman/wagerledger/internal/services/lifecycle"
	"github.com/fastprodman/wagerledger/internal/services/settlement"
	"github.com/google/uuid"
)

type Service struct {
	db        *sql.DB
	lifecycle *lifecycle.Service
	bets      *betting.Service
	engine    *settlement.Engine
	rounds    rounds.Rounds
	wagers    wagers.Wagers
	retry     pgutils.RetryPolicy
}

func New(
	dbx *sql.DB,
	lc *lifecycle.Service,
	bets *betting.Service,
	engine *settlement.Engine,
	retry pgutils.RetryPolicy,
) *Service {
	return &Service{
		db:        dbx,
		lifecycle: lc,
		bets:      bets,
		engine:    engine,
		rounds:    pgrounds.New(dbx),
		wagers:    pgwagers.New(dbx),
		retry:     retry,
	}
}

// Seat is the result of taking a place in a room.
type Seat struct {
	Room    model.Round          `json:"room"`
	Receipt betting.WagerReceipt `json:"receipt"`
}

// MoveResult reports a submitted move. Settlement is set once both players
// have moved and the room has been settled.
type MoveResult struct {
	RoomID     uuid.UUID                `json:"roomId"`
	Move       model.Move               `json:"move"`
	Settlement *model.SettlementSummary `json:"settlement,omitempty"`
	Outcome    *model.Outcome           `json:"outcome,omitempty"`
}

// pending collects what to announce once the transaction commits.
type pending struct {
	opened  *model.Round
	closed  *model.Round
	placed  *betting.Placed
	settled *settlement.Settled
}

func (s *Service) announce(ctx context.Context, p pending) {
	if p.opened != nil {
		s.lifecycle.Opened(ctx, *p.opened)
	}
	if p.placed != nil {
		s.bets.Announce(ctx, *p.placed)
	}
	if p.closed != nil {
		s.lifecycle.Finished(ctx, *p.closed, events.RoundClosed, nil)
	}
	if p.settled != nil {
		s.engine.Announce(ctx, *p.settled)
	}
}

// seatErr wraps a failed seat placement. Contention that outlived the retry
// policy matches model.ErrBetFailed, as it does for PlaceBet.
func seatErr(op string, err error) error {
	if errors.Is(err, model.ErrConcurrentModification) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrBetFailed, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// CreateRoom opens a room and seats its host.
func (s *Service) CreateRoom(ctx context.Context, hostID uint64, stake int64) (Seat, error) {
	if stake < games.DuelMinStake {
		return Seat{}, model.Invalid("stake", "must be at least %d", games.DuelMinStake)
	}

	var (
		seat Seat
		out  pending
	)

	err := pgutils.Retry(ctx, s.retry, "create_room", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			out = pending{}

			rnd, err := s.lifecycle.OpenInTx(tx, model.GameRPS, model.Settings{FixedStake: stake}, uuid.NullUUID{})
			if err != nil {
				return err
			}

			placed, err := s.bets.PlaceInTx(tx, betting.Bet{
				UserID:    hostID,
				RoundID:   rnd.ID,
				Selection: model.Selection{Role: model.RoleHost},
				Stake:     stake,
			})
			if err != nil {
				return err
			}

			seat = Seat{Room: placed.Round, Receipt: placed.Receipt}
			out.opened, out.placed = &rnd, &placed

			return nil
		})
	})
	if err != nil {
		return Seat{}, seatErr("create room", err)
	}

	slog.InfoContext(ctx, "duel room created", "round_id", seat.Room.ID, "host", hostID, "stake", stake)
	s.announce(ctx, out)

	return seat, nil
}

// JoinRoom seats a guest. A full room closes.
func (s *Service) JoinRoom(ctx context.Context, roomID uuid.UUID, guestID uint64) (Seat, error) {
	var (
		seat Seat
		out  pending
	)

	err := pgutils.Retry(ctx, s.retry, "join_room", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			var err error
			seat, out, err = s.take(tx, roomID, guestID, model.RoleGuest)

			return err
		})
	})
	if err != nil {
		return Seat{}, seatErr("join room", err)
	}

	slog.InfoContext(ctx, "duel room joined", "round_id", roomID, "guest", guestID)
	s.announce(ctx, out)

	return seat, nil
}

// take seats userID in an existing room and closes it when every seat is
// taken.
func (s *Service) take(tx *sql.Tx, roomID uuid.UUID, userID uint64, role string) (Seat, pending, error) {
	placed, err := s.bets.PlaceInTx(tx, betting.Bet{
		UserID:    userID,
		RoundID:   roomID,
		Selection: model.Selection{Role: role},
	})
	if err != nil {
		return Seat{}, pending{}, err
	}

	out := pending{placed: &placed}
	room := placed.Round

	seated, err := s.wagers.CountByRound(tx, roomID)
	if err != nil {
		return Seat{}, pending{}, fmt.Errorf("count seats: %w", err)
	}

	if seated >= room.Settings.PlayerCap {
		room, err = s.lifecycle.CloseInTx(tx, roomID)
		if err != nil {
			return Seat{}, pending{}, err
		}

		out.closed = &room
	}

	return Seat{Room: room, Receipt: placed.Receipt}, out, nil
}

// SubmitMove records a player's hand. The second hand settles the room.
func (s *Service) SubmitMove(ctx context.Context, roomID uuid.UUID, userID uint64, move model.Move) (MoveResult, error) {
	if !move.Valid() {
		return MoveResult{}, model.Invalid("move", "must be rock, paper or scissors")
	}

	var (
		res MoveResult
		out pending
	)

	err := pgutils.Retry(ctx, s.retry, "submit_move", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			out = pending{}
			res = MoveResult{RoomID: roomID, Move: move}

			room, err := s.lockRoom(tx, roomID)
			if err != nil {
				return err
			}

			switch room.Status {
			case model.RoundOpen:
				return model.Invalid("roomId", "waiting for an opponent")
			case model.RoundClosed:
			default:
				return fmt.Errorf("room is %s: %w", room.Status, model.ErrInvalidTransition)
			}

			err = s.requireSeat(tx, roomID, userID)
			if err != nil {
				return err
			}

			err = s.rounds.AddMove(tx, roomID, userID, move)
			if err != nil {
				return err
			}

			moves, err := s.rounds.Moves(tx, roomID)
			if err != nil {
				return fmt.Errorf("load moves: %w", err)
			}
			if len(moves) < room.Settings.PlayerCap {
				return nil
			}

			settled, err := s.engine.SettleInTx(tx, roomID, model.Outcome{})
			if err != nil {
				return err
			}

			res.Settlement = &settled.Summary
			res.Outcome = settled.Round.Outcome
			out.settled = &settled

			return nil
		})
	})
	if err != nil {
		return MoveResult{}, fmt.Errorf("submit move: %w", err)
	}

	s.announce(ctx, out)

	return res, nil
}

// Rematch asks for another duel with the same stake. The first player to ask
// opens the child room as host; the second joins it as guest.
func (s *Service) Rematch(ctx context.Context, parentID uuid.UUID, userID uint64) (Seat, error) {
	var (
		seat Seat
		out  pending
	)

	err := pgutils.Retry(ctx, s.retry, "rematch", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			out = pending{}

			parent, err := s.lockFinishedRoom(tx, parentID, userID)
			if err != nil {
				return err
			}

			child, err := s.rounds.FindChild(tx, parentID)
			switch {
			case errors.Is(err, rounds.ErrRoundNotFound):
				return s.openRematch(tx, parent, userID, &seat, &out)
			case err != nil:
				return fmt.Errorf("find rematch: %w", err)
			case child.Status != model.RoundOpen:
				return fmt.Errorf("rematch is %s: %w", child.Status, model.ErrMarketClosed)
			}

			seat, out, err = s.take(tx, child.ID, userID, model.RoleGuest)

			return err
		})
	})
	if err != nil {
		return Seat{}, seatErr("rematch", err)
	}

	slog.InfoContext(ctx, "duel rematch", "parent_id", parentID, "round_id", seat.Room.ID, "user_id", userID)
	s.announce(ctx, out)

	return seat, nil
}

func (s *Service) openRematch(tx *sql.Tx, parent model.Round, userID uint64, seat *Seat, out *pending) error {
	child, err := s.lifecycle.OpenInTx(tx, model.GameRPS, parent.Settings, uuid.NullUUID{UUID: parent.ID, Valid: true})
	if err != nil {
		return err
	}

	placed, err := s.bets.PlaceInTx(tx, betting.Bet{
		UserID:    userID,
		RoundID:   child.ID,
		Selection: model.Selection{Role: model.RoleHost},
	})
	if err != nil {
		return err
	}

	*seat = Seat{Room: placed.Round, Receipt: placed.Receipt}
	*out = pending{opened: &child, placed: &placed}

	return nil
}

// DeclineRematch turns down a rematch. An open child room is reset and
// whoever already paid into it is refunded.
func (s *Service) DeclineRematch(ctx context.Context, parentID uuid.UUID, userID uint64) (model.ResetSummary, error) {
	var (
		child   model.Round
		summary model.ResetSummary
	)

	err := pgutils.Retry(ctx, s.retry, "decline_rematch", func(ctx context.Context) error {
		return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			_, err := s.lockFinishedRoom(tx, parentID, userID)
			if err != nil {
				return err
			}

			found, err := s.rounds.FindChild(tx, parentID)
			if err != nil {
				if errors.Is(err, rounds.ErrRoundNotFound) {
					return model.Invalid("roomId", "no rematch has been requested")
				}

				return fmt.Errorf("find rematch: %w", err)
			}

			child, summary, err = s.lifecycle.ResetInTx(tx, found.ID)

			return err
		})
	})
	if err != nil {
		return model.ResetSummary{}, fmt.Errorf("decline rematch: %w", err)
	}

	slog.InfoContext(ctx, "duel rematch declined", "parent_id", parentID, "round_id", child.ID, "user_id", userID)
	s.lifecycle.Finished(ctx, child, events.RoundReset, summary)

	return summary, nil
}

func (s *Service) lockRoom(tx *sql.Tx, roomID uuid.UUID) (model.Round, error) {
	room, err := s.rounds.LockForUpdate(tx, roomID)
	if err != nil {
		return model.Round{}, err
	}
	if room.GameType != model.GameRPS {
		return model.Round{}, model.Invalid("roomId", "round %s is not a duel room", roomID)
	}

	return room, nil
}

// lockFinishedRoom locks a settled room that userID played in.
func (s *Service) lockFinishedRoom(tx *sql.Tx, roomID uuid.UUID, userID uint64) (model.Round, error) {
	room, err := s.lockRoom(tx, roomID)
	if err != nil {
		return model.Round{}, err
	}
	if room.Status != model.RoundCompleted {
		return model.Round{}, fmt.Errorf("room is %s: %w", room.Status, model.ErrInvalidTransition)
	}

	err = s.requireSeat(tx, roomID, userID)
	if err != nil {
		return model.Round{}, err
	}

	return room, nil
}

func (s *Service) requireSeat(tx *sql.Tx, roomID uuid.UUID, userID uint64) error {
	mine, err := s.wagers.ListByUser(tx, roomID, userID)
	if err != nil {
		return fmt.Errorf("list seats: %w", err)
	}
	if len(mine) == 0 {
		return model.Invalid("userId", "player %d has no seat in room %s", userID, roomID)
	}

	return nil
}
