package duel

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/wagerledger/internal/infra/pgtestutil"
	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/services/betting"
	"github.com/fastprodman/wagerledger/internal/services/ledger"
	"github.com/fastprodman/wagerledger/internal/services/lifecycle"
	"github.com/fastprodman/wagerledger/internal/services/settlement"
)

func newService(t *testing.T) (*Service, *ledger.Service, *sql.DB) {
	t.Helper()

	db := pgtestutil.NewTestDB(t)
	policy := pgutils.RetryPolicy{Attempts: 5, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
	ldg := ledger.New(db, policy)
	lc := lifecycle.New(db, ldg, nil, nil, policy)
	bets := betting.New(db, ldg, lc, nil, policy)
	engine := settlement.New(db, ldg, lc, policy)

	for id := uint64(1); id <= 3; id++ {
		pgtestutil.SeedAccount(t, db, id, 1000, 0)
	}

	return New(db, lc, bets, engine, policy), ldg, db
}

func points(t *testing.T, ldg *ledger.Service, userID uint64) int64 {
	t.Helper()

	report, err := ldg.Audit(t.Context(), userID)
	if err != nil {
		t.Fatalf("audit %d: %v", userID, err)
	}
	if !report.Consistent {
		t.Fatalf("account %d does not match its log: %+v", userID, report)
	}

	return report.Balances.Points
}

func TestDuel_DecisiveRound(t *testing.T) {
	t.Parallel()

	svc, ldg, _ := newService(t)
	ctx := t.Context()

	_, err := svc.CreateRoom(ctx, 1, 5)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("stake below minimum: want ErrValidation, got %v", err)
	}

	host, err := svc.CreateRoom(ctx, 1, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	room := host.Room.ID
	if host.Room.Status != model.RoundOpen || host.Receipt.BalanceAfter != 900 {
		t.Fatalf("created room: %+v", host)
	}

	_, err = svc.SubmitMove(ctx, room, 1, model.MoveRock)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("move before guest: want ErrValidation, got %v", err)
	}

	_, err = svc.JoinRoom(ctx, room, 1)
	if !errors.Is(err, model.ErrDuplicateWager) {
		t.Fatalf("host joins own room: want ErrDuplicateWager, got %v", err)
	}

	guest, err := svc.JoinRoom(ctx, room, 2)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if guest.Room.Status != model.RoundClosed || guest.Room.StakesTotal != 200 {
		t.Fatalf("full room: %+v", guest.Room)
	}

	_, err = svc.JoinRoom(ctx, room, 3)
	if !errors.Is(err, model.ErrMarketClosed) {
		t.Fatalf("third player: want ErrMarketClosed, got %v", err)
	}

	_, err = svc.SubmitMove(ctx, room, 3, model.MoveRock)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("spectator move: want ErrValidation, got %v", err)
	}
	_, err = svc.SubmitMove(ctx, room, 1, model.Move("lizard"))
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("bad move: want ErrValidation, got %v", err)
	}

	first, err := svc.SubmitMove(ctx, room, 1, model.MoveRock)
	if err != nil {
		t.Fatalf("host move: %v", err)
	}
	if first.Settlement != nil {
		t.Fatalf("settled after one move")
	}

	_, err = svc.SubmitMove(ctx, room, 1, model.MovePaper)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("second move: want ErrValidation, got %v", err)
	}

	last, err := svc.SubmitMove(ctx, room, 2, model.MoveScissors)
	if err != nil {
		t.Fatalf("guest move: %v", err)
	}
	if last.Settlement == nil || last.Settlement.Payouts[model.CurrencyPoints] != 190 || last.Settlement.HouseNet[model.CurrencyPoints] != 10 {
		t.Fatalf("settlement: %+v", last.Settlement)
	}
	if last.Outcome == nil || last.Outcome.Moves[2] != model.MoveScissors {
		t.Fatalf("outcome: %+v", last.Outcome)
	}

	if got := points(t, ldg, 1); got != 1090 {
		t.Fatalf("winner: want 1090, got %d", got)
	}
	if got := points(t, ldg, 2); got != 900 {
		t.Fatalf("loser: want 900, got %d", got)
	}
}

func TestDuel_DrawRefundsBoth(t *testing.T) {
	t.Parallel()

	svc, ldg, db := newService(t)
	ctx := t.Context()

	host, err := svc.CreateRoom(ctx, 1, 50)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.JoinRoom(ctx, host.Room.ID, 2)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = svc.SubmitMove(ctx, host.Room.ID, 2, model.MovePaper)
	if err != nil {
		t.Fatalf("guest move: %v", err)
	}
	res, err := svc.SubmitMove(ctx, host.Room.ID, 1, model.MovePaper)
	if err != nil {
		t.Fatalf("host move: %v", err)
	}
	if res.Settlement == nil || res.Settlement.Refunded != 2 || res.Settlement.HouseNet[model.CurrencyPoints] != 0 {
		t.Fatalf("draw settlement: %+v", res.Settlement)
	}

	for _, id := range []uint64{1, 2} {
		if got := points(t, ldg, id); got != 1000 {
			t.Fatalf("player %d: want 1000, got %d", id, got)
		}
	}

	var draws int
	err = db.QueryRowContext(ctx, `SELECT count(*) FROM transactions WHERE type = 'rps_draw'`).Scan(&draws)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if draws != 2 {
		t.Fatalf("draw entries: want 2, got %d", draws)
	}
}

func TestDuel_RematchAndDecline(t *testing.T) {
	t.Parallel()

	svc, ldg, db := newService(t)
	ctx := t.Context()

	host, err := svc.CreateRoom(ctx, 1, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	parent := host.Room.ID

	_, err = svc.Rematch(ctx, parent, 1)
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("rematch before the end: want ErrInvalidTransition, got %v", err)
	}

	_, err = svc.JoinRoom(ctx, parent, 2)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	for user, move := range map[uint64]model.Move{1: model.MoveRock, 2: model.MovePaper} {
		_, err = svc.SubmitMove(ctx, parent, user, move)
		if err != nil {
			t.Fatalf("move of %d: %v", user, err)
		}
	}

	_, err = svc.Rematch(ctx, parent, 3)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("outsider rematch: want ErrValidation, got %v", err)
	}

	_, err = svc.DeclineRematch(ctx, parent, 1)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("decline with nothing asked: want ErrValidation, got %v", err)
	}

	asked, err := svc.Rematch(ctx, parent, 2)
	if err != nil {
		t.Fatalf("rematch: %v", err)
	}
	if !asked.Room.ParentID.Valid || asked.Room.ParentID.UUID != parent || asked.Room.Settings.FixedStake != 100 {
		t.Fatalf("child room: %+v", asked.Room)
	}

	var stakeType string
	err = db.QueryRowContext(ctx, `SELECT type FROM transactions WHERE wager_id = $1`, asked.Receipt.Wager.ID).Scan(&stakeType)
	if err != nil {
		t.Fatalf("stake entry: %v", err)
	}
	if stakeType != model.TxRPSRematchStake {
		t.Fatalf("stake type: want %s, got %s", model.TxRPSRematchStake, stakeType)
	}

	// guest won 190 and paid 100 into the rematch
	if got := points(t, ldg, 2); got != 1090-100 {
		t.Fatalf("before decline: want 990, got %d", got)
	}

	sum, err := svc.DeclineRematch(ctx, parent, 1)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if sum.Refunded != 1 || sum.Refunds != 100 {
		t.Fatalf("decline refunds: %+v", sum)
	}
	if got := points(t, ldg, 2); got != 1090 {
		t.Fatalf("after decline: want 1090, got %d", got)
	}

	_, err = svc.Rematch(ctx, parent, 1)
	if !errors.Is(err, model.ErrMarketClosed) {
		t.Fatalf("rematch after decline: want ErrMarketClosed, got %v", err)
	}
}

func TestDuel_RematchSeatsBothPlayers(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	ctx := t.Context()

	host, err := svc.CreateRoom(ctx, 1, 20)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.JoinRoom(ctx, host.Room.ID, 2)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	for user, move := range map[uint64]model.Move{1: model.MoveScissors, 2: model.MoveScissors} {
		_, err = svc.SubmitMove(ctx, host.Room.ID, user, move)
		if err != nil {
			t.Fatalf("move of %d: %v", user, err)
		}
	}

	first, err := svc.Rematch(ctx, host.Room.ID, 1)
	if err != nil {
		t.Fatalf("first rematch: %v", err)
	}
	second, err := svc.Rematch(ctx, host.Room.ID, 2)
	if err != nil {
		t.Fatalf("second rematch: %v", err)
	}

	if first.Room.ID != second.Room.ID {
		t.Fatalf("players landed in different rooms: %s vs %s", first.Room.ID, second.Room.ID)
	}
	if second.Room.Status != model.RoundClosed || second.Receipt.Wager.Selection.Role != model.RoleGuest {
		t.Fatalf("rematch room: %+v", second)
	}

	_, err = svc.Rematch(ctx, host.Room.ID, 1)
	if !errors.Is(err, model.ErrMarketClosed) {
		t.Fatalf("third rematch call: want ErrMarketClosed, got %v", err)
	}
}

func TestDuel_ConcurrentCreateRoomsConserve(t *testing.T) {
	t.Parallel()

	svc, ldg, _ := newService(t)
	ctx := t.Context()

	const rooms = 8

	var wg sync.WaitGroup
	errs := make(chan error, rooms)
	for range rooms {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateRoom(ctx, 1, 100)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, model.ErrBetFailed):
		default:
			t.Fatalf("create room under contention: %v", err)
		}
	}

	if got, want := points(t, ldg, 1), int64(1000-100*created); got != want {
		t.Fatalf("host balance after %d rooms: want %d, got %d", created, want, got)
	}
}

func TestSeatErr(t *testing.T) {
	t.Parallel()

	contended := fmt.Errorf("create_room: 5 attempts: %w", model.ErrConcurrentModification)

	cases := []struct {
		name      string
		err       error
		betFailed bool
		keeps     error
	}{
		{name: "contention", err: contended, betFailed: true, keeps: model.ErrConcurrentModification},
		{name: "insufficient_funds", err: model.ErrInsufficientFunds, keeps: model.ErrInsufficientFunds},
		{name: "market_closed", err: model.ErrMarketClosed, keeps: model.ErrMarketClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := seatErr("create room", tc.err)
			if errors.Is(got, model.ErrBetFailed) != tc.betFailed {
				t.Fatalf("ErrBetFailed match: want %v, got %v", tc.betFailed, got)
			}
			if !errors.Is(got, tc.keeps) {
				t.Fatalf("cause lost: want %v in %v", tc.keeps, got)
			}
		})
	}
}
