package wagers

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/fastprodman/wagerledger/internal/infra/pgtestutil"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/repos/wagers"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedRound(t *testing.T, db *sql.DB, g model.GameType) uuid.UUID {
	t.Helper()

	pgtestutil.MustExec(t, db, `INSERT INTO accounts (id, username) VALUES (1, 'a'), (2, 'b') ON CONFLICT DO NOTHING`)

	id := uuid.New()
	pgtestutil.MustExec(t, db, `INSERT INTO rounds (id, game_type, settings) VALUES ($1, $2, '{}')`, id, string(g))

	return id
}

func newWager(roundID uuid.UUID, userID uint64, single bool) model.Wager {
	return model.Wager{
		ID:           uuid.New(),
		RoundID:      roundID,
		UserID:       userID,
		GameType:     model.GameVersus,
		Stake:        100,
		Currency:     model.CurrencyPoints,
		Selection:    model.Selection{Team: 1},
		SingleTicket: single,
		LockedOdds:   decimal.NewNullDecimal(decimal.RequireFromString("1.10")),
		Status:       model.WagerPending,
	}
}

func TestWagers_Insert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		single  bool
		wantErr error
	}{
		{name: "single_ticket_second_wager_rejected", single: true, wantErr: wagers.ErrDuplicateWager},
		{name: "multi_ticket_second_wager_allowed", single: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := pgtestutil.NewTestDB(t)
			repo := New(db)
			roundID := seedRound(t, db, model.GameVersus)

			tx, err := db.BeginTx(t.Context(), nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			first, err := repo.Insert(tx, newWager(roundID, 1, tt.single))
			if err != nil {
				t.Fatalf("first insert: %v", err)
			}
			if first.CreatedAt.IsZero() {
				t.Fatalf("created_at not returned")
			}

			_, err = repo.Insert(tx, newWager(roundID, 1, tt.single))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("second insert: want %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil && !errors.Is(err, model.ErrDuplicateWager) {
				t.Fatalf("duplicate must match model.ErrDuplicateWager")
			}
		})
	}
}

func TestWagers_SettleOnce(t *testing.T) {
	t.Parallel()

	db := pgtestutil.NewTestDB(t)
	repo := New(db)
	roundID := seedRound(t, db, model.GameVersus)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	w1, err := repo.Insert(tx, newWager(roundID, 1, true))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	w2, err := repo.Insert(tx, newWager(roundID, 2, true))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := repo.ListPending(tx, roundID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending: want 2, got %d", len(pending))
	}
	if !pending[0].LockedOdds.Valid || !pending[0].LockedOdds.Decimal.Equal(decimal.RequireFromString("1.1")) {
		t.Fatalf("locked odds not stored: %+v", pending[0].LockedOdds)
	}

	won := wagers.Result{Status: model.WagerWon, Payout: 99, PayoutCurrency: model.CurrencyCash, Tier: "win"}
	if err := repo.MarkSettled(tx, w1.ID, won); err != nil {
		t.Fatalf("mark settled: %v", err)
	}
	err = repo.MarkSettled(tx, w1.ID, won)
	if !errors.Is(err, wagers.ErrWagerSettled) || !errors.Is(err, model.ErrAlreadySettled) {
		t.Fatalf("second settle: want ErrWagerSettled, got %v", err)
	}
	if err := repo.MarkSettled(tx, w2.ID, wagers.Result{Status: model.WagerLost}); err != nil {
		t.Fatalf("mark lost: %v", err)
	}

	pending, err = repo.ListPending(tx, roundID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("no wager may stay pending, got %d", len(pending))
	}

	mine, err := repo.ListByUser(tx, roundID, 1)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != model.WagerWon || mine[0].Payout != 99 ||
		mine[0].PayoutCurrency != model.CurrencyCash || mine[0].SettledAt == nil {
		t.Fatalf("unexpected settled wager: %+v", mine)
	}

	n, err := repo.CountByRound(tx, roundID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count: want 2, got %d", n)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.Get(t.Context(), w2.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.WagerLost || got.Selection.Team != 1 {
		t.Fatalf("unexpected wager: %+v", got)
	}

	_, err = repo.Get(t.Context(), uuid.New())
	if !errors.Is(err, wagers.ErrWagerNotFound) {
		t.Fatalf("want ErrWagerNotFound, got %v", err)
	}
}
