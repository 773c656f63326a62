package lifecycle

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/fastprodman/wagerledger/internal/infra/pgtestutil"
	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/fastprodman/wagerledger/internal/services/ledger"
	"github.com/fastprodman/wagerledger/internal/services/odds"
	"github.com/google/uuid"
)

func newService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db := pgtestutil.NewTestDB(t)
	policy := pgutils.DefaultRetryPolicy()

	return New(db, ledger.New(db, policy), nil, nil, policy), db
}

func TestOpen_AppliesDefaultsAndSeedsMarket(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := t.Context()

	rnd, err := svc.Open(ctx, model.GameVersus, model.Settings{Teams: []string{"Red", "Blue"}})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if rnd.Status != model.RoundOpen {
		t.Fatalf("status: want open, got %s", rnd.Status)
	}
	if rnd.Settings.MinBet != 10 || !rnd.Settings.HouseFee.Equal(odds.HouseEdge) {
		t.Fatalf("defaults not applied: %+v", rnd.Settings)
	}

	m, err := svc.Odds(ctx, rnd.ID)
	if err != nil {
		t.Fatalf("odds: %v", err)
	}
	if !m.Team1.Equal(odds.DefaultOdds) || !m.Team2.Equal(odds.DefaultOdds) {
		t.Fatalf("fresh market: want 2.00/2.00, got %s/%s", m.Team1, m.Team2)
	}
}

func TestOpen_RejectsBadSettings(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)

	tests := []struct {
		name string
		g    model.GameType
		in   model.Settings
	}{
		{name: "unknown_game", g: model.GameType("poker")},
		{name: "inverted_range", g: model.GameLucky2, in: model.Settings{MinBet: 60, MaxBet: 50}},
		{name: "three_teams", g: model.GameVersus, in: model.Settings{Teams: []string{"a", "b", "c"}}},
		{name: "bad_currency", g: model.GameHorseRace, in: model.Settings{StakeCurrency: "gold"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Open(t.Context(), tt.g, tt.in)
			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := t.Context()

	rnd, err := svc.Open(ctx, model.GameVersus, model.Settings{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	closed, err := svc.Close(ctx, rnd.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != model.RoundClosed {
		t.Fatalf("status: want closed, got %s", closed.Status)
	}

	_, err = svc.Close(ctx, rnd.ID)
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("second close: want ErrInvalidTransition, got %v", err)
	}

	_, err = svc.Close(ctx, uuid.New())
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("unknown round: want ErrNotFound, got %v", err)
	}
}

func TestReset_EmptyRoundIsTerminal(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := t.Context()

	rnd, err := svc.Open(ctx, model.GameHorseRace, model.Settings{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	sum, err := svc.Reset(ctx, rnd.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if sum.Refunded != 0 || sum.Refunds != 0 {
		t.Fatalf("empty round refunded something: %+v", sum)
	}

	view, err := svc.Get(ctx, rnd.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Status != model.RoundReset {
		t.Fatalf("status: want reset, got %s", view.Status)
	}

	_, err = svc.Reset(ctx, rnd.ID)
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("second reset: want ErrInvalidTransition, got %v", err)
	}
	_, err = svc.Close(ctx, rnd.ID)
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("close after reset: want ErrInvalidTransition, got %v", err)
	}
}

func TestCallNumber(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := t.Context()

	bingo, err := svc.Open(ctx, model.GameBingo, model.Settings{})
	if err != nil {
		t.Fatalf("open bingo: %v", err)
	}

	for _, n := range []int{7, 22, 75} {
		_, err = svc.CallNumber(ctx, bingo.ID, n)
		if err != nil {
			t.Fatalf("call %d: %v", n, err)
		}
	}

	_, err = svc.CallNumber(ctx, bingo.ID, 22)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("repeat call: want ErrValidation, got %v", err)
	}
	_, err = svc.CallNumber(ctx, bingo.ID, 76)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("out of range: want ErrValidation, got %v", err)
	}

	view, err := svc.Get(ctx, bingo.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Calls) != 3 {
		t.Fatalf("calls: want 3, got %v", view.Calls)
	}

	versus, err := svc.Open(ctx, model.GameVersus, model.Settings{})
	if err != nil {
		t.Fatalf("open versus: %v", err)
	}
	_, err = svc.CallNumber(ctx, versus.ID, 5)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("versus call: want ErrValidation, got %v", err)
	}

	_, err = svc.Reset(ctx, bingo.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	_, err = svc.CallNumber(ctx, bingo.ID, 9)
	if !errors.Is(err, model.ErrMarketClosed) {
		t.Fatalf("call on reset round: want ErrMarketClosed, got %v", err)
	}
}

func TestOdds_NotAMarket(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)

	rnd, err := svc.Open(t.Context(), model.GameLucky2, model.Settings{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = svc.Odds(t.Context(), rnd.ID)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}
